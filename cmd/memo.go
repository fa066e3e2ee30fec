package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fragmede/dacforge/internal/config"
	"github.com/fragmede/dacforge/internal/dac"
	"github.com/fragmede/dacforge/internal/ual"
)

type memoOutput struct {
	Memo        dac.Memo        `json:"memo"`
	Transaction ual.Transaction `json:"transaction"`
}

// prepareMemo decodes saved wizard answers and builds the transaction for
// account. Answers without a pay token use payToken.
func prepareMemo(raw []byte, account, payToken string, contracts config.Contracts) (memoOutput, error) {
	var p dac.Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return memoOutput{}, fmt.Errorf("parsing wizard answers: %w", err)
	}
	if p.PayTokenSymbol == "" {
		p.PayTokenSymbol = payToken
	}
	tx, memo, err := dac.Prepare(account, p, contracts)
	if err != nil {
		return memoOutput{}, err
	}
	return memoOutput{Memo: memo, Transaction: tx}, nil
}

func memoCmd() *cobra.Command {
	var account string
	cmd := &cobra.Command{
		Use:   "memo <wizard.json>",
		Short: "Print the DAC creation transaction for saved wizard answers without signing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			out, err := prepareMemo(raw, account, cfg.PayTokenSymbol, config.LoadContracts())
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVarP(&account, "account", "a", "", "account that pays and owns the DAC")
	cmd.MarkFlagRequired("account")
	return cmd
}
