package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/fragmede/dacforge/internal/render"
)

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded signing attempts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				limit = cfg.HistoryLimit
			}
			recs, err := db.RecentTransactions(limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transactions yet.")
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("WHEN", "STATUS", "ACCOUNT", "ACTION", "VIA", "TX / ERROR")
			for _, rec := range recs {
				detail := rec.TxID
				if detail == "" {
					detail = rec.Error
				}
				t.Row(render.TimeAgo(rec.CreatedAt), rec.Status.String(), rec.Account,
					rec.Action+"@"+rec.Contract, rec.Authenticator, detail)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of records (default from DACFORGE_HISTORY_LIMIT)")
	return cmd
}
