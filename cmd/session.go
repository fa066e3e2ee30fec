package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fragmede/dacforge/internal/render"
)

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect the persisted login session",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the session restored at startup",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := db.LoadSession()
			if err != nil {
				return err
			}
			if !s.Complete() {
				fmt.Fprintln(cmd.OutOrStdout(), "No session.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account:       %s\nAuthenticator: %s\nLogged in:     %s\n",
				s.AccountName, s.AuthenticatorName, render.TimeAgo(s.Timestamp))
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the session so the next start does not log in automatically",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.ClearSession(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session cleared.")
			return nil
		},
	}

	cmd.AddCommand(show, clearCmd)
	return cmd
}
