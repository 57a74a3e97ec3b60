package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/policy-letter-api/internal/config"
	"github.com/spf13/cobra"
)

func rosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Inspect the staff roster",
	}
	cmd.AddCommand(rosterCheckCmd())
	return cmd
}

func rosterCheckCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a roster file and list its entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if file != "" {
				cfg.RosterFile = file
			}
			users, err := config.LoadRoster(cfg)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "EMAIL\tSIGNER\tTITLE\tSIGNATURE")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.Email, u.SignerName, u.SignerTitle, u.SignatureFile)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d users ok\n", len(users))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "roster YAML (default AUTH_ROSTER_FILE)")
	return cmd
}
