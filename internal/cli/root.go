// Package cli implements letterctl, the operator command line.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the letterctl command tree.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "letterctl",
		Short:         "letterctl - operate the policy letter service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			_ = godotenv.Load()
		},
	}
	root.AddCommand(renderCmd())
	root.AddCommand(hashPasswordCmd())
	root.AddCommand(rosterCmd())
	root.AddCommand(variantsCmd())
	return root
}

// Execute runs the root command
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
