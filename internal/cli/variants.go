package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/policy-letter-api/internal/domain"
	"github.com/policy-letter-api/internal/render"
	"github.com/spf13/cobra"
)

func variantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List the letterType/layoutVersion combinations render accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LETTER TYPE\tLAYOUT\tDEFAULT")
			for _, v := range render.Variants() {
				def := ""
				if v.Layout == domain.DefaultLayout {
					def = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Type, v.Layout, def)
			}
			return tw.Flush()
		},
	}
}
