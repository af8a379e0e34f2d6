// Command tourportal runs the tourism portal web tier.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iliyamo/tourism-portal/internal/access"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tourportal",
		Short:        "Tourism portal web tier",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newRoutesCmd())
	return root
}

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the screen table with each screen's access requirement",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tVIEW\tREQUIREMENT")
			for _, s := range access.Screens() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Path, s.View, s.Requirement)
			}
			return w.Flush()
		},
	}
}
