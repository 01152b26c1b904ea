// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"svbind-cli/pkg/triple"
)

// triplesCmd lists the supported target triples grouped by platform family.
var triplesCmd = &cobra.Command{
	Use:   "triples",
	Short: "List supported target triples",
	Long: `List every target triple svbind can compile for, grouped by the
platform family whose bundle it lands in.`,
	RunE: runTriples,
}

func runTriples(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, p := range triple.AllPlatforms() {
		fmt.Fprintln(out, TitleStyle.Render(p.String()))
		for _, t := range p.Members() {
			fmt.Fprintf(out, "  %s\n", CmdStyle.Render(t.String()))
		}
		fmt.Fprintln(out)
	}
	return nil
}
