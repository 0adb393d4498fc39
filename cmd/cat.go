package cmd

import (
	"fmt"
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/spf13/cobra"

	"github.com/agentic-research/rootjson/internal/jtree"
)

var catCmd = &cobra.Command{
	Use:   "cat <file.json> [jsonpath]",
	Short: "Print the raw document, or the nodes a JSONPath selects",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		doc, err := jtree.Parse(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		if len(args) == 1 {
			fmt.Fprintln(cmd.OutOrStdout(), jtree.String(doc))
			return nil
		}

		x, err := jp.ParseString(args[1])
		if err != nil {
			return fmt.Errorf("invalid jsonpath %q: %w", args[1], err)
		}
		for _, match := range x.Get(doc) {
			fmt.Fprintln(cmd.OutOrStdout(), jtree.String(match))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}
