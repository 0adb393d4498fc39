package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/rootjson/jfile"
)

var lsCmd = &cobra.Command{
	Use:   "ls <file.json>",
	Short: "List the key tree of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := jfile.Open(args[0], "READ")
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		fmt.Fprintf(cmd.OutOrStdout(), "%s  (uuid %s)\n", f.Name(), f.UUID())
		printDir(cmd, f.Root(), 0)
		return nil
	},
}

func printDir(cmd *cobra.Command, dir *jfile.Directory, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, k := range dir.Keys() {
		label := k.ClassName()
		if k.IsSubdir() {
			label = "dir"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s;%d  %s", indent, k.Name(), k.Cycle(), label)
		if k.Title() != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  %q", k.Title())
		}
		fmt.Fprintln(cmd.OutOrStdout())
		if k.IsSubdir() {
			if sub, ok := dir.Dir(k.Name()); ok {
				printDir(cmd, sub, depth+1)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
