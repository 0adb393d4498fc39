package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/rootjson/jfile"
)

var infoCmd = &cobra.Command{
	Use:   "info <file.json>",
	Short: "Show the file header and schema catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := jfile.Open(args[0], "READ")
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "name:      %s\n", f.Name())
		if f.Title() != "" {
			fmt.Fprintf(out, "title:     %s\n", f.Title())
		}
		fmt.Fprintf(out, "uuid:      %s\n", f.UUID())
		fmt.Fprintf(out, "version:   %d (runtime %d)\n", f.Version(), f.VersionCode())
		fmt.Fprintf(out, "created:   %s\n", f.Created())
		fmt.Fprintf(out, "modified:  %s\n", f.Modified())
		fmt.Fprintf(out, "keys:      %d\n", len(f.Root().Keys()))

		infos := f.StreamerInfoList()
		if len(infos) == 0 {
			return nil
		}
		fmt.Fprintln(out, "schema catalog:")
		for _, si := range infos {
			fmt.Fprintf(out, "  %s;%d  checksum=%d  members=%d\n",
				si.Name, si.ClassVersion, si.Checksum, len(si.Elements))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
