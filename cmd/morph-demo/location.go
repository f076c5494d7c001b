package main

import (
	"fmt"

	"github.com/phanxgames/morph"
	"github.com/spf13/cobra"
)

var locationCmd = &cobra.Command{
	Use:   "location <location>",
	Short: "Parse a location and print its parts",
	Long:  `Decodes a location such as /gallery?m=work/proj-2 into its page and entry.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := morph.ParseLocation(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "page:  %s\n", loc.Page)
		if loc.Entry.IsZero() {
			fmt.Fprintln(out, "entry: none")
			return nil
		}
		fmt.Fprintf(out, "root:  %s\n", loc.Entry.RootID)
		fmt.Fprintf(out, "path:  %s\n", loc.Entry.Path)
		fmt.Fprintf(out, "canonical: %s\n", loc)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(locationCmd)
}
