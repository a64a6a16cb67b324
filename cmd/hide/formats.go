package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported image formats in probe order",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		wtr := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(wtr, "Format\tExtensions")
		fmt.Fprintln(wtr, "------\t----------")
		for _, b := range registry.Backends() {
			fmt.Fprintf(wtr, "%s\t%s\n", b.Name(), strings.Join(b.Extensions(), " "))
		}
		return wtr.Flush()
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
