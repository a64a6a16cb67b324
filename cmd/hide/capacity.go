package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/hide/v2/pkg/stego"
	"github.com/spf13/cobra"
)

var capacityCmd = &cobra.Command{
	Use:   "capacity [image-path]",
	Short: "Calculate the storage capacity of an image",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		imagePath := args[0]
		info, err := stego.GetInfo(cmd.Context(), registry, imagePath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", imagePath, err)
		}

		wtr := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(wtr, "Format\tCarrier\tCapacity (Bytes)\tCapacity (Bits)\tWith ECC (Bytes)")
		fmt.Fprintln(wtr, "------\t-------\t----------------\t---------------\t----------------")
		fmt.Fprintf(wtr, "%s\t%s\t%d\t%d\t%d\n", info.Format, info.Carrier, info.Capacity, info.Capacity*8, stego.ECCCapacity(info.Capacity))
		return wtr.Flush()
	},
}

// printCapacity is the one-argument form of the root command.
func printCapacity(imagePath string) error {
	capacity, err := stego.Capacity(registry, imagePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", imagePath, err)
	}
	if cfg.ECC {
		capacity = stego.ECCCapacity(capacity)
	}
	fmt.Println(capacity)
	return nil
}

func init() {
	rootCmd.AddCommand(capacityCmd)
}
