package main

import (
	"fmt"

	"github.com/andresmejia3/hide/v2/pkg/stego"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [image_path]",
	Short: "Inspect an image and display its carrier and length prefix",
	Long:  `Reads the length prefix of an image without extracting the payload. There is no magic number, so an unused carrier may still report a plausible payload size.`,
	Args:  usageArgs(cobra.ExactArgs(1)), // Requires exactly one argument: the image path
	RunE: func(cmd *cobra.Command, args []string) error {
		imagePath := args[0]

		info, err := stego.GetInfo(cmd.Context(), registry, imagePath)
		if err != nil {
			return fmt.Errorf("failed to get info from %s: %w", imagePath, err)
		}

		fmt.Println("Stego Header Information:")
		fmt.Println("-------------------------")
		fmt.Printf("Format:           %s\n", info.Format)
		fmt.Printf("Dimensions:       %dx%d\n", info.Width, info.Height)
		fmt.Printf("Carrier:          %s\n", info.Carrier)
		fmt.Printf("Capacity:         %d bytes\n", info.Capacity)
		if info.HasPayload {
			fmt.Printf("Payload Size:     %d bytes\n", info.DataSize)
		} else {
			fmt.Printf("Payload Size:     none (length prefix exceeds capacity)\n")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
