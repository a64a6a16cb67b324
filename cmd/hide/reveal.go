package main

import (
	"github.com/andresmejia3/hide/v2/pkg/stego"
	"github.com/spf13/cobra"
)

var (
	revealFlags struct {
		Image string
		Out   string
	}
)

var revealCmd = &cobra.Command{
	Use:   "reveal",
	Short: "Reveal a message hidden in an image",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reveal(cmd.Context(), revealFlags.Image, revealFlags.Out)
	},
}

func init() {
	rootCmd.AddCommand(revealCmd)

	revealCmd.Flags().StringVarP(&revealFlags.Image, "image-path", "i", "", "Path to image (required)")
	revealCmd.MarkFlagRequired("image-path")
	revealCmd.Flags().StringVarP(&revealFlags.Out, "output", "o", stego.Stdio, "Output path for revealed message ('-' for stdout)")
}
