package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	errMessageAndPayload = errors.New("message and payload flags cannot both be provided")
	errNoPayload         = errors.New("one of message or payload is required")
)

var (
	concealFlags struct {
		Image   string
		Msg     string
		Payload string
		Out     string
	}
)

var concealCmd = &cobra.Command{
	Use:   "conceal",
	Short: "Conceal a message or file in an image",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		if concealFlags.Msg != "" && concealFlags.Payload != "" {
			return usageError{errMessageAndPayload}
		}
		if concealFlags.Msg == "" && concealFlags.Payload == "" {
			return usageError{errNoPayload}
		}

		// Ensure the directory for the output path exists
		if err := os.MkdirAll(filepath.Dir(concealFlags.Out), 0755); err != nil {
			return err
		}
		return conceal(cmd.Context(), concealFlags.Image, concealFlags.Payload, concealFlags.Msg, concealFlags.Out)
	},
}

func init() {
	rootCmd.AddCommand(concealCmd)

	concealCmd.Flags().StringVarP(&concealFlags.Image, "image-path", "i", "", "Path to image (required)")
	concealCmd.MarkFlagRequired("image-path")
	concealCmd.Flags().StringVarP(&concealFlags.Msg, "message", "m", "", "Message you want to conceal")
	concealCmd.Flags().StringVarP(&concealFlags.Payload, "payload", "p", "", "Path to file to conceal. Use '-' for stdin.")
	concealCmd.Flags().StringVarP(&concealFlags.Out, "output", "o", "", "Output path for the image (required)")
	concealCmd.MarkFlagRequired("output")
}
