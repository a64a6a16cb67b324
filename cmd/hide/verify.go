package main

import (
	"context"
	"fmt"

	"github.com/andresmejia3/hide/v2/internal/progress"
	"github.com/andresmejia3/hide/v2/pkg/stego"
	"github.com/spf13/cobra"
)

var (
	verifyFlags struct {
		Image string
	}
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the integrity of a stego image",
	Long:  `Checks if an image contains a well-formed hidden payload without writing it anywhere. With --ecc the Reed-Solomon parity is checked, and with --compress the zstd frame is decoded.`,
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result *stego.VerifyResult
		err := run(cmd.Context(), func(ctx context.Context, t *progress.Tracker) error {
			var err error
			result, err = stego.Verify(ctx, &stego.VerifyArgs{
				ImagePath: &verifyFlags.Image,
				ECC:       &cfg.ECC,
				Compress:  &cfg.Compress,
				Verbose:   &verbose,
				Registry:  registry,
				Tracker:   t,
			})
			return err
		})
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}

		fmt.Println("Image verification successful!")
		fmt.Printf("Format:           %s\n", result.Format)
		fmt.Printf("Stored Size:      %d bytes\n", result.StoredSize)
		fmt.Printf("Payload Size:     %d bytes\n", result.DataSize)
		if cfg.ECC {
			fmt.Printf("ECC Repaired:     %t\n", result.Repaired)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&verifyFlags.Image, "image-path", "i", "", "Path to image (required)")
	verifyCmd.MarkFlagRequired("image-path")
}
