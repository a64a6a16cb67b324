package main

import (
	"context"
	"fmt"

	"github.com/andresmejia3/hide/v2/internal/progress"
	"github.com/andresmejia3/hide/v2/pkg/stego"
	"github.com/spf13/cobra"
)

var (
	analyzeFlags struct {
		Original string
		Stego    string
		Heatmap  string
	}
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the difference between an original and a stego image",
	Long:  `Calculates PSNR (Peak Signal-to-Noise Ratio) and generates a heatmap image highlighting modified pixels.`,
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result *stego.AnalysisResult
		err := run(cmd.Context(), func(ctx context.Context, t *progress.Tracker) error {
			var err error
			result, err = stego.Analyze(ctx, &stego.AnalyzeArgs{
				OriginalPath: &analyzeFlags.Original,
				StegoPath:    &analyzeFlags.Stego,
				HeatmapPath:  &analyzeFlags.Heatmap,
				Registry:     registry,
				Tracker:      t,
			})
			return err
		})
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		fmt.Printf("Analysis Complete:\n")
		fmt.Printf("------------------\n")
		fmt.Printf("MSE (Mean Squared Error):       %.4f\n", result.MSE)
		fmt.Printf("PSNR (Peak Signal-to-Noise):    %.2f dB\n", result.PSNR)
		fmt.Printf("Modified Pixels:                %d of %d\n", result.Modified, result.Pixels)
		if analyzeFlags.Heatmap != "" {
			fmt.Printf("Heatmap saved to:               %s\n", analyzeFlags.Heatmap)
		}
		fmt.Printf("\nInterpretation:\n")
		fmt.Printf(" > 30dB: Good quality (hard to detect visually)\n")
		fmt.Printf(" > 40dB: Excellent quality\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeFlags.Original, "original", "o", "", "Path to original image (required)")
	analyzeCmd.MarkFlagRequired("original")
	analyzeCmd.Flags().StringVarP(&analyzeFlags.Stego, "stego", "s", "", "Path to stego image (required)")
	analyzeCmd.MarkFlagRequired("stego")
	analyzeCmd.Flags().StringVarP(&analyzeFlags.Heatmap, "heatmap", "d", "heatmap.png", "Output path for the difference heatmap image")
}
