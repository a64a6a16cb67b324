package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresmejia3/hide/v2/internal/config"
	"github.com/andresmejia3/hide/v2/internal/progress"
	"github.com/andresmejia3/hide/v2/pkg/format"
	"github.com/andresmejia3/hide/v2/pkg/jpeg"
	"github.com/andresmejia3/hide/v2/pkg/stego"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Global flags
var (
	verbose    bool
	quiet      bool
	configPath string
	fill       bool
	ecc        bool
	compress   bool
	jpegMode   string
	jpegScale  int
	subsample  string
)

// Resolved by PersistentPreRunE from the config file and the flags above.
var (
	cfg      *config.Config
	registry *format.Registry
)

var rootCmd = &cobra.Command{
	Use:   "hide [-f] <source-image> <payload-file> <output-image>\n  hide <image> <recovered-file>\n  hide <image>",
	Short: "Hide data in images",
	Long: `Hides an arbitrary payload in the low-order bits of an image and recovers it.

With three arguments the payload file is hidden in the source image and the
result written to the output image. With two the hidden payload is written to
the recovered file. With one the image's capacity is printed. A payload or
recovered file of "-" means standard input or output.`,
	Args:          usageArgs(cobra.RangeArgs(1, 3)),
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch len(args) {
		case 3:
			return conceal(cmd.Context(), args[0], args[1], "", args[2])
		case 2:
			return reveal(cmd.Context(), args[0], args[1])
		default:
			return printCapacity(args[0])
		}
	},
}

func setup(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		if errors.Is(err, config.ErrInvalid) {
			return usageError{err}
		}
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("fill") {
		cfg.Fill = fill
	}
	if flags.Changed("ecc") {
		cfg.ECC = ecc
	}
	if flags.Changed("compress") {
		cfg.Compress = compress
	}
	if flags.Changed("jpeg-mode") {
		cfg.JPEG.Mode = jpegMode
	}
	if flags.Changed("jpeg-scale") {
		cfg.JPEG.Scale = jpegScale
	}
	if flags.Changed("subsampling") {
		cfg.JPEG.Subsampling = subsample
	}
	if quiet {
		cfg.Progress = false
	}
	if err := cfg.Validate(); err != nil {
		return usageError{err}
	}

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(cfg.Level())
	}

	mode, err := format.ParseJPEGMode(cfg.JPEG.Mode)
	if err != nil {
		return usageError{err}
	}
	sub, err := jpeg.ParseSubsampling(cfg.JPEG.Subsampling)
	if err != nil {
		return usageError{err}
	}
	registry = format.NewRegistry(format.Options{
		JPEGMode: mode,
		JPEG:     jpeg.Options{Scale: cfg.JPEG.Scale, Subsampling: sub},
	})
	log.Debug().Str("config", configPath).Bool("fill", cfg.Fill).Bool("ecc", cfg.ECC).Bool("compress", cfg.Compress).Str("jpeg_mode", cfg.JPEG.Mode).Msg("Resolved configuration")
	return nil
}

// run executes work behind the progress bar unless it is disabled or stderr
// is not a terminal.
func run(ctx context.Context, work func(ctx context.Context, t *progress.Tracker) error) error {
	return progress.Run(ctx, progress.Options{
		Enabled: cfg.Progress && isatty.IsTerminal(os.Stderr.Fd()),
		Writer:  os.Stderr,
	}, work)
}

func conceal(ctx context.Context, imagePath, payloadPath, message, output string) error {
	err := run(ctx, func(ctx context.Context, t *progress.Tracker) error {
		return stego.Conceal(ctx, &stego.ConcealArgs{
			ImagePath: &imagePath,
			File:      &payloadPath,
			Message:   &message,
			Output:    &output,
			Fill:      &cfg.Fill,
			ECC:       &cfg.ECC,
			Compress:  &cfg.Compress,
			Verbose:   &verbose,
			Registry:  registry,
			Tracker:   t,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to conceal message: %w", err)
	}
	log.Info().Str("output", output).Msg("Done")
	return nil
}

func reveal(ctx context.Context, imagePath, output string) error {
	err := run(ctx, func(ctx context.Context, t *progress.Tracker) error {
		_, err := stego.Reveal(ctx, &stego.RevealArgs{
			ImagePath: &imagePath,
			Output:    &output,
			ECC:       &cfg.ECC,
			Compress:  &cfg.Compress,
			Verbose:   &verbose,
			Writer:    os.Stdout,
			Registry:  registry,
			Tracker:   t,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to reveal message: %w", err)
	}
	if output != stego.Stdio {
		log.Info().Str("output", output).Msg("Done")
	}
	return nil
}

func Execute() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd, err := rootCmd.ExecuteContextC(ctx)
	stop()
	if err != nil {
		var usage usageError
		if errors.As(err, &usage) {
			cmd.Println(cmd.UsageString())
		}
		log.Error().Err(err).Msg("hide failed")
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Do not draw a progress bar")
	pf.StringVar(&configPath, "config", "", "Path to config file (default "+config.DefaultPath()+")")
	pf.BoolVarP(&fill, "fill", "f", false, "Fill unused pixel capacity with random bytes")
	pf.BoolVar(&ecc, "ecc", false, "Wrap the payload in a Reed-Solomon envelope")
	pf.BoolVarP(&compress, "compress", "z", false, "Compress the payload with zstd before embedding")
	pf.StringVar(&jpegMode, "jpeg-mode", config.ModeTranscode, "JPEG carrier handling: transcode or reencode")
	pf.IntVar(&jpegScale, "jpeg-scale", jpeg.DefaultScale, "Quantization scale when re-encoding JPEG carriers")
	pf.StringVar(&subsample, "subsampling", "4:4:4", "Chroma subsampling when re-encoding JPEG carriers: 4:4:4 or 4:2:0")
}
