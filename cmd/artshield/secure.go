package main

import (
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yyyoichi/artshield"
)

type secureFlags struct {
	Input       string
	Output      string
	Strength    float64
	DWTStrength float64
	Quality     int
	Format      string
}

func newSecureCmd(root *rootFlags) *cobra.Command {
	var flags secureFlags
	cmd := &cobra.Command{
		Use:   "secure",
		Short: "Apply the protection to an image",
		Long: `Applies a seeded DCT perturbation to every color channel, and optionally
a Haar wavelet perturbation, then writes the result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if !cmd.Flags().Changed("strength") {
				flags.Strength = cfg.Strength
			}
			if !cmd.Flags().Changed("dwt-strength") {
				flags.DWTStrength = cfg.DWTStrength
			}
			if !cmd.Flags().Changed("quality") {
				flags.Quality = cfg.Quality
			}
			return runSecure(cmd, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.Input, "input", "i", "", "Path of the image to protect (required)")
	cmd.MarkFlagRequired("input")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Path of the protected image (required)")
	cmd.MarkFlagRequired("output")
	cmd.Flags().Float64VarP(&flags.Strength, "strength", "s", 5.0, "DCT protection strength. Higher is stronger and more visible")
	cmd.Flags().Float64Var(&flags.DWTStrength, "dwt-strength", 0, "Haar wavelet protection strength, 0 disables it")
	cmd.Flags().IntVarP(&flags.Quality, "quality", "q", 0, "JPEG quality from 1 to 100, encoder default when unset")
	cmd.Flags().StringVar(&flags.Format, "format", "", "Output format, inferred from the output extension when unset")
	return cmd
}

func runSecure(cmd *cobra.Command, flags secureFlags) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)
	start := time.Now()
	base := filepath.Base(flags.Input)

	s, err := artshield.Open(ctx, flags.Input)
	if err != nil {
		return err
	}
	if _, err := s.Secure(ctx,
		artshield.WithDCTStrength(flags.Strength),
		artshield.WithDWTStrength(flags.DWTStrength),
	); err != nil {
		return err
	}

	var opts []artshield.ExportOption
	if flags.Format != "" {
		opts = append(opts, artshield.WithFormat(flags.Format))
	}
	if flags.Quality != 0 {
		opts = append(opts, artshield.WithQuality(flags.Quality))
	}
	if err := s.Export(ctx, flags.Output, opts...); err != nil {
		return err
	}

	logger.Info().
		Int64("duration(ms)", time.Since(start).Milliseconds()).
		Float64("strength", flags.Strength).
		Float64("dwtStrength", flags.DWTStrength).
		Str("dst", flags.Output).
		Msg(base)
	return nil
}
