package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "artshield.yaml"

type rootFlags struct {
	Config  string
	Verbose bool
	cfg     AppConfig
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	cmd := &cobra.Command{
		Use:   "artshield",
		Short: "Protect artwork from automated reuse",
		Long: `artshield perturbs the frequency content of an image with reproducible
seeded noise. The result looks the same to a viewer but differs at the pixel
level from the original.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.Config, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			flags.cfg = cfg
			setupLogger(cfg, flags.Verbose)
			cmd.SetContext(log.Logger.WithContext(cmd.Context()))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&flags.Config, "config", defaultConfigFile, "Config file")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Debug logging level")

	cmd.AddCommand(newSecureCmd(&flags), newVerifyCmd())
	return cmd
}

func setupLogger(cfg AppConfig, verbose bool) {
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	if cfg.Info {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if cfg.Debug || verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if cfg.Human {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
