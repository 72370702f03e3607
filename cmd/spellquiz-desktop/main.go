// Command spellquiz-desktop runs the spelling quiz in a desktop window.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/spellquiz/assets"
	"github.com/robalobadob/spellquiz/internal/config"
	"github.com/robalobadob/spellquiz/internal/desktop"
	"github.com/robalobadob/spellquiz/internal/logging"
)

// flags holds command-line overrides of the environment config.
type flags struct {
	ImageDir string
	Delay    time.Duration
	LogLevel string
}

func main() {
	if err := newRootCommand(run).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCommand builds the command; start receives the final config.
func newRootCommand(start func(*config.Config) error) *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "spellquiz-desktop",
		Short: "Picture spelling quiz",
		Long: `spellquiz-desktop shows a random picture and asks for the word it shows.

Every correct answer is worth 10 points. Pictures are read from --images
(or IMAGE_DIR); without either the built-in demo pictures are used.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return start(cfg)
		},
	}
	cmd.Flags().StringVarP(&f.ImageDir, "images", "i", "", "folder with quiz pictures (default IMAGE_DIR or demo set)")
	cmd.Flags().DurationVarP(&f.Delay, "delay", "d", 0, "pause before the next picture (default ADVANCE_DELAY)")
	cmd.Flags().StringVar(&f.LogLevel, "log-level", "", "log level (default LOG_LEVEL)")
	return cmd
}

// loadConfig reads the environment config and applies the flags the user set.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("images") {
		cfg.ImageDir = f.ImageDir
	}
	if cmd.Flags().Changed("delay") {
		cfg.AdvanceDelay = f.Delay
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = f.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	logger, err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	cat, err := assets.LoadCatalog(cfg.ImageDir)
	if err != nil {
		return fmt.Errorf("loading images from %q: %w", cfg.ImageDir, err)
	}
	logger.Info().Str("dir", cfg.ImageDir).Int("images", cat.Len()).Dur("delay", cfg.AdvanceDelay).Msg("starting desktop quiz")

	a, err := desktop.New(cat, cfg.AdvanceDelay)
	if err != nil {
		return err
	}
	a.Run()
	log.Info().Msg("window closed")
	return nil
}
