package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/captionmate/captionmate/internal/config"
	"github.com/captionmate/captionmate/internal/logging"
	"github.com/captionmate/captionmate/internal/ui"
)

var (
	version = "dev" // Set by build flags: -ldflags="-X main.version=1.0.0"
	cfgFile string
	verbose bool
	dryRun  bool
	noColor bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "captionmate",
		Short: "Subtitle matcher and renamer for NAS media libraries",
		Long: `CaptionMate pairs subtitle files with the videos they belong to and
renames them so media servers pick them up automatically.

Matching runs in two modes:
  - regex: deterministic filename similarity (default, offline)
  - ai:    a language model matches an entire directory in one call

Renamed subtitles follow the "<video>.<language>.<ext>" convention,
e.g. Movie.2023.1080p.mkv + random-rip.srt -> Movie.2023.1080p.zh-cn.srt`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				ui.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/captionmate/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "preview changes without renaming files")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newMatchCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newSubtitlesCmd())
	rootCmd.AddCommand(newAutoCmd())
	rootCmd.AddCommand(newNASCmd())
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, honoring --config.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger from config, with --verbose forcing debug.
func newLogger(cfg *config.Config) *logging.Logger {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}

	file := cfg.Logging.File
	if file == "" {
		if p, err := logging.DefaultLogFile(); err == nil {
			file = p
		}
	}

	log, err := logging.New(logging.Config{
		Level:      level,
		File:       file,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		ui.WarningMsg("log file unavailable: %v", err)
		return logging.Nop()
	}
	return log
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("captionmate %s\n", version)
		},
	}
}
