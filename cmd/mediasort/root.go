package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mediasort/mediasort/pkg/mediasort/archive"
	"github.com/mediasort/mediasort/pkg/mediasort/config"
	"github.com/mediasort/mediasort/pkg/mediasort/ingest"
	"github.com/mediasort/mediasort/pkg/mediasort/logging"
	"github.com/mediasort/mediasort/pkg/mediasort/manifest"
	"github.com/mediasort/mediasort/pkg/mediasort/metadata"
	"github.com/mediasort/mediasort/pkg/mediasort/progress"
)

var (
	cfgFile  string
	logLevel string

	cfg    *config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mediasort",
	Short: "Sort media files into a date-organized archive",
	Long: `mediasort ingests video, audio and image files into a
date-organized archive, extracts their metadata and keeps a manifest
of everything it has ever archived. Source files are never deleted.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		logger, err = logging.New(logging.Options{
			Level:        level,
			Format:       cfg.Logging.Format,
			File:         cfg.Logging.File,
			ReportCaller: cfg.Logging.ReportCaller,
		})
		return err
	},
}

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		if logger != nil {
			logger.Error("command failed", "err", err)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(versionCmd)
}

// newPipeline builds an ingestion pipeline from the resolved config.
func newPipeline() *ingest.Pipeline {
	return &ingest.Pipeline{
		Store:     manifest.NewStore(cfg.ManifestPath),
		Allocator: &archive.Allocator{Root: cfg.ArchiveRoot},
		Extractor: &metadata.Extractor{FFProbePath: cfg.FFProbePath},
		Tracker:   progress.NewTracker(),
		Log:       logging.Component(logger, "ingest"),
	}
}
