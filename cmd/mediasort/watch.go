package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mediasort/mediasort/pkg/mediasort/logging"
	"github.com/mediasort/mediasort/pkg/mediasort/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the drop folder and archive new files as they land",
	Long: `Watch the configured drop folder. Files already present are
archived first, then new files are picked up as they finish writing.
Runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		wait, err := time.ParseDuration(cfg.StabilityWait)
		if err != nil {
			return err
		}

		w := &watcher.Watcher{
			Dir:           cfg.WatchDir,
			Pipeline:      newPipeline(),
			Log:           logging.Component(logger, "watcher"),
			StabilityWait: wait,
		}

		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Info("watcher stopped")
		return nil
	},
}
