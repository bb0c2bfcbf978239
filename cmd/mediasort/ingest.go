package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mediasort/mediasort/pkg/mediasort/manifest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file or folder>...",
	Short: "Archive files and folders now",
	Long: `Archive the given files and folders. Folders are traversed
recursively; unsupported file types are skipped. Sources are left in
place.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pipeline := newPipeline()

		updates, cancel := pipeline.Tracker.Subscribe()
		defer cancel()
		go func() {
			for s := range updates {
				if s.Active && s.CurrentFile != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "\r[%3.0f%%] %s",
						s.Percent, s.CurrentFile)
				}
			}
		}()

		res, err := pipeline.ProcessItems(ctx, args, manifest.OriginDrop)
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(),
			"Archived %d files (%d skipped, %d failed)\n",
			res.Processed, res.Skipped, res.Failed)
		if res.Failed > 0 {
			return fmt.Errorf("%d files failed", res.Failed)
		}
		return nil
	},
}
