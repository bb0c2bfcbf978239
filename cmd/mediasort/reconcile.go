package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mediasort/mediasort/pkg/mediasort/manifest"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Mark manifest entries whose archived file is gone as removed",
	Long: `Walk the archive tree and soft-delete manifest entries whose
file no longer exists. Entries are never dropped from the manifest and
a removed entry stays removed even if a file reappears at its path.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := manifest.NewStore(cfg.ManifestPath)

		result, err := store.Reconcile(cfg.ArchiveRoot, time.Now().UTC())
		if err != nil {
			return err
		}

		if result.NewlyRemoved == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Manifest is up to date (%d entries)\n", result.Total)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Marked %d of %d entries as removed\n",
			result.NewlyRemoved, result.Total)
		return nil
	},
}
