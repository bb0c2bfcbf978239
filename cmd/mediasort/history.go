package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mediasort/mediasort/pkg/mediasort/history"
	"github.com/mediasort/mediasort/pkg/mediasort/manifest"
	"github.com/mediasort/mediasort/pkg/mediasort/output"
)

var (
	historyType    string
	historyRemoved bool
	historyJSON    bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the archive timeline, newest day first",
	RunE: func(cmd *cobra.Command, args []string) error {
		mediaType, ok := history.ParseType(historyType)
		if !ok {
			return fmt.Errorf("unknown media type %q (videos, images, audio)", historyType)
		}

		entries, err := manifest.NewStore(cfg.ManifestPath).Load()
		if err != nil {
			return err
		}

		if historyJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		builder := history.NewBuilder()
		if historyRemoved {
			output.RenderRemoved(cmd.OutOrStdout(), builder.Removed(entries))
			return nil
		}
		output.RenderHistory(cmd.OutOrStdout(), builder.Live(entries, mediaType))
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVarP(&historyType, "type", "t", "", "filter by media type (videos, images, audio)")
	historyCmd.Flags().BoolVar(&historyRemoved, "removed", false, "show removed files instead of live ones")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "dump raw manifest entries as JSON")
}
