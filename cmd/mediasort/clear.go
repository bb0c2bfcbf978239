package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mediasort/mediasort/pkg/mediasort/manifest"
)

var clearForce bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Erase the manifest, leaving archived files in place",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearForce {
			return fmt.Errorf("refusing to clear the manifest without --force")
		}

		if err := manifest.NewStore(cfg.ManifestPath).Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Manifest cleared")
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "confirm the clear")
}
