package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ownck/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove cached check results",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, _ []string) error {
	cache, err := driver.OpenDiskCache("ownck")
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", cache.Dir(), err)
	}
	if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", cache.Dir())
	}
	return nil
}
