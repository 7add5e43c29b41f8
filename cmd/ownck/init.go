package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Write a default ownck.toml",
	Long: `Write a default ownck.toml into [directory] (the current directory when
omitted). The directory is created if it does not exist. An existing manifest
is never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	path, err := writeDefaultManifest(target)
	if err != nil {
		return err
	}
	if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
	}
	return nil
}

func writeDefaultManifest(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %q: %w", abs, err)
	}
	path := filepath.Join(abs, manifestName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to stat %q: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(defaultManifest), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %q: %w", path, err)
	}
	return path, nil
}
