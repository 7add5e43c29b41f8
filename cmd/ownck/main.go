package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ownck/internal/version"
)

// errCheckFailed signals violations or load errors; the report is already printed.
var errCheckFailed = errors.New("check failed")

var rootCmd = &cobra.Command{
	Use:           "ownck",
	Short:         "Ownership and borrow verifier for IR documents",
	Long:          `ownck checks move, borrow and scope discipline over IR documents (TOML, YAML or .oir)`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	registerPersistentFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// registerPersistentFlags adds the global flags to root.
func registerPersistentFlags(root *cobra.Command) {
	// Глобальные флаги
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	root.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics per file (0 = unlimited)")
	root.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	root.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	root.PersistentFlags().String("trace-format", "auto", "trace output format (auto|text|ndjson)")
	root.PersistentFlags().String("trace-out", "-", "trace output file (- for stderr)")
	root.PersistentFlags().Int("trace-ring-size", 4096, "events kept in ring mode")
	root.PersistentFlags().Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 = off)")
	root.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	root.PersistentFlags().String("mem-profile", "", "write a heap profile to this file on exit")
	root.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to this file")
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return isTerminal(os.Stdout), nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
}
