package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ownck/internal/prof"
)

// setupProfiling starts the profilers named by the persistent profiling
// flags. The returned cleanup is safe to call multiple times.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	root := cmd.Root().PersistentFlags()

	cpuProfile, err := root.GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := root.GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	tracePath, err := root.GetString("runtime-trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}

	session, err := prof.Start(prof.Config{CPU: cpuProfile, Mem: memProfile, Trace: tracePath})
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profiling: %v\n", err)
		}
	}, nil
}
