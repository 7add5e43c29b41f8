package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"ownck/internal/driver"
	"ownck/internal/trace"
)

const watchDebounce = 150 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <directory>",
	Short: "Re-check IR documents whenever they change",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	addCheckFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	st, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	cfg, err := resolveCheckConfig(cmd, dir)
	if err != nil {
		return err
	}
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	cfg.openCache(cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	w, err := newDocWatcher(dir)
	if err != nil {
		return err
	}
	defer w.Close()

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	tool := cmd.Root().Name()

	files, err := collectTargets(dir)
	if err != nil && !errors.Is(err, errNoDocuments) {
		return err
	}
	recheck(ctx, out, errOut, files, cfg, tool)
	if !cfg.quiet {
		fmt.Fprintf(errOut, "watching %s (ctrl+c to stop)\n", dir)
	}

	return w.run(ctx, func(changed []string) {
		recheck(ctx, out, errOut, changed, cfg, tool)
	}, func(err error) {
		fmt.Fprintf(errOut, "watch: %v\n", err)
	})
}

func recheck(ctx context.Context, out, errOut io.Writer, files []string, cfg *checkConfigResolved, tool string) {
	if len(files) == 0 {
		return
	}
	ctx, span := trace.BeginCtx(ctx, trace.ScopeDriver, "recheck")
	defer span.End(strings.Join(files, ","))

	results, err := driver.CheckFiles(ctx, files, cfg.driver)
	if err != nil {
		if ctx.Err() == nil {
			fmt.Fprintf(errOut, "check failed: %v\n", err)
		}
		return
	}
	if err := renderResults(out, results, cfg, tool); err != nil {
		fmt.Fprintf(errOut, "%v\n", err)
	}
	if !cfg.quiet && cfg.format == formatPretty {
		printSummary(errOut, driver.Summarize(results))
	}
}

// docWatcher watches a directory tree and batches document changes.
type docWatcher struct {
	root string
	fsw  *fsnotify.Watcher
}

func newDocWatcher(root string) (*docWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}
	w := &docWatcher{root: root, fsw: fsw}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree registers dir and its non-hidden subdirectories; fsnotify is not recursive.
func (w *docWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *docWatcher) Close() error {
	return w.fsw.Close()
}

// run blocks until ctx is done, calling onChange with the sorted set of
// documents touched during each debounce window. Removed files are skipped.
func (w *docWatcher) run(ctx context.Context, onChange func([]string), onError func(error)) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						onError(err)
					}
					continue
				}
			}
			if !isCheckTarget(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				pending[ev.Name] = struct{}{}
				timer.Reset(watchDebounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			onError(err)
		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for path := range pending {
				if _, err := os.Stat(path); err == nil {
					changed = append(changed, path)
				}
			}
			clear(pending)
			sort.Strings(changed)
			onChange(changed)
		}
	}
}
