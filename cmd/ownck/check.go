package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ownck/internal/borrowck"
	"ownck/internal/diag"
	"ownck/internal/diagfmt"
	"ownck/internal/driver"
	"ownck/internal/ir"
	"ownck/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file|directory>",
	Short: "Verify ownership and borrows in IR documents",
	Long: `Verify move, borrow and scope discipline in a single IR document or in every
*.toml, *.yaml and *.oir document under a directory. Exits with status 1 when
any violation or load error is found.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	addCheckFlags(checkCmd)
	checkCmd.Flags().String("ui", "auto", "progress UI for directories (auto|on|off)")
}

// addCheckFlags registers the flags shared by check and watch.
func addCheckFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "output format (pretty|json|short|sarif)")
	cmd.Flags().String("paths", "auto", "path display (auto|absolute|relative|basename)")
	cmd.Flags().Bool("with-notes", true, "include related locations")
	cmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	cmd.Flags().Bool("no-cache", false, "disable the persistent result cache")
	cmd.Flags().Bool("timings", false, "append per-file timing diagnostics")
	cmd.Flags().Bool("no-partial-moves", false, "treat a move of any field as a move of the whole binding")
	cmd.Flags().Bool("abort-on-unknown", false, "stop a file at the first unknown binding")
	cmd.Flags().Int("max-violations", 0, "cap violations recorded per file (0 = unlimited)")
	cmd.Flags().String("config", "", "path to ownck.toml (default: search upwards from the target)")
}

type outputFormat string

const (
	formatPretty outputFormat = "pretty"
	formatJSON   outputFormat = "json"
	formatShort  outputFormat = "short"
	formatSarif  outputFormat = "sarif"
)

func parseOutputFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case formatPretty, formatJSON, formatShort, formatSarif:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (expected pretty|json|short|sarif)", s)
}

// checkConfigResolved is the merged view of defaults, ownck.toml and flags.
type checkConfigResolved struct {
	driver   driver.Options
	format   outputFormat
	pathMode diagfmt.PathMode
	notes    bool
	cache    bool
	color    bool
	quiet    bool
	manifest *projectManifest
}

// resolveCheckConfig merges configuration. Precedence: explicit flag, then
// ownck.toml, then built-in default.
func resolveCheckConfig(cmd *cobra.Command, target string) (*checkConfigResolved, error) {
	flags := cmd.Flags()

	var (
		manifest *projectManifest
		err      error
	)
	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if configPath != "" {
		if manifest, err = loadManifestFile(configPath); err != nil {
			return nil, err
		}
	} else if manifest, _, err = loadProjectManifest(target); err != nil {
		return nil, err
	}

	res := &checkConfigResolved{
		format:   formatPretty,
		notes:    true,
		cache:    true,
		manifest: manifest,
	}
	checkOpts := borrowck.DefaultOptions()
	manifest.applyCheck(&checkOpts)
	jobs := 0
	if manifest != nil {
		out := manifest.Config.Output
		if manifest.isDefined("output", "format") {
			res.format, _ = parseOutputFormat(out.Format)
		}
		if manifest.isDefined("output", "paths") {
			mode, ok := diagfmt.ParsePathMode(out.Paths)
			if !ok {
				return nil, fmt.Errorf("%s: [output].paths: unknown mode %q", manifest.Path, out.Paths)
			}
			res.pathMode = mode
		}
		if manifest.isDefined("output", "notes") {
			res.notes = out.Notes
		}
		if manifest.isDefined("check", "jobs") {
			jobs = manifest.Config.Check.Jobs
		}
		if manifest.isDefined("check", "cache") {
			res.cache = manifest.Config.Check.Cache
		}
	}

	if flags.Changed("format") {
		s, _ := flags.GetString("format")
		if res.format, err = parseOutputFormat(s); err != nil {
			return nil, err
		}
	}
	if flags.Changed("paths") {
		s, _ := flags.GetString("paths")
		mode, ok := diagfmt.ParsePathMode(s)
		if !ok {
			return nil, fmt.Errorf("unknown --paths value %q", s)
		}
		res.pathMode = mode
	}
	if flags.Changed("with-notes") {
		res.notes, _ = flags.GetBool("with-notes")
	}
	if flags.Changed("jobs") {
		jobs, _ = flags.GetInt("jobs")
	}
	if noCache, _ := flags.GetBool("no-cache"); noCache {
		res.cache = false
	}
	if noPartial, _ := flags.GetBool("no-partial-moves"); noPartial {
		checkOpts.AllowPartialMoves = false
	}
	if abort, _ := flags.GetBool("abort-on-unknown"); abort {
		checkOpts.AbortOnUnknownBinding = true
	}
	if flags.Changed("max-violations") {
		n, _ := flags.GetInt("max-violations")
		if n < 0 {
			return nil, fmt.Errorf("--max-violations must be >= 0")
		}
		checkOpts.MaxViolations = n
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if res.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if res.color, err = useColor(cmd); err != nil {
		return nil, err
	}

	res.driver = driver.Options{
		Check:          checkOpts,
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
		Timings:        timings,
	}
	return res, nil
}

// openCache attaches the disk cache; failures only disable caching.
func (c *checkConfigResolved) openCache(stderr io.Writer) {
	if !c.cache {
		return
	}
	cache, err := driver.OpenDiskCache("ownck")
	if err != nil {
		if !c.quiet {
			fmt.Fprintf(stderr, "warning: cache disabled: %v\n", err)
		}
		return
	}
	c.driver.Cache = cache
}

func runCheck(cmd *cobra.Command, args []string) error {
	target := args[0]
	cfg, err := resolveCheckConfig(cmd, target)
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

	files, err := collectTargets(target)
	if err != nil {
		return err
	}

	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var results []driver.FileResult
	if len(files) > 1 && !cfg.quiet && cfg.format == formatPretty && shouldUseTUI(mode) {
		results, err = runCheckWithUI(ctx, "ownck check", files, cfg.driver)
	} else {
		results, err = driver.CheckFiles(ctx, files, cfg.driver)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := renderResults(out, results, cfg, cmd.Root().Name()); err != nil {
		return err
	}
	sum := driver.Summarize(results)
	if !cfg.quiet && cfg.format == formatPretty {
		printSummary(cmd.ErrOrStderr(), sum)
	}
	if sum.Failed > 0 {
		return errCheckFailed
	}
	return nil
}

var errNoDocuments = errors.New("no IR documents found")

// collectTargets expands a file or directory argument into document paths.
func collectTargets(target string) ([]string, error) {
	st, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}
	if !st.IsDir() {
		if !ir.IsDocument(target) {
			return nil, fmt.Errorf("%s: not an IR document (expected .toml, .yaml, .yml or .oir)", target)
		}
		return []string{target}, nil
	}
	listed, err := driver.ListDocuments(target)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", target, err)
	}
	files := listed[:0]
	for _, f := range listed {
		if isCheckTarget(f) {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", target, errNoDocuments)
	}
	return files, nil
}

// isCheckTarget excludes the manifest, which shares the .toml extension.
func isCheckTarget(path string) bool {
	return ir.IsDocument(path) && filepath.Base(path) != manifestName
}

func renderResults(w io.Writer, results []driver.FileResult, cfg *checkConfigResolved, tool string) error {
	baseDir, _ := os.Getwd()
	switch cfg.format {
	case formatPretty:
		opts := diagfmt.PrettyOpts{
			Color:     cfg.color,
			PathMode:  cfg.pathMode,
			BaseDir:   baseDir,
			ShowNotes: cfg.notes,
		}
		for i := range results {
			if results[i].Bag.Len() > 0 || results[i].Bag.Dropped() > 0 {
				diagfmt.Pretty(w, results[i].Bag, opts)
			}
		}
	case formatShort:
		for i := range results {
			if err := diagfmt.Short(w, results[i].Bag, cfg.notes); err != nil {
				return fmt.Errorf("failed to format diagnostics: %w", err)
			}
		}
	case formatJSON:
		opts := diagfmt.JSONOpts{
			PathMode:     cfg.pathMode,
			BaseDir:      baseDir,
			IncludeNotes: cfg.notes,
		}
		if err := diagfmt.JSON(w, mergeBags(results), opts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	case formatSarif:
		meta := diagfmt.SarifRunMeta{
			ToolName:       tool,
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		}
		if err := diagfmt.Sarif(w, mergeBags(results), meta); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", cfg.format)
	}
	return nil
}

func mergeBags(results []driver.FileResult) *diag.Bag {
	merged := diag.NewBag(0)
	for i := range results {
		merged.Merge(results[i].Bag)
	}
	return merged
}

func printSummary(w io.Writer, sum driver.Summary) {
	fmt.Fprintf(w, "checked %d file(s): %d violation(s)", sum.Files, sum.Violations)
	if sum.Failed > 0 {
		fmt.Fprintf(w, " in %d file(s)", sum.Failed)
	}
	if sum.LoadErrors > 0 {
		fmt.Fprintf(w, ", %d load error(s)", sum.LoadErrors)
	}
	if sum.Cached > 0 {
		fmt.Fprintf(w, ", %d cached", sum.Cached)
	}
	fmt.Fprintln(w)
}
