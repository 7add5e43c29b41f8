package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"ownck/internal/ir"
	"ownck/internal/trace"
)

// ListDocuments возвращает отсортированный список IR-документов в директории.
// Скрытые каталоги (".git", ".cache") пропускаются.
func ListDocuments(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if ir.IsDocument(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// CheckFiles verifies files in parallel. Results keep the order of files.
func CheckFiles(ctx context.Context, files []string, opts Options) ([]FileResult, error) {
	if len(files) == 0 {
		return nil, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	for _, f := range files {
		emit(opts.Progress, Event{File: f, Stage: StageLoad, Status: StatusQueued})
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			res, err := CheckFile(gctx, path, opts)
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// CheckDir verifies every IR document under dir.
func CheckDir(ctx context.Context, dir string, opts Options) ([]FileResult, error) {
	ctx, span := trace.BeginCtx(ctx, trace.ScopeDriver, "check-dir")
	defer span.End(dir)

	files, err := ListDocuments(dir)
	if err != nil {
		return nil, err
	}
	return CheckFiles(ctx, files, opts)
}

// Summary aggregates a run.
type Summary struct {
	Files      int
	Failed     int
	Violations int
	Cached     int
	LoadErrors int
}

func Summarize(results []FileResult) Summary {
	var s Summary
	for i := range results {
		r := &results[i]
		if r.Bag == nil {
			// cancelled before this slot was filled
			continue
		}
		s.Files++
		s.Violations += len(r.Result.Violations) + r.Result.Dropped
		if r.Program == nil {
			s.LoadErrors++
		}
		if r.Cached {
			s.Cached++
		}
		if r.Failed() {
			s.Failed++
		}
	}
	return s
}
