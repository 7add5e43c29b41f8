package driver

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"ownck/internal/borrowck"
	"ownck/internal/diag"
	"ownck/internal/ir"
	"ownck/internal/observ"
	"ownck/internal/source"
	"ownck/internal/trace"
)

// FileResult is the outcome of checking one IR document.
type FileResult struct {
	Path    string
	Program *ir.Program // nil when the document failed to load
	Result  borrowck.Result
	Bag     *diag.Bag
	Cached  bool
	Elapsed time.Duration
}

// Failed reports whether the file has any error: a load failure or a violation.
func (r *FileResult) Failed() bool {
	return r.Program == nil || !r.Result.OK() || r.Bag.HasErrors()
}

// CheckFile loads and verifies one document. Load failures are reported in
// the bag; the error is non-nil only when ctx is cancelled.
func CheckFile(ctx context.Context, path string, opts Options) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, span := trace.BeginCtx(ctx, trace.ScopeFile, "file:"+path)
	start := time.Now()
	timer := observ.NewTimer()
	loadPhase := timer.Begin(string(StageLoad))
	res := &FileResult{Path: path, Bag: diag.NewBag(opts.MaxDiagnostics)}
	reporter := diag.BagReporter{Bag: res.Bag}

	emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	data, err := os.ReadFile(path)
	if err != nil {
		diag.ReportError(reporter, diag.IOLoadFileError, source.Loc{File: path},
			"failed to load file: "+err.Error()).Emit()
		return finishLoadError(res, span, opts, start, err), nil
	}
	prog, err := ir.Load(path, data, ir.FormatAuto)
	if err != nil {
		diag.ReportError(reporter, diag.IRInvalidDocument, source.Loc{File: path}, err.Error()).Emit()
		return finishLoadError(res, span, opts, start, err), nil
	}
	timer.End(loadPhase, "")

	verifyPhase := timer.Begin(string(StageVerify))
	checkProgram(ctx, res, prog, opts)
	note := ""
	if res.Cached {
		note = "cached"
	}
	timer.End(verifyPhase, note)

	res.Elapsed = time.Since(start)
	if opts.Timings {
		appendTimingDiagnostic(res.Bag, timingPayload{
			Kind:   "file",
			Path:   path,
			Report: timer.Report(),
			Cached: res.Cached,
		})
	}
	span.WithExtra("violations", strconv.Itoa(len(res.Result.Violations))).
		WithExtra("cached", strconv.FormatBool(res.Cached)).
		End("")

	status := StatusDone
	switch {
	case res.Cached && res.Result.OK():
		status = StatusCached
	case !res.Result.OK():
		status = StatusFailed
	}
	emit(opts.Progress, Event{File: path, Stage: StageVerify, Status: status, Elapsed: res.Elapsed, Violations: len(res.Result.Violations)})
	return res, nil
}

// CheckProgram verifies an in-memory program, bypassing the loader.
func CheckProgram(ctx context.Context, prog *ir.Program, opts Options) *FileResult {
	start := time.Now()
	res := &FileResult{Path: prog.File, Bag: diag.NewBag(opts.MaxDiagnostics)}
	checkProgram(ctx, res, prog, opts)
	res.Elapsed = time.Since(start)
	return res
}

func checkProgram(ctx context.Context, res *FileResult, prog *ir.Program, opts Options) {
	res.Program = prog
	emit(opts.Progress, Event{File: res.Path, Stage: StageVerify, Status: StatusWorking})

	tracer := trace.FromContext(ctx)
	// the event log is not cached, so debug tracing always re-verifies
	withEvents := tracer.Level().ShouldEmit(trace.ScopeStmt)

	var key Digest
	if opts.Cache != nil && !withEvents {
		var err error
		if key, err = CacheKey(prog, opts.Check); err == nil {
			var payload DiskPayload
			if hit, _ := opts.Cache.Get(key, &payload); hit {
				res.Result = payloadToResult(&payload)
				res.Cached = true
			}
		}
	}
	if !res.Cached {
		res.Result = borrowck.Verify(prog, opts.Check, withEvents)
		if !key.IsZero() {
			if err := opts.Cache.Put(key, resultToPayload(res.Path, &res.Result)); err != nil {
				diag.ReportWarning(diag.BagReporter{Bag: res.Bag}, diag.ObsInfo, source.NoLoc,
					"failed to write cache entry: "+err.Error()).Emit()
			}
		}
	}
	if withEvents {
		forwardEvents(ctx, res.Result.Events)
	}

	for _, v := range res.Result.Violations {
		res.Bag.Add(v.Diagnostic())
	}
	if res.Result.Dropped > 0 {
		res.Bag.Add(diag.New(diag.SevInfo, diag.OwnInfo, source.Loc{File: res.Path},
			fmt.Sprintf("%d further violation(s) not recorded (max_violations)", res.Result.Dropped)))
	}
	if res.Result.Aborted {
		res.Bag.Add(diag.New(diag.SevInfo, diag.IRInfo, source.Loc{File: res.Path},
			"verification stopped at the first unknown binding"))
	}
}

func finishLoadError(res *FileResult, span *trace.Span, opts Options, start time.Time, err error) *FileResult {
	res.Elapsed = time.Since(start)
	span.End(err.Error())
	emit(opts.Progress, Event{File: res.Path, Stage: StageLoad, Status: StatusError, Err: err, Elapsed: res.Elapsed})
	return res
}

// forwardEvents replays the verifier's event log as debug-level points.
func forwardEvents(ctx context.Context, events []borrowck.Event) {
	tracer := trace.FromContext(ctx)
	if !tracer.Level().ShouldEmit(trace.ScopeStmt) {
		return
	}
	parent := trace.CurrentSpan(ctx)
	for i := range events {
		ev := &events[i]
		extra := map[string]string{"scope": strconv.FormatUint(uint64(ev.Scope), 10)}
		if ev.Name != "" {
			extra["binding"] = ev.Name
		}
		if ev.Borrow != borrowck.NoBorrowID {
			extra["borrow"] = strconv.FormatUint(uint64(ev.Borrow), 10)
		}
		if ev.Kind == borrowck.EvBorrowStart {
			extra["kind"] = ev.BorrowKind.String()
		}
		if ev.Blocked != borrowck.NoViolation {
			extra["blocked"] = ev.Blocked.String()
		}
		tracer.Emit(&trace.Event{
			Time:     time.Now(),
			Kind:     trace.KindPoint,
			Scope:    trace.ScopeStmt,
			ParentID: parent,
			Name:     ev.Kind.String(),
			Detail:   ev.At.String(),
			Extra:    extra,
		})
	}
}
