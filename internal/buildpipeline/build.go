// Package buildpipeline compiles many files concurrently and writes their
// artifacts.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"sysyc/internal/cache"
	"sysyc/internal/driver"
	"sysyc/internal/session"
	"sysyc/internal/trace"
)

// ErrBuildFailed means at least one file did not compile.
var ErrBuildFailed = errors.New("build failed")

// Request configures a batch build.
type Request struct {
	Files []string
	Mode  driver.Mode
	// BaseDir anchors the layout under OutDir. Empty OutDir writes each
	// artifact next to its source.
	BaseDir        string
	OutDir         string
	Jobs           int
	MaxDiagnostics int
	// Cache is optional; Version is part of every cache key.
	Cache    *cache.Store
	Version  string
	Progress ProgressSink
}

// FileResult is the outcome for one input.
type FileResult struct {
	Path    string
	OutPath string
	Compile *driver.Result
	Cached  bool
	Err     error
	Elapsed time.Duration
}

// Result is indexed like Request.Files.
type Result struct {
	Files   []FileResult
	Timings Timings
}

// Failed counts files with an error.
func (r *Result) Failed() int {
	n := 0
	for i := range r.Files {
		if r.Files[i].Err != nil {
			n++
		}
	}
	return n
}

// Build compiles every file of req. A failing file does not stop the
// others; cancellation of ctx does.
func Build(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, fmt.Errorf("missing build request")
	}
	if req.Mode == 0 {
		req.Mode = driver.ModeRiscv
	}
	sink := req.Progress
	if sink == nil {
		sink = NopSink{}
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "build", trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)

	res := &Result{Files: make([]FileResult, len(req.Files))}
	for _, file := range req.Files {
		sink.OnEvent(Event{File: file, Stage: StageParse, Status: StatusQueued})
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(req.Files))))
	for i, file := range req.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res.Files[i] = buildOne(gctx, req, sink, &res.Timings, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.End("cancelled")
		return res, err
	}

	elapsed := time.Since(start)
	res.Timings.Add(StageBuild, elapsed)
	if failed := res.Failed(); failed > 0 {
		err := fmt.Errorf("%w: %d of %d files", ErrBuildFailed, failed, len(req.Files))
		sink.OnEvent(Event{Stage: StageBuild, Status: StatusError, Err: err, Elapsed: elapsed})
		span.End(err.Error())
		return res, err
	}
	sink.OnEvent(Event{Stage: StageBuild, Status: StatusDone, Elapsed: elapsed})
	span.End(fmt.Sprintf("%d files", len(req.Files)))
	return res, nil
}

func buildOne(ctx context.Context, req *Request, sink ProgressSink, timings *Timings, file string) FileResult {
	fr := FileResult{Path: file, OutPath: OutputPath(req, file)}
	start := time.Now()
	fail := func(stage Stage, err error) FileResult {
		fr.Err, fr.Elapsed = err, time.Since(start)
		sink.OnEvent(Event{File: file, Stage: stage, Status: StatusError, Err: err, Elapsed: fr.Elapsed})
		return fr
	}

	// #nosec G304 -- build inputs are chosen by the user
	src, err := os.ReadFile(file)
	if err != nil {
		return fail(StageParse, err)
	}

	key := cache.Key(src, req.Mode.String(), req.Version)
	if req.Cache != nil {
		if entry, ok, err := req.Cache.Get(key); err == nil && ok {
			if err := writeOutput(fr.OutPath, entry.Output); err != nil {
				return fail(StageWrite, err)
			}
			fr.Cached, fr.Elapsed = true, time.Since(start)
			sink.OnEvent(Event{File: file, Stage: StageWrite, Status: StatusCached, Elapsed: fr.Elapsed})
			return fr
		}
	}

	current := StageParse
	opts := driver.Options{
		Mode:           req.Mode,
		MaxDiagnostics: req.MaxDiagnostics,
		EnableTimings:  true,
		Session:        session.FromContext(ctx),
		PhaseObserver: func(ev driver.PhaseEvent) {
			if ev.Status != driver.PhaseStart {
				return
			}
			current = Stage(ev.Name)
			sink.OnEvent(Event{File: file, Stage: current, Status: StatusWorking})
		},
	}
	cres, err := driver.CompileSource(ctx, file, src, opts)
	fr.Compile = cres
	if cres != nil {
		for _, ph := range cres.Timings.Phases {
			timings.Add(Stage(ph.Name), time.Duration(ph.DurationMS*float64(time.Millisecond)))
		}
	}
	if err != nil {
		return fail(current, err)
	}

	out := cres.Output(req.Mode)
	if err := writeOutput(fr.OutPath, out); err != nil {
		return fail(StageWrite, err)
	}
	if req.Cache != nil {
		// Cache write errors are not fatal.
		_ = req.Cache.Put(key, &cache.Entry{Mode: req.Mode.String(), Source: file, Output: out, Timings: cres.Timings})
	}
	fr.Elapsed = time.Since(start)
	sink.OnEvent(Event{File: file, Stage: StageWrite, Status: StatusDone, Elapsed: fr.Elapsed})
	return fr
}

// OutputPath maps a source file to its artifact path.
func OutputPath(req *Request, file string) string {
	name := strings.TrimSuffix(file, filepath.Ext(file)) + req.Mode.Ext()
	if req.OutDir == "" {
		return name
	}
	if req.BaseDir != "" {
		if rel, err := filepath.Rel(req.BaseDir, name); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.Join(req.OutDir, rel)
		}
	}
	return filepath.Join(req.OutDir, filepath.Base(name))
}

// writeOutput replaces path atomically so watchers never see half a file.
func writeOutput(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.CreateTemp(dir, ".sysyc-*")
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	if err := os.Rename(f.Name(), path); err != nil {
		_ = os.Remove(f.Name())
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}
