package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"sysyc/internal/buildpipeline"
	"sysyc/internal/driver"
	"sysyc/internal/project"
	"sysyc/internal/trace"
	"sysyc/internal/version"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [flags] file|dir",
		Short: "Recompile sources whenever they change",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
	cmd.Flags().String("mode", "riscv", "output kind (koopa|riscv)")
	cmd.Flags().String("out-dir", "", "output directory (default: next to each source)")
	cmd.Flags().Duration("debounce", 100*time.Millisecond, "wait this long for writes to settle")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	modeValue, err := cmd.Flags().GetString("mode")
	if err != nil {
		return fmt.Errorf("failed to get mode flag: %w", err)
	}
	mode, err := driver.ParseMode(modeValue)
	if err != nil {
		return err
	}
	outDir, err := cmd.Flags().GetString("out-dir")
	if err != nil {
		return fmt.Errorf("failed to get out-dir flag: %w", err)
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
	}
	maxDiagnostics, _, quiet, err := commonFlags(cmd)
	if err != nil {
		return err
	}

	target := filepath.Clean(args[0])
	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	baseDir := target
	if !info.IsDir() {
		baseDir = filepath.Dir(target)
	}
	if err := addWatchDirs(watcher, target, info.IsDir()); err != nil {
		return err
	}
	w := &watchSession{
		cmd:    cmd,
		target: target,
		dir:    info.IsDir(),
		quiet:  quiet,
		req: buildpipeline.Request{
			Mode:           mode,
			BaseDir:        baseDir,
			OutDir:         outDir,
			MaxDiagnostics: maxDiagnostics,
			Version:        version.Version,
		},
	}

	initial := []string{target}
	if w.dir {
		if initial, err = project.ListSources(target); err != nil {
			return err
		}
	}
	w.rebuild(cmd.Context(), initial)
	return w.loop(cmd.Context(), watcher, debounce)
}

type watchSession struct {
	cmd    *cobra.Command
	target string
	dir    bool
	quiet  bool
	req    buildpipeline.Request
}

func (w *watchSession) loop(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration) error {
	tracer := trace.FromContext(ctx)
	pending := make(map[string]struct{})
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && w.dir {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addWatchDirs(watcher, ev.Name, true)
					continue
				}
			}
			if !w.relevant(ev) {
				continue
			}
			trace.Point(tracer, trace.ScopeDriver, "watch event", ev.String(), 0)
			pending[ev.Name] = struct{}{}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(w.cmd.ErrOrStderr(), "watch: %v\n", err)
		case <-timer.C:
			files := make([]string, 0, len(pending))
			for file := range pending {
				if _, err := os.Stat(file); err == nil {
					files = append(files, file)
				}
			}
			clear(pending)
			sort.Strings(files)
			w.rebuild(ctx, files)
		}
	}
}

// relevant filters events down to writes of watched sources.
func (w *watchSession) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	if !w.dir {
		return filepath.Clean(ev.Name) == w.target
	}
	return project.IsSource(ev.Name)
}

func (w *watchSession) rebuild(ctx context.Context, files []string) {
	if len(files) == 0 {
		return
	}
	req := w.req
	req.Files = files
	res, err := buildpipeline.Build(ctx, &req)
	if res != nil {
		reportBuild(w.cmd, res, true)
	}
	out := w.cmd.OutOrStdout()
	switch {
	case err == nil && !w.quiet:
		for _, fr := range res.Files {
			fmt.Fprintf(out, "%s -> %s (%.1f ms)\n", fr.Path, fr.OutPath, toMillis(fr.Elapsed))
		}
	case errors.Is(err, buildpipeline.ErrBuildFailed):
		fmt.Fprintf(w.cmd.ErrOrStderr(), "watch: %v\n", err)
	case err != nil && ctx.Err() == nil:
		fmt.Fprintf(w.cmd.ErrOrStderr(), "watch: %v\n", err)
	}
}

// addWatchDirs registers root, or every directory below it when recursive.
func addWatchDirs(watcher *fsnotify.Watcher, root string, recursive bool) error {
	if !recursive {
		return watcher.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
