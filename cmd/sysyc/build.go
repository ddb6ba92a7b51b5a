package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sysyc/internal/buildpipeline"
	"sysyc/internal/cache"
	"sysyc/internal/driver"
	"sysyc/internal/project"
	"sysyc/internal/version"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [flags] [dir|sysyc.toml|file.sy]",
		Short: "Compile every source of a project",
		Long: `Build compiles all sources listed by the nearest sysyc.toml. Without a
manifest it compiles the given file or every *.sy/*.c file under the given
directory. Artifacts are cached by content hash.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBuild,
	}
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	cmd.Flags().String("mode", "", "override the output kind (koopa|riscv)")
	cmd.Flags().String("out-dir", "", "override the output directory")
	cmd.Flags().IntP("jobs", "j", 0, "parallel compilations (0 = manifest or GOMAXPROCS)")
	cmd.Flags().Bool("no-cache", false, "disable the artifact cache")
	cmd.Flags().String("cache-dir", "", "artifact cache directory")
	return cmd
}

// buildPlan is what runBuild compiles after resolving manifest and flags.
type buildPlan struct {
	title    string
	baseDir  string
	files    []string
	mode     driver.Mode
	outDir   string
	jobs     int
	useCache bool
}

func runBuild(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	plan, err := planBuild(target)
	if err != nil {
		return err
	}
	if err := applyBuildFlags(cmd, plan); err != nil {
		return err
	}
	if len(plan.files) == 0 {
		return fmt.Errorf("no sources found under %s", target)
	}

	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	maxDiagnostics, timings, quiet, err := commonFlags(cmd)
	if err != nil {
		return err
	}

	req := &buildpipeline.Request{
		Files:          plan.files,
		Mode:           plan.mode,
		BaseDir:        plan.baseDir,
		OutDir:         plan.outDir,
		Jobs:           plan.jobs,
		MaxDiagnostics: maxDiagnostics,
		Version:        version.Version,
	}
	if plan.useCache {
		store, err := openCache(cmd)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: cache disabled: %v\n", err)
		} else {
			req.Cache = store
		}
	}

	var res *buildpipeline.Result
	if shouldUseTUI(uiModeValue, cmd.OutOrStdout()) {
		res, err = runBuildWithUI(cmd.Context(), cmd.OutOrStdout(), plan.title, plan.files, req)
	} else {
		res, err = buildpipeline.Build(cmd.Context(), req)
	}
	if res != nil {
		reportBuild(cmd, res, quiet)
		if timings {
			printStageTimings(cmd.ErrOrStderr(), &res.Timings)
		}
	}
	return err
}

// planBuild resolves target into a file list, preferring a manifest.
func planBuild(target string) (*buildPlan, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}

	var manifest *project.Manifest
	switch {
	case !info.IsDir() && filepath.Base(target) == project.ManifestName:
		manifest, err = project.Load(target)
	case info.IsDir():
		manifest, err = project.LoadFromDir(target)
		if errors.Is(err, project.ErrNoManifest) {
			manifest, err = nil, nil
		}
	}
	if err != nil {
		return nil, err
	}

	if manifest != nil {
		if err := manifest.CheckToolchain(version.Version); err != nil {
			return nil, err
		}
		files, err := manifest.Sources()
		if err != nil {
			return nil, err
		}
		mode, err := driver.ParseMode(manifest.Config.Build.Mode)
		if err != nil {
			return nil, err
		}
		return &buildPlan{
			title:    "building " + manifest.Config.Package.Name,
			baseDir:  manifest.Root,
			files:    files,
			mode:     mode,
			outDir:   manifest.OutDir(),
			jobs:     manifest.Config.Build.Jobs,
			useCache: manifest.Config.Build.CacheEnabled(),
		}, nil
	}

	if !info.IsDir() {
		if !project.IsSource(target) {
			return nil, fmt.Errorf("%s is not a SysY source", target)
		}
		return &buildPlan{title: "building " + target, baseDir: filepath.Dir(target), files: []string{target}, mode: driver.ModeRiscv, useCache: true}, nil
	}
	files, err := project.ListSources(target)
	if err != nil {
		return nil, err
	}
	return &buildPlan{title: "building " + target, baseDir: target, files: files, mode: driver.ModeRiscv, useCache: true}, nil
}

func applyBuildFlags(cmd *cobra.Command, plan *buildPlan) error {
	flags := cmd.Flags()
	if modeValue, _ := flags.GetString("mode"); modeValue != "" {
		mode, err := driver.ParseMode(modeValue)
		if err != nil {
			return err
		}
		plan.mode = mode
	}
	if outDir, _ := flags.GetString("out-dir"); outDir != "" {
		plan.outDir = outDir
	}
	if jobs, _ := flags.GetInt("jobs"); jobs > 0 {
		plan.jobs = jobs
	}
	if noCache, _ := flags.GetBool("no-cache"); noCache {
		plan.useCache = false
	}
	return nil
}

func openCache(cmd *cobra.Command) (*cache.Store, error) {
	dir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return nil, err
	}
	if dir == "" {
		if dir, err = cache.DefaultDir(); err != nil {
			return nil, err
		}
	}
	return cache.Open(dir)
}

func reportBuild(cmd *cobra.Command, res *buildpipeline.Result, quiet bool) {
	stderr := cmd.ErrOrStderr()
	cached := 0
	for i := range res.Files {
		fr := &res.Files[i]
		switch {
		case fr.Err != nil && fr.Compile != nil:
			// The bag already describes the failure.
			reportDiagnostics(cmd, fr.Compile.Bag, fr.Compile.FileSet)
		case fr.Err != nil:
			fmt.Fprintf(stderr, "%s: %v\n", fr.Path, fr.Err)
		case fr.Cached:
			cached++
		}
	}
	if quiet {
		return
	}
	built := len(res.Files) - res.Failed()
	fmt.Fprintf(cmd.OutOrStdout(), "built %d of %d files (%d cached) in %.1f ms\n",
		built, len(res.Files), cached, toMillis(res.Timings.Duration(buildpipeline.StageBuild)))
}
