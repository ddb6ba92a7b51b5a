package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"sysyc/internal/buildpipeline"
	"sysyc/internal/diag"
	"sysyc/internal/diagfmt"
	"sysyc/internal/observ"
	"sysyc/internal/source"
)

// reportDiagnostics prints warnings and errors of bag to stderr. Info
// entries, such as timing payloads, are left to --timings.
func reportDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet) {
	if bag == nil || fs == nil || !bag.HasWarnings() {
		return
	}
	shown := diag.NewBag(bag.Len())
	for _, d := range bag.Items() {
		if d.Severity >= diag.SevWarning {
			shown.Add(d)
		}
	}
	shown.Sort()
	shown.Dedup()
	stderr := cmd.ErrOrStderr()
	diagfmt.Pretty(stderr, shown, fs, diagfmt.PrettyOpts{
		Color:     useColor(cmd, stderr),
		Context:   2,
		ShowNotes: true,
	})
}

func printTimings(out io.Writer, name string, report observ.Report) {
	fmt.Fprintf(out, "%s: %.3f ms\n", name, report.TotalMS)
	for _, ph := range report.Phases {
		fmt.Fprintf(out, "  %-8s %8.3f ms\n", ph.Name, ph.DurationMS)
	}
}

func printStageTimings(out io.Writer, timings *buildpipeline.Timings) {
	for _, stage := range []buildpipeline.Stage{
		buildpipeline.StageParse,
		buildpipeline.StageIRGen,
		buildpipeline.StageKoopa,
		buildpipeline.StageCodegen,
	} {
		if d := timings.Duration(stage); d > 0 {
			fmt.Fprintf(out, "%-8s %8.1f ms\n", stage, toMillis(d))
		}
	}
	fmt.Fprintf(out, "%-8s %8.1f ms\n", buildpipeline.StageBuild, toMillis(timings.Duration(buildpipeline.StageBuild)))
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// writeArtifact writes content to path, or to stdout for "-".
func writeArtifact(cmd *cobra.Command, path, content string) error {
	if path == "-" {
		_, err := io.WriteString(cmd.OutOrStdout(), content)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
