package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"sysyc/internal/buildpipeline"
)

func TestApplyTracksRows(t *testing.T) {
	m := NewProgressModel("build", []string{"a.sy", "b.sy"}, nil).(*buildModel)

	m.apply(buildpipeline.Event{File: "a.sy", Stage: buildpipeline.StageIRGen, Status: buildpipeline.StatusWorking})
	m.apply(buildpipeline.Event{File: "b.sy", Stage: buildpipeline.StageWrite, Status: buildpipeline.StatusCached, Elapsed: 2 * time.Millisecond})
	m.apply(buildpipeline.Event{File: "other.sy", Stage: buildpipeline.StageParse, Status: buildpipeline.StatusError})
	m.apply(buildpipeline.Event{Stage: buildpipeline.StageBuild, Status: buildpipeline.StatusDone, Elapsed: 5 * time.Millisecond})

	if got := m.rows[0].label(); got != "lowering" {
		t.Errorf("row a label = %q", got)
	}
	if got := m.rows[1].label(); got != "cached" || m.rows[1].elapsed != 2*time.Millisecond {
		t.Errorf("row b = %+v", m.rows[1])
	}
	if got, want := m.fraction(), (0.4+1.0)/2; got != want {
		t.Errorf("fraction = %v, want %v", got, want)
	}
	finished, cached, failed := m.counts()
	if finished != 1 || cached != 1 || failed != 0 {
		t.Errorf("counts = %d, %d, %d", finished, cached, failed)
	}
	if m.summary != "done in 5.0 ms" {
		t.Errorf("summary = %q", m.summary)
	}
}

func TestViewListsFiles(t *testing.T) {
	m := NewProgressModel("build demo", []string{"src/a.sy"}, nil).(*buildModel)
	m.done = true
	view := m.View()
	for _, want := range []string{"build demo  0/1", "queued", "src/a.sy", "0 cached, 0 failed"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short.sy", 20, "short.sy"},
		{"a/very/long/path/file.sy", 10, "a/very/..."},
		{"日本語のファイル.sy", 9, "日本語..."},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.width)
		if got != tt.want || runewidth.StringWidth(got) > tt.width {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
