package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	timer := NewTimer()
	done := timer.Track("parse")
	done("1 item")
	idx := timer.Begin("riscv")
	timer.End(idx, "")
	timer.End(99, "ignored")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %d", len(report.Phases))
	}
	if report.Phases[0].Name != "parse" || report.Phases[0].Note != "1 item" {
		t.Errorf("phase 0 = %+v", report.Phases[0])
	}
	summary := timer.Summary()
	for _, want := range []string{"timings:", "parse", "// 1 item", "riscv", "total"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary lacks %q:\n%s", want, summary)
		}
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Errorf("empty report = %+v", r)
	}
}
