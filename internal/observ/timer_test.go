package observ_test

import (
	"strings"
	"testing"

	"drift/internal/observ"
)

func TestTimer_Report(t *testing.T) {
	tm := observ.NewTimer()
	idx := tm.Begin("parse")
	tm.End(idx, "2 files")
	idx = tm.Begin("analyze")
	tm.End(idx, "")

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("got %d phases, want 2", len(report.Phases))
	}
	if report.Phases[0].Name != "parse" || report.Phases[0].Note != "2 files" {
		t.Errorf("phase[0] = %+v", report.Phases[0])
	}
	if report.TotalMS < 0 {
		t.Errorf("total = %v", report.TotalMS)
	}
}

func TestTimer_EndOutOfRangeIsIgnored(t *testing.T) {
	tm := observ.NewTimer()
	tm.End(3, "nope") // не должно паниковать

	if got := tm.Report(); len(got.Phases) != 0 {
		t.Errorf("phases = %+v", got.Phases)
	}
}

func TestTimer_Summary(t *testing.T) {
	tm := observ.NewTimer()
	tm.End(tm.Begin("verify"), "")

	s := tm.Summary()
	if !strings.Contains(s, "verify") || !strings.Contains(s, "total") {
		t.Errorf("summary = %q", s)
	}
}
