package observ

import (
	"errors"
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("load")
	tm.End(idx, "3 packages")
	if err := tm.Measure("emit", func() error { return errors.New("boom") }); err == nil {
		t.Fatalf("Measure must return fn's error")
	}
	tm.End(42, "ignored")
	tm.Count("subscribers", 2)
	tm.Count("packages", 3)
	tm.Count("subscribers", 1)

	report := tm.Report()
	if len(report.Phases) != 2 || report.Phases[0].Name != "load" || report.Phases[1].Note != "failed" {
		t.Fatalf("unexpected phases: %+v", report.Phases)
	}
	if len(report.Counters) != 2 || report.Counters[0].Name != "packages" || report.Counters[1].Value != 3 {
		t.Fatalf("unexpected counters: %+v", report.Counters)
	}

	summary := tm.Summary()
	for _, want := range []string{"timings:", "load", "// 3 packages", "total", "counters:", "subscribers"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestEmptyTimer(t *testing.T) {
	report := NewTimer().Report()
	if len(report.Phases) != 0 || report.TotalMS != 0 || len(report.Counters) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}
