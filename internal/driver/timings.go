package driver

import (
	"encoding/json"
	"fmt"

	"busindex/internal/diag"
	"busindex/internal/observ"
	"busindex/internal/source"
)

type timingPayload struct {
	Kind     string                 `json:"kind"`
	Path     string                 `json:"path,omitempty"`
	TotalMS  float64                `json:"total_ms"`
	Phases   []observ.PhaseReport   `json:"phases"`
	Counters []observ.CounterReport `json:"counters,omitempty"`
}

// appendTimingDiagnostic records the run timings as an info diagnostic whose
// note carries the JSON payload. It bypasses the bag limit.
func appendTimingDiagnostic(bag *diag.Bag, kind, path string, timer *observ.Timer) {
	if bag == nil || timer == nil {
		return
	}
	report := timer.Report()
	payload := timingPayload{
		Kind:     kind,
		Path:     path,
		TotalMS:  report.TotalMS,
		Phases:   report.Phases,
		Counters: report.Counters,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", kind, payload.TotalMS)
	if path != "" {
		msg = fmt.Sprintf("%s for %s", msg, path)
	}
	entry := diag.New(diag.SevInfo, diag.ObsTimings, source.NoLocation, msg).
		WithNote(source.NoLocation, string(data))
	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(0)
	overflow.Add(entry)
	bag.Merge(overflow)
}
