// Package trace records what busindex is doing while it runs.
//
// Tracing answers "where did the time go" and "which package was being
// scanned when it failed". It is off by default.
//
// # Usage
//
//	busindex generate --trace=- --trace-level=phase
//	busindex generate --trace=run.ndjson --trace-level=detail
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: writes every event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events for a dump after a fault
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// LevelPhase shows driver and phase spans (load, collect, resolve, emit),
// LevelDetail adds one span per package, LevelDebug adds per-declaration
// events. LevelError records only Error events.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "load", trace.CurrentSpan(ctx).SpanID)
//	defer span.End("")
package trace
