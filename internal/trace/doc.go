// Package trace records spans around compiler phases.
//
// Enable it from the command line:
//
//	sysyc compile --trace=- --trace-level=phase main.sy
//
// Tracers:
//
//   - Nop: disabled tracing, zero cost
//   - StreamTracer: writes every event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events, dumped when a compilation fails
//   - MultiTracer: fans out to several tracers
//
// Levels select which scopes are emitted: phase covers driver and pass
// spans, detail adds per-function spans, debug adds per-value events.
//
// Tracers travel through the pipeline in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "irgen", 0)
//	defer span.End("")
package trace
