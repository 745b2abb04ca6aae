// Package trace provides the structured tracing layer of the Tern analyzer.
//
// Tracing follows the resolution pipeline: driver, pass (index, resolve),
// module (one source file) and node (one call site or declaration).
//
// # Usage
//
//	tern check --trace=- --trace-level=debug main.tn
//
// # Architecture
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer for post-mortem dumps
//   - MultiTracer: fan-out
//   - RecordTracer: reports finished spans with OpenTelemetry attributes
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span, ctx := trace.StartSpan(ctx, trace.ScopeNode, "call")
//	defer span.End("")
package trace
