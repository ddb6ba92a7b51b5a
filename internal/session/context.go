// Package session holds the state owned by exactly one compilation.
//
// Nothing here is shared between compilations, so independent units can be
// compiled in parallel, each with its own Context.
package session

import (
	"context"
	"strconv"

	"sysyc/internal/observ"
	"sysyc/internal/trace"
)

// Context carries the per-compilation counters and instrumentation.
// It is not goroutine-safe.
type Context struct {
	nextValue int
	nextReg   int

	Tracer trace.Tracer
	Timer  *observ.Timer
	// Span is the parent for spans opened by passes.
	Span uint64
}

// New returns a Context with both counters at zero.
func New() *Context {
	return &Context{
		Tracer: trace.Nop,
		Timer:  observ.NewTimer(),
	}
}

// FromContext builds a Context that traces through the tracer stored in ctx.
func FromContext(ctx context.Context) *Context {
	c := New()
	c.Tracer = trace.FromContext(ctx)
	c.Span = trace.CurrentSpan(ctx)
	return c
}

// NextValue returns a fresh virtual value name such as "%0".
// Names are never reused within one Context.
func (c *Context) NextValue() string {
	name := "%" + strconv.Itoa(c.nextValue)
	c.nextValue++
	return name
}

// NextRegister hands out the next index of a register pool of size limit.
// There is no reclamation; ok is false once the pool is spent.
func (c *Context) NextRegister(limit int) (idx int, ok bool) {
	if c.nextReg >= limit {
		return 0, false
	}
	idx = c.nextReg
	c.nextReg++
	return idx, true
}

// ValuesIssued is the number of virtual names handed out so far.
func (c *Context) ValuesIssued() int { return c.nextValue }

// RegistersIssued is the number of registers handed out so far.
func (c *Context) RegistersIssued() int { return c.nextReg }

// Pass opens a pass-scope trace span and a timer phase together.
func (c *Context) Pass(name string) func(note string) {
	span := trace.Begin(c.Tracer, trace.ScopePass, name, c.Span)
	endPhase := c.Timer.Track(name)
	return func(note string) {
		endPhase(note)
		span.End(note)
	}
}
