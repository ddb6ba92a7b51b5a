package buildpipeline

import (
	"sync"
	"time"
)

// Stage describes a pipeline phase as seen by progress consumers.
type Stage string

const (
	StageParse   Stage = "parse"
	StageIRGen   Stage = "irgen"
	StageKoopa   Stage = "koopa"
	StageCodegen Stage = "riscv"
	StageWrite   Stage = "write"
	// StageBuild is used for events that describe the whole build.
	StageBuild Stage = "build"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusCached  Status = "cached"
	StatusError   Status = "error"
)

// Event reports progress for a file, or for the whole build when File is
// empty.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings accumulates stage durations across files.
type Timings struct {
	mu     sync.Mutex
	stages map[Stage]time.Duration
}

// Add records dur for stage.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
	t.stages[stage] += dur
}

// Duration returns the recorded duration for stage.
func (t *Timings) Duration(stage Stage) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stages[stage]
}

// Sum returns the total across the provided stages.
func (t *Timings) Sum(stages ...Stage) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
