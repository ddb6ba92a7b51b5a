package driver

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a pipeline phase boundary.
type PhaseEvent struct {
	Name   string
	Status PhaseStatus
}

// PhaseObserver receives phase events emitted during CompileSource.
type PhaseObserver func(PhaseEvent)

func (o PhaseObserver) notify(ev PhaseEvent) {
	if o != nil {
		o(ev)
	}
}
