package trace

import (
	"fmt"
	"sync"
	"time"
)

// Heartbeat periodically emits liveness events while a long-running
// command such as watch is idle.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// StartHeartbeat starts the heartbeat goroutine. It returns nil when
// tracing is disabled or interval is not positive.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   tracer,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
	h.wg.Add(1)
	go h.run()
	return h
}

func (h *Heartbeat) run() {
	defer h.wg.Done()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	var beats uint64
	for {
		select {
		case <-h.stopCh:
			return
		case now := <-ticker.C:
			beats++
			h.tracer.Emit(&Event{
				Time:   now,
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				SpanID: NextSpanID(),
				Name:   "heartbeat",
				Detail: fmt.Sprintf("#%d", beats),
			})
		}
	}
}

// Stop halts the goroutine and waits for it. Safe on a nil receiver.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stopCh) })
	h.wg.Wait()
}
