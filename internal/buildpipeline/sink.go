package buildpipeline

import "sync"

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) OnEvent(Event) {}

// RecordingSink keeps every event in arrival order.
type RecordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *RecordingSink) OnEvent(evt Event) {
	s.mu.Lock()
	s.events = append(s.events, evt)
	s.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (s *RecordingSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}
