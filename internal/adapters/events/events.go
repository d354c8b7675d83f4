// Package events provides sinks for build diagnostics.
package events

import (
	"slices"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var (
	_ ports.EventSink = (*LogSink)(nil)
	_ ports.EventSink = (*Recorder)(nil)
	_ ports.EventSink = Multi(nil)
)

// LogSink forwards events to a logger. Invocation and cache-load events are
// only printed in debug mode.
type LogSink struct {
	logger ports.Logger
	debug  bool
}

// NewLogSink creates a LogSink.
func NewLogSink(logger ports.Logger, debug bool) *LogSink {
	return &LogSink{logger: logger, debug: debug}
}

// Emit implements ports.EventSink.
func (s *LogSink) Emit(event domain.Event) {
	switch e := event.(type) {
	case domain.InvocationEvent, domain.CacheLoadedEvent:
		if s.debug {
			s.logger.Info(e.String())
		}
	case domain.DanglingDependencyEvent:
		s.logger.Warn(e.String())
	case domain.PassFailedEvent:
		s.logger.Error(e.Err)
	default:
		s.logger.Info(e.String())
	}
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit implements ports.EventSink.
func (r *Recorder) Emit(event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events in emission order.
func (r *Recorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Lines renders every recorded event of the given kinds, or all events when no kind is given.
func (r *Recorder) Lines(kinds ...domain.EventKind) []string {
	var out []string
	for _, e := range r.Events() {
		if len(kinds) == 0 || slices.Contains(kinds, e.Kind()) {
			out = append(out, e.String())
		}
	}
	return out
}

// Reset drops every recorded event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Multi fans an event out to several sinks in order.
type Multi []ports.EventSink

// Emit implements ports.EventSink.
func (m Multi) Emit(event domain.Event) {
	for _, s := range m {
		s.Emit(event)
	}
}
