// Package sink records audit events for every decision, device transition
// and alarm. Recording is fire-and-forget: implementations swallow their own
// failures and log them locally, so a broken sink can never fail a control
// path.
package sink

import "github.com/jiahewang/smart-irrigation/internal/model"

// EventSink accepts system events. Record must not block for long and must
// not return errors to the caller.
type EventSink interface {
	Record(evt model.SystemEvent)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Record(model.SystemEvent) {}

// Multi fans an event out to several sinks.
type Multi []EventSink

func (m Multi) Record(evt model.SystemEvent) {
	for _, s := range m {
		if s != nil {
			s.Record(evt)
		}
	}
}
