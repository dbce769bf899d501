package events

import "sync"

// Outbox buffers the events produced by one engine operation so they can be
// delivered in order once the operation has finished mutating state.
type Outbox struct {
	events []GameEvent
}

// Append queues an event, filling in its ID if absent.
func (o *Outbox) Append(event GameEvent) {
	if event.ID == "" {
		event.ID = GenerateEventID()
	}
	o.events = append(o.events, event)
}

// Len reports the number of queued events.
func (o *Outbox) Len() int {
	return len(o.events)
}

// Flush hands every queued event to d in append order and empties the outbox.
func (o *Outbox) Flush(d Dispatcher) {
	for _, e := range o.events {
		if len(e.Recipients) == 0 {
			continue
		}
		d.Dispatch(e)
	}
	o.events = o.events[:0]
}

// EventLog is an in-memory, append-only Dispatcher. It records everything it
// is handed and is mainly used to observe the engine in tests.
type EventLog struct {
	mu     sync.RWMutex
	events []GameEvent
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{events: make([]GameEvent, 0)}
}

// Dispatch records the event.
func (el *EventLog) Dispatch(event GameEvent) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.events = append(el.events, event)
}

// Replay returns a copy of the full history.
func (el *EventLog) Replay() []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	out := make([]GameEvent, len(el.events))
	copy(out, el.events)
	return out
}

// ByType returns every recorded event of the given type.
func (el *EventLog) ByType(t EventType) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// ForRecipient returns every recorded event delivered to connID.
func (el *EventLog) ForRecipient(connID string) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		for _, r := range e.Recipients {
			if r == connID {
				result = append(result, e)
				break
			}
		}
	}
	return result
}

// Reset drops the recorded history.
func (el *EventLog) Reset() {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.events = el.events[:0]
}
