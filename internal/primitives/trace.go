package primitives

import "time"

// Trace is the serializable record of every lifecycle event published by one
// stack.
type Trace struct {
	ID           string     `json:"id" yaml:"id"`
	KindsVersion string     `json:"kindsVersion,omitempty" yaml:"kindsVersion,omitempty"`
	Kinds        []KindSpec `json:"kinds,omitempty" yaml:"kinds,omitempty"`
	Events       []Event    `json:"events" yaml:"events"`
	Timestamp    time.Time  `json:"timestamp" yaml:"timestamp"`
}

// Types returns the event types in order, a compact form for assertions.
func (t Trace) Types() []EventType {
	out := make([]EventType, len(t.Events))
	for i, e := range t.Events {
		out[i] = e.Type
	}
	return out
}

// Filter returns the events of type typ.
func (t Trace) Filter(typ EventType) []Event {
	var out []Event
	for _, e := range t.Events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}
