// Event provides the lifecycle record published for every step of the
// try/catch/finally protocol.
//
// Events are value types. Once published, Events should not be mutated; the
// Payload field aliases the raised payload.
package primitives

import "time"

// EventType names a lifecycle step.
type EventType string

const (
	EventEnter     EventType = "enter"
	EventRaise     EventType = "raise"
	EventCatch     EventType = "catch"
	EventFinally   EventType = "finally"
	EventPropagate EventType = "propagate"
	EventExit      EventType = "exit"
	EventFatal     EventType = "fatal"
	EventRecover   EventType = "recover"
)

// Phase is the protocol state of a region.
type Phase string

const (
	PhaseProtected Phase = "protected"
	PhaseDispatch  Phase = "dispatch"
	PhaseFinally   Phase = "finally"
	PhaseDone      Phase = "done"
)

// Event is one lifecycle step. Region and Parent are region ids (0 means no
// region); Kind is the exception involved, Previous the already pending kind for
// double exceptions.
type Event struct {
	Seq      uint64    `json:"seq" yaml:"seq"`
	Trace    string    `json:"trace" yaml:"trace"`
	Type     EventType `json:"type" yaml:"type"`
	Region   uint64    `json:"region,omitempty" yaml:"region,omitempty"`
	Parent   uint64    `json:"parent,omitempty" yaml:"parent,omitempty"`
	Depth    int       `json:"depth" yaml:"depth"`
	Phase    Phase     `json:"phase,omitempty" yaml:"phase,omitempty"`
	Kind     Kind      `json:"kind,omitempty" yaml:"kind,omitempty"`
	KindName string    `json:"kindName,omitempty" yaml:"kindName,omitempty"`
	Payload  any       `json:"payload,omitempty" yaml:"payload,omitempty"`
	Previous Kind      `json:"previous,omitempty" yaml:"previous,omitempty"`
	Time     time.Time `json:"time" yaml:"time"`
}

// NewEvent creates an Event of the given type for a region.
func NewEvent(typ EventType, region uint64, exc Exception) Event {
	return Event{
		Type:    typ,
		Region:  region,
		Kind:    exc.Kind,
		Payload: exc.Payload,
		Time:    time.Now(),
	}
}

// Exception returns the exception carried by the event.
func (e Event) Exception() Exception {
	return Exception{Kind: e.Kind, Payload: e.Payload}
}
