// Package production provides production integrations: event publishing,
// trace persistence, visualization.
package production

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/comalice/exceptx/internal/core"
	"github.com/comalice/exceptx/internal/primitives"
)

// ChannelPublisher forwards events to a Go channel.
// Non-blocking publish with drop on backpressure.
type ChannelPublisher struct {
	ch chan<- primitives.Event
}

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- primitives.Event) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

func (p *ChannelPublisher) Publish(ctx context.Context, event primitives.Event) error {
	select {
	case p.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil // Non-blocking drop
	}
}

func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}

// Recorder keeps every published event in memory and exposes them as a Trace.
type Recorder struct {
	mu     sync.Mutex
	id     string
	kinds  *primitives.KindTable
	events []primitives.Event
}

// NewRecorder creates a Recorder. kinds may be nil; when set it is embedded in
// the produced traces.
func NewRecorder(kinds *primitives.KindTable) *Recorder {
	return &Recorder{kinds: kinds}
}

func (r *Recorder) Publish(_ context.Context, event primitives.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.id == "" {
		r.id = event.Trace
	}
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Trace returns a snapshot of the recorded events.
func (r *Recorder) Trace() primitives.Trace {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := primitives.Trace{
		ID:           r.id,
		KindsVersion: primitives.ComputeVersion(r.kinds),
		Events:       append([]primitives.Event(nil), r.events...),
		Timestamp:    time.Now().UTC(),
	}
	if r.kinds != nil {
		t.Kinds = r.kinds.Sorted()
	}
	return t
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// LoggingPublisher writes each event to a zap logger at debug level.
type LoggingPublisher struct {
	logger *zap.Logger
}

// NewLoggingPublisher creates a LoggingPublisher; a nil logger uses core.Logger().
func NewLoggingPublisher(l *zap.Logger) *LoggingPublisher {
	if l == nil {
		l = core.Logger()
	}
	return &LoggingPublisher{logger: l}
}

func (p *LoggingPublisher) Publish(_ context.Context, event primitives.Event) error {
	fields := []zap.Field{
		zap.Uint64("seq", event.Seq),
		zap.String("trace", event.Trace),
		zap.Uint64("region", event.Region),
		zap.Int("depth", event.Depth),
		zap.String("phase", string(event.Phase)),
	}
	if event.Kind != primitives.None {
		fields = append(fields, zap.String("kind", event.KindName), zap.Any("payload", event.Payload))
	}
	if event.Previous != primitives.None {
		fields = append(fields, zap.Int("previous", int(event.Previous)))
	}
	p.logger.Debug(string(event.Type), fields...)
	return nil
}

func (p *LoggingPublisher) Close() error {
	// Sync fails on some terminals (EINVAL on stderr); nothing to report.
	_ = p.logger.Sync()
	return nil
}

// MultiPublisher fans events out to several publishers. Every publisher sees
// every event; failures are collected.
type MultiPublisher struct {
	publishers []core.EventPublisher
}

// NewMultiPublisher creates a MultiPublisher, skipping nil entries.
func NewMultiPublisher(publishers ...core.EventPublisher) *MultiPublisher {
	m := &MultiPublisher{}
	for _, p := range publishers {
		if p != nil {
			m.publishers = append(m.publishers, p)
		}
	}
	return m
}

func (m *MultiPublisher) Publish(ctx context.Context, event primitives.Event) error {
	var result *multierror.Error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, event); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (m *MultiPublisher) Close() error {
	var result *multierror.Error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
