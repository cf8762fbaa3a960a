package testutil

import (
	"context"
	"sync"

	"github.com/dimitrije/capsule-api/internal/events"
	"github.com/google/uuid"
)

// RecordingPublisher keeps every published event in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []any
}

var _ events.Publisher = (*RecordingPublisher)(nil)

func (p *RecordingPublisher) Publish(ctx context.Context, topic string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func (p *RecordingPublisher) Close() error {
	return nil
}

// Count returns how many events were published on topic.
func (p *RecordingPublisher) Count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.topics {
		if t == topic {
			n++
		}
	}
	return n
}

// TransitionsFor returns the transition events recorded for one item.
func (p *RecordingPublisher) TransitionsFor(topic string, itemID uuid.UUID) []events.TransitionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.TransitionEvent
	for i, t := range p.topics {
		if t != topic {
			continue
		}
		if ev, ok := p.events[i].(events.TransitionEvent); ok && ev.ItemID == itemID {
			out = append(out, ev)
		}
	}
	return out
}
