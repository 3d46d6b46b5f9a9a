// Package events provides in-process pub/sub for run lifecycle events.
package events

import (
	"sync"
	"time"
)

// RunEvent describes a finished pipeline run.
type RunEvent struct {
	RunID        string        `json:"run_id"`
	InputPath    string        `json:"input_path"`
	Succeeded    bool          `json:"succeeded"`
	ReviewsTotal int           `json:"reviews_total"`
	Banks        int           `json:"banks"`
	Duration     time.Duration `json:"duration_ns"`
}

// Bus fans run events out to subscribers. Slow subscribers drop events
// instead of blocking the publisher.
type Bus struct {
	mu   sync.RWMutex
	subs []chan RunEvent
}

func NewBus() *Bus { return &Bus{} }

func (b *Bus) Subscribe() <-chan RunEvent {
	ch := make(chan RunEvent, 16)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, ch)
	return ch
}

func (b *Bus) Publish(ev RunEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
