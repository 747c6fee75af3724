package testutil

import (
	"sync"
	"time"

	"github.com/osisteam/catalogue-backend/internal/data/aggregates"
)

// HooksRecorder keeps every hook call an aggregate makes, in order.
type HooksRecorder struct {
	mu sync.Mutex

	Operations []OperationEvent
	// Concurrent holds the operation names that lost a row lock.
	Concurrent []string
}

type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	h.Operations = append(h.Operations, OperationEvent{Name: name, Status: status, Duration: dur})
	h.mu.Unlock()
}

func (h *HooksRecorder) IncConcurrent(name string) {
	h.mu.Lock()
	h.Concurrent = append(h.Concurrent, name)
	h.mu.Unlock()
}

// Last returns the latest operation, or the zero event when none ran.
func (h *HooksRecorder) Last() OperationEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n := len(h.Operations); n > 0 {
		return h.Operations[n-1]
	}
	return OperationEvent{}
}

// Statuses lists the outcomes recorded for one operation name, oldest first.
func (h *HooksRecorder) Statuses(name string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, ev := range h.Operations {
		if ev.Name == name {
			out = append(out, ev.Status)
		}
	}
	return out
}
