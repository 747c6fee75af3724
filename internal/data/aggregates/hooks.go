package aggregates

import (
	"strings"
	"time"

	"github.com/osisteam/catalogue-backend/internal/platform/logger"
)

// Hooks captures aggregate-level observability events.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConcurrent(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConcurrent(string)                           {}

type logHooks struct {
	log *logger.Logger
}

// NewLogHooks reports every aggregate write to the structured log.
func NewLogHooks(log *logger.Logger) Hooks {
	if log == nil {
		return noopHooks{}
	}
	return &logHooks{log: log.With("component", "AggregateHooks")}
}

func (h *logHooks) ObserveOperation(name, status string, dur time.Duration) {
	if status == "success" {
		h.log.Debug("aggregate write", "op", strings.TrimSpace(name), "status", status, "duration_ms", dur.Milliseconds())
		return
	}
	h.log.Info("aggregate write failed", "op", strings.TrimSpace(name), "status", status, "duration_ms", dur.Milliseconds())
}

func (h *logHooks) IncConcurrent(name string) {
	h.log.Warn("aggregate write lost a lock", "op", strings.TrimSpace(name))
}

type multiHooks []Hooks

// CombineHooks fans every event out to each non-nil hook.
func CombineHooks(hs ...Hooks) Hooks {
	out := make(multiHooks, 0, len(hs))
	for _, h := range hs {
		if h != nil {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return noopHooks{}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func (m multiHooks) ObserveOperation(name, status string, dur time.Duration) {
	for _, h := range m {
		h.ObserveOperation(name, status, dur)
	}
}

func (m multiHooks) IncConcurrent(name string) {
	for _, h := range m {
		h.IncConcurrent(name)
	}
}
