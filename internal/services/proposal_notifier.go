package services

import (
	"context"
	"sync"
	"time"

	"github.com/osisteam/catalogue-backend/internal/notify"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
)

const (
	DefaultNotifyQueueSize = 256
	DefaultNotifyTimeout   = 5 * time.Second
)

// ProposalNotifier hands events to a sink off the request path. Notify never
// blocks: when the queue is full the event is dropped and logged.
type ProposalNotifier interface {
	Notify(ev notify.Event) bool
	Close()
}

type NotifierConfig struct {
	QueueSize int
	Timeout   time.Duration
	// Observe, when set, is told the fate of every event: queued, dropped, sent or failed.
	Observe func(kind, status string)
}

type proposalNotifier struct {
	log     *logger.Logger
	sink    notify.Sink
	timeout time.Duration
	observe func(kind, status string)

	mu     sync.RWMutex
	closed bool
	queue  chan notify.Event
	done   chan struct{}
}

func NewProposalNotifier(baseLog *logger.Logger, sink notify.Sink, cfg NotifierConfig) ProposalNotifier {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultNotifyQueueSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultNotifyTimeout
	}
	n := &proposalNotifier{
		log:     baseLog.With("service", "ProposalNotifier"),
		sink:    sink,
		timeout: cfg.Timeout,
		observe: cfg.Observe,
		queue:   make(chan notify.Event, cfg.QueueSize),
		done:    make(chan struct{}),
	}
	go n.run()
	return n
}

func (n *proposalNotifier) Notify(ev notify.Event) bool {
	if n == nil || n.sink == nil {
		return false
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		n.log.Warn("notifier closed, event dropped", "kind", ev.Kind, "event_id", ev.ID.String())
		n.report(ev, "dropped")
		return false
	}
	select {
	case n.queue <- ev:
		n.report(ev, "queued")
		return true
	default:
		n.log.Warn("notification queue full, event dropped", "kind", ev.Kind, "event_id", ev.ID.String())
		n.report(ev, "dropped")
		return false
	}
}

// Close stops accepting events and waits until the queue is drained.
func (n *proposalNotifier) Close() {
	if n == nil {
		return
	}
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		<-n.done
		return
	}
	n.closed = true
	close(n.queue)
	n.mu.Unlock()
	<-n.done
}

func (n *proposalNotifier) run() {
	defer close(n.done)
	for ev := range n.queue {
		n.deliver(ev)
	}
}

func (n *proposalNotifier) deliver(ev notify.Event) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Error("notification sink panicked", "sink", n.sink.Name(), "kind", ev.Kind, "panic", r)
			n.report(ev, "failed")
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	if err := n.sink.Send(ctx, ev); err != nil {
		n.log.Warn("notification delivery failed", "sink", n.sink.Name(), "kind", ev.Kind, "event_id", ev.ID.String(), "error", err)
		n.report(ev, "failed")
		return
	}
	n.report(ev, "sent")
}

func (n *proposalNotifier) report(ev notify.Event, status string) {
	if n.observe != nil {
		n.observe(string(ev.Kind), status)
	}
}
