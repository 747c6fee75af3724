package notify

import (
	"context"

	"github.com/osisteam/catalogue-backend/internal/platform/logger"
)

type logSink struct {
	log *logger.Logger
}

// NewLogSink writes a one-line summary of every event to the log.
func NewLogSink(log *logger.Logger) Sink {
	return &logSink{log: log.With("sink", "LogSink")}
}

func (s *logSink) Name() string { return "log" }

func (s *logSink) Send(_ context.Context, ev Event) error {
	s.log.Info("proposal event",
		"event_id", ev.ID.String(),
		"kind", ev.Kind,
		"transition", ev.Transition,
		"actor_id", ev.Actor.PersonID,
		"proposals", len(ev.Proposals),
		"success", len(ev.Outcomes[BucketSuccess]),
		"error", len(ev.Outcomes[BucketError]),
	)
	return nil
}
