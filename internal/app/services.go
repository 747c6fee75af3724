package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/osisteam/catalogue-backend/internal/data/aggregates"
	"github.com/osisteam/catalogue-backend/internal/data/repos"
	"github.com/osisteam/catalogue-backend/internal/notify"
	"github.com/osisteam/catalogue-backend/internal/observability"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
	"github.com/osisteam/catalogue-backend/internal/services"
)

type Services struct {
	Identity     services.IdentityProvider
	Proposals    services.ProposalService
	Postponement services.PostponementService
	Notifier     services.ProposalNotifier
}

// wireSinks always logs events, and also publishes them to Redis and mails
// them through SendGrid when those are configured.
func wireSinks(log *logger.Logger, cfg Config) (notify.Sink, []func() error, error) {
	sinks := []notify.Sink{notify.NewLogSink(log)}
	var closers []func() error

	if cfg.RedisAddr != "" {
		rs, closeRedis, err := notify.NewRedisSink(log, notify.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Channel:  cfg.RedisChannel,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init redis sink: %w", err)
		}
		sinks = append(sinks, rs)
		closers = append(closers, closeRedis)
	}
	if cfg.SendgridAPIKey != "" {
		ms, err := notify.NewMailSink(log, notify.MailConfig{
			APIKey:    cfg.SendgridAPIKey,
			FromEmail: cfg.SendgridFromEmail,
			FromName:  cfg.SendgridFromName,
		})
		if err != nil {
			for _, fn := range closers {
				_ = fn()
			}
			return nil, nil, fmt.Errorf("init mail sink: %w", err)
		}
		sinks = append(sinks, ms)
	}
	return notify.Fanout(sinks...), closers, nil
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, rs repos.Set, sink notify.Sink, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	var hooks aggregates.Hooks = aggregates.NewLogHooks(log)
	var observe func(kind, status string)
	if metrics != nil {
		hooks = aggregates.CombineHooks(hooks, metrics)
		observe = metrics.ObserveNotification
	}

	notifier := services.NewProposalNotifier(log, sink, services.NotifierConfig{
		QueueSize: cfg.NotifyQueueSize,
		Timeout:   cfg.NotifyTimeout,
		Observe:   observe,
	})
	runner := aggregates.NewGormTxRunner(db)
	agg := aggregates.NewProposalAggregate(
		aggregates.BaseDeps{DB: db, Log: log, Runner: runner, Hooks: hooks},
		rs,
		aggregates.WithPostponementSpan(cfg.PostponementSpan),
	)
	return Services{
		Identity:  services.NewIdentityProvider(log, rs.Person),
		Proposals: services.NewProposalService(log, rs, agg, notifier),
		Postponement: services.NewPostponementService(db, log, rs, runner, notifier, services.PostponementConfig{
			Span:    cfg.PostponementSpan,
			Workers: cfg.AutoPostponeWorkers,
		}),
		Notifier: notifier,
	}
}
