package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/osisteam/catalogue-backend/internal/platform/logger"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// Publisher is the subset of the redis client the sink needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd
}

type redisSink struct {
	log     *logger.Logger
	rdb     Publisher
	channel string
}

// NewRedisSink connects to Redis and publishes every event as JSON on cfg.Channel.
func NewRedisSink(log *logger.Logger, cfg RedisConfig) (Sink, func() error, error) {
	if log == nil {
		return nil, nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisSinkWithClient(log, rdb, cfg.Channel), rdb.Close, nil
}

func NewRedisSinkWithClient(log *logger.Logger, rdb Publisher, channel string) Sink {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "proposal-events"
	}
	return &redisSink{log: log.With("sink", "RedisSink"), rdb: rdb, channel: channel}
}

func (s *redisSink) Name() string { return "redis" }

func (s *redisSink) Send(ctx context.Context, ev Event) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis sink not initialized")
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := s.rdb.Publish(ctx, s.channel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	s.log.Debug("published proposal event", "channel", s.channel, "kind", ev.Kind, "event_id", ev.ID.String())
	return nil
}
