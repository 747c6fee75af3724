package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/osisteam/catalogue-backend/internal/data/db"
	"github.com/osisteam/catalogue-backend/internal/observability"
	"github.com/osisteam/catalogue-backend/internal/platform/envutil"
)

// ConfigFileEnv names the optional YAML/TOML/JSON file layered under the environment.
const ConfigFileEnv = "CATALOGUE_CONFIG"

type Config struct {
	LogMode     string
	Environment string
	Version     string

	DBDriver   string
	SQLitePath string
	Postgres   db.PostgresConfig

	HTTPAddr    string
	CORSOrigins []string

	PostponementSpan int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	SendgridAPIKey    string
	SendgridFromEmail string
	SendgridFromName  string

	NotifyQueueSize int
	NotifyTimeout   time.Duration

	AutoPostponeCron    string
	AutoPostponeWorkers int

	Otel observability.OtelConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_mode", "development")
	v.SetDefault("environment", "development")
	v.SetDefault("db_driver", "postgres")
	v.SetDefault("sqlite_path", "catalogue.db")
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", "5432")
	v.SetDefault("postgres_user", "postgres")
	v.SetDefault("postgres_name", "catalogue")
	v.SetDefault("postgres_sslmode", "disable")
	v.SetDefault("postgres_max_open_conns", 25)
	v.SetDefault("postgres_max_idle_conns", 10)
	v.SetDefault("postgres_conn_max_lifetime_seconds", 3600)
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("postponement_span_years", 6)
	v.SetDefault("redis_channel", "proposal-events")
	v.SetDefault("sendgrid_from_name", "Learning unit catalogue")
	v.SetDefault("notify_queue_size", 256)
	v.SetDefault("notify_timeout_seconds", 5)
	v.SetDefault("autopostpone_cron", "0 3 1 7 *")
	v.SetDefault("autopostpone_workers", 4)
	v.SetDefault("otel_enabled", false)
	v.SetDefault("otel_service_name", "catalogue")
	v.SetDefault("otel_sampler_ratio", 1.0)
	v.SetDefault("otel_metrics_interval_seconds", 30)
}

// LoadConfig reads .env, then the optional config file, then the process
// environment, which wins.
func LoadConfig() (Config, error) {
	if err := envutil.LoadDotEnv(); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	if path := envutil.String(ConfigFileEnv, ""); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return configFrom(v)
}

func configFrom(v *viper.Viper) (Config, error) {
	cfg := Config{
		LogMode:     v.GetString("log_mode"),
		Environment: v.GetString("environment"),
		Version:     v.GetString("service_version"),

		DBDriver:   strings.ToLower(strings.TrimSpace(v.GetString("db_driver"))),
		SQLitePath: v.GetString("sqlite_path"),
		Postgres: db.PostgresConfig{
			Host:            v.GetString("postgres_host"),
			Port:            v.GetString("postgres_port"),
			User:            v.GetString("postgres_user"),
			Password:        v.GetString("postgres_password"),
			Name:            v.GetString("postgres_name"),
			SSLMode:         v.GetString("postgres_sslmode"),
			MaxOpenConns:    v.GetInt("postgres_max_open_conns"),
			MaxIdleConns:    v.GetInt("postgres_max_idle_conns"),
			ConnMaxLifetime: time.Duration(v.GetInt("postgres_conn_max_lifetime_seconds")) * time.Second,
		},

		HTTPAddr:    v.GetString("http_addr"),
		CORSOrigins: splitList(v.GetString("cors_origins")),

		PostponementSpan: v.GetInt("postponement_span_years"),

		RedisAddr:     v.GetString("redis_addr"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),
		RedisChannel:  v.GetString("redis_channel"),

		SendgridAPIKey:    v.GetString("sendgrid_api_key"),
		SendgridFromEmail: v.GetString("sendgrid_from_email"),
		SendgridFromName:  v.GetString("sendgrid_from_name"),

		NotifyQueueSize: v.GetInt("notify_queue_size"),
		NotifyTimeout:   time.Duration(v.GetInt("notify_timeout_seconds")) * time.Second,

		AutoPostponeCron:    v.GetString("autopostpone_cron"),
		AutoPostponeWorkers: v.GetInt("autopostpone_workers"),

		Otel: observability.OtelConfig{
			Enabled:         v.GetBool("otel_enabled"),
			ServiceName:     v.GetString("otel_service_name"),
			Environment:     v.GetString("environment"),
			Version:         v.GetString("service_version"),
			Endpoint:        v.GetString("otel_exporter_otlp_endpoint"),
			Headers:         observability.ParseHeaders(v.GetString("otel_exporter_otlp_headers")),
			Insecure:        v.GetBool("otel_exporter_otlp_insecure"),
			SampleRatio:     v.GetFloat64("otel_sampler_ratio"),
			MetricsEndpoint: v.GetString("otel_metrics_endpoint"),
			MetricsInterval: time.Duration(v.GetInt("otel_metrics_interval_seconds")) * time.Second,
		},
	}
	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.PostponementSpan <= 0 {
		return Config{}, fmt.Errorf("POSTPONEMENT_SPAN_YEARS must be positive, got %d", cfg.PostponementSpan)
	}
	if cfg.SendgridAPIKey != "" && cfg.SendgridFromEmail == "" {
		return Config{}, fmt.Errorf("SENDGRID_FROM_EMAIL is required when SENDGRID_API_KEY is set")
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
