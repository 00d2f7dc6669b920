package config

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/eskrenkovic/spellqueue/internal/modules/env"
	"github.com/eskrenkovic/spellqueue/internal/modules/queue"

	"go.uber.org/zap"
)

const (
	PortEnv        = "PORT"
	DatabaseUrlEnv = "DATABASE_URL"
	RootPathEnv    = "ROOT_PATH"
	LogLevelEnv    = "LOG_LEVEL"

	RedisURLEnv     = "REDIS_URL"
	RedisChannelEnv = "REDIS_CHANNEL"

	CORSAllowedOriginsEnv = "CORS_ALLOWED_ORIGINS"

	QueueExpiryMinutesEnv    = "QUEUE_EXPIRY_MINUTES"
	QueuePowerToleranceEnv   = "QUEUE_POWER_TOLERANCE"
	QueueScopeGranularityEnv = "QUEUE_SCOPE_GRANULARITY"
	QueueFriendlyEnabledEnv  = "QUEUE_FRIENDLY_ENABLED"
	QueueSweepIntervalEnv    = "QUEUE_SWEEP_INTERVAL"
	QueueMatchedGraceEnv     = "QUEUE_MATCHED_GRACE"
	QueueSessionRetentionEnv = "QUEUE_SESSION_RETENTION"
)

const defaultRedisChannel = "spellqueue.events"

type RedisConfiguration struct {
	// URL is empty when match events are only logged.
	URL     string
	Channel string
}

type QueueConfiguration struct {
	Defaults         queue.ScopeSettings
	SweepInterval    time.Duration
	MatchedGrace     time.Duration
	SessionRetention time.Duration
}

type Config struct {
	Logger *zap.Logger

	Port           int
	DatabaseURL    string
	MigrationsPath string

	AllowedOrigins []string

	Redis RedisConfiguration
	Queue QueueConfiguration
}

func Load() (Config, error) {
	logger, err := newLogger(env.GetStringOrDefault(LogLevelEnv, "info"))
	if err != nil {
		return Config{}, err
	}

	port := env.MustGetInt(PortEnv)
	dbURL := env.MustGetString(DatabaseUrlEnv)

	rootPath := env.MustGetString(RootPathEnv)
	migrationsPath := path.Join(rootPath, "db", "migrations")

	queueConfig, err := loadQueue()
	if err != nil {
		return Config{}, err
	}

	return Config{
		Logger:         logger,
		Port:           port,
		DatabaseURL:    dbURL,
		MigrationsPath: migrationsPath,
		AllowedOrigins: splitList(env.GetStringOrDefault(CORSAllowedOriginsEnv, "*")),
		Redis: RedisConfiguration{
			URL:     env.GetStringOrDefault(RedisURLEnv, ""),
			Channel: env.GetStringOrDefault(RedisChannelEnv, defaultRedisChannel),
		},
		Queue: queueConfig,
	}, nil
}

func loadQueue() (QueueConfiguration, error) {
	defaults := queue.DefaultScopeSettings()

	expiry, err := env.GetIntOrDefault(QueueExpiryMinutesEnv, defaults.ExpiryMinutes)
	if err != nil {
		return QueueConfiguration{}, err
	}

	tolerance, err := env.GetFloatOrDefault(QueuePowerToleranceEnv, defaults.PowerTolerance)
	if err != nil {
		return QueueConfiguration{}, err
	}

	granularity, err := queue.ParseGranularity(
		env.GetStringOrDefault(QueueScopeGranularityEnv, string(defaults.Granularity)),
	)
	if err != nil {
		return QueueConfiguration{}, err
	}

	friendly, err := env.GetBoolOrDefault(QueueFriendlyEnabledEnv, defaults.FriendlyQueueEnabled)
	if err != nil {
		return QueueConfiguration{}, err
	}

	sweepInterval, err := env.GetDurationOrDefault(QueueSweepIntervalEnv, queue.DefaultSweepInterval)
	if err != nil {
		return QueueConfiguration{}, err
	}

	matchedGrace, err := env.GetDurationOrDefault(QueueMatchedGraceEnv, 10*time.Minute)
	if err != nil {
		return QueueConfiguration{}, err
	}

	retention, err := env.GetDurationOrDefault(QueueSessionRetentionEnv, time.Hour)
	if err != nil {
		return QueueConfiguration{}, err
	}

	settings := queue.ScopeSettings{
		ExpiryMinutes:        expiry,
		Granularity:          granularity,
		PowerTolerance:       tolerance,
		FriendlyQueueEnabled: friendly,
	}
	if err := settings.Validate(); err != nil {
		return QueueConfiguration{}, fmt.Errorf("invalid queue defaults: %w", err)
	}

	return QueueConfiguration{
		Defaults:         settings,
		SweepInterval:    sweepInterval,
		MatchedGrace:     matchedGrace,
		SessionRetention: retention,
	}, nil
}

func newLogger(level string) (*zap.Logger, error) {
	if strings.EqualFold(level, "debug") {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid %s - '%s'", LogLevelEnv, level)
	}

	return cfg.Build()
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
