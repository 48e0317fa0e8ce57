package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "SCORING"

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Database *DatabaseConfig `mapstructure:"database"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	MySQL    *MySQLConfig    `mapstructure:"mysql"`
	Redis    *RedisConfig    `mapstructure:"redis"`
	Elastic  *ElasticConfig  `mapstructure:"elastic"`
	Discord  *DiscordConfig  `mapstructure:"discord"`
	Scoring  *ScoringConfig  `mapstructure:"scoring"`
	Workers  *WorkersConfig  `mapstructure:"workers"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	JWTSigningKey      string   `mapstructure:"jwt_signing_key"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type ElasticConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
}

type DiscordConfig struct {
	WebhookID    string `mapstructure:"webhook_id"`
	WebhookToken string `mapstructure:"webhook_token"`
}

type ScoringConfig struct {
	Pepper          string        `mapstructure:"pepper"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	Cooldown        time.Duration `mapstructure:"cooldown"`
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`
	RateLimitMax    int           `mapstructure:"rate_limit_max"`
}

type WorkersConfig struct {
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	BatchSize        int           `mapstructure:"batch_size"`
	DLQRetryInterval time.Duration `mapstructure:"dlq_retry_interval"`
	// DLQMaxAttempts stops retrying a dead letter once it has failed this many times.
	DLQMaxAttempts int `mapstructure:"dlq_max_attempts"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("mysql.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.ttl", 15*time.Second)
	v.SetDefault("elastic.addresses", []string{})
	v.SetDefault("elastic.index", "ctf_solves_v1")
	v.SetDefault("discord.webhook_id", "")
	v.SetDefault("discord.webhook_token", "")
	v.SetDefault("scoring.max_attempts", 30)
	v.SetDefault("scoring.cooldown", 10*time.Second)
	v.SetDefault("scoring.rate_limit_window", 60*time.Second)
	v.SetDefault("scoring.rate_limit_max", 10)
	v.SetDefault("workers.poll_interval", time.Second)
	v.SetDefault("workers.batch_size", 100)
	v.SetDefault("workers.dlq_retry_interval", 30*time.Second)
	v.SetDefault("workers.dlq_max_attempts", 10)
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("conf.Validate -> %w", err)
	}
	return conf, nil
}

// Load reads the yaml file at path, then applies SCORING_* environment overrides.
func Load(path string) (*AppConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}
	return decode(v)
}

func (c *AppConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.API, validation.Required),
		validation.Field(&c.Database, validation.Required),
		validation.Field(&c.Scoring, validation.Required),
		validation.Field(&c.Workers, validation.Required),
	)
}

func (c APIConfig) Validate() error {
	return validation.ValidateStruct(
		&c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.JWTSigningKey, validation.Required),
	)
}

func (c DatabaseConfig) Validate() error {
	return validation.ValidateStruct(
		&c,
		validation.Field(&c.Driver, validation.Required, validation.In("postgres", "mysql")),
	)
}

func (c ScoringConfig) Validate() error {
	return validation.ValidateStruct(
		&c,
		validation.Field(&c.Pepper, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.MaxAttempts, validation.Required, validation.Min(1)),
		validation.Field(&c.Cooldown, validation.Min(time.Duration(0))),
		validation.Field(&c.RateLimitWindow, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.RateLimitMax, validation.Required, validation.Min(1)),
	)
}

func (c WorkersConfig) Validate() error {
	return validation.ValidateStruct(
		&c,
		validation.Field(&c.PollInterval, validation.Required, validation.Min(10*time.Millisecond)),
		validation.Field(&c.BatchSize, validation.Required, validation.Min(1)),
		validation.Field(&c.DLQRetryInterval, validation.Required),
		validation.Field(&c.DLQMaxAttempts, validation.Required, validation.Min(1)),
	)
}

// Watcher keeps the scoring limits in sync with the config file while the process runs.
type Watcher struct {
	mu      sync.RWMutex
	scoring ScoringConfig
	v       *viper.Viper
}

func NewWatcher(path string, initial ScoringConfig) *Watcher {
	return &Watcher{scoring: initial, v: newViper(path)}
}

func (w *Watcher) Scoring() ScoringConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.scoring
}

// Start begins watching the file; invalid edits are logged and ignored.
func (w *Watcher) Start(onChange func(ScoringConfig)) error {
	if err := w.v.ReadInConfig(); err != nil {
		return fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	w.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		conf, err := decode(w.v)
		if err != nil {
			zap.L().Warn("ignoring invalid config change", zap.String("file", e.Name), zap.Error(err))
			return
		}

		w.mu.Lock()
		w.scoring = *conf.Scoring
		w.mu.Unlock()

		zap.L().Info("scoring limits reloaded",
			zap.Int("max_attempts", conf.Scoring.MaxAttempts),
			zap.Duration("cooldown", conf.Scoring.Cooldown),
			zap.Duration("rate_limit_window", conf.Scoring.RateLimitWindow),
			zap.Int("rate_limit_max", conf.Scoring.RateLimitMax),
		)
		if onChange != nil {
			onChange(*conf.Scoring)
		}
	})
	w.v.WatchConfig()

	return nil
}
