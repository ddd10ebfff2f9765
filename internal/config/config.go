package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/gymquest/internal/progression"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	MetricsPort int    `toml:"metrics_port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	// postgres
	DBHost string `toml:"db_host"`
	DBPort string `toml:"db_port"`
	DBName string `toml:"db_name"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// kafka, publishing is disabled without brokers
	KafkaBrokers []string `toml:"kafka_brokers"`
	KafkaTopic   string   `toml:"kafka_topic"`
	// http
	SubmitRateLimitPerMin int           `toml:"submit_rate_limit_per_min"`
	SweepLockTTL          time.Duration `toml:"sweep_lock_ttl"`
	ReconcileInterval     time.Duration `toml:"reconcile_interval"`

	Progression Progression `toml:"progression"`
}

// Progression holds the engine policies; zero values keep the engine defaults.
type Progression struct {
	EvidenceBonus      float64       `toml:"evidence_bonus"`
	DisableWeightTrend bool          `toml:"disable_weight_trend"`
	DecayRatePerDay    float64       `toml:"decay_rate_per_day"`
	MaxPenaltyDays     int           `toml:"max_penalty_days"`
	CompoundingDecay   bool          `toml:"compounding_decay"`
	StreakGrace        string        `toml:"streak_grace"`
	StreakWindowDays   int           `toml:"streak_window_days"`
	StoreTimeout       time.Duration `toml:"store_timeout"`
	ApplyTimeout       time.Duration `toml:"apply_timeout"`
	ApplyRetries       int           `toml:"apply_retries"`
	PublishTimeout     time.Duration `toml:"publish_timeout"`
	MaxApplyAttempts   int           `toml:"max_apply_attempts"`
	ReconcileMinAge    time.Duration `toml:"reconcile_min_age"`
	BatchSize          int           `toml:"batch_size"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the validated config of env.
func Load(env, path string) (*Config, error) {
	var tomlConfig Toml
	if _, err := toml.DecodeFile(path, &tomlConfig); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := tomlConfig.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", env, err)
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.MetricsPort == 0 {
		c.MetricsPort = 2112
	}
	if c.KafkaTopic == "" {
		c.KafkaTopic = "gymquest.progress-events"
	}
	if c.SubmitRateLimitPerMin == 0 {
		c.SubmitRateLimitPerMin = 30
	}
	if c.SweepLockTTL == 0 {
		c.SweepLockTTL = 30 * time.Minute
	}
	if c.ReconcileInterval == 0 {
		c.ReconcileInterval = time.Minute
	}
}

func (c *Config) Validate() error {
	switch {
	case c.Port <= 0:
		return errors.New("port must be set")
	case c.Port == c.MetricsPort:
		return errors.New("port and metrics port must differ")
	case c.DBHost == "" || c.DBPort == "" || c.DBName == "":
		return errors.New("db host, port and name must be set")
	case c.RedisHost == "" || c.RedisPort == "":
		return errors.New("redis host and port must be set")
	}
	_, err := c.Progression.EngineConfig()
	return err
}

// EngineConfig overlays the configured policies on the engine defaults.
func (p Progression) EngineConfig() (progression.Config, error) {
	engineConfig := progression.DefaultConfig()

	if p.EvidenceBonus != 0 {
		engineConfig.Scoring.EvidenceBonus = p.EvidenceBonus
	}
	engineConfig.Scoring.WeightTrend = !p.DisableWeightTrend
	if p.DecayRatePerDay != 0 {
		engineConfig.Decay.RatePerDay = p.DecayRatePerDay
	}
	if p.MaxPenaltyDays != 0 {
		engineConfig.Decay.MaxPenaltyDays = p.MaxPenaltyDays
	}
	engineConfig.Decay.Compounding = p.CompoundingDecay

	grace, err := progression.ParseGracePolicy(p.StreakGrace)
	if err != nil {
		return progression.Config{}, err
	}
	engineConfig.StreakGrace = grace

	if p.StreakWindowDays != 0 {
		engineConfig.StreakWindowDays = p.StreakWindowDays
	}
	if p.StoreTimeout != 0 {
		engineConfig.StoreTimeout = p.StoreTimeout
	}
	if p.ApplyTimeout != 0 {
		engineConfig.ApplyTimeout = p.ApplyTimeout
	}
	if p.ApplyRetries != 0 {
		engineConfig.ApplyRetries = p.ApplyRetries
	}
	if p.PublishTimeout != 0 {
		engineConfig.PublishTimeout = p.PublishTimeout
	}
	if p.MaxApplyAttempts != 0 {
		engineConfig.MaxApplyAttempts = p.MaxApplyAttempts
	}
	if p.ReconcileMinAge != 0 {
		engineConfig.ReconcileMinAge = p.ReconcileMinAge
	}
	if p.BatchSize != 0 {
		engineConfig.BatchSize = p.BatchSize
	}

	if err := engineConfig.Validate(); err != nil {
		return progression.Config{}, err
	}
	return engineConfig, nil
}
