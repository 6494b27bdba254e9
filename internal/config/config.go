package config

import (
	"errors"
	"fmt"
	"route-planner-service/internal/domain"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds process configuration read from the environment (and .env).
type Config struct {
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	RedisAddress  string `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	Port          string `mapstructure:"PORT"`

	CatalogPath       string `mapstructure:"CATALOG_PATH"`
	CatalogSource     string `mapstructure:"CATALOG_SOURCE"`
	CatalogWatch      bool   `mapstructure:"CATALOG_WATCH"`
	CatalogReloadCron string `mapstructure:"CATALOG_RELOAD_CRON"`
	PlanCron          string `mapstructure:"PLAN_CRON"`
	SeedPath          string `mapstructure:"SEED_PATH"`

	AssignmentTTL time.Duration `mapstructure:"ASSIGNMENT_TTL"`
	Notifier      string        `mapstructure:"NOTIFIER"`
	Parallelism   int           `mapstructure:"PLAN_PARALLELISM"`

	VehicleMaxMassKg   float64 `mapstructure:"VEHICLE_MAX_MASS_KG"`
	VehicleMaxVolumeM3 float64 `mapstructure:"VEHICLE_MAX_VOLUME_M3"`
	VehicleMaxStops    int     `mapstructure:"VEHICLE_MAX_STOPS"`
	VehicleMaxHours    float64 `mapstructure:"VEHICLE_MAX_HOURS"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	LogFile   string `mapstructure:"LOG_FILE"`
}

var keys = []string{
	"DATABASE_URL", "REDIS_ADDRESS", "REDIS_PASSWORD", "PORT",
	"CATALOG_PATH", "CATALOG_SOURCE", "CATALOG_WATCH", "CATALOG_RELOAD_CRON", "PLAN_CRON", "SEED_PATH",
	"ASSIGNMENT_TTL", "NOTIFIER", "PLAN_PARALLELISM",
	"VEHICLE_MAX_MASS_KG", "VEHICLE_MAX_VOLUME_M3", "VEHICLE_MAX_STOPS", "VEHICLE_MAX_HOURS",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
}

func setDefaults(v *viper.Viper) {
	def := domain.DefaultCapacityProfile()

	v.SetDefault("REDIS_ADDRESS", "localhost:6379")
	v.SetDefault("PORT", "8080")
	v.SetDefault("CATALOG_PATH", "data/catalog/catalog.json")
	v.SetDefault("CATALOG_SOURCE", "file")
	v.SetDefault("CATALOG_WATCH", false)
	v.SetDefault("CATALOG_RELOAD_CRON", "")
	v.SetDefault("PLAN_CRON", "")
	v.SetDefault("SEED_PATH", "data/seeds/seed.json")
	v.SetDefault("ASSIGNMENT_TTL", 30*time.Minute)
	v.SetDefault("NOTIFIER", "log")
	v.SetDefault("PLAN_PARALLELISM", 4)
	v.SetDefault("VEHICLE_MAX_MASS_KG", def.MaxMassKg)
	v.SetDefault("VEHICLE_MAX_VOLUME_M3", def.MaxVolumeM3)
	v.SetDefault("VEHICLE_MAX_STOPS", def.MaxStops)
	v.SetDefault("VEHICLE_MAX_HOURS", def.MaxMinutes/60)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_FILE", "")
}

// Load reads .env files (when present) and the environment.
func Load(envFiles ...string) (Config, error) {
	// Missing .env is fine; real environment variables still apply.
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return Config{}, fmt.Errorf("load config: bind %s: %w", k, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: unmarshal: %w", err)
	}

	cfg.RedisPassword = trimOptionalQuotes(cfg.RedisPassword)
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.CatalogSource {
	case "file", "postgres":
	default:
		return fmt.Errorf("CATALOG_SOURCE must be file or postgres, got %q", c.CatalogSource)
	}
	switch c.Notifier {
	case "asynq", "log":
	default:
		return fmt.Errorf("NOTIFIER must be asynq or log, got %q", c.Notifier)
	}
	if c.AssignmentTTL <= 0 {
		return errors.New("ASSIGNMENT_TTL must be positive")
	}
	if c.Parallelism < 1 {
		return errors.New("PLAN_PARALLELISM must be at least 1")
	}
	return c.Capacity().Validate()
}

// Capacity profile built from the VEHICLE_* keys.
func (c Config) Capacity() domain.VehicleCapacityProfile {
	return domain.VehicleCapacityProfile{
		MaxMassKg:   c.VehicleMaxMassKg,
		MaxVolumeM3: c.VehicleMaxVolumeM3,
		MaxStops:    c.VehicleMaxStops,
		MaxMinutes:  c.VehicleMaxHours * 60,
	}
}

// RequireDatabase fails when DATABASE_URL is unset.
func (c Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}

func trimOptionalQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
