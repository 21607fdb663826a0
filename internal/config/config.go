package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development test production"`
	ServerPort      int           `mapstructure:"PORT" validate:"gte=1,lte=65535"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"gt=0"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=trace debug info warn error fatal panic"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=console json"`

	BcryptCost     int      `mapstructure:"BCRYPT_COST" validate:"gte=4,lte=31"`
	AllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS" validate:"min=1"`

	StatsSchedule string `mapstructure:"STATS_SCHEDULE" validate:"required"`
	EventHistory  int    `mapstructure:"EVENT_HISTORY" validate:"gte=1,lte=100000"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load loads configuration from a .env file (if present), environment
// variables and defaults, then validates it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", 8080)
	v.SetDefault("SHUTDOWN_TIMEOUT", "5s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("STATS_SCHEDULE", "@every 1m")
	v.SetDefault("EVENT_HISTORY", 100)

	shutdown, err := time.ParseDuration(v.GetString("SHUTDOWN_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	c := &Config{
		AppEnv:          strings.ToLower(v.GetString("APP_ENV")),
		ServerPort:      v.GetInt("PORT"),
		ShutdownTimeout: shutdown,
		LogLevel:        strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:       strings.ToLower(v.GetString("LOG_FORMAT")),
		BcryptCost:      v.GetInt("BCRYPT_COST"),
		AllowedOrigins:  splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		StatsSchedule:   v.GetString("STATS_SCHEDULE"),
		EventHistory:    v.GetInt("EVENT_HISTORY"),
	}

	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := cron.ParseStandard(c.StatsSchedule); err != nil {
		return nil, fmt.Errorf("invalid STATS_SCHEDULE %q: %w", c.StatsSchedule, err)
	}
	return c, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
