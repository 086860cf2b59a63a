package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Addr                string        `mapstructure:"APP_ADDR"`
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	JWTSecret           string        `mapstructure:"JWT_SECRET"`
	JWTTTL              time.Duration `mapstructure:"JWT_TTL"`
	Environment         string        `mapstructure:"APP_ENV"`
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
	FrontendURL         string        `mapstructure:"FRONTEND_URL"`
	RunMigrations       bool          `mapstructure:"RUN_MIGRATIONS"`
	RunSeed             bool          `mapstructure:"RUN_SEED"`
	SeedAdminEmail      string        `mapstructure:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword   string        `mapstructure:"SEED_ADMIN_PASSWORD"`
	SeedTaskTypes       bool          `mapstructure:"SEED_TASK_TYPES"`
	MaxBodyBytes        int64         `mapstructure:"MAX_BODY_BYTES"`
	RateLimitPerMinute  int           `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	SubmissionTxTimeout time.Duration `mapstructure:"SUBMISSION_TX_TIMEOUT"`
	MetricsEnabled      bool          `mapstructure:"METRICS_ENABLED"`
	OTLPEndpoint        string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName         string        `mapstructure:"OTEL_SERVICE_NAME"`
	PayslipDir          string        `mapstructure:"PAYSLIP_DIR"`
	Timezone            string        `mapstructure:"TIMEZONE"`
}

var defaults = map[string]any{
	"APP_ADDR":                    ":8080",
	"DATABASE_URL":                "",
	"JWT_SECRET":                  "",
	"JWT_TTL":                     "24h",
	"APP_ENV":                     "development",
	"LOG_LEVEL":                   "info",
	"FRONTEND_URL":                "http://localhost:3000",
	"RUN_MIGRATIONS":              true,
	"RUN_SEED":                    true,
	"SEED_ADMIN_EMAIL":            "admin@garment.com",
	"SEED_ADMIN_PASSWORD":         "",
	"SEED_TASK_TYPES":             true,
	"MAX_BODY_BYTES":              1048576,
	"RATE_LIMIT_PER_MINUTE":       120,
	"SUBMISSION_TX_TIMEOUT":       "15s",
	"METRICS_ENABLED":             true,
	"OTEL_EXPORTER_OTLP_ENDPOINT": "",
	"OTEL_SERVICE_NAME":           "garmenthr",
	"PAYSLIP_DIR":                 "storage/payslips",
	"TIMEZONE":                    "Local",
}

// Load reads a .env file when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// Location is the calendar used for "today" and payroll month windows.
func (c Config) Location() *time.Location {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.IsProduction() {
		if len(strings.TrimSpace(c.JWTSecret)) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be set or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.SubmissionTxTimeout <= 0 {
		return fmt.Errorf("SUBMISSION_TX_TIMEOUT must be positive")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.Timezone != "" && !strings.EqualFold(c.Timezone, "local") {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("TIMEZONE %q is not a known location", c.Timezone)
		}
	}
	return nil
}
