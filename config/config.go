package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"prepdaily/usecase"
	"prepdaily/utils"
)

type DatabaseConfig struct {
	URI             string
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
	DatabaseName    string
	RetryWrites     bool

	TasksCollection       string
	OccurrencesCollection string
	QuestionsCollection   string
}

type AuthConfig struct {
	JWTSecretKey string
	JWTIssuer    string
}

type EngineConfig struct {
	ReviewIntervals []int
	MaxRangeDays    int
}

type Config struct {
	Port      string
	Database  DatabaseConfig
	Auth      AuthConfig
	RedisURL  string
	Engine    EngineConfig
	LogLevel  string
	LogFormat string
}

// Load reads .env, if there is one, and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) && os.Getenv("GO_ENV") != "test" {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:      utils.GetEnvAsString("PORT", "8080"),
		Database:  LoadDatabaseConfig(),
		RedisURL:  utils.GetEnvAsString("REDIS_URL", "redis://localhost:6379/0"),
		LogLevel:  utils.GetEnvAsString("LOG_LEVEL", "info"),
		LogFormat: utils.GetEnvAsString("LOG_FORMAT", "text"),
		Auth: AuthConfig{
			JWTSecretKey: os.Getenv("JWT_SECRET_KEY"),
			JWTIssuer:    utils.GetEnvAsString("JWT_ISSUER", ""),
		},
		Engine: EngineConfig{
			ReviewIntervals: utils.GetEnvAsIntList("REVIEW_INTERVALS", usecase.DefaultIntervals),
			MaxRangeDays:    utils.GetEnvAsInt("MAX_RANGE_DAYS", usecase.DefaultMaxRangeDays),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URI:             utils.GetEnvAsString("MONGO_URI", "mongodb://localhost:27017"),
		MaxPoolSize:     utils.GetEnvAsUint64("MONGO_MAX_POOL_SIZE", 100),
		MinPoolSize:     utils.GetEnvAsUint64("MONGO_MIN_POOL_SIZE", 10),
		MaxConnIdleTime: time.Duration(utils.GetEnvAsInt("MONGO_MAX_CONN_IDLE_TIME", 60)) * time.Second,
		DatabaseName:    utils.GetEnvAsString("MONGO_DB", "prepdaily"),
		RetryWrites:     utils.GetEnvAsBool("MONGO_RETRY_WRITES", true),

		TasksCollection:       utils.GetEnvAsString("TASKS_COLLECTION", "tasks"),
		OccurrencesCollection: utils.GetEnvAsString("OCCURRENCES_COLLECTION", "daily_instances"),
		QuestionsCollection:   utils.GetEnvAsString("QUESTIONS_COLLECTION", "questions"),
	}
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY environment variable not set")
	}
	if c.Engine.MaxRangeDays <= 0 {
		return fmt.Errorf("MAX_RANGE_DAYS must be positive, got %d", c.Engine.MaxRangeDays)
	}
	if len(c.Engine.ReviewIntervals) == 0 {
		return errors.New("REVIEW_INTERVALS must not be empty")
	}
	return nil
}

func (c *Config) MongoOptions() utils.MongoOptions {
	return utils.MongoOptions{
		URI:             c.Database.URI,
		MaxPoolSize:     c.Database.MaxPoolSize,
		MinPoolSize:     c.Database.MinPoolSize,
		MaxConnIdleTime: c.Database.MaxConnIdleTime,
		RetryWrites:     c.Database.RetryWrites,
	}
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(c.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
