package config

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"GO_ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`

	// Redis (progress cache, generation limits, token revocation)
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// Roadmap generation
	GeminiAPIKey             string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel              string `mapstructure:"GEMINI_MODEL"`
	GenerationTimeoutSeconds int    `mapstructure:"GENERATION_TIMEOUT_SECONDS"`
	GenerationLimitPerHour   int    `mapstructure:"GENERATION_LIMIT_PER_HOUR"`

	// Practice (quiz, coding problems, judge, mentor, resume)
	PracticeTimeoutSeconds int `mapstructure:"PRACTICE_TIMEOUT_SECONDS"`
	PracticeLimitPerHour   int `mapstructure:"PRACTICE_LIMIT_PER_HOUR"`

	// Task completion
	Timezone                string `mapstructure:"TIMEZONE"`
	TaskRepeatRewards       bool   `mapstructure:"TASK_REPEAT_REWARDS"`
	ProgressCacheTTLSeconds int    `mapstructure:"PROGRESS_CACHE_TTL_SECONDS"`
}

var AppConfig *Config

// defaults doubles as the list of known keys; viper only resolves env vars for keys it knows about.
var defaults = map[string]any{
	"PORT":                       "8080",
	"GO_ENV":                     "development",
	"DATABASE_URL":               "sqlite:ai-helper.db",
	"JWT_SECRET":                 "",
	"FRONTEND_URL":               "http://localhost:3000",
	"REDIS_ADDR":                 "",
	"REDIS_PASSWORD":             "",
	"GEMINI_API_KEY":             "",
	"GEMINI_MODEL":               "gemini-2.5-flash",
	"GENERATION_TIMEOUT_SECONDS": 90,
	"GENERATION_LIMIT_PER_HOUR":  5,
	"PRACTICE_TIMEOUT_SECONDS":   60,
	"PRACTICE_LIMIT_PER_HOUR":    30,
	"TIMEZONE":                   "Local",
	"TASK_REPEAT_REWARDS":        false,
	"PROGRESS_CACHE_TTL_SECONDS": 300,
}

// Load reads configuration from the given env file (optional) and the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadConfig() {
	cfg, err := Load(".env")
	if err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	AppConfig = cfg
}

// Validate rejects settings the server cannot run safely with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET must be set")
	}
	return nil
}

// Location resolves TIMEZONE. "today" and the early-bird hour are evaluated in it.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Unknown TIMEZONE %q, falling back to local time", c.Timezone)
		return time.Local
	}
	return loc
}

func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.GenerationTimeoutSeconds) * time.Second
}

func (c *Config) PracticeTimeout() time.Duration {
	return time.Duration(c.PracticeTimeoutSeconds) * time.Second
}

func (c *Config) ProgressCacheTTL() time.Duration {
	return time.Duration(c.ProgressCacheTTLSeconds) * time.Second
}
