// Package config builds the immutable process configuration once at startup.
// Everything downstream receives it explicitly; there is no mutable global
// state after FromEnv returns.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	// Hard SLA ceilings per content type.
	MaxStoryTimeout        = 30 * time.Second
	MaxIllustrationTimeout = 45 * time.Second
)

type Config struct {
	Addr string

	OpenAIKey   string
	OpenAIModel string
	GeminiKey   string
	ImageModel  string

	StoryTimeout        time.Duration
	IllustrationTimeout time.Duration

	RetryAttempts  int
	RetryBaseDelay time.Duration

	QueueWorkers int
	QueueDepth   int
	CacheTTL     time.Duration
}

// FromEnv reads the environment and validates the result. Main loads .env
// beforehand via godotenv autoload.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:                ":" + envOr("PORT", "8080"),
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:         envOr("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiKey:           os.Getenv("GEMINI_API_KEY"),
		ImageModel:          envOr("IMAGE_MODEL", "imagen-3.0-generate-002"),
		StoryTimeout:        envDuration("STORY_TIMEOUT", MaxStoryTimeout),
		IllustrationTimeout: envDuration("ILLUSTRATION_TIMEOUT", MaxIllustrationTimeout),
		RetryAttempts:       envInt("RETRY_ATTEMPTS", 3),
		RetryBaseDelay:      envDuration("RETRY_BASE_DELAY", time.Second),
		QueueWorkers:        envInt("QUEUE_WORKERS", 4),
		QueueDepth:          envInt("QUEUE_DEPTH", 100),
		CacheTTL:            envDuration("CACHE_TTL", time.Hour),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.StoryTimeout <= 0 || c.StoryTimeout > MaxStoryTimeout {
		return fmt.Errorf("story timeout must be within (0, %s], got %s", MaxStoryTimeout, c.StoryTimeout)
	}
	if c.IllustrationTimeout <= 0 || c.IllustrationTimeout > MaxIllustrationTimeout {
		return fmt.Errorf("illustration timeout must be within (0, %s], got %s", MaxIllustrationTimeout, c.IllustrationTimeout)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got %d", c.RetryAttempts)
	}
	if c.RetryBaseDelay <= 0 {
		return fmt.Errorf("retry base delay must be positive, got %s", c.RetryBaseDelay)
	}

	// Worst-case retry wall time must fit under the tighter SLA so retries
	// never outlive the outer deadline on their own.
	var backoff time.Duration
	for i := 0; i < c.RetryAttempts-1; i++ {
		backoff += c.RetryBaseDelay << i
	}
	if backoff >= c.StoryTimeout {
		return fmt.Errorf("retry backoff budget %s exceeds story timeout %s", backoff, c.StoryTimeout)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
