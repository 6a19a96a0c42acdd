// Package config provides application configuration loaded once at startup.
package config

import (
	"os"
	"strconv"
	"time"
)

// Default values for reply scheduling and processing
const (
	// DefaultMaxRetries is the number of processing attempts before a job is failed
	DefaultMaxRetries = 3
	// DefaultLatencyMin is the minimum synthetic reply delay
	DefaultLatencyMin = 45 * time.Second
	// DefaultLatencyMax is the maximum synthetic reply delay
	DefaultLatencyMax = 180 * time.Second
	// DefaultReplyMaxLen is the maximum length of a generated reply
	DefaultReplyMaxLen = 600
)

// Settings holds the feature configuration for the reply subsystem.
// It is built once at startup and injected into service constructors so
// tests can supply their own values without touching process environment.
type Settings struct {
	// SyntheticRepliesEnabled gates the whole enqueue path. When false,
	// Enqueue is a no-op that reports ReasonDisabled.
	SyntheticRepliesEnabled bool
	// MaxRetries is the number of processing attempts before a job is
	// marked failed.
	MaxRetries int
	// LatencyMin and LatencyMax bound the deterministic reply delay.
	LatencyMin time.Duration
	LatencyMax time.Duration
	// ReplyMaxLen bounds the length of generated reply text.
	ReplyMaxLen int
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		SyntheticRepliesEnabled: true,
		MaxRetries:              DefaultMaxRetries,
		LatencyMin:              DefaultLatencyMin,
		LatencyMax:              DefaultLatencyMax,
		ReplyMaxLen:             DefaultReplyMaxLen,
	}
}

// SettingsFromEnv builds Settings from environment variables, falling back
// to defaults for anything unset.
func SettingsFromEnv() Settings {
	s := DefaultSettings()
	s.SyntheticRepliesEnabled = GetEnvBool("SYNTHETIC_REPLIES_ENABLED", s.SyntheticRepliesEnabled)
	s.MaxRetries = GetEnvInt("REPLY_MAX_RETRIES", s.MaxRetries)
	s.LatencyMin = GetEnvDuration("REPLY_LATENCY_MIN", s.LatencyMin)
	s.LatencyMax = GetEnvDuration("REPLY_LATENCY_MAX", s.LatencyMax)
	s.ReplyMaxLen = GetEnvInt("REPLY_MAX_LEN", s.ReplyMaxLen)
	return s
}

// GetEnv retrieves the value of an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// GetEnvBool retrieves a boolean environment variable with a fallback value if not set
func GetEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// GetEnvInt retrieves an integer environment variable with a fallback value if not set
func GetEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// GetEnvDuration retrieves a duration environment variable with a fallback value if not set
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
