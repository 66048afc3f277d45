// Package config resolves, parses, validates, and defaults waveline configuration.
package config

import "time"

// Config is the fully materialized runtime configuration used by waveline.
type Config struct {
	API     APIConfig     `toml:"api"`
	Session SessionConfig `toml:"session"`
	Beep    BeepConfig    `toml:"beep"`
	Words   WordsConfig   `toml:"words"`
}

// APIConfig locates the captioning backend.
type APIConfig struct {
	BaseURL          string `toml:"base_url"`
	RequestTimeoutMS int    `toml:"request_timeout_ms"`
}

// SessionConfig controls artifact polling cadence.
type SessionConfig struct {
	RetryIntervalMS int `toml:"retry_interval_ms"`
}

// BeepConfig controls the audible censor cue during auditioning.
type BeepConfig struct {
	Enable      bool    `toml:"enable"`
	FrequencyHz float64 `toml:"frequency_hz"`
	Volume      float64 `toml:"volume"`
	SampleRate  int     `toml:"sample_rate"`
}

// WordsConfig seeds the forbidden-word set for new uploads.
type WordsConfig struct {
	Forbidden []string `toml:"forbidden"`
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Message string
}

// RequestTimeout returns the backend request timeout as a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.RequestTimeoutMS) * time.Millisecond
}

// RetryInterval returns the artifact polling interval as a duration.
func (c Config) RetryInterval() time.Duration {
	return time.Duration(c.Session.RetryIntervalMS) * time.Millisecond
}
