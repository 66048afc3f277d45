package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	base := strings.TrimSpace(cfg.API.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("api.base_url must not be empty")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("api.base_url is not a valid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api.base_url scheme must be one of: http, https")
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("api.base_url must include a host")
	}

	if cfg.API.RequestTimeoutMS <= 0 {
		return nil, fmt.Errorf("api.request_timeout_ms must be > 0")
	}
	if cfg.Session.RetryIntervalMS <= 0 {
		return nil, fmt.Errorf("session.retry_interval_ms must be > 0")
	}

	if cfg.Beep.Enable {
		if cfg.Beep.FrequencyHz <= 0 {
			return nil, fmt.Errorf("beep.frequency_hz must be > 0")
		}
		if cfg.Beep.Volume <= 0 || cfg.Beep.Volume > 1 {
			return nil, fmt.Errorf("beep.volume must be in (0, 1]")
		}
		if cfg.Beep.SampleRate <= 0 {
			return nil, fmt.Errorf("beep.sample_rate must be > 0")
		}
	}

	seen := make(map[string]struct{}, len(cfg.Words.Forbidden))
	for _, word := range cfg.Words.Forbidden {
		trimmed := strings.ToLower(strings.TrimSpace(word))
		if trimmed == "" {
			warnings = append(warnings, Warning{Message: "words.forbidden contains an empty entry; ignoring"})
			continue
		}
		if _, dup := seen[trimmed]; dup {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("words.forbidden lists %q more than once", trimmed)})
			continue
		}
		seen[trimmed] = struct{}{}
	}

	return warnings, nil
}
