// Package doctor runs runtime readiness diagnostics for config, backend, and audio.
package doctor

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jfreymuth/pulse"

	"github.com/textwaves/waveline/internal/config"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	configMessage := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		configMessage = fmt.Sprintf("no file at %q; using defaults", cfg.Path)
	}
	checks = append(checks, Check{Name: "config", Pass: true, Message: configMessage})

	checks = append(checks, checkBackendReady(cfg.Config))

	if cfg.Config.Beep.Enable {
		checks = append(checks, checkAudioServer())
	}

	if len(cfg.Config.Words.Forbidden) == 0 {
		checks = append(checks, Check{
			Name:    "words.forbidden",
			Pass:    true,
			Message: "empty; uploads will rely on the backend's suggested words",
		})
	} else {
		checks = append(checks, Check{
			Name:    "words.forbidden",
			Pass:    true,
			Message: fmt.Sprintf("%d configured", len(cfg.Config.Words.Forbidden)),
		})
	}

	return Report{Checks: checks}
}

// checkBackendReady probes the suggested-words endpoint, the cheapest
// authenticated-free GET the backend serves.
func checkBackendReady(cfg config.Config) Check {
	url := strings.TrimRight(cfg.API.BaseURL, "/") + "/api/config/profanity_words"
	client := http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return Check{Name: "backend.ready", Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Check{Name: "backend.ready", Pass: false, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, url)}
	}
	return Check{Name: "backend.ready", Pass: true, Message: fmt.Sprintf("ready at %s", url)}
}

// checkAudioServer validates that a Pulse server accepts connections.
func checkAudioServer() Check {
	client, err := pulse.NewClient(pulse.ClientApplicationName("waveline-doctor"))
	if err != nil {
		return Check{Name: "audio.server", Pass: false, Message: fmt.Sprintf("connect failed: %v", err)}
	}
	defer client.Close()

	sink, err := client.DefaultSink()
	if err != nil {
		return Check{Name: "audio.server", Pass: false, Message: fmt.Sprintf("no default sink: %v", err)}
	}
	return Check{Name: "audio.server", Pass: true, Message: fmt.Sprintf("default sink %q", sink.ID())}
}
