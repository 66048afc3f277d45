// Package beepcue drives the censor-beep audio cue against playback position.
package beepcue

import (
	"log/slog"

	"github.com/textwaves/waveline/internal/timeline"
)

// Output is a single audio cue sink. Start begins the tone, Stop ends it,
// Close releases the underlying audio resources. Implementations acquire the
// audio line lazily on the first Start.
type Output interface {
	Start() error
	Stop()
	Close()
}

// Engine scans the timeline's beep intervals on every playback-position tick
// and keeps exactly one cue sounding while any interval covers the position.
// It is driven from the owning session's goroutine, like the timeline itself.
type Engine struct {
	logger   *slog.Logger
	model    *timeline.Model
	out      Output
	sounding bool
}

// NewEngine wires a cue engine to one session's timeline and audio output.
func NewEngine(logger *slog.Logger, model *timeline.Model, out Output) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{logger: logger, model: model, out: out}
}

// Tick reacts to one playback-position update. Multiple matching intervals
// still produce a single cue; no stacking.
func (e *Engine) Tick(position float64) {
	covered := e.model.BeepAt(position)

	switch {
	case covered && !e.sounding:
		if err := e.out.Start(); err != nil {
			e.logger.Warn("start audio cue failed", "position", position, "error", err.Error())
			return
		}
		e.sounding = true
	case !covered && e.sounding:
		e.out.Stop()
		e.sounding = false
	}
}

// Pause stops any sounding cue, as when playback pauses or ends.
func (e *Engine) Pause() {
	if e.sounding {
		e.out.Stop()
		e.sounding = false
	}
}

// Sounding reports whether a cue is currently audible.
func (e *Engine) Sounding() bool {
	return e.sounding
}

// Teardown stops any sounding cue and releases all audio resources.
func (e *Engine) Teardown() {
	e.Pause()
	e.out.Close()
}
