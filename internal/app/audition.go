package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/textwaves/waveline/internal/beepcue"
	"github.com/textwaves/waveline/internal/config"
)

// auditionTickInterval is the wall-clock cadence for simulated playback.
const auditionTickInterval = 100 * time.Millisecond

func (r Runner) commandAudition(ctx context.Context, cfg config.Config, logger *slog.Logger, jobID string) int {
	client := r.newBackend(cfg, logger)
	ctrl := r.newController(client, cfg, logger)
	if err := ctrl.Resume(jobID); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	result := ctrl.Watch(ctx)
	if result.Err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", result.Err)
		ctrl.Teardown()
		return 1
	}

	var out beepcue.Output = silentOutput{}
	if cfg.Beep.Enable {
		out = beepcue.NewToneOutput(beepcue.ToneConfig{
			FrequencyHz: cfg.Beep.FrequencyHz,
			Volume:      cfg.Beep.Volume,
			SampleRate:  cfg.Beep.SampleRate,
		})
	}
	engine := beepcue.NewEngine(logger, ctrl.Timeline(), out)

	finish := func(code int) int {
		engine.Teardown()
		ctrl.Teardown()
		return code
	}

	duration := ctrl.Timeline().Duration()
	fmt.Fprintf(r.Stdout, "auditioning %s (%.2fs)\n", jobID, duration)

	start := time.Now()
	ticker := time.NewTicker(auditionTickInterval)
	defer ticker.Stop()

	lastCueID := ""
	for {
		select {
		case <-ctx.Done():
			return finish(1)

		case <-ticker.C:
			position := time.Since(start).Seconds()
			if position > duration {
				fmt.Fprintln(r.Stdout, "audition complete")
				return finish(0)
			}

			engine.Tick(position)
			if cue, ok := ctrl.Timeline().ActiveCue(position); ok && cue.ID != lastCueID {
				lastCueID = cue.ID
				fmt.Fprintf(r.Stdout, "[%s - %s] %s\n",
					formatSeconds(cue.Start), formatSeconds(cue.End), cue.DisplayText)
			}
		}
	}
}

// silentOutput auditions a timeline without an audio server.
type silentOutput struct{}

func (silentOutput) Start() error { return nil }
func (silentOutput) Stop()        {}
func (silentOutput) Close()       {}
