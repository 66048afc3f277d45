package session

import (
	"context"
	"errors"
	"time"

	"github.com/textwaves/waveline/internal/api"
	"github.com/textwaves/waveline/internal/fsm"
	"github.com/textwaves/waveline/internal/progress"
)

// WatchResult is the outcome of one artifact-readiness watch.
type WatchResult struct {
	State    fsm.State
	Snapshot progress.Snapshot
	Err      error
}

type fetchResult struct {
	gen      int
	artifact api.Artifact
	err      error
}

// Watch resolves whether the job's artifact is ready. It opens the progress
// feed and fetches the artifact in parallel; a fetch that comes back "not
// found" is absorbed and retried on a fixed cadence until the fetch succeeds
// or the backend reports failure. Whichever signal resolves readiness first
// wins and the other is cancelled. All transitions happen on this goroutine;
// stale fetch results are discarded by generation.
func (c *Controller) Watch(ctx context.Context) WatchResult {
	if err := c.transition(fsm.EventWatch); err != nil {
		return WatchResult{State: c.State(), Err: err}
	}
	jobID := c.JobID()

	var updates <-chan progress.Snapshot
	var feedDone <-chan struct{}
	feed, err := c.openFeed(ctx, jobID)
	if err != nil {
		// The polling fallback can still resolve readiness without push.
		c.logger.Warn("progress feed unavailable; relying on polling",
			"job_id", jobID, "error", err.Error())
	} else {
		updates = feed.Updates()
		feedDone = feed.Done()
	}

	fetchCh := make(chan fetchResult, 1)
	gen := 0
	inFlight := false
	startFetch := func() {
		gen++
		inFlight = true
		go func(g int) {
			artifact, err := c.client.FetchArtifact(ctx, jobID)
			select {
			case fetchCh <- fetchResult{gen: g, artifact: artifact, err: err}:
			case <-ctx.Done():
			}
		}(gen)
	}

	var retryTimer *time.Timer
	var retryC <-chan time.Time
	stopRetry := func() {
		if retryTimer != nil {
			retryTimer.Stop()
			retryTimer = nil
			retryC = nil
		}
	}
	// scheduleRetry cancels any pending timer first; there is never more than
	// one pending retry per job.
	scheduleRetry := func() {
		stopRetry()
		retryTimer = time.NewTimer(c.retryEvery)
		retryC = retryTimer.C
	}
	cleanup := func() {
		stopRetry()
		c.closeFeed()
	}

	startFetch()

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return WatchResult{State: c.State(), Snapshot: c.Snapshot(), Err: ctx.Err()}

		case snap := <-updates:
			c.setSnapshot(snap)
			c.notifier.Progress(snap)
			if snap.Failed() {
				cleanup()
				return c.failWatch(snap.FailureMessage())
			}
			if snap.Progress >= 100 && !inFlight {
				// Completion signal: fetch now instead of waiting out the timer.
				stopRetry()
				startFetch()
			}

		case <-feedDone:
			last := feed.Latest()
			if last.Failed() {
				cleanup()
				return c.failWatch(last.FailureMessage())
			}
			// Push transport is gone; the polling fallback keeps driving.
			c.logger.Info("progress feed closed", "job_id", jobID, "progress", last.Progress)
			updates = nil
			feedDone = nil
			if last.Progress >= 100 && !inFlight {
				stopRetry()
				startFetch()
			}

		case res := <-fetchCh:
			if res.gen != gen {
				continue // superseded fetch, discard
			}
			inFlight = false
			switch {
			case res.err == nil:
				c.model.Populate(res.artifact.Cues, res.artifact.Beeps, res.artifact.Words)
				cleanup()
				if err := c.transition(fsm.EventArtifact); err != nil {
					return WatchResult{State: c.State(), Snapshot: c.Snapshot(), Err: err}
				}
				c.logger.Info("artifact ready",
					"job_id", jobID,
					"cues", c.model.CueCount(),
					"beeps", c.model.BeepCount(),
				)
				c.notifier.Ready(c.model.CueCount(), c.model.BeepCount())
				return WatchResult{State: c.State(), Snapshot: c.Snapshot()}

			case errors.Is(res.err, api.ErrNotFound):
				// The backend has not registered the session yet. Not a
				// failure; try again after the fixed delay.
				scheduleRetry()

			default:
				cleanup()
				return c.failWatch(res.err.Error())
			}

		case <-retryC:
			retryTimer = nil
			retryC = nil
			startFetch()
		}
	}
}

// failWatch lands in the failed state and surfaces one message plus the last
// known progress percentage.
func (c *Controller) failWatch(message string) WatchResult {
	_ = c.transition(fsm.EventFail)
	c.notifier.Failed(message, c.Snapshot().Progress)
	return WatchResult{State: c.State(), Snapshot: c.Snapshot(), Err: errors.New(message)}
}
