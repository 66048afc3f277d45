package session

import (
	"context"
	"errors"
	"io"

	"github.com/textwaves/waveline/internal/api"
	"github.com/textwaves/waveline/internal/fsm"
	"github.com/textwaves/waveline/internal/progress"
)

// RenderResult is the outcome of one render request.
type RenderResult struct {
	State    fsm.State
	Snapshot progress.Snapshot
	Written  int64
	Err      error
}

// Render persists the editable state, submits a render job against the same
// identifier, and streams the rendered media to dst while following render
// progress. The session returns to ready whatever the outcome: a failed
// render never destroys the editable session.
func (c *Controller) Render(ctx context.Context, dst io.Writer, cfg api.RenderConfig) RenderResult {
	if err := c.transition(fsm.EventRender); err != nil {
		return RenderResult{State: c.State(), Err: err}
	}
	jobID := c.JobID()
	cues, beeps, words := c.model.Cues(), c.model.Beeps(), c.model.Words()

	finish := func(written int64, err error) RenderResult {
		c.closeFeed()
		_ = c.transition(fsm.EventRenderDone)
		if err != nil {
			c.notifier.Failed(err.Error(), c.Snapshot().Progress)
		}
		return RenderResult{State: c.State(), Snapshot: c.Snapshot(), Written: written, Err: err}
	}

	// Persist edits first so the render sees the latest timeline.
	if err := c.client.SaveTimeline(ctx, jobID, cues, beeps, words); err != nil {
		return finish(0, err)
	}

	renderCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var updates <-chan progress.Snapshot
	feed, err := c.openFeed(renderCtx, jobID)
	if err != nil {
		c.logger.Warn("render progress feed unavailable", "job_id", jobID, "error", err.Error())
	} else {
		updates = feed.Updates()
	}

	type outcome struct {
		written int64
		err     error
	}
	outcomeCh := make(chan outcome, 1)
	go func() {
		body, err := c.client.SubmitRender(renderCtx, jobID, cues, beeps, words, cfg)
		if err != nil {
			outcomeCh <- outcome{err: err}
			return
		}
		defer body.Close()
		written, err := io.Copy(dst, body)
		outcomeCh <- outcome{written: written, err: err}
	}()

	failMessage := ""
	for {
		select {
		case <-ctx.Done():
			// Unwind the submit/copy goroutine and wait it out so nothing
			// writes to dst after we return.
			cancel()
			<-outcomeCh
			return finish(0, ctx.Err())

		case snap := <-updates:
			c.setSnapshot(snap)
			c.notifier.Progress(snap)
			if snap.Failed() {
				// Unwind the in-flight render call; its outcome arrives below.
				failMessage = snap.FailureMessage()
				cancel()
			}

		case result := <-outcomeCh:
			err := result.err
			if err != nil && failMessage != "" {
				err = errors.New(failMessage)
			}
			return finish(result.written, err)
		}
	}
}
