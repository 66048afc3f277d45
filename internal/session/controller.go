// Package session orchestrates artifact readiness, rendering, and teardown for one job.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/textwaves/waveline/internal/api"
	"github.com/textwaves/waveline/internal/fsm"
	"github.com/textwaves/waveline/internal/progress"
	"github.com/textwaves/waveline/internal/timeline"
)

// ErrNotReady is returned when an operation needs a populated session.
var ErrNotReady = errors.New("session artifact not ready")

// DefaultRetryInterval is the fixed delay between artifact fetch retries
// while the backend has not registered the session yet.
const DefaultRetryInterval = 2500 * time.Millisecond

// ArtifactClient is the session-facing subset of the backend client.
type ArtifactClient interface {
	SubmitJob(ctx context.Context, path string, words []string) (string, error)
	FetchArtifact(ctx context.Context, jobID string) (api.Artifact, error)
	FetchMedia(ctx context.Context, jobID string) (io.ReadCloser, error)
	SaveTimeline(ctx context.Context, jobID string, cues []timeline.Cue, beeps []timeline.Beep, words []string) error
	SubmitRender(ctx context.Context, jobID string, cues []timeline.Cue, beeps []timeline.Beep, words []string, cfg api.RenderConfig) (io.ReadCloser, error)
}

// Feed is one open progress subscription.
type Feed interface {
	Updates() <-chan progress.Snapshot
	Latest() progress.Snapshot
	Done() <-chan struct{}
	Close() error
}

// FeedOpener opens a progress feed for one job identifier.
type FeedOpener interface {
	Open(ctx context.Context, jobID string) (Feed, error)
}

// ChannelOpener adapts progress.Dialer to the FeedOpener interface.
type ChannelOpener struct {
	Dialer *progress.Dialer
}

func (o ChannelOpener) Open(ctx context.Context, jobID string) (Feed, error) {
	channel, err := o.Dialer.Open(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return channel, nil
}

// Notifier is the session-facing subset of view behavior.
type Notifier interface {
	Progress(snap progress.Snapshot)
	Ready(cueCount, beepCount int)
	Failed(message string, lastProgress int)
}

// noopNotifier preserves session flow when no view is wired.
type noopNotifier struct{}

func (noopNotifier) Progress(progress.Snapshot) {}
func (noopNotifier) Ready(int, int)             {}
func (noopNotifier) Failed(string, int)         {}

// Controller owns one editing session: its job identifier, timeline, progress
// feed, retry timer, and media handle. State transitions only happen on the
// goroutine running Watch or Render, so the model stays event-driven.
type Controller struct {
	logger     *slog.Logger
	client     ArtifactClient
	feeds      FeedOpener
	notifier   Notifier
	model      *timeline.Model
	retryEvery time.Duration

	mu    sync.RWMutex
	state fsm.State
	jobID string
	snap  progress.Snapshot
	feed  Feed
	media io.ReadCloser
}

// NewController constructs a session controller with safe default fallbacks.
func NewController(logger *slog.Logger, client ArtifactClient, feeds FeedOpener, notifier Notifier, retryEvery time.Duration) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if retryEvery <= 0 {
		retryEvery = DefaultRetryInterval
	}
	return &Controller{
		logger:     logger,
		client:     client,
		feeds:      feeds,
		notifier:   notifier,
		model:      timeline.New(),
		retryEvery: retryEvery,
		state:      fsm.StateIdle,
	}
}

// State returns the current FSM state snapshot.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// JobID returns the active job identifier, if any.
func (c *Controller) JobID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.jobID
}

// Snapshot returns the last known progress snapshot.
func (c *Controller) Snapshot() progress.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Timeline returns the session's editable timeline model. Edits are only
// valid once Watch has reported ready.
func (c *Controller) Timeline() *timeline.Model {
	return c.model
}

// Submit uploads a media file and binds the returned job identifier.
func (c *Controller) Submit(ctx context.Context, path string, words []string) (string, error) {
	if err := c.transition(fsm.EventSubmit); err != nil {
		return "", err
	}

	jobID, err := c.client.SubmitJob(ctx, path, words)
	if err != nil {
		_ = c.transition(fsm.EventFail)
		c.notifier.Failed(err.Error(), 0)
		return "", err
	}

	c.mu.Lock()
	c.jobID = jobID
	c.mu.Unlock()
	c.logger.Info("session bound", "job_id", jobID)
	return jobID, nil
}

// Resume binds an already-known job identifier, as when the editing view is
// entered from a link.
func (c *Controller) Resume(jobID string) error {
	if jobID == "" {
		return fmt.Errorf("job identifier is empty")
	}
	if err := c.transition(fsm.EventSubmit); err != nil {
		return err
	}
	c.mu.Lock()
	c.jobID = jobID
	c.mu.Unlock()
	return nil
}

// OpenMedia fetches the session's media byte stream. Any previously held
// handle is released first; the controller retains ownership so teardown can
// release it.
func (c *Controller) OpenMedia(ctx context.Context) (io.Reader, error) {
	c.mu.RLock()
	state, jobID := c.state, c.jobID
	c.mu.RUnlock()
	if state != fsm.StateReady && state != fsm.StateRendering {
		return nil, ErrNotReady
	}

	c.releaseMedia()
	body, err := c.client.FetchMedia(ctx, jobID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.media = body
	c.mu.Unlock()
	return body, nil
}

// Teardown releases everything the session holds: the progress feed, the
// media handle, and the timeline, then returns to idle. The retry timer is
// owned by the Watch loop and dies with its context, so callers cancel the
// watch context before tearing down.
func (c *Controller) Teardown() {
	c.closeFeed()
	c.releaseMedia()
	c.model.Reset()

	c.mu.Lock()
	c.jobID = ""
	c.snap = progress.Snapshot{}
	c.mu.Unlock()
	_ = c.transition(fsm.EventReset)
}

// transition applies one FSM event to the controller state.
func (c *Controller) transition(event fsm.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, event)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

func (c *Controller) setSnapshot(snap progress.Snapshot) {
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
}

// openFeed closes any previous feed before opening the next one; there is
// never more than one live channel per session.
func (c *Controller) openFeed(ctx context.Context, jobID string) (Feed, error) {
	c.closeFeed()
	feed, err := c.feeds.Open(ctx, jobID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.feed = feed
	c.mu.Unlock()
	return feed, nil
}

func (c *Controller) closeFeed() {
	c.mu.Lock()
	feed := c.feed
	c.feed = nil
	c.mu.Unlock()
	if feed != nil {
		_ = feed.Close()
	}
}

func (c *Controller) releaseMedia() {
	c.mu.Lock()
	media := c.media
	c.media = nil
	c.mu.Unlock()
	if media != nil {
		_ = media.Close()
	}
}
