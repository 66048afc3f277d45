package progress

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Dialer opens progress channels against one backend.
type Dialer struct {
	BaseURL     string
	Logger      *slog.Logger
	DialTimeout time.Duration
}

// Channel is one open push subscription for a single job. The latest snapshot
// replaces the previous one; nothing is buffered or queued beyond that. The
// channel self-closes on a terminal snapshot or a transport error and never
// retries on its own.
type Channel struct {
	jobID  string
	conn   *websocket.Conn
	logger *slog.Logger

	updates chan Snapshot
	done    chan struct{}

	mu     sync.Mutex
	latest Snapshot
	closed bool
}

// Open establishes the push subscription for one job identifier.
func (d *Dialer) Open(ctx context.Context, jobID string) (*Channel, error) {
	endpoint, err := d.endpoint(jobID)
	if err != nil {
		return nil, err
	}

	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dialer := websocket.Dialer{HandshakeTimeout: d.DialTimeout}
	if dialer.HandshakeTimeout <= 0 {
		dialer.HandshakeTimeout = 5 * time.Second
	}

	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial progress feed %q: %w", endpoint, err)
	}

	c := &Channel{
		jobID:   jobID,
		conn:    conn,
		logger:  logger,
		updates: make(chan Snapshot, 1),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// endpoint derives the websocket URL for a job from the HTTP base URL.
func (d *Dialer) endpoint(jobID string) (string, error) {
	base, err := url.Parse(strings.TrimRight(d.BaseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parse progress base url %q: %w", d.BaseURL, err)
	}
	switch base.Scheme {
	case "http":
		base.Scheme = "ws"
	case "https":
		base.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported progress scheme %q", base.Scheme)
	}
	base.Path += "/api/progress/" + url.PathEscape(jobID)
	return base.String(), nil
}

// JobID returns the job this channel was opened for.
func (c *Channel) JobID() string {
	return c.jobID
}

// Updates delivers snapshots with latest-wins semantics: a slow consumer
// only ever sees the newest value. The channel is never closed; watch Done
// for termination.
func (c *Channel) Updates() <-chan Snapshot {
	return c.updates
}

// Latest returns the most recent snapshot received.
func (c *Channel) Latest() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Done is closed when the channel has shut down for any reason.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Close shuts the subscription down. Idempotent and safe on an
// already-closed channel.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	return c.conn.Close()
}

// readLoop receives snapshots until a terminal one arrives or the transport
// fails. Transport errors are logged, not retried; reconnecting is the
// orchestrator's call.
func (c *Channel) readLoop() {
	defer func() { _ = c.Close() }()

	for {
		var snap Snapshot
		if err := c.conn.ReadJSON(&snap); err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				c.logger.Warn("progress feed transport error", "job_id", c.jobID, "error", err.Error())
			}
			return
		}

		c.mu.Lock()
		c.latest = snap
		c.mu.Unlock()

		c.publish(snap)

		if snap.Terminal() {
			return
		}
	}
}

// publish replaces any undelivered snapshot with the newer one.
func (c *Channel) publish(snap Snapshot) {
	for {
		select {
		case c.updates <- snap:
			return
		default:
		}
		select {
		case <-c.updates:
		default:
		}
	}
}
