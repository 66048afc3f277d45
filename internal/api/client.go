package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/textwaves/waveline/internal/timeline"
)

// ErrNotFound signals that a job's artifact is not registered yet. It is the
// not-found race, not a failure: callers retry instead of surfacing it.
var ErrNotFound = errors.New("session not found")

// Client talks to the captioning backend over HTTP.
type Client struct {
	baseURL string
	logger  *slog.Logger

	// http carries JSON calls under a request timeout; stream has none so
	// media and render bodies can be read past it.
	http   *http.Client
	stream *http.Client
}

// NewClient builds a client for the given base URL. The timeout applies to
// JSON requests only; byte-stream fetches are bounded by their context.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		http:    &http.Client{Timeout: timeout},
		stream:  &http.Client{},
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SubmitJob uploads a media file plus the forbidden-word list and returns the
// job identifier assigned by the backend.
func (c *Client) SubmitJob(ctx context.Context, path string, words []string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open media file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("video", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("create multipart field: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy media into request: %w", err)
	}
	if len(words) > 0 {
		encoded, err := json.Marshal(words)
		if err != nil {
			return "", fmt.Errorf("encode forbidden words: %w", err)
		}
		if err := form.WriteField("forbidden_words", string(encoded)); err != nil {
			return "", fmt.Errorf("write forbidden words field: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/process_video_preview", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.stream.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit job: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		statusEnvelope
		VideoHash string `json:"video_hash"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		return "", fmt.Errorf("submit job: %w", err)
	}
	if !payload.success() || payload.VideoHash == "" {
		return "", fmt.Errorf("submit job rejected: %s", payload.Message)
	}

	c.logger.Info("job submitted", "job_id", payload.VideoHash, "file", filepath.Base(path))
	return payload.VideoHash, nil
}

// FetchArtifact retrieves the finalized bundle for a job, or ErrNotFound when
// the backend has not registered the session yet.
func (c *Client) FetchArtifact(ctx context.Context, jobID string) (Artifact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/get_session/"+url.PathEscape(jobID), nil)
	if err != nil {
		return Artifact{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Artifact{}, fmt.Errorf("fetch artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Artifact{}, fmt.Errorf("fetch artifact for %q: %w", jobID, ErrNotFound)
	}

	var payload struct {
		statusEnvelope
		Data struct {
			VideoHash      string     `json:"video_hash"`
			Subtitles      []cueJSON  `json:"subtitles"`
			ForbiddenWords []string   `json:"forbidden_words"`
			BeepIntervals  []beepJSON `json:"beep_intervals"`
			VideoInfo      struct {
				Filename string `json:"filename"`
			} `json:"video_info"`
		} `json:"data"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		return Artifact{}, fmt.Errorf("fetch artifact: %w", err)
	}
	if !payload.success() {
		return Artifact{}, fmt.Errorf("fetch artifact rejected: %s", payload.Message)
	}

	cues := make([]timeline.Cue, 0, len(payload.Data.Subtitles))
	for _, sub := range payload.Data.Subtitles {
		cues = append(cues, sub.toCue())
	}

	return Artifact{
		JobID:     payload.Data.VideoHash,
		Cues:      cues,
		Beeps:     beepsFromJSON(payload.Data.BeepIntervals),
		Words:     payload.Data.ForbiddenWords,
		MediaName: payload.Data.VideoInfo.Filename,
	}, nil
}

// FetchMedia streams the media bytes for a job. The caller owns the returned
// handle and must close it when superseded.
func (c *Client) FetchMedia(ctx context.Context, jobID string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/get_video/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch media: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("fetch media: %s", readErrorMessage(resp))
	}
	return resp.Body, nil
}

// SaveTimeline persists the session's editable state back to the job.
func (c *Client) SaveTimeline(ctx context.Context, jobID string, cues []timeline.Cue, beeps []timeline.Beep, words []string) error {
	subtitles := make([]cueJSON, 0, len(cues))
	for _, cue := range cues {
		subtitles = append(subtitles, cueToJSON(cue))
	}

	payload := map[string]any{
		"video_hash":      jobID,
		"subtitles":       subtitles,
		"forbidden_words": words,
		"beep_intervals":  beepsToPairs(beeps),
	}

	resp, err := c.postJSON(ctx, "/api/update_subtitles", payload)
	if err != nil {
		return fmt.Errorf("save timeline: %w", err)
	}
	defer resp.Body.Close()

	var env statusEnvelope
	if err := decodeJSON(resp, &env); err != nil {
		return fmt.Errorf("save timeline: %w", err)
	}
	if !env.success() {
		return fmt.Errorf("save timeline rejected: %s", env.Message)
	}
	return nil
}

// SubmitRender requests a final render and returns the rendered media stream.
// The caller owns the returned handle.
func (c *Client) SubmitRender(ctx context.Context, jobID string, cues []timeline.Cue, beeps []timeline.Beep, words []string, cfg RenderConfig) (io.ReadCloser, error) {
	payload := map[string]any{
		"video_hash":      jobID,
		"subtitle_config": cfg,
		"forbidden_words": words,
		"beep_intervals":  beepsToPairs(beeps),
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode render request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/render_final_video", bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit render: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("render failed: %s", readErrorMessage(resp))
	}
	return resp.Body, nil
}

// SuggestedWords fetches the backend's default forbidden-word list.
func (c *Client) SuggestedWords(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/config/profanity_words", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch suggested words: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Words        []string `json:"words"`
		DefaultWords []string `json:"default_words"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, fmt.Errorf("fetch suggested words: %w", err)
	}
	if len(payload.Words) > 0 {
		return payload.Words, nil
	}
	return payload.DefaultWords, nil
}

// postJSON issues a JSON POST under the request timeout client.
func (c *Client) postJSON(ctx context.Context, path string, payload any) (*http.Response, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

// decodeJSON rejects non-2xx responses and decodes the body otherwise.
func decodeJSON(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s", readErrorMessage(resp))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readErrorMessage extracts a human-readable message from an error response.
func readErrorMessage(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var env statusEnvelope
		if json.Unmarshal(body, &env) == nil && env.Message != "" {
			return env.Message
		}
	}
	return fmt.Sprintf("backend returned %s", resp.Status)
}
