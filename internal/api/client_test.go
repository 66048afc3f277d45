package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/textwaves/waveline/internal/timeline"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second, nil)
}

func TestSubmitJobSendsMultipartFields(t *testing.T) {
	media := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(media, []byte("fake mp4 bytes"), 0o600))

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/process_video_preview", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1 << 20))

		file, header, err := r.FormFile("video")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "clip.mp4", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "fake mp4 bytes", string(content))

		var words []string
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("forbidden_words")), &words))
		require.Equal(t, []string{"merda", "porra"}, words)

		_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "video_hash": "abc123"})
	})

	jobID, err := client.SubmitJob(context.Background(), media, []string{"merda", "porra"})
	require.NoError(t, err)
	require.Equal(t, "abc123", jobID)
}

func TestSubmitJobRejection(t *testing.T) {
	media := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(media, []byte("x"), 0o600))

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "unsupported codec"})
	})

	_, err := client.SubmitJob(context.Background(), media, nil)
	require.ErrorContains(t, err, "unsupported codec")
}

func TestFetchArtifactSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/get_session/abc123", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data": map[string]any{
				"video_hash": "abc123",
				"subtitles": []map[string]any{
					{"id": "c1", "start": 0.0, "end": 2.5, "text": "essa palavra é ******", "raw_text": "essa palavra é censurada"},
					{"start": 3.0, "end": 5.0, "text": "tudo limpo"},
				},
				"forbidden_words": []string{"censurada"},
				"beep_intervals":  []any{[]any{2.0, 2.5, "censurada"}, []any{7.0, 7.4}},
				"video_info":      map[string]any{"filename": "clip.mp4"},
			},
		})
	})

	artifact, err := client.FetchArtifact(context.Background(), "abc123")
	require.NoError(t, err)
	require.Equal(t, "abc123", artifact.JobID)
	require.Equal(t, "clip.mp4", artifact.MediaName)
	require.Equal(t, []string{"censurada"}, artifact.Words)

	require.Len(t, artifact.Cues, 2)
	require.Equal(t, "c1", artifact.Cues[0].ID)
	require.Equal(t, "essa palavra é censurada", artifact.Cues[0].RawText)
	require.Equal(t, "tudo limpo", artifact.Cues[1].RawText, "raw text falls back to text")

	require.Equal(t, []timeline.Beep{
		{ID: 0, Start: 2.0, End: 2.5, SourceWord: "censurada"},
		{ID: 1, Start: 7.0, End: 7.4, SourceWord: timeline.ManualSource},
	}, artifact.Beeps)
}

func TestFetchArtifactNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "Sessão não encontrada"})
	})

	_, err := client.FetchArtifact(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSaveTimelinePayload(t *testing.T) {
	var captured map[string]json.RawMessage
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/update_subtitles", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "success"})
	})

	cues := []timeline.Cue{{ID: "c1", Start: 0, End: 2.5, RawText: "raw", DisplayText: "masked"}}
	beeps := []timeline.Beep{{ID: 0, Start: 2.0, End: 2.5, SourceWord: "censurada"}}
	err := client.SaveTimeline(context.Background(), "abc123", cues, beeps, []string{"censurada"})
	require.NoError(t, err)

	require.JSONEq(t, `"abc123"`, string(captured["video_hash"]))
	require.JSONEq(t, `[{"id":"c1","start":0,"end":2.5,"text":"masked","raw_text":"raw"}]`, string(captured["subtitles"]))
	require.JSONEq(t, `[[2,2.5]]`, string(captured["beep_intervals"]))
	require.JSONEq(t, `["censurada"]`, string(captured["forbidden_words"]))
}

func TestSubmitRenderStreamsBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/render_final_video", r.URL.Path)
		var payload map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.JSONEq(t, `{"fontSize":24,"fontColor":"#ffffff","backgroundColor":"rgba(0,0,0,0.8)","position":"bottom"}`, string(payload["subtitle_config"]))
		_, _ = w.Write([]byte("rendered bytes"))
	})

	body, err := client.SubmitRender(context.Background(), "abc123", nil, nil, nil, DefaultRenderConfig())
	require.NoError(t, err)
	defer body.Close()

	content, err := io.ReadAll(body)
	require.NoError(t, err)
	require.Equal(t, "rendered bytes", string(content))
}

func TestSubmitRenderFailureMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "render pipeline crashed"})
	})

	_, err := client.SubmitRender(context.Background(), "abc123", nil, nil, nil, DefaultRenderConfig())
	require.ErrorContains(t, err, "render pipeline crashed")
}

func TestFetchMedia(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/get_video/abc123", r.URL.Path)
		_, _ = w.Write([]byte("media bytes"))
	})

	body, err := client.FetchMedia(context.Background(), "abc123")
	require.NoError(t, err)
	defer body.Close()

	content, err := io.ReadAll(body)
	require.NoError(t, err)
	require.Equal(t, "media bytes", string(content))
}

func TestSuggestedWords(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/config/profanity_words", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"default_words": []string{"merda", "porra"}})
	})

	words, err := client.SuggestedWords(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"merda", "porra"}, words)
}
