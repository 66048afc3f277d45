// Package progress consumes the backend's push feed of job progress snapshots.
package progress

// Stage identifies one phase of backend processing.
type Stage string

// Preview-processing stages reported by the backend, plus the render-side
// stages the render job emits.
const (
	StageStarting        Stage = "starting"
	StageUploading       Stage = "uploading"
	StageExtractingAudio Stage = "extracting_audio"
	StageTranscribing    Stage = "transcribing"
	StageCensoring       Stage = "censoring"
	StageCompleted       Stage = "completed"
	StageError           Stage = "error"

	StageLoadingSession  Stage = "loading_session"
	StageProcessingBeeps Stage = "processing_beeps"
	StageRenderingVideo  Stage = "rendering_video"
	StageFinalizing      Stage = "finalizing"
)

// Snapshot is the latest known status of an in-flight backend job.
// Only the most recent snapshot matters; history is never kept.
type Snapshot struct {
	Stage    Stage  `json:"stage"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
	Error    string `json:"error"`
}

// Failed reports whether the backend declared the job failed.
func (s Snapshot) Failed() bool {
	return s.Error != "" || s.Stage == StageError
}

// Terminal reports whether no further snapshots are expected.
func (s Snapshot) Terminal() bool {
	return s.Progress >= 100 || s.Failed()
}

// FailureMessage picks the most human-readable description of a failure.
func (s Snapshot) FailureMessage() string {
	if s.Error != "" {
		return s.Error
	}
	if s.Message != "" {
		return s.Message
	}
	return "processing failed"
}
