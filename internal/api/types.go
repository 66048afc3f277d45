// Package api is the HTTP client for the captioning backend job engine.
package api

import (
	"encoding/json"
	"fmt"

	"github.com/textwaves/waveline/internal/timeline"
)

// Artifact is the backend-produced bundle for a finished processing job.
type Artifact struct {
	JobID     string
	Cues      []timeline.Cue
	Beeps     []timeline.Beep
	Words     []string
	MediaName string
}

// RenderConfig carries the subtitle styling options for a final render.
type RenderConfig struct {
	FontSize        int    `json:"fontSize"`
	FontColor       string `json:"fontColor"`
	BackgroundColor string `json:"backgroundColor"`
	Position        string `json:"position"`
}

// DefaultRenderConfig mirrors the backend's styling defaults.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		FontSize:        24,
		FontColor:       "#ffffff",
		BackgroundColor: "rgba(0,0,0,0.8)",
		Position:        "bottom",
	}
}

// statusEnvelope is the common wrapper on JSON responses.
type statusEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (e statusEnvelope) success() bool {
	return e.Status == "success"
}

// cueJSON is the wire form of one subtitle entry.
type cueJSON struct {
	ID      string  `json:"id,omitempty"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	RawText string  `json:"raw_text,omitempty"`
}

func (c cueJSON) toCue() timeline.Cue {
	raw := c.RawText
	if raw == "" {
		raw = c.Text
	}
	return timeline.Cue{
		ID:          c.ID,
		Start:       c.Start,
		End:         c.End,
		RawText:     raw,
		DisplayText: c.Text,
	}
}

func cueToJSON(c timeline.Cue) cueJSON {
	return cueJSON{
		ID:      c.ID,
		Start:   c.Start,
		End:     c.End,
		Text:    c.DisplayText,
		RawText: c.RawText,
	}
}

// beepJSON is one beep interval on the wire: a [start, end] pair with an
// optional third element naming the source word.
type beepJSON struct {
	Start float64
	End   float64
	Word  string
}

func (b *beepJSON) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 2 {
		return fmt.Errorf("beep interval needs at least [start, end], got %d elements", len(raw))
	}
	start, ok := raw[0].(float64)
	if !ok {
		return fmt.Errorf("beep interval start is not a number")
	}
	end, ok := raw[1].(float64)
	if !ok {
		return fmt.Errorf("beep interval end is not a number")
	}
	b.Start = start
	b.End = end
	if len(raw) > 2 {
		b.Word, _ = raw[2].(string)
	}
	return nil
}

func beepsFromJSON(raw []beepJSON) []timeline.Beep {
	beeps := make([]timeline.Beep, 0, len(raw))
	for i, interval := range raw {
		word := interval.Word
		if word == "" {
			word = timeline.ManualSource
		}
		beeps = append(beeps, timeline.Beep{
			ID:         i,
			Start:      interval.Start,
			End:        interval.End,
			SourceWord: word,
		})
	}
	return beeps
}

// beepsToPairs flattens beeps to the [start, end] pairs the backend persists.
func beepsToPairs(beeps []timeline.Beep) [][]float64 {
	pairs := make([][]float64, 0, len(beeps))
	for _, beep := range beeps {
		pairs = append(pairs, []float64{beep.Start, beep.End})
	}
	return pairs
}
