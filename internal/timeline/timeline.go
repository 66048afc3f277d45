// Package timeline models the editable cue/beep timeline for one session.
package timeline

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/textwaves/waveline/internal/mask"
)

// DefaultBeepDuration is the length of a manually added beep interval.
const DefaultBeepDuration = 0.5

// ManualSource marks beep intervals added by the user rather than the backend.
const ManualSource = "manual"

// Field selects which edge of a cue or beep interval a timing edit targets.
type Field string

const (
	FieldStart Field = "start"
	FieldEnd   Field = "end"
)

// Cue is one timed subtitle entry. DisplayText is always the masking
// transform of RawText under the session's current word set.
type Cue struct {
	ID          string
	Start       float64
	End         float64
	RawText     string
	DisplayText string
}

// Beep is one timed audio-censorship window, independent of cues.
type Beep struct {
	ID         int
	Start      float64
	End        float64
	SourceWord string
}

// Model owns one session's ordered cues, beep intervals, and word set.
// It is mutated only from the owning session's goroutine: population happens
// once before edits can occur, so no locking is needed.
type Model struct {
	cues    []Cue
	beeps   []Beep
	words   *mask.Set
	matcher *mask.Matcher
}

// New returns an empty model with no forbidden words.
func New() *Model {
	return &Model{words: mask.NewSet()}
}

// Populate replaces the whole timeline from a fetched artifact in one update.
// Cues arriving without an ID get a fresh one; display text is recomputed
// from raw text so the masking invariant holds from the first read.
func (m *Model) Populate(cues []Cue, beeps []Beep, words []string) {
	m.words = mask.NewSet(words...)
	m.matcher = mask.Build(m.words)

	m.cues = make([]Cue, 0, len(cues))
	for _, cue := range cues {
		if strings.TrimSpace(cue.ID) == "" {
			cue.ID = uuid.NewString()
		}
		cue.DisplayText = mask.Mask(cue.RawText, m.matcher)
		m.cues = append(m.cues, cue)
	}

	m.beeps = make([]Beep, len(beeps))
	copy(m.beeps, beeps)
}

// Reset discards all cues, beeps, and words.
func (m *Model) Reset() {
	m.cues = nil
	m.beeps = nil
	m.words = mask.NewSet()
	m.matcher = nil
}

// SetWords replaces the forbidden-word set and recomputes every cue's
// display text from its raw text. Raw text and beep intervals are untouched.
func (m *Model) SetWords(words []string) {
	m.words = mask.NewSet(words...)
	m.remask()
}

// AddWord inserts one forbidden word and remasks every cue. Blank or
// already-present words leave the model untouched.
func (m *Model) AddWord(word string) bool {
	if !m.words.Add(word) {
		return false
	}
	m.remask()
	return true
}

// RemoveWord deletes one forbidden word (case-insensitive) and remasks
// every cue.
func (m *Model) RemoveWord(word string) bool {
	if !m.words.Remove(word) {
		return false
	}
	m.remask()
	return true
}

// HasWord reports whether a word is already forbidden.
func (m *Model) HasWord(word string) bool {
	return m.words.Contains(word)
}

func (m *Model) remask() {
	m.matcher = mask.Build(m.words)
	for i := range m.cues {
		m.cues[i].DisplayText = mask.Mask(m.cues[i].RawText, m.matcher)
	}
}

// Words returns the forbidden words in insertion order.
func (m *Model) Words() []string {
	return m.words.Words()
}

// Cues returns a copy of the cue sequence.
func (m *Model) Cues() []Cue {
	out := make([]Cue, len(m.cues))
	copy(out, m.cues)
	return out
}

// Beeps returns a copy of the beep sequence.
func (m *Model) Beeps() []Beep {
	out := make([]Beep, len(m.beeps))
	copy(out, m.beeps)
	return out
}

// CueCount returns the number of cues.
func (m *Model) CueCount() int { return len(m.cues) }

// BeepCount returns the number of beep intervals.
func (m *Model) BeepCount() int { return len(m.beeps) }

// EditCueText sets a cue's raw text and recomputes its display text under
// the current matcher. Unknown IDs are a no-op.
func (m *Model) EditCueText(id, rawText string) {
	for i := range m.cues {
		if m.cues[i].ID != id {
			continue
		}
		m.cues[i].RawText = rawText
		m.cues[i].DisplayText = mask.Mask(rawText, m.matcher)
		return
	}
}

// EditCueTiming sets a cue's start or end. Out-of-range or inverted values
// are accepted as-is; unknown IDs are a no-op.
func (m *Model) EditCueTiming(id string, field Field, value float64) {
	for i := range m.cues {
		if m.cues[i].ID != id {
			continue
		}
		switch field {
		case FieldStart:
			m.cues[i].Start = value
		case FieldEnd:
			m.cues[i].End = value
		}
		return
	}
}

// AddBeep appends a manual beep of the default duration starting at the
// given time, with the next free integer ID.
func (m *Model) AddBeep(at float64) Beep {
	id := 0
	for _, beep := range m.beeps {
		if beep.ID >= id {
			id = beep.ID + 1
		}
	}
	beep := Beep{
		ID:         id,
		Start:      at,
		End:        at + DefaultBeepDuration,
		SourceWord: ManualSource,
	}
	m.beeps = append(m.beeps, beep)
	return beep
}

// RemoveBeep deletes a beep by ID. Unknown IDs are a no-op.
func (m *Model) RemoveBeep(id int) {
	for i := range m.beeps {
		if m.beeps[i].ID == id {
			m.beeps = append(m.beeps[:i], m.beeps[i+1:]...)
			return
		}
	}
}

// EditBeepTiming sets a beep's start or end. Unknown IDs are a no-op.
func (m *Model) EditBeepTiming(id int, field Field, value float64) {
	for i := range m.beeps {
		if m.beeps[i].ID != id {
			continue
		}
		switch field {
		case FieldStart:
			m.beeps[i].Start = value
		case FieldEnd:
			m.beeps[i].End = value
		}
		return
	}
}

// ActiveCue returns the first cue covering the playback position.
func (m *Model) ActiveCue(position float64) (Cue, bool) {
	for _, cue := range m.cues {
		if position >= cue.Start && position <= cue.End {
			return cue, true
		}
	}
	return Cue{}, false
}

// BeepAt reports whether any beep interval covers the playback position.
func (m *Model) BeepAt(position float64) bool {
	for _, beep := range m.beeps {
		if position >= beep.Start && position <= beep.End {
			return true
		}
	}
	return false
}

// Duration returns the latest end time across all cues and beeps.
func (m *Model) Duration() float64 {
	max := 0.0
	for _, cue := range m.cues {
		if cue.End > max {
			max = cue.End
		}
	}
	for _, beep := range m.beeps {
		if beep.End > max {
			max = beep.End
		}
	}
	return max
}

// ParseSeconds coerces user timing input to seconds. Malformed input is
// reported rather than raised so stale or garbled edits stay no-ops.
func ParseSeconds(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
