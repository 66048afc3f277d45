package beepcue

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/jfreymuth/pulse"
)

// ToneConfig controls the synthesized censor tone.
type ToneConfig struct {
	FrequencyHz float64
	Volume      float64
	SampleRate  int
}

func (c ToneConfig) withDefaults() ToneConfig {
	if c.FrequencyHz <= 0 {
		c.FrequencyHz = 1000
	}
	if c.Volume <= 0 || c.Volume > 1 {
		c.Volume = 0.18
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	return c
}

// ToneOutput plays a continuous sine tone through Pulse. The client is
// acquired lazily on the first Start and held until Close; each cue gets its
// own playback stream so stopping always releases the stream.
type ToneOutput struct {
	cfg    ToneConfig
	client *pulse.Client
	stream *pulse.PlaybackStream
	gen    *sineGen
}

// NewToneOutput builds an output without touching the audio server yet.
func NewToneOutput(cfg ToneConfig) *ToneOutput {
	return &ToneOutput{cfg: cfg.withDefaults()}
}

// Start begins the tone. A second Start while sounding is a no-op.
func (t *ToneOutput) Start() error {
	if t.stream != nil {
		return nil
	}
	if t.client == nil {
		client, err := pulse.NewClient(pulse.ClientApplicationName("waveline"))
		if err != nil {
			return fmt.Errorf("connect pulse server: %w", err)
		}
		t.client = client
	}

	gen := newSineGen(t.cfg)
	stream, err := t.client.NewPlayback(
		pulse.Int16Reader(gen.read),
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(t.cfg.SampleRate),
		pulse.PlaybackLatency(0.02),
		pulse.PlaybackMediaName("waveline censor beep"),
	)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	t.gen = gen
	t.stream = stream
	stream.Start()
	return nil
}

// Stop ramps the tone down and releases the stream. Safe when nothing sounds.
func (t *ToneOutput) Stop() {
	if t.stream == nil {
		return
	}
	t.gen.release()
	t.stream.Drain()
	t.stream.Close()
	t.stream = nil
	t.gen = nil
}

// Close releases the stream and the Pulse client.
func (t *ToneOutput) Close() {
	t.Stop()
	if t.client != nil {
		t.client.Close()
		t.client = nil
	}
}

// sineGen produces int16 sine samples with a short attack ramp and, once
// released, a matching release ramp before ending the stream.
type sineGen struct {
	freq   float64
	volume float64
	rate   int
	ramp   int

	released atomic.Bool

	// Touched only from the pulse reader goroutine.
	pos      int
	fading   bool
	fadeLeft int
	done     bool
}

func newSineGen(cfg ToneConfig) *sineGen {
	ramp := cfg.SampleRate / 200 // 5ms against clicks
	if ramp < 1 {
		ramp = 1
	}
	return &sineGen{
		freq:   cfg.FrequencyHz,
		volume: cfg.Volume,
		rate:   cfg.SampleRate,
		ramp:   ramp,
	}
}

func (g *sineGen) release() {
	g.released.Store(true)
}

func (g *sineGen) read(buf []int16) (int, error) {
	if g.done {
		return 0, pulse.EndOfData
	}
	if !g.fading && g.released.Load() {
		g.fading = true
		g.fadeLeft = g.ramp
	}

	for i := range buf {
		if g.fading && g.fadeLeft <= 0 {
			g.done = true
			return i, pulse.EndOfData
		}

		envelope := 1.0
		if g.pos < g.ramp {
			envelope = float64(g.pos) / float64(g.ramp)
		}
		if g.fading {
			release := float64(g.fadeLeft) / float64(g.ramp)
			if release < envelope {
				envelope = release
			}
			g.fadeLeft--
		}

		t := float64(g.pos) / float64(g.rate)
		sample := math.Sin(2 * math.Pi * g.freq * t)
		buf[i] = int16(math.Round(sample * g.volume * envelope * 32767))
		g.pos++
	}
	return len(buf), nil
}
