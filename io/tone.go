package io

import (
	"io"
	"log"
	"time"

	"github.com/youpy/go-wav"
)

const (
	TONE_PITCH       = 440  // Buzzer frequency, in Hz.
	TONE_SAMPLE_RATE = 8000 // Samples per second.

	toneSilence = 0x80 // 8-bit WAV samples are unsigned.
	toneHigh    = 0xc0
	toneLow     = 0x40
)

// Tone captures the buzzer as a square wave. Samples are buffered in memory
// and encoded as an 8-bit mono WAV by Write.
type Tone struct {
	Verbose    bool
	Pitch      int              // Buzzer frequency; zero uses TONE_PITCH.
	SampleRate int              // Sample rate; zero uses TONE_SAMPLE_RATE.
	Now        func() time.Time // Clock; nil uses time.Now.

	started bool
	active  bool
	since   time.Time
	phase   int
	buffer  []wav.Sample
}

func (tone *Tone) now() time.Time {
	if tone.Now == nil {
		return time.Now()
	}
	return tone.Now()
}

func (tone *Tone) pitch() int {
	if tone.Pitch <= 0 {
		return TONE_PITCH
	}
	return tone.Pitch
}

func (tone *Tone) sampleRate() int {
	if tone.SampleRate <= 0 {
		return TONE_SAMPLE_RATE
	}
	return tone.SampleRate
}

// Listen records sound state changes until the channel is closed.
func (tone *Tone) Listen(sound <-chan bool) {
	for active := range sound {
		tone.Set(active)
	}
	tone.flush()
}

// Set records a change of the sound state at the current time.
func (tone *Tone) Set(active bool) {
	tone.flush()

	if tone.Verbose && active != tone.active {
		log.Printf("tone: %v", active)
	}

	tone.active = active
}

// flush appends samples covering the time since the last state change.
func (tone *Tone) flush() {
	now := tone.now()
	if !tone.started {
		tone.started = true
		tone.since = now
		return
	}

	rate := tone.sampleRate()
	count := int(now.Sub(tone.since) * time.Duration(rate) / time.Second)
	if count <= 0 {
		return
	}
	// Keep the fractional sample for the next flush.
	tone.since = tone.since.Add(time.Duration(count) * time.Second / time.Duration(rate))

	half := max(rate/(2*tone.pitch()), 1)
	for range count {
		value := toneSilence
		if tone.active {
			if (tone.phase/half)%2 == 0 {
				value = toneHigh
			} else {
				value = toneLow
			}
			tone.phase++
		}

		sample := wav.Sample{}
		sample.Values[0] = value
		tone.buffer = append(tone.buffer, sample)
	}
}

// Samples returns the number of buffered samples.
func (tone *Tone) Samples() int {
	return len(tone.buffer)
}

// Write encodes the buffered samples as a WAV stream.
func (tone *Tone) Write(w io.Writer) (err error) {
	enc := wav.NewWriter(w, uint32(len(tone.buffer)), 1, uint32(tone.sampleRate()), 8)
	if enc == nil {
		err = ErrToneFormat
		return
	}

	if tone.Verbose {
		log.Printf("tone: writing %d samples", len(tone.buffer))
	}

	err = enc.WriteSamples(tone.buffer)

	return
}
