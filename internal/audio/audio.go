package audio

import (
	"fmt"
	"math"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const (
	SampleRate = 44100
	BufferSize = 512

	// MaxVoices bounds the tones sounding at once; the oldest is dropped.
	MaxVoices = 8
)

// Tone is a lab event worth hearing.
type Tone int

const (
	ToneTick   Tone = iota // a completed pendulum period
	ToneBounce             // a rail bounce
	TonePhase              // a centripetal phase change
	ToneDone               // a run finished
)

type toneShape struct {
	freq  float64
	dur   float64
	decay float64
	amp   float64
}

var tones = map[Tone]toneShape{
	ToneTick:   {freq: 880, dur: 0.06, decay: 0.015, amp: 0.5},
	ToneBounce: {freq: 220, dur: 0.15, decay: 0.04, amp: 0.7},
	TonePhase:  {freq: 523.25, dur: 0.25, decay: 0.08, amp: 0.4},
	ToneDone:   {freq: 659.25, dur: 0.6, decay: 0.2, amp: 0.4},
}

type voice struct {
	toneShape
	age float64
}

// Processor mixes event tones into a stereo output stream.
type Processor struct {
	stream *portaudio.Stream

	mu     sync.Mutex
	voices []voice
	filter [2]float64
	volume float64

	Active bool
}

func NewProcessor() *Processor {
	return &Processor{volume: 0.3}
}

// Start opens the default output device. Without a device the processor
// stays inactive and Trigger is a no-op for the listener.
func (a *Processor) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audio init: %w", err)
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, a.Process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("audio open: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("audio start: %w", err)
	}
	a.stream = stream
	a.Active = true
	return nil
}

func (a *Processor) Stop() {
	if a.stream != nil {
		a.stream.Stop()
		a.stream.Close()
		a.stream = nil
	}
	if a.Active {
		portaudio.Terminate()
	}
	a.Active = false
}

func (a *Processor) SetVolume(v float64) {
	a.mu.Lock()
	a.volume = math.Max(0, math.Min(v, 1))
	a.mu.Unlock()
}

// Trigger starts a tone.
func (a *Processor) Trigger(t Tone) {
	shape, ok := tones[t]
	if !ok {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.voices) >= MaxVoices {
		a.voices = a.voices[1:]
	}
	a.voices = append(a.voices, voice{toneShape: shape})
}

// Voices reports how many tones are still sounding.
func (a *Processor) Voices() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.voices)
}

// Triangle wave, softer than a square click.
func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

// One-pole low-pass.
func lpf(sample, cutoff, dt, state float64) float64 {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	return state + alpha*(sample-state)
}

// Process is the stream callback: it fills both channels of out.
func (a *Processor) Process(out [][]float32) {
	const dt = 1.0 / SampleRate

	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range out[0] {
		sample := 0.0
		for j := range a.voices {
			v := &a.voices[j]
			if v.age < v.dur {
				env := math.Exp(-v.age / v.decay)
				sample += v.amp * env * triangle(v.freq*v.age)
			}
			v.age += dt
		}

		a.filter[0] = lpf(sample, 2400, dt, a.filter[0])
		a.filter[1] = lpf(sample, 1800, dt, a.filter[1])
		for ch := range out {
			out[ch][i] = float32(a.filter[ch%2] * a.volume)
		}
	}

	live := a.voices[:0]
	for _, v := range a.voices {
		if v.age < v.dur {
			live = append(live, v)
		}
	}
	a.voices = live
}
