// Package audio plays short synthesized effect sounds.
package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

// Sound identifies an effect sound.
type Sound int

const (
	SoundBrick Sound = iota
	SoundPaddle
	SoundWall
	SoundWin
	SoundLoss
	soundCount
)

func (s Sound) String() string {
	switch s {
	case SoundBrick:
		return "brick"
	case SoundPaddle:
		return "paddle"
	case SoundWall:
		return "wall"
	case SoundWin:
		return "win"
	case SoundLoss:
		return "loss"
	default:
		return "unknown"
	}
}

// Config controls audio output.
type Config struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
	Volume     float64 `mapstructure:"volume" yaml:"volume"` // Master volume, 0..1
	SampleRate int     `mapstructure:"sample_rate" yaml:"sample_rate"`
}

// DefaultConfig returns audio settings with sound off.
func DefaultConfig() Config {
	return Config{
		Enabled:    false,
		Volume:     0.5,
		SampleRate: 44100,
	}
}

// Validate checks the audio settings.
func (c Config) Validate() error {
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("audio: volume %g out of range [0, 1]", c.Volume)
	}
	if c.SampleRate < 8000 {
		return fmt.Errorf("audio: sample rate %d too low", c.SampleRate)
	}
	return nil
}

// Player plays effect sounds without blocking.
type Player interface {
	Play(s Sound)
	Close()
}

// Nop is a Player that stays silent.
type Nop struct{}

func (Nop) Play(Sound) {}
func (Nop) Close()     {}

// note is one tone of a sound.
type note struct {
	freq float64
	dur  time.Duration
}

var sounds = [soundCount][]note{
	SoundBrick:  {{660, 40 * time.Millisecond}},
	SoundPaddle: {{440, 40 * time.Millisecond}},
	SoundWall:   {{330, 30 * time.Millisecond}},
	SoundWin:    {{523.25, 120 * time.Millisecond}, {659.25, 120 * time.Millisecond}, {783.99, 200 * time.Millisecond}},
	SoundLoss:   {{392, 150 * time.Millisecond}, {329.63, 150 * time.Millisecond}, {261.63, 300 * time.Millisecond}},
}

// Speaker plays sounds on the local audio device. Sounds are rendered once
// into buffers and mixed, so overlapping effects do not cut each other off.
type Speaker struct {
	mu      sync.Mutex
	mixer   *beep.Mixer
	buffers [soundCount]*beep.Buffer
	closed  bool
}

// New returns a Speaker when audio is enabled, and Nop otherwise.
// On failure it returns Nop together with the error, so callers can log and carry on.
func New(cfg Config) (Player, error) {
	if !cfg.Enabled {
		return Nop{}, nil
	}
	sp, err := NewSpeaker(cfg)
	if err != nil {
		return Nop{}, err
	}
	return sp, nil
}

// NewSpeaker renders every sound and opens the audio device.
func NewSpeaker(cfg Config) (*Speaker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rate := beep.SampleRate(cfg.SampleRate)
	s := &Speaker{mixer: &beep.Mixer{}}
	for snd := Sound(0); snd < soundCount; snd++ {
		buf, err := render(sounds[snd], rate, cfg.Volume)
		if err != nil {
			return nil, fmt.Errorf("audio: render %s: %w", snd, err)
		}
		s.buffers[snd] = buf
	}

	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("audio: init speaker: %w", err)
	}
	speaker.Play(s.mixer)
	return s, nil
}

// Play starts s and returns immediately.
func (s *Speaker) Play(snd Sound) {
	if snd < 0 || snd >= soundCount {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	buf := s.buffers[snd]
	speaker.Lock()
	s.mixer.Add(buf.Streamer(0, buf.Len()))
	speaker.Unlock()
}

// Close stops playback and releases the audio device.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	speaker.Clear()
	speaker.Close()
}

// render synthesizes notes in sequence at the given volume.
func render(notes []note, rate beep.SampleRate, volume float64) (*beep.Buffer, error) {
	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		tone, err := generators.SineTone(rate, n.freq)
		if err != nil {
			return nil, err
		}
		samples := rate.N(n.dur)
		parts = append(parts, fadeOut(beep.Take(samples, tone), samples))
	}

	buf := beep.NewBuffer(beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
	buf.Append(withVolume(beep.Seq(parts...), volume))
	return buf, nil
}

// fadeOut ramps the last quarter of a total-sample stream down to silence.
func fadeOut(s beep.Streamer, total int) beep.Streamer {
	release := total / 4
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := 0; i < n; i++ {
			if left := total - pos; left < release {
				g := float64(left) / float64(release)
				samples[i][0] *= g
				samples[i][1] *= g
			}
			pos++
		}
		return n, ok
	})
}

// math.Log2(0) is -Inf, so zero volume is handled as silent
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
