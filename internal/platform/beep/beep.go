// Package beep renders alarm sounds as generated tones through the
// system audio device. It stands in for a platform ringtone service:
// sound refs name tones, and unknown refs fail so the caller can walk
// its fallback chain.
package beep

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hamed0406/alarmcore/internal/delivery"
	"github.com/hamed0406/alarmcore/internal/domain"
)

const (
	sampleRate = 44100

	// Tone frequencies for the built-in sounds.
	alarmFreq  = 880.0
	notifyFreq = 660.0
)

var (
	ctxOnce sync.Once
	ctx     *oto.Context
	ctxErr  error
)

func audioContext() (*oto.Context, error) {
	ctxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		}
		c, ready, err := oto.NewContext(op)
		if err != nil {
			ctxErr = err
			return
		}
		<-ready
		ctx = c
	})
	return ctx, ctxErr
}

// Player implements delivery.Player on top of oto.
type Player struct{}

func New() *Player { return &Player{} }

// Play starts a looping tone for the given sound ref and returns a
// handle that stops it. Refs it understands: the empty default, the
// notification fallback, and "tone://<hz>". Anything else is an error
// so delivery can fall back.
func (p *Player) Play(ref string) (delivery.PlayHandle, error) {
	freq, pulse, err := toneFor(ref)
	if err != nil {
		return nil, err
	}

	c, err := audioContext()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", delivery.ErrPlaybackUnavailable, err)
	}

	op := c.NewPlayer(newToneReader(freq, pulse))
	op.Play()
	return &handle{player: op}, nil
}

func toneFor(ref string) (freq float64, pulse time.Duration, err error) {
	switch ref {
	case domain.SoundDefault:
		return alarmFreq, 400 * time.Millisecond, nil
	case domain.SoundNotification:
		return notifyFreq, 150 * time.Millisecond, nil
	}
	if rest, ok := strings.CutPrefix(ref, "tone://"); ok {
		hz, perr := strconv.ParseFloat(rest, 64)
		if perr == nil && hz >= 20 && hz <= 10000 {
			return hz, 400 * time.Millisecond, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: unknown sound ref %q", delivery.ErrPlaybackUnavailable, ref)
}

type handle struct {
	player *oto.Player
	once   sync.Once
}

func (h *handle) Stop() {
	h.once.Do(func() {
		h.player.Pause()
		_ = h.player.Close()
	})
}

// toneReader is an endless stream of 16-bit LE mono samples: a sine
// tone pulsed on/off so it reads as an alarm rather than a flat hum.
type toneReader struct {
	freq   float64
	period int // samples per on+off cycle
	on     int // samples the tone is audible within a cycle
	pos    int
}

func newToneReader(freq float64, pulse time.Duration) *toneReader {
	on := int(float64(sampleRate) * pulse.Seconds())
	return &toneReader{
		freq:   freq,
		on:     on,
		period: on * 2,
	}
}

func (r *toneReader) Read(buf []byte) (int, error) {
	n := len(buf) / 2 * 2
	for i := 0; i < n; i += 2 {
		var v int16
		if r.pos%r.period < r.on {
			s := math.Sin(2 * math.Pi * r.freq * float64(r.pos) / sampleRate)
			v = int16(s * 0.6 * math.MaxInt16)
		}
		buf[i] = byte(v)
		buf[i+1] = byte(v >> 8)
		r.pos++
	}
	return n, nil
}

var _ io.Reader = (*toneReader)(nil)
var _ delivery.Player = (*Player)(nil)
