package delivery

import (
	"errors"
	"time"
)

// ErrPlaybackUnavailable reports that a sound reference could not be
// opened or started. One link failing only advances the fallback
// chain; it is never fatal to the delivery.
var ErrPlaybackUnavailable = errors.New("playback unavailable")

// PlayHandle controls a looping playback started by a Player. Stop is
// idempotent.
type PlayHandle interface {
	Stop()
}

// Player opens a sound reference and starts playback, looping until
// the handle is stopped. The empty reference selects the platform
// default alarm sound.
type Player interface {
	Play(ref string) (PlayHandle, error)
}

// VibeHandle cancels a running vibration. Cancel is idempotent.
type VibeHandle interface {
	Cancel()
}

// Vibrator runs a repeating pulse pattern until cancelled. The pattern
// alternates delay/on/off durations and repeats from the start.
type Vibrator interface {
	Start(pattern []time.Duration) (VibeHandle, error)
}

// VibrationPattern is the fixed delivery pulse: no delay, 1s on, 1s
// off, repeating.
var VibrationPattern = []time.Duration{0, time.Second, time.Second}

// NopVibrator satisfies Vibrator on hosts without a haptic device.
type NopVibrator struct{}

type nopVibeHandle struct{}

func (nopVibeHandle) Cancel() {}

func (NopVibrator) Start(pattern []time.Duration) (VibeHandle, error) {
	return nopVibeHandle{}, nil
}
