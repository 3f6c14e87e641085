package scheduler

import (
	"errors"
	"sync"
	"time"
)

// Payload travels opaquely from Arm to the fire callback.
type Payload struct {
	ID       int64
	Label    string
	SoundRef string
}

// Trigger is a one-shot wake request for a single alarm id.
type Trigger struct {
	At      time.Time
	Payload Payload
}

// ErrExactUnavailable reports that the wake facility refused an exact,
// idle-penetrating registration. Callers degrade to inexact timing
// instead of dropping the alarm.
var ErrExactUnavailable = errors.New("exact wake scheduling unavailable")

// WakeTimer is the boundary to the host's wake facility. Register
// replaces any outstanding trigger for the same alarm id. Cancel is an
// idempotent no-op when nothing is outstanding.
type WakeTimer interface {
	Register(t Trigger, exact bool) error
	Cancel(id int64)
}

// FireFunc receives the payload of an elapsed trigger.
type FireFunc func(p Payload)

// TimerWake is a process-local WakeTimer on runtime timers. It stands
// in for a real OS wake registration in the daemon and in tests; it
// cannot wake a suspended host, which is what the exact flag would buy
// on a platform that supports it.
type TimerWake struct {
	// DenyExact makes Register refuse exact requests, mimicking a
	// platform that withholds the precise-wake capability.
	DenyExact bool

	mu     sync.Mutex
	fire   FireFunc
	timers map[int64]*timerEntry
}

type timerEntry struct {
	timer *time.Timer
	at    time.Time
	exact bool
}

func NewTimerWake(fire FireFunc) *TimerWake {
	return &TimerWake{
		fire:   fire,
		timers: make(map[int64]*timerEntry),
	}
}

func (w *TimerWake) Register(t Trigger, exact bool) error {
	if exact && w.DenyExact {
		return ErrExactUnavailable
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if prev := w.timers[t.Payload.ID]; prev != nil {
		prev.timer.Stop()
	}

	d := time.Until(t.At)
	if d < 0 {
		d = 0
	}

	id := t.Payload.ID
	p := t.Payload
	e := &timerEntry{at: t.At, exact: exact}
	e.timer = time.AfterFunc(d, func() {
		w.mu.Lock()
		// A racing Cancel or re-Register may already have replaced us;
		// a replaced trigger must not deliver its stale payload.
		if w.timers[id] != e {
			w.mu.Unlock()
			return
		}
		delete(w.timers, id)
		fire := w.fire
		w.mu.Unlock()
		if fire != nil {
			fire(p)
		}
	})
	w.timers[id] = e
	return nil
}

func (w *TimerWake) Cancel(id int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if e := w.timers[id]; e != nil {
		e.timer.Stop()
		delete(w.timers, id)
	}
}

// Outstanding returns the fire instant of every live trigger keyed by
// alarm id.
func (w *TimerWake) Outstanding() map[int64]time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[int64]time.Time, len(w.timers))
	for id, e := range w.timers {
		out[id] = e.at
	}
	return out
}
