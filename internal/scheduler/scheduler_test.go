package scheduler

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/alarmcore/internal/domain"
)

// --- fakes ---

// fakeWake records registrations per alarm id and can refuse exact
// requests.
type fakeWake struct {
	mu        sync.Mutex
	denyExact bool
	failAll   bool
	triggers  map[int64]Trigger
	exact     map[int64]bool
	registers int
	cancels   int
}

func newFakeWake() *fakeWake {
	return &fakeWake{
		triggers: make(map[int64]Trigger),
		exact:    make(map[int64]bool),
	}
}

func (f *fakeWake) Register(t Trigger, exact bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("wake facility down")
	}
	if exact && f.denyExact {
		return ErrExactUnavailable
	}
	f.registers++
	f.triggers[t.Payload.ID] = t
	f.exact[t.Payload.ID] = exact
	return nil
}

func (f *fakeWake) Cancel(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
	delete(f.triggers, id)
	delete(f.exact, id)
}

func (f *fakeWake) outstanding() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.triggers)
}

func newTestScheduler(w WakeTimer, now time.Time) *Scheduler {
	s := New(zap.NewNop(), w)
	s.Now = func() time.Time { return now }
	return s
}

// --- tests ---

func TestScheduler_ArmComputesNextOccurrence(t *testing.T) {
	now := time.Date(2025, 8, 18, 12, 0, 30, 0, time.UTC)
	w := newFakeWake()
	s := newTestScheduler(w, now)

	a := domain.NewAlarm(7, 0, "morning")
	a.ID = 1
	res, err := s.Arm(a)
	if err != nil {
		t.Fatalf("arm: %v", err)
	}
	want := time.Date(2025, 8, 19, 7, 0, 0, 0, time.UTC)
	if !res.At.Equal(want) || !res.Exact {
		t.Fatalf("arm result %+v, want at=%v exact=true", res, want)
	}
	got := w.triggers[1]
	if !got.At.Equal(want) || got.Payload.Label != "morning" {
		t.Fatalf("registered trigger %+v", got)
	}
}

func TestScheduler_ArmDisabledIsNoOp(t *testing.T) {
	w := newFakeWake()
	s := newTestScheduler(w, time.Now())

	a := domain.NewAlarm(7, 0, "")
	a.ID = 2
	a.Enabled = false
	if _, err := s.Arm(a); err != nil {
		t.Fatalf("arm disabled: %v", err)
	}
	if w.outstanding() != 0 {
		t.Fatalf("disabled alarm armed a trigger")
	}
}

func TestScheduler_ArmRejectsOutOfRange(t *testing.T) {
	w := newFakeWake()
	s := newTestScheduler(w, time.Now())

	a := domain.NewAlarm(24, 0, "")
	a.ID = 3
	if _, err := s.Arm(a); err == nil {
		t.Fatalf("expected validation error for hour=24")
	}
	if w.outstanding() != 0 {
		t.Fatalf("invalid alarm armed a trigger")
	}
}

func TestScheduler_ArmIsIdempotent(t *testing.T) {
	now := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	w := newFakeWake()
	s := newTestScheduler(w, now)

	a := domain.NewAlarm(18, 30, "")
	a.ID = 4
	first, err := s.Arm(a)
	if err != nil {
		t.Fatalf("first arm: %v", err)
	}
	second, err := s.Arm(a)
	if err != nil {
		t.Fatalf("second arm: %v", err)
	}
	if w.outstanding() != 1 {
		t.Fatalf("expected exactly one outstanding trigger, got %d", w.outstanding())
	}
	if !first.At.Equal(second.At) {
		t.Fatalf("re-arm moved the fire time: %v vs %v", first.At, second.At)
	}
}

func TestScheduler_DisarmTwiceIsSafe(t *testing.T) {
	w := newFakeWake()
	s := newTestScheduler(w, time.Now())

	a := domain.NewAlarm(6, 15, "")
	a.ID = 5
	if _, err := s.Arm(a); err != nil {
		t.Fatalf("arm: %v", err)
	}
	s.Disarm(5)
	s.Disarm(5)
	if w.outstanding() != 0 {
		t.Fatalf("triggers still outstanding after disarm: %d", w.outstanding())
	}
}

func TestScheduler_ExactDeniedFallsBackToInexact(t *testing.T) {
	now := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	w := newFakeWake()
	w.denyExact = true
	s := newTestScheduler(w, now)

	a := domain.NewAlarm(13, 0, "")
	a.ID = 6
	res, err := s.Arm(a)
	if err != nil {
		t.Fatalf("arm: %v", err)
	}
	if res.Exact {
		t.Fatalf("expected degraded (inexact) result")
	}
	// The alarm still has a trigger: never dropped on denial.
	if w.outstanding() != 1 {
		t.Fatalf("expected one outstanding trigger, got %d", w.outstanding())
	}
	if w.exact[6] {
		t.Fatalf("trigger registered exact despite denial")
	}
}

func TestScheduler_RegistrationFailureSurfaces(t *testing.T) {
	w := newFakeWake()
	w.failAll = true
	s := newTestScheduler(w, time.Now())

	a := domain.NewAlarm(13, 0, "")
	a.ID = 7
	if _, err := s.Arm(a); err == nil {
		t.Fatalf("expected error when the wake facility is down")
	}
}

func TestScheduler_UpdateDisablesTrigger(t *testing.T) {
	w := newFakeWake()
	s := newTestScheduler(w, time.Now())

	a := domain.NewAlarm(7, 45, "")
	a.ID = 8
	if _, err := s.Arm(a); err != nil {
		t.Fatalf("arm: %v", err)
	}

	a.Enabled = false
	if _, err := s.Update(a); err != nil {
		t.Fatalf("update: %v", err)
	}
	if w.outstanding() != 0 {
		t.Fatalf("disabled alarm still has a trigger")
	}

	a.Enabled = true
	if _, err := s.Update(a); err != nil {
		t.Fatalf("update: %v", err)
	}
	if w.outstanding() != 1 {
		t.Fatalf("re-enabled alarm has %d triggers, want 1", w.outstanding())
	}
}

func TestTimerWake_FiresPayload(t *testing.T) {
	fired := make(chan Payload, 1)
	w := NewTimerWake(func(p Payload) { fired <- p })

	err := w.Register(Trigger{
		At:      time.Now().Add(5 * time.Millisecond),
		Payload: Payload{ID: 9, Label: "soon", SoundRef: "silent"},
	}, true)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	select {
	case p := <-fired:
		if p.ID != 9 || p.Label != "soon" || p.SoundRef != "silent" {
			t.Fatalf("unexpected payload %+v", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("trigger never fired")
	}
	if len(w.Outstanding()) != 0 {
		t.Fatalf("fired trigger still outstanding")
	}
}

func TestTimerWake_CancelPreventsFire(t *testing.T) {
	fired := make(chan Payload, 1)
	w := NewTimerWake(func(p Payload) { fired <- p })

	if err := w.Register(Trigger{
		At:      time.Now().Add(30 * time.Millisecond),
		Payload: Payload{ID: 10},
	}, true); err != nil {
		t.Fatalf("register: %v", err)
	}
	w.Cancel(10)
	w.Cancel(10) // idempotent

	select {
	case <-fired:
		t.Fatalf("cancelled trigger fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTimerWake_RegisterReplacesOldTrigger(t *testing.T) {
	w := NewTimerWake(nil)
	far := time.Now().Add(time.Hour)
	if err := w.Register(Trigger{At: far, Payload: Payload{ID: 11}}, true); err != nil {
		t.Fatalf("register: %v", err)
	}
	farther := far.Add(time.Hour)
	if err := w.Register(Trigger{At: farther, Payload: Payload{ID: 11}}, true); err != nil {
		t.Fatalf("re-register: %v", err)
	}
	out := w.Outstanding()
	if len(out) != 1 || !out[11].Equal(farther) {
		t.Fatalf("outstanding=%v, want single trigger at %v", out, farther)
	}
}

func TestTimerWake_ReplacedTriggerNeverDeliversStalePayload(t *testing.T) {
	fired := make(chan Payload, 1)
	w := NewTimerWake(func(p Payload) { fired <- p })

	if err := w.Register(Trigger{
		At:      time.Now().Add(20 * time.Millisecond),
		Payload: Payload{ID: 13, Label: "old"},
	}, true); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Swap the entry without stopping the old timer, the state a
	// re-Register that lost the race to Stop leaves behind. The old
	// callback still runs but must notice it was replaced.
	w.mu.Lock()
	w.timers[13] = &timerEntry{
		timer: time.NewTimer(time.Hour),
		at:    time.Now().Add(time.Hour),
		exact: true,
	}
	w.mu.Unlock()

	select {
	case p := <-fired:
		t.Fatalf("replaced trigger delivered stale payload %+v", p)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestTimerWake_DenyExact(t *testing.T) {
	w := NewTimerWake(nil)
	w.DenyExact = true
	err := w.Register(Trigger{At: time.Now().Add(time.Hour), Payload: Payload{ID: 12}}, true)
	if !errors.Is(err, ErrExactUnavailable) {
		t.Fatalf("err=%v want ErrExactUnavailable", err)
	}
	if err := w.Register(Trigger{At: time.Now().Add(time.Hour), Payload: Payload{ID: 12}}, false); err != nil {
		t.Fatalf("inexact register: %v", err)
	}
}
