package delivery

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/alarmcore/internal/scheduler"
)

func newPlannerAt(now time.Time, wake scheduler.WakeTimer) *Planner {
	sched := scheduler.New(zap.NewNop(), wake)
	sched.Now = func() time.Time { return now }
	p := NewPlanner(sched)
	p.Now = func() time.Time { return now }
	return p
}

func TestPlanner_FixedOffset(t *testing.T) {
	now := time.Date(2025, 8, 18, 7, 0, 0, 0, time.UTC)
	wake := newRecordWake()
	p := newPlannerAt(now, wake)

	res, err := p.Snooze(&Session{AlarmID: 3, Label: "up", SoundRef: "tone://x"})
	if err != nil {
		t.Fatalf("snooze: %v", err)
	}
	want := time.Date(2025, 8, 18, 7, 5, 0, 0, time.UTC)
	if !res.At.Equal(want) {
		t.Fatalf("snooze at %v, want %v", res.At, want)
	}
}

func TestPlanner_MidnightWrap(t *testing.T) {
	// Snoozing at 23:58 lands on 00:03 the next day.
	now := time.Date(2025, 8, 18, 23, 58, 0, 0, time.UTC)
	wake := newRecordWake()
	p := newPlannerAt(now, wake)

	res, err := p.Snooze(&Session{AlarmID: 4})
	if err != nil {
		t.Fatalf("snooze: %v", err)
	}
	want := time.Date(2025, 8, 19, 0, 3, 0, 0, time.UTC)
	if !res.At.Equal(want) {
		t.Fatalf("snooze at %v, want %v", res.At, want)
	}
}

func TestPlanner_SubMinuteFireStillLandsOnTheMinute(t *testing.T) {
	// Firing handled at 07:00:42 still snoozes to 07:05:00: the
	// trigger instant is derived from hour:minute, seconds zeroed.
	now := time.Date(2025, 8, 18, 7, 0, 42, 0, time.UTC)
	wake := newRecordWake()
	p := newPlannerAt(now, wake)

	res, err := p.Snooze(&Session{AlarmID: 5})
	if err != nil {
		t.Fatalf("snooze: %v", err)
	}
	want := time.Date(2025, 8, 18, 7, 5, 0, 0, time.UTC)
	if !res.At.Equal(want) {
		t.Fatalf("snooze at %v, want %v", res.At, want)
	}
}

func TestPlanner_CustomOffset(t *testing.T) {
	now := time.Date(2025, 8, 18, 7, 0, 0, 0, time.UTC)
	wake := newRecordWake()
	p := newPlannerAt(now, wake)
	p.Offset = 9 * time.Minute

	res, err := p.Snooze(&Session{AlarmID: 6})
	if err != nil {
		t.Fatalf("snooze: %v", err)
	}
	want := time.Date(2025, 8, 18, 7, 9, 0, 0, time.UTC)
	if !res.At.Equal(want) {
		t.Fatalf("snooze at %v, want %v", res.At, want)
	}
}
