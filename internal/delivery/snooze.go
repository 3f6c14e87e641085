package delivery

import (
	"time"

	"github.com/hamed0406/alarmcore/internal/domain"
	"github.com/hamed0406/alarmcore/internal/scheduler"
)

// DefaultSnoozeOffset is the fixed snooze interval.
const DefaultSnoozeOffset = 5 * time.Minute

// SnoozeLabelSuffix marks a snoozed repetition in the transient label.
const SnoozeLabelSuffix = " (snoozed)"

// Planner computes the one-shot repeat trigger for a snoozed session.
// The durable record is never touched: snoozing moves only the next
// trigger, not the stored schedule.
type Planner struct {
	Sched  *scheduler.Scheduler
	Offset time.Duration // zero means DefaultSnoozeOffset
	Now    func() time.Time
}

func NewPlanner(sched *scheduler.Scheduler) *Planner {
	return &Planner{
		Sched: sched,
		Now:   time.Now,
	}
}

// Snooze builds a transient enabled record at now+offset carrying the
// original id and sound reference, and hands it to the scheduler.
func (p *Planner) Snooze(sess *Session) (scheduler.ArmResult, error) {
	off := p.Offset
	if off <= 0 {
		off = DefaultSnoozeOffset
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}

	at := now().Add(off)
	a := &domain.Alarm{
		ID:       sess.AlarmID,
		Hour:     at.Hour(),
		Minute:   at.Minute(),
		Label:    sess.Label + SnoozeLabelSuffix,
		Enabled:  true,
		SoundRef: sess.SoundRef,
	}
	return p.Sched.Arm(a)
}
