// Package scheduler computes next-fire instants and keeps exactly one
// wake trigger armed per enabled alarm.
package scheduler

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/alarmcore/internal/domain"
)

type Scheduler struct {
	Logger *zap.Logger
	Wake   WakeTimer
	Now    func() time.Time
}

func New(logger *zap.Logger, wake WakeTimer) *Scheduler {
	return &Scheduler{
		Logger: logger,
		Wake:   wake,
		Now:    time.Now,
	}
}

// ArmResult reports how a record was armed. Exact is false when the
// wake facility only granted best-effort timing.
type ArmResult struct {
	At    time.Time
	Exact bool
}

// Arm registers the next wake trigger for an enabled alarm. Disabled
// records are a no-op. Arming is cancel-then-set: calling it twice in
// a row leaves a single outstanding trigger with the same fire time.
// When exact scheduling is denied the trigger is re-registered
// inexact — an enabled alarm is never left without a trigger.
func (s *Scheduler) Arm(a *domain.Alarm) (ArmResult, error) {
	if !a.Enabled {
		return ArmResult{}, nil
	}
	if err := a.Validate(); err != nil {
		return ArmResult{}, fmt.Errorf("arm alarm %d: %w", a.ID, err)
	}

	at := a.NextFire(s.Now())
	t := Trigger{
		At:      at,
		Payload: Payload{ID: a.ID, Label: a.Label, SoundRef: a.SoundRef},
	}

	s.Wake.Cancel(a.ID)
	err := s.Wake.Register(t, true)
	if errors.Is(err, ErrExactUnavailable) {
		s.Logger.Warn("exact_wake_denied",
			zap.Int64("alarm_id", a.ID),
			zap.Time("at", at),
		)
		if err := s.Wake.Register(t, false); err != nil {
			return ArmResult{}, fmt.Errorf("register inexact trigger for alarm %d: %w", a.ID, err)
		}
		return ArmResult{At: at, Exact: false}, nil
	}
	if err != nil {
		return ArmResult{}, fmt.Errorf("register trigger for alarm %d: %w", a.ID, err)
	}

	s.Logger.Debug("alarm_armed",
		zap.Int64("alarm_id", a.ID),
		zap.Time("at", at),
	)
	return ArmResult{At: at, Exact: true}, nil
}

// Disarm cancels the outstanding trigger for id, if any.
func (s *Scheduler) Disarm(id int64) {
	s.Wake.Cancel(id)
	s.Logger.Debug("alarm_disarmed", zap.Int64("alarm_id", id))
}

// Update re-derives the trigger after a record change: strictly disarm
// first, then arm while still enabled. There is never a window with
// two live triggers for the same id.
func (s *Scheduler) Update(a *domain.Alarm) (ArmResult, error) {
	s.Disarm(a.ID)
	if !a.Enabled {
		return ArmResult{}, nil
	}
	return s.Arm(a)
}
