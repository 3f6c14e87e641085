package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/alarmcore/internal/repo"
)

// Rehydrator re-arms every enabled alarm from durable state after a
// process or host restart.
type Rehydrator struct {
	Logger *zap.Logger
	Store  repo.AlarmStore
	Sched  *Scheduler
}

func NewRehydrator(logger *zap.Logger, store repo.AlarmStore, sched *Scheduler) *Rehydrator {
	return &Rehydrator{Logger: logger, Store: store, Sched: sched}
}

// Rehydrate arms every enabled record. One record's failure never
// aborts the batch; failures are aggregated and returned together.
// Idempotent: Arm is cancel-then-set, so running it twice leaves the
// same armed set.
func (r *Rehydrator) Rehydrate(ctx context.Context) error {
	alarms, err := r.Store.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("list enabled alarms: %w", err)
	}

	var errs error
	armed := 0
	for i := range alarms {
		a := &alarms[i]
		if _, err := r.Sched.Arm(a); err != nil {
			r.Logger.Warn("rehydrate_arm_failed",
				zap.Int64("alarm_id", a.ID),
				zap.Error(err),
			)
			errs = multierr.Append(errs, fmt.Errorf("alarm %d: %w", a.ID, err))
			continue
		}
		armed++
	}

	r.Logger.Info("rehydrated",
		zap.Int("armed", armed),
		zap.Int("failed", len(multierr.Errors(errs))),
	)
	return errs
}
