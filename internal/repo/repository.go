package repo

import (
	"context"
	"errors"

	"github.com/hamed0406/alarmcore/internal/domain"
)

// ErrNotFound is reported by Update and Delete when no alarm has the
// given id. It is a result, not a fatal condition.
var ErrNotFound = errors.New("alarm not found")

// AlarmStore is the durability port — swap in any DB adapter later.
// Get returns (nil, nil) for an unknown id. ListAll and ListEnabled
// order by (hour, minute) ascending; the list view and rehydration
// both rely on chronological order, not insertion order.
type AlarmStore interface {
	Insert(ctx context.Context, a *domain.Alarm) error
	Update(ctx context.Context, a *domain.Alarm) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Alarm, error)
	ListAll(ctx context.Context) ([]domain.Alarm, error)
	ListEnabled(ctx context.Context) ([]domain.Alarm, error)
}
