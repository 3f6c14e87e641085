package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hamed0406/alarmcore/internal/domain"
	"github.com/hamed0406/alarmcore/internal/repo"
)

// Store is an in-memory AlarmStore for tests and DB-less runs.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	alarms map[int64]domain.Alarm
}

func New() *Store {
	return &Store{
		nextID: 1,
		alarms: make(map[int64]domain.Alarm),
	}
}

func (m *Store) Insert(ctx context.Context, a *domain.Alarm) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.nextID
	m.nextID++
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	m.alarms[a.ID] = *a
	return nil
}

func (m *Store) Update(ctx context.Context, a *domain.Alarm) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.alarms[a.ID]
	if !ok {
		return repo.ErrNotFound
	}
	// id and created_at are store-assigned and immutable.
	a.CreatedAt = cur.CreatedAt
	m.alarms[a.ID] = *a
	return nil
}

func (m *Store) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.alarms[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.alarms, id)
	return nil
}

func (m *Store) Get(ctx context.Context, id int64) (*domain.Alarm, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.alarms[id]
	if !ok {
		return nil, nil
	}
	cp := a
	return &cp, nil
}

func (m *Store) ListAll(ctx context.Context) ([]domain.Alarm, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot(func(domain.Alarm) bool { return true }), nil
}

func (m *Store) ListEnabled(ctx context.Context) ([]domain.Alarm, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot(func(a domain.Alarm) bool { return a.Enabled }), nil
}

// snapshot copies matching records sorted by (hour, minute), id as a
// stable tie-break. Callers hold at least a read lock.
func (m *Store) snapshot(keep func(domain.Alarm) bool) []domain.Alarm {
	out := make([]domain.Alarm, 0, len(m.alarms))
	for _, a := range m.alarms {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hour != out[j].Hour {
			return out[i].Hour < out[j].Hour
		}
		if out[i].Minute != out[j].Minute {
			return out[i].Minute < out[j].Minute
		}
		return out[i].ID < out[j].ID
	})
	return out
}
