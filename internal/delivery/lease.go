package delivery

import (
	"errors"
	"sync"
	"time"
)

// ErrLeaseDenied reports that no liveness lease could be acquired.
// Delivery still proceeds best-effort; it just is not protected from
// aggressive power management.
var ErrLeaseDenied = errors.New("liveness lease denied")

// Lease is a bounded liveness guarantee for one delivery window.
// Release is idempotent and must run on every path out of the firing
// state, abnormal teardown included.
type Lease interface {
	Release()
}

// LeaseSource acquires leases. The max duration is a hard ceiling
// independent of user action: a lease never outlives it even when the
// dismiss/snooze logic fails.
type LeaseSource interface {
	Acquire(max time.Duration) (Lease, error)
}

// LocalLeases is a process-local LeaseSource. It cannot hold off the
// host OS, but it enforces the ceiling discipline and makes held
// leases observable.
type LocalLeases struct {
	mu   sync.Mutex
	held int
}

func NewLocalLeases() *LocalLeases {
	return &LocalLeases{}
}

type localLease struct {
	src  *LocalLeases
	once sync.Once

	mu    sync.Mutex
	timer *time.Timer
}

func (l *localLease) Release() {
	l.once.Do(func() {
		// A ceiling small enough to fire before Acquire stores the
		// timer leaves it nil here; the timer has already fired then
		// and there is nothing to stop.
		l.mu.Lock()
		timer := l.timer
		l.mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		l.src.mu.Lock()
		l.src.held--
		l.src.mu.Unlock()
	})
}

func (s *LocalLeases) Acquire(max time.Duration) (Lease, error) {
	s.mu.Lock()
	s.held++
	s.mu.Unlock()

	l := &localLease{src: s}
	// Self-release at the ceiling even if nobody ever calls Release.
	timer := time.AfterFunc(max, l.Release)
	l.mu.Lock()
	l.timer = timer
	l.mu.Unlock()
	return l, nil
}

// Held reports how many leases are currently held.
func (s *LocalLeases) Held() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}
