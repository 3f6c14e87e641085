// Package delivery owns the active-alarm state machine: a fired wake
// trigger becomes an audible, vibrating, lease-protected session that
// resolves to dismissed or snoozed.
package delivery

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/alarmcore/internal/domain"
	"github.com/hamed0406/alarmcore/internal/notify"
	"github.com/hamed0406/alarmcore/internal/repo"
	"github.com/hamed0406/alarmcore/internal/scheduler"
)

// DefaultMaxRing bounds how long a session may ring without user
// action. The lease ceiling and the session expiry share it.
const DefaultMaxRing = 10 * time.Minute

// ErrNoActiveSession is returned by Dismiss and Snooze when nothing is
// firing.
var ErrNoActiveSession = errors.New("no active delivery session")

// Resolution says how a session left the firing state.
type Resolution string

const (
	ResolvedDismissed Resolution = "dismissed"
	ResolvedSnoozed   Resolution = "snoozed"
	ResolvedPreempted Resolution = "preempted"
	ResolvedExpired   Resolution = "expired"
	ResolvedAborted   Resolution = "aborted"
)

// Session is one active delivery, from trigger fire to resolution.
// Never persisted.
type Session struct {
	ID        string
	AlarmID   int64
	Label     string
	SoundRef  string
	StartedAt time.Time

	lease    Lease
	play     PlayHandle
	vibe     VibeHandle
	expiry   *time.Timer
	resolved bool
}

// Controller drives deliveries. At most one session is active at a
// time; a trigger firing while another session rings preempts it.
type Controller struct {
	Logger  *zap.Logger
	Store   repo.AlarmStore // optional; enables fire-time revalidation
	Player  Player          // optional; nil means silent delivery
	Vibe    Vibrator
	Leases  LeaseSource
	Notify  notify.Prompter // optional
	Planner *Planner        // optional; snooze becomes dismiss without it
	MaxRing time.Duration   // zero means DefaultMaxRing

	mu  sync.Mutex
	cur *Session
}

func NewController(logger *zap.Logger, leases LeaseSource, vibe Vibrator) *Controller {
	if vibe == nil {
		vibe = NopVibrator{}
	}
	return &Controller{
		Logger: logger,
		Leases: leases,
		Vibe:   vibe,
	}
}

// Active returns a snapshot of the current session, or nil while idle.
func (c *Controller) Active() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return nil
	}
	cp := *c.cur
	cp.lease, cp.play, cp.vibe, cp.expiry = nil, nil, nil, nil
	return &cp
}

// TriggerFired moves the machine from Idle to Firing for the given
// payload. A fire racing a disarm is suppressed when the store shows
// the alarm disabled or deleted. Failures along the way (lease denied,
// playback dead) degrade the delivery but never abort it.
func (c *Controller) TriggerFired(ctx context.Context, p scheduler.Payload) {
	if c.Store != nil {
		a, err := c.Store.Get(ctx, p.ID)
		if err != nil {
			// Storage trouble must not mute the alarm; deliver anyway.
			c.Logger.Warn("fire_revalidate_error",
				zap.Int64("alarm_id", p.ID),
				zap.Error(err),
			)
		} else if a == nil || !a.Enabled {
			c.Logger.Info("fire_suppressed",
				zap.Int64("alarm_id", p.ID),
				zap.Bool("deleted", a == nil),
			)
			return
		}
	}

	max := c.MaxRing
	if max <= 0 {
		max = DefaultMaxRing
	}

	c.mu.Lock()
	var preempted string
	if c.cur != nil {
		// Single-session invariant: the newest firing wins.
		preempted = c.cur.ID
		c.resolveLocked(c.cur, ResolvedPreempted)
	}

	sess := &Session{
		ID:        uuid.NewString(),
		AlarmID:   p.ID,
		Label:     p.Label,
		SoundRef:  p.SoundRef,
		StartedAt: time.Now(),
	}
	c.cur = sess

	if c.Leases != nil {
		lease, err := c.Leases.Acquire(max)
		if err != nil {
			c.Logger.Warn("lease_denied",
				zap.String("session", sess.ID),
				zap.Error(err),
			)
		} else {
			sess.lease = lease
		}
	}
	// Hard ceiling independent of user action.
	sess.expiry = time.AfterFunc(max, func() { c.expire(sess) })

	// Vibration runs unconditionally: it is not gated by the sound
	// selection or by any playback outcome.
	if h, err := c.Vibe.Start(VibrationPattern); err != nil {
		c.Logger.Warn("vibration_failed", zap.Error(err))
	} else {
		sess.vibe = h
	}

	sess.play = c.startPlayback(sess.SoundRef)
	c.mu.Unlock()

	// The prompt is durable until its session resolves; a preempted
	// session resolved, so its prompt goes too.
	if preempted != "" {
		c.clearPrompt(ctx, preempted)
	}

	c.Logger.Info("delivery_started",
		zap.String("session", sess.ID),
		zap.Int64("alarm_id", sess.AlarmID),
		zap.String("label", sess.Label),
	)

	if c.Notify != nil {
		prompt := notify.Prompt{
			SessionID: sess.ID,
			AlarmID:   sess.AlarmID,
			Title:     promptTitle(sess.Label),
			Body:      "Dismiss or snooze the alarm",
		}
		if err := c.Notify.Post(ctx, prompt); err != nil {
			c.Logger.Warn("prompt_post_failed", zap.Error(err))
		}
	}
}

// startPlayback walks the fallback chain: requested sound, platform
// default alarm, platform default notification, silence. Each failure
// is logged and cascades; the final fallback is silence.
func (c *Controller) startPlayback(ref string) PlayHandle {
	if c.Player == nil || ref == domain.SoundSilent {
		return nil
	}

	tried := make(map[string]bool, 3)
	for _, r := range []string{ref, domain.SoundDefault, domain.SoundNotification} {
		if tried[r] {
			continue
		}
		tried[r] = true
		h, err := c.Player.Play(r)
		if err == nil {
			return h
		}
		c.Logger.Warn("playback_failed",
			zap.String("sound_ref", r),
			zap.Error(err),
		)
	}
	c.Logger.Warn("playback_silent_fallback")
	return nil
}

// Dismiss resolves the firing session with no follow-up trigger.
func (c *Controller) Dismiss(ctx context.Context) error {
	c.mu.Lock()
	sess := c.cur
	if sess == nil {
		c.mu.Unlock()
		return ErrNoActiveSession
	}
	c.resolveLocked(sess, ResolvedDismissed)
	c.mu.Unlock()

	c.clearPrompt(ctx, sess.ID)
	return nil
}

// Snooze resolves the firing session and plans the repeat trigger.
func (c *Controller) Snooze(ctx context.Context) error {
	c.mu.Lock()
	sess := c.cur
	if sess == nil {
		c.mu.Unlock()
		return ErrNoActiveSession
	}
	c.resolveLocked(sess, ResolvedSnoozed)
	c.mu.Unlock()

	c.clearPrompt(ctx, sess.ID)

	if c.Planner == nil {
		return nil
	}
	res, err := c.Planner.Snooze(sess)
	if err != nil {
		return err
	}
	c.Logger.Info("snooze_armed",
		zap.Int64("alarm_id", sess.AlarmID),
		zap.Time("at", res.At),
	)
	return nil
}

// Close tears down any active session during process shutdown. The
// lease release is an exit-path guarantee.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur != nil {
		c.resolveLocked(c.cur, ResolvedAborted)
	}
}

// resolveLocked stops audio and vibration, releases the lease, and
// stops the ceiling timer. Runs on every exit path out of Firing.
// Callers hold c.mu.
func (c *Controller) resolveLocked(s *Session, how Resolution) {
	if s.resolved {
		return
	}
	s.resolved = true
	if s.play != nil {
		s.play.Stop()
		s.play = nil
	}
	if s.vibe != nil {
		s.vibe.Cancel()
		s.vibe = nil
	}
	if s.lease != nil {
		s.lease.Release()
		s.lease = nil
	}
	if s.expiry != nil {
		s.expiry.Stop()
	}
	if c.cur == s {
		c.cur = nil
	}
	c.Logger.Info("delivery_resolved",
		zap.String("session", s.ID),
		zap.Int64("alarm_id", s.AlarmID),
		zap.String("resolution", string(how)),
	)
}

// expire enforces the ring ceiling when neither dismiss nor snooze
// arrived in time.
func (c *Controller) expire(s *Session) {
	c.mu.Lock()
	wasCurrent := c.cur == s && !s.resolved
	if wasCurrent {
		c.resolveLocked(s, ResolvedExpired)
	}
	c.mu.Unlock()

	if wasCurrent {
		c.clearPrompt(context.Background(), s.ID)
	}
}

func (c *Controller) clearPrompt(ctx context.Context, sessionID string) {
	if c.Notify == nil {
		return
	}
	if err := c.Notify.Clear(ctx, sessionID); err != nil {
		c.Logger.Warn("prompt_clear_failed", zap.Error(err))
	}
}

func promptTitle(label string) string {
	if label == "" {
		// Display fallback for unlabeled alarms is owned by the UI
		// collaborator; the prompt carries a neutral default.
		return "Alarm"
	}
	return label
}
