package domain

import (
	"fmt"
	"time"
)

// Well-known sound references. Anything else is an opaque handle the
// playback backend knows how to open.
const (
	// SoundDefault selects the platform default alarm sound.
	SoundDefault = ""
	// SoundSilent plays no audio at all. Vibration is not gated by the
	// sound selection and still runs.
	SoundSilent = "silent"
	// SoundNotification selects the platform default notification
	// sound, the last audible fallback before silence.
	SoundNotification = "notification"
)

// Alarm is the persisted record behind one wall-clock trigger.
// ID and CreatedAt are store-assigned on first insert and immutable
// afterwards.
type Alarm struct {
	ID        int64     `json:"id"`
	Hour      int       `json:"hour"`
	Minute    int       `json:"minute"`
	Label     string    `json:"label,omitempty"`
	Enabled   bool      `json:"enabled"`
	SoundRef  string    `json:"sound_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAlarm returns an enabled alarm for the given time of day.
func NewAlarm(hour, minute int, label string) *Alarm {
	return &Alarm{Hour: hour, Minute: minute, Label: label, Enabled: true}
}

// Validate checks the time-of-day ranges at the record-construction
// boundary. Out-of-range values are rejected, never clamped.
func (a *Alarm) Validate() error {
	if a.Hour < 0 || a.Hour > 23 {
		return fmt.Errorf("hour %d out of range [0,23]", a.Hour)
	}
	if a.Minute < 0 || a.Minute > 59 {
		return fmt.Errorf("minute %d out of range [0,59]", a.Minute)
	}
	return nil
}

// NextFire returns the next wall-clock occurrence of Hour:Minute
// strictly after now: today if that instant is still ahead, otherwise
// tomorrow. Seconds and subseconds are zeroed. The result depends only
// on the record and now, so re-deriving it is always identical.
func (a *Alarm) NextFire(now time.Time) time.Time {
	t := time.Date(now.Year(), now.Month(), now.Day(), a.Hour, a.Minute, 0, 0, now.Location())
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// FormattedTime renders the time of day as HH:MM.
func (a *Alarm) FormattedTime() string {
	return fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
}
