package notify

import "context"

// Prompt is the durable-until-resolved delivery surface for a ringing
// alarm: it stays visible (lock screen included) until the session
// resolves, offering dismiss and snooze.
type Prompt struct {
	SessionID string `json:"session_id"`
	AlarmID   int64  `json:"alarm_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

// Prompter posts and clears delivery prompts. Both operations are
// best-effort: a failed surface never blocks the alarm itself.
type Prompter interface {
	Post(ctx context.Context, p Prompt) error
	Clear(ctx context.Context, sessionID string) error
}

// Multi fans out to several surfaces, keeping the first error.
type Multi []Prompter

func (m Multi) Post(ctx context.Context, p Prompt) error {
	var firstErr error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Post(ctx, p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m Multi) Clear(ctx context.Context, sessionID string) error {
	var firstErr error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Clear(ctx, sessionID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
