package notify

import (
	"context"

	"go.uber.org/zap"
)

// Log is the always-available prompter: it records the prompt
// lifecycle in the structured log.
type Log struct {
	Logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{Logger: logger}
}

func (l *Log) Post(ctx context.Context, p Prompt) error {
	l.Logger.Info("prompt_posted",
		zap.String("session", p.SessionID),
		zap.Int64("alarm_id", p.AlarmID),
		zap.String("title", p.Title),
	)
	return nil
}

func (l *Log) Clear(ctx context.Context, sessionID string) error {
	l.Logger.Info("prompt_cleared", zap.String("session", sessionID))
	return nil
}
