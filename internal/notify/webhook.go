package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Webhook mirrors prompts to an HTTP endpoint so an external surface
// (chat hook, companion app) can render the ringing state.
type Webhook struct {
	URL    string
	Client *http.Client
}

func NewWebhook(url string) *Webhook {
	if url == "" {
		return nil
	}
	return &Webhook{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookPayload struct {
	Event     string `json:"event"` // "posted" or "cleared"
	SessionID string `json:"session_id"`
	AlarmID   int64  `json:"alarm_id,omitempty"`
	Title     string `json:"title,omitempty"`
	Body      string `json:"body,omitempty"`
}

func (w *Webhook) Post(ctx context.Context, p Prompt) error {
	return w.send(ctx, webhookPayload{
		Event:     "posted",
		SessionID: p.SessionID,
		AlarmID:   p.AlarmID,
		Title:     p.Title,
		Body:      p.Body,
	})
}

func (w *Webhook) Clear(ctx context.Context, sessionID string) error {
	return w.send(ctx, webhookPayload{Event: "cleared", SessionID: sessionID})
}

func (w *Webhook) send(ctx context.Context, p webhookPayload) error {
	if w == nil || w.URL == "" {
		return errors.New("webhook disabled")
	}
	body, _ := json.Marshal(p)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return errors.New("webhook non-2xx")
	}
	return nil
}
