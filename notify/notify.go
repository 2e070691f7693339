// Package notify is the outward reporting sink for events a human
// should see: order failures, closed round trips.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Notifier delivers a one-line message to an external sink. Delivery is
// best-effort; the trading loop never blocks on a failed notification.
type Notifier interface {
	Send(msg string) error
}

// Nop discards every message.
type Nop struct{}

func (Nop) Send(string) error { return nil }

// Log writes messages to the process log.
type Log struct {
	Logger *slog.Logger
}

func (n Log) Send(msg string) error {
	log := n.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Info("notify", "msg", msg)
	return nil
}

// Webhook posts messages as JSON to a configured URL (Discord-style
// {"content": ...} payload).
type Webhook struct {
	URL    string
	Client *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *Webhook) Send(msg string) error {
	body, err := json.Marshal(map[string]string{"content": msg})
	if err != nil {
		return err
	}

	resp, err := w.Client.Post(w.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	return nil
}
