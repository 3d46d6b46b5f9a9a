// Package notify pushes run summaries to an external webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"review_insights/internal/events"
)

// Webhook posts finished-run summaries as JSON to a configured URL.
// An empty URL disables delivery.
type Webhook struct {
	url string
	hc  *http.Client
	log zerolog.Logger
}

func NewWebhook(url string, log zerolog.Logger) *Webhook {
	return &Webhook{
		url: url,
		hc:  &http.Client{Timeout: 10 * time.Second},
		log: log,
	}
}

// Send delivers one run event.
func (w *Webhook) Send(ctx context.Context, ev events.RunEvent) error {
	if w.url == "" {
		return nil
	}
	buf, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	return nil
}

// Watch forwards bus events to the webhook until ctx is done. Failures
// are logged and dropped.
func (w *Webhook) Watch(ctx context.Context, bus *events.Bus) {
	if w.url == "" {
		return
	}
	ch := bus.Subscribe()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-ch:
				if err := w.Send(ctx, ev); err != nil {
					w.log.Warn().Err(err).Str("run_id", ev.RunID).Msg("webhook delivery failed")
				}
			}
		}
	}()
}
