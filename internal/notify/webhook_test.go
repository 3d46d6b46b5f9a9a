package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"review_insights/internal/events"
)

func TestSendPostsRunEvent(t *testing.T) {
	var got events.RunEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL, zerolog.Nop())
	ev := events.RunEvent{RunID: "run-1", Succeeded: true, ReviewsTotal: 7}
	if err := w.Send(context.Background(), ev); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.RunID != "run-1" || !got.Succeeded || got.ReviewsTotal != 7 {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL, zerolog.Nop())
	if err := w.Send(context.Background(), events.RunEvent{RunID: "x"}); err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

func TestSendDisabledWithoutURL(t *testing.T) {
	w := NewWebhook("", zerolog.Nop())
	if err := w.Send(context.Background(), events.RunEvent{}); err != nil {
		t.Fatalf("disabled webhook should be a no-op: %v", err)
	}
}

func TestWatchForwardsBusEvents(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := events.NewBus()
	w := NewWebhook(srv.URL, zerolog.Nop())
	w.Watch(ctx, bus)

	bus.Publish(events.RunEvent{RunID: "run-1"})
	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&hits) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected one delivery, got %d", hits)
	}
}
