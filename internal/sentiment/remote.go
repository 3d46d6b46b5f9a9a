package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"review_insights/internal/metrics"
)

// RemoteClassifier calls a hosted sentiment-inference endpoint that
// accepts {"inputs": [text, ...]} and answers one candidate list per
// input: [[{"label": "...", "score": 0.99}, ...], ...]. The highest
// scoring candidate per input wins.
type RemoteClassifier struct {
	endpoint string
	token    string
	hc       *http.Client
	rl       *rate.Limiter
}

const remoteTimeout = 30 * time.Second

// NewRemoteClassifier builds a client for the given endpoint. rps caps
// outbound request rate; values <= 0 fall back to 2 req/s.
func NewRemoteClassifier(endpoint, token string, rps float64) *RemoteClassifier {
	if rps <= 0 {
		rps = 2
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &RemoteClassifier{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		hc:       &http.Client{Timeout: remoteTimeout},
		rl:       rate.NewLimiter(rate.Limit(rps), burst),
	}
}

type remoteCandidate struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify sends the whole batch in one request. The response must be
// index-aligned with the batch; anything else is an error so the caller
// never pairs a partial result with its inputs.
func (c *RemoteClassifier) Classify(ctx context.Context, texts []string) ([]Result, error) {
	if len(texts) == 0 {
		return []Result{}, nil
	}
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]any{"inputs": texts})
	if err != nil {
		return nil, err
	}

	body, err := c.post(ctx, payload)
	if err != nil {
		return nil, err
	}

	var rows [][]remoteCandidate
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode inference response: %w", err)
	}
	if len(rows) != len(texts) {
		return nil, fmt.Errorf("inference returned %d rows for %d inputs", len(rows), len(texts))
	}

	out := make([]Result, len(rows))
	for i, candidates := range rows {
		if len(candidates) == 0 {
			return nil, fmt.Errorf("inference row %d has no candidates", i)
		}
		best := candidates[0]
		for _, cand := range candidates[1:] {
			if cand.Score > best.Score {
				best = cand
			}
		}
		label, err := parseLabel(best.Label)
		if err != nil {
			return nil, err
		}
		score := best.Score
		if score < 0 {
			score = 0
		} else if score > 1 {
			score = 1
		}
		out[i] = Result{Label: label, Score: score}
	}
	return out, nil
}

func parseLabel(raw string) (Label, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "POSITIVE", "LABEL_1":
		return Positive, nil
	case "NEGATIVE", "LABEL_0":
		return Negative, nil
	default:
		return "", fmt.Errorf("unknown sentiment label %q", raw)
	}
}

// post performs the request with retries on 429 and transient 5xx,
// honoring Retry-After when provided.
func (c *RemoteClassifier) post(ctx context.Context, payload []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < 4; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			metrics.RemoteRequests.WithLabelValues("error").Inc()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if attempt < 3 && sleepCtx(ctx, backoff(attempt)) {
				continue
			}
			return nil, lastErr
		}

		metrics.RemoteRequests.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
		switch resp.StatusCode {
		case http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			return body, err
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(attempt)
			}
			lastErr = fmt.Errorf("inference status %d", resp.StatusCode)
			if attempt < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("inference status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return nil, lastErr
}

// sleepCtx waits for d or returns false if ctx is done first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses the Retry-After header (seconds or HTTP-date).
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles per attempt: 200ms, 400ms, 800ms.
func backoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * 200 * time.Millisecond
}
