package notify

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/arenadelta/pdptw-solver/internal/metrics"
	"github.com/arenadelta/pdptw-solver/internal/runstore"
)

// Worker polls the store for due deliveries and attempts them over HTTP,
// backing off exponentially between attempts and dead-lettering once
// MaxAttempts is exhausted.
type Worker struct {
	Store       runstore.Store
	HTTP        *http.Client
	Limiter     *rate.Limiter
	Stop        chan struct{}
	MaxAttempts int
}

// NewWorker builds a Worker reading WEBHOOK_MAX_ATTEMPTS from the
// environment (default 10) and throttling outbound delivery attempts with
// a token-bucket limiter sized by rps/burst.
func NewWorker(s runstore.Store, rps float64, burst int) *Worker {
	max := 10
	if v := os.Getenv("WEBHOOK_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			max = n
		}
	}
	return &Worker{
		Store:       s,
		HTTP:        &http.Client{Timeout: 5 * time.Second},
		Limiter:     rate.NewLimiter(rate.Limit(rps), burst),
		Stop:        make(chan struct{}),
		MaxAttempts: max,
	}
}

// Start runs the poll loop in a background goroutine until Stop is closed.
func (w *Worker) Start() {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-w.Stop:
				return
			case <-ticker.C:
				w.processOnce()
			}
		}
	}()
}

func (w *Worker) processOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	items, err := w.Store.FetchDueDeliveries(ctx, 50)
	if err != nil || len(items) == 0 {
		return
	}
	for _, it := range items {
		if err := w.Limiter.Wait(ctx); err != nil {
			return
		}
		w.attempt(ctx, it)
	}
}

func (w *Worker) attempt(ctx context.Context, it runstore.Delivery) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, it.URL, bytes.NewReader(it.Payload))
	if err != nil {
		_ = w.Store.MarkFailed(ctx, it.ID, err.Error(), 0, 0)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", it.EventType)
	if it.Secret != "" {
		req.Header.Set("X-Signature", SignHMAC(it.Secret, it.Payload))
	}

	start := time.Now()
	resp, err := w.HTTP.Do(req)
	latency := int(time.Since(start).Milliseconds())
	code := 0
	success := false
	lastErr := ""
	if err != nil {
		lastErr = err.Error()
	} else if resp != nil {
		code = resp.StatusCode
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
		success = code >= 200 && code < 300
	}

	status := "retry"
	if success {
		status = "delivered"
	}
	metrics.NotificationDeliveries.WithLabelValues(it.EventType, status).Inc()
	metrics.NotificationLatency.WithLabelValues(it.EventType, status).Observe(float64(latency))

	if success {
		_ = w.Store.MarkDelivered(ctx, it.ID, code, latency)
		return
	}
	if it.Attempts+1 >= w.MaxAttempts {
		_ = w.Store.MarkFailed(ctx, it.ID, lastErr, code, latency)
		return
	}
	_ = w.Store.MarkRetry(ctx, it.ID, time.Now().Add(nextBackoff(it.Attempts)), lastErr, code, latency)
}

func nextBackoff(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	if attempts > 10 {
		attempts = 10
	}
	base := time.Second * time.Duration(1<<attempts)
	if base > time.Hour {
		base = time.Hour
	}
	return base
}
