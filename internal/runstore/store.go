// Package runstore persists solve runs, their metrics snapshots, and the
// webhook subscriptions/deliveries that notify callers when a run finishes.
// Store is the narrow interface internal/solveapi and internal/notify
// depend on; Memory and Postgres are the two implementations.
package runstore

import (
	"context"
	"errors"
	"time"

	"github.com/arenadelta/pdptw-solver/internal/pdptw"
)

// ErrNotFound is returned when a run, subscription, or delivery does not exist.
var ErrNotFound = errors.New("not found")

// RunStatus tracks a solve run's lifecycle.
type RunStatus string

const (
	RunQueued    RunStatus = "queued"
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunCancelled RunStatus = "cancelled"
	RunFailed    RunStatus = "failed"
)

// Run is a queued or completed solve, keyed by ID.
type Run struct {
	ID           string
	InstanceName string
	Config       pdptw.Config
	Status       RunStatus
	Result       *pdptw.SolveResult
	Error        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MetricsSnapshot records one progress event emitted while a run is solving.
type MetricsSnapshot struct {
	RunID      string
	Iteration  int
	Vehicles   int
	Distance   int
	Kind       string
	RecordedAt time.Time
}

// Subscription is a caller-registered webhook endpoint for run events.
type Subscription struct {
	ID         string
	URL        string
	Secret     string
	EventTypes []string
	CreatedAt  time.Time
}

// Delivery is one attempt (or pending attempt) to deliver an event to a
// subscription's URL.
type Delivery struct {
	ID             string
	SubscriptionID string
	EventType      string
	URL            string
	Secret         string
	Payload        []byte
	Status         string // pending, retry, delivered, failed
	Attempts       int
	NextAttemptAt  time.Time
	LastError      string
	ResponseCode   int
	LatencyMs      int
	DeliveredAt    *time.Time
}

// Store is the persistence boundary for solve runs and webhook delivery.
type Store interface {
	CreateRun(ctx context.Context, instanceName string, cfg pdptw.Config) (*Run, error)
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	UpdateRunRunning(ctx context.Context, id string) error
	CompleteRun(ctx context.Context, id string, status RunStatus, result *pdptw.SolveResult, errMsg string) error

	AppendMetricsSnapshot(ctx context.Context, snap MetricsSnapshot) error
	ListMetricsSnapshots(ctx context.Context, runID string) ([]MetricsSnapshot, error)

	CreateSubscription(ctx context.Context, url, secret string, eventTypes []string) (*Subscription, error)
	ListSubscriptions(ctx context.Context) ([]*Subscription, error)
	DeleteSubscription(ctx context.Context, id string) error

	EnqueueDelivery(ctx context.Context, sub *Subscription, eventType string, payload []byte) (string, error)
	FetchDueDeliveries(ctx context.Context, limit int) ([]Delivery, error)
	MarkDelivered(ctx context.Context, id string, responseCode, latencyMs int) error
	MarkRetry(ctx context.Context, id string, nextAttemptAt time.Time, lastError string, responseCode, latencyMs int) error
	MarkFailed(ctx context.Context, id string, lastError string, responseCode, latencyMs int) error
	ListDLQ(ctx context.Context, limit int) ([]Delivery, error)
}
