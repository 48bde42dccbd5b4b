package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/arenadelta/pdptw-solver/internal/runstore"
)

// Event types emitted on solve lifecycle transitions.
const (
	EventSolveCompleted = "solve.completed"
	EventSolveCancelled = "solve.cancelled"
	EventSolveFailed    = "solve.failed"
)

// Publisher fans a solve event out to every subscription registered for
// it, queuing one delivery per subscription in the store.
type Publisher struct {
	Store runstore.Store
}

func NewPublisher(s runstore.Store) *Publisher {
	return &Publisher{Store: s}
}

// Emit enqueues a delivery for every subscription interested in eventType.
// Store errors are swallowed per-subscription so one bad subscription
// never blocks delivery to the rest.
func (p *Publisher) Emit(ctx context.Context, eventType, runID string, data any) {
	subs, err := p.Store.ListSubscriptions(ctx)
	if err != nil || len(subs) == 0 {
		return
	}
	payload := map[string]any{
		"id":      "evt_" + uuid.New().String(),
		"type":    eventType,
		"runId":   runID,
		"ts":      time.Now().UTC().Format(time.RFC3339),
		"data":    data,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, s := range subs {
		if !wantsEvent(s, eventType) {
			continue
		}
		_, _ = p.Store.EnqueueDelivery(ctx, s, eventType, body)
	}
}

func wantsEvent(s *runstore.Subscription, eventType string) bool {
	if len(s.EventTypes) == 0 {
		return true
	}
	for _, t := range s.EventTypes {
		if t == eventType {
			return true
		}
	}
	return false
}
