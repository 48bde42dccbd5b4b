package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"

	"github.com/arenadelta/pdptw-solver/internal/runstore"
)

func TestWorkerProcessOnce_SuccessAndSignature(t *testing.T) {
	var gotSig, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Signature")
		gotType = r.Header.Get("X-Event-Type")
		w.WriteHeader(200)
	}))
	defer srv.Close()

	store := runstore.NewMemory()
	w := &Worker{Store: store, HTTP: srv.Client(), Limiter: rate.NewLimiter(rate.Inf, 10), Stop: make(chan struct{}), MaxAttempts: 3}

	ctx := context.Background()
	sub, err := store.CreateSubscription(ctx, srv.URL, "secret", []string{EventSolveCompleted})
	if err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	id, err := store.EnqueueDelivery(ctx, sub, EventSolveCompleted, []byte(`{"id":"evt1"}`))
	if err != nil || id == "" {
		t.Fatalf("EnqueueDelivery: %v", err)
	}

	w.processOnce()

	if gotSig == "" || gotType != EventSolveCompleted {
		t.Fatalf("missing signature/type headers: sig=%q type=%q", gotSig, gotType)
	}
	due, err := store.FetchDueDeliveries(ctx, 10)
	if err != nil {
		t.Fatalf("FetchDueDeliveries: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("expected the delivery to no longer be due after success, got %+v", due)
	}
}

func TestWorkerProcessOnce_FailDeadLetters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(500) }))
	defer srv.Close()

	store := runstore.NewMemory()
	w := &Worker{Store: store, HTTP: srv.Client(), Limiter: rate.NewLimiter(rate.Inf, 10), Stop: make(chan struct{}), MaxAttempts: 1}

	ctx := context.Background()
	sub, _ := store.CreateSubscription(ctx, srv.URL, "", nil)
	_, err := store.EnqueueDelivery(ctx, sub, EventSolveFailed, []byte(`{}`))
	if err != nil {
		t.Fatalf("EnqueueDelivery: %v", err)
	}

	w.processOnce()

	dlq, err := store.ListDLQ(ctx, 10)
	if err != nil {
		t.Fatalf("ListDLQ: %v", err)
	}
	if len(dlq) != 1 {
		t.Fatalf("expected one dead-lettered delivery, got %d", len(dlq))
	}
}

func TestPublisherEmitRespectsEventTypeFilter(t *testing.T) {
	store := runstore.NewMemory()
	ctx := context.Background()
	_, err := store.CreateSubscription(ctx, "https://example.test/hook", "", []string{EventSolveCompleted})
	if err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}

	p := NewPublisher(store)
	p.Emit(ctx, EventSolveCancelled, "run-1", map[string]any{"status": "cancelled"})
	due, err := store.FetchDueDeliveries(ctx, 10)
	if err != nil {
		t.Fatalf("FetchDueDeliveries: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("expected no delivery for an event type the subscription didn't request, got %d", len(due))
	}

	p.Emit(ctx, EventSolveCompleted, "run-1", map[string]any{"status": "succeeded"})
	due, err = store.FetchDueDeliveries(ctx, 10)
	if err != nil {
		t.Fatalf("FetchDueDeliveries: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected one delivery for the matching event type, got %d", len(due))
	}
}
