package runstore

import (
	"context"
	"testing"
	"time"

	"github.com/arenadelta/pdptw-solver/internal/pdptw"
)

func TestMemoryRunLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	run, err := m.CreateRun(ctx, "lc101", pdptw.DefaultConfig())
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if run.Status != RunQueued {
		t.Fatalf("expected queued status, got %s", run.Status)
	}

	if err := m.UpdateRunRunning(ctx, run.ID); err != nil {
		t.Fatalf("UpdateRunRunning: %v", err)
	}
	got, err := m.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != RunRunning {
		t.Fatalf("expected running status, got %s", got.Status)
	}

	result := &pdptw.SolveResult{Status: pdptw.StatusOK, Solution: &pdptw.Solution{}}
	if err := m.CompleteRun(ctx, run.ID, RunSucceeded, result, ""); err != nil {
		t.Fatalf("CompleteRun: %v", err)
	}
	got, err = m.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun after complete: %v", err)
	}
	if got.Status != RunSucceeded || got.Result == nil {
		t.Fatalf("expected succeeded run with result, got %+v", got)
	}

	if _, err := m.GetRun(ctx, "does-not-exist"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryMetricsSnapshots(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	run, _ := m.CreateRun(ctx, "lc101", pdptw.DefaultConfig())

	for i := 0; i < 3; i++ {
		snap := MetricsSnapshot{RunID: run.ID, Iteration: i, Vehicles: 10 - i, Distance: 900 - i*10, Kind: "iteration_done", RecordedAt: time.Now()}
		if err := m.AppendMetricsSnapshot(ctx, snap); err != nil {
			t.Fatalf("AppendMetricsSnapshot: %v", err)
		}
	}
	snaps, err := m.ListMetricsSnapshots(ctx, run.ID)
	if err != nil {
		t.Fatalf("ListMetricsSnapshots: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snaps))
	}

	if err := m.AppendMetricsSnapshot(ctx, MetricsSnapshot{RunID: "missing"}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown run, got %v", err)
	}
}

func TestMemoryWebhookDeliveryFlow(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	sub, err := m.CreateSubscription(ctx, "https://example.test/hook", "s3cr3t", []string{"solve.completed"})
	if err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}

	id, err := m.EnqueueDelivery(ctx, sub, "solve.completed", []byte(`{"run_id":"x"}`))
	if err != nil {
		t.Fatalf("EnqueueDelivery: %v", err)
	}

	due, err := m.FetchDueDeliveries(ctx, 10)
	if err != nil {
		t.Fatalf("FetchDueDeliveries: %v", err)
	}
	if len(due) != 1 || due[0].ID != id {
		t.Fatalf("expected the one enqueued delivery to be due, got %+v", due)
	}

	if err := m.MarkRetry(ctx, id, time.Now().Add(time.Minute), "connection refused", 0, 0); err != nil {
		t.Fatalf("MarkRetry: %v", err)
	}
	due, err = m.FetchDueDeliveries(ctx, 10)
	if err != nil {
		t.Fatalf("FetchDueDeliveries after retry: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("expected no due deliveries before the retry window, got %d", len(due))
	}

	if err := m.MarkFailed(ctx, id, "gave up", 502, 12); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	dlq, err := m.ListDLQ(ctx, 10)
	if err != nil {
		t.Fatalf("ListDLQ: %v", err)
	}
	if len(dlq) != 1 || dlq[0].ID != id {
		t.Fatalf("expected failed delivery in DLQ, got %+v", dlq)
	}

	if err := m.DeleteSubscription(ctx, sub.ID); err != nil {
		t.Fatalf("DeleteSubscription: %v", err)
	}
	subs, err := m.ListSubscriptions(ctx)
	if err != nil {
		t.Fatalf("ListSubscriptions: %v", err)
	}
	if len(subs) != 0 {
		t.Fatalf("expected no subscriptions after delete, got %d", len(subs))
	}
}
