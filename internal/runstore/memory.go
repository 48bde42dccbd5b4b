package runstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arenadelta/pdptw-solver/internal/pdptw"
)

// Memory is an in-memory Store, used when no DATABASE_URL is configured.
type Memory struct {
	mu sync.Mutex

	runs    map[string]*Run
	runOrd  []string
	snaps   map[string][]MetricsSnapshot
	subs    map[string]*Subscription
	subOrd  []string
	dels    map[string]*Delivery
	delOrd  []string
	dlq     []Delivery
}

func NewMemory() *Memory {
	return &Memory{
		runs:  map[string]*Run{},
		snaps: map[string][]MetricsSnapshot{},
		subs:  map[string]*Subscription{},
		dels:  map[string]*Delivery{},
	}
}

func (m *Memory) CreateRun(_ context.Context, instanceName string, cfg pdptw.Config) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	r := &Run{
		ID:           uuid.New().String(),
		InstanceName: instanceName,
		Config:       cfg,
		Status:       RunQueued,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.runs[r.ID] = r
	m.runOrd = append(m.runOrd, r.ID)
	return r, nil
}

func (m *Memory) GetRun(_ context.Context, id string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *Memory) ListRuns(_ context.Context, limit int) ([]*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.runOrd) {
		limit = len(m.runOrd)
	}
	out := make([]*Run, 0, limit)
	for i := len(m.runOrd) - 1; i >= 0 && len(out) < limit; i-- {
		r := *m.runs[m.runOrd[i]]
		out = append(out, &r)
	}
	return out, nil
}

func (m *Memory) UpdateRunRunning(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return ErrNotFound
	}
	r.Status = RunRunning
	r.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) CompleteRun(_ context.Context, id string, status RunStatus, result *pdptw.SolveResult, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return ErrNotFound
	}
	r.Status = status
	r.Result = result
	r.Error = errMsg
	r.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) AppendMetricsSnapshot(_ context.Context, snap MetricsSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[snap.RunID]; !ok {
		return ErrNotFound
	}
	m.snaps[snap.RunID] = append(m.snaps[snap.RunID], snap)
	return nil
}

func (m *Memory) ListMetricsSnapshots(_ context.Context, runID string) ([]MetricsSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MetricsSnapshot, len(m.snaps[runID]))
	copy(out, m.snaps[runID])
	return out, nil
}

func (m *Memory) CreateSubscription(_ context.Context, url, secret string, eventTypes []string) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &Subscription{
		ID:         uuid.New().String(),
		URL:        url,
		Secret:     secret,
		EventTypes: eventTypes,
		CreatedAt:  time.Now(),
	}
	m.subs[s.ID] = s
	m.subOrd = append(m.subOrd, s.ID)
	return s, nil
}

func (m *Memory) ListSubscriptions(_ context.Context) ([]*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Subscription, 0, len(m.subOrd))
	for _, id := range m.subOrd {
		if s, ok := m.subs[id]; ok {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *Memory) DeleteSubscription(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[id]; !ok {
		return ErrNotFound
	}
	delete(m.subs, id)
	for i, sid := range m.subOrd {
		if sid == id {
			m.subOrd = append(m.subOrd[:i], m.subOrd[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) EnqueueDelivery(_ context.Context, sub *Subscription, eventType string, payload []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := &Delivery{
		ID:             uuid.New().String(),
		SubscriptionID: sub.ID,
		EventType:      eventType,
		URL:            sub.URL,
		Secret:         sub.Secret,
		Payload:        payload,
		Status:         "pending",
		NextAttemptAt:  time.Now(),
	}
	m.dels[d.ID] = d
	m.delOrd = append(m.delOrd, d.ID)
	return d.ID, nil
}

func (m *Memory) FetchDueDeliveries(_ context.Context, limit int) ([]Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	out := []Delivery{}
	for _, id := range m.delOrd {
		d, ok := m.dels[id]
		if !ok {
			continue
		}
		if (d.Status == "pending" || d.Status == "retry") && !d.NextAttemptAt.After(now) {
			out = append(out, *d)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) MarkDelivered(_ context.Context, id string, responseCode, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dels[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	d.Status = "delivered"
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	d.DeliveredAt = &now
	return nil
}

func (m *Memory) MarkRetry(_ context.Context, id string, nextAttemptAt time.Time, lastError string, responseCode, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dels[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = "retry"
	d.Attempts++
	d.NextAttemptAt = nextAttemptAt
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	return nil
}

func (m *Memory) MarkFailed(_ context.Context, id string, lastError string, responseCode, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dels[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = "failed"
	d.Attempts++
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	m.dlq = append(m.dlq, *d)
	return nil
}

func (m *Memory) ListDLQ(_ context.Context, limit int) ([]Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.dlq) {
		limit = len(m.dlq)
	}
	out := make([]Delivery, limit)
	copy(out, m.dlq[:limit])
	return out, nil
}
