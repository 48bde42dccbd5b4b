package solveapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/arenadelta/pdptw-solver/internal/bestknown"
	"github.com/arenadelta/pdptw-solver/internal/notify"
	"github.com/arenadelta/pdptw-solver/internal/runstore"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := runstore.NewMemory()
	return &Server{
		Store:     store,
		Pub:       notify.NewPublisher(store),
		Broker:    NewBroker(),
		BestKnown: bestknown.Embedded{},
		Limiter:   rate.NewLimiter(rate.Inf, 100),
	}
}

const tinyInstance = `2 10 1.0
0 0 0 0 0 1000 0 0 0
1 10 0 1 0 500 0 0 2
2 20 0 -1 0 1000 0 1 0
`

func TestHealthReady(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("health: got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.ReadyHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("ready: got %d", rr.Code)
	}
}

func TestCreateAndGetSolve(t *testing.T) {
	s := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"instanceName": "tiny",
		"instanceText": tinyInstance,
		"timeLimitS":   1,
	})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/solves", bytes.NewReader(body))
	s.SolvesHandler(rr, req)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("create solve: got %d body %s", rr.Code, rr.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected a run id")
	}

	// The solve runs in a background goroutine; poll briefly for completion.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		rr = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, "/v1/solves/"+created.ID, nil)
		s.SolveByIDHandler(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("get solve: got %d", rr.Code)
		}
		var resp struct {
			Run struct {
				Status string `json:"Status"`
			} `json:"run"`
		}
		_ = json.Unmarshal(rr.Body.Bytes(), &resp)
		if resp.Run.Status == string(runstore.RunSucceeded) || resp.Run.Status == string(runstore.RunFailed) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("run did not finish within the test deadline")
}

func TestCreateSolveRejectsMissingFields(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/solves", bytes.NewReader([]byte(`{}`)))
	s.SolvesHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a request missing instanceName/instanceText, got %d", rr.Code)
	}
}

func TestSubscriptionsCreateListDelete(t *testing.T) {
	s := newTestServer(t)

	body, _ := json.Marshal(map[string]any{"url": "https://example.test/hook", "eventTypes": []string{notify.EventSolveCompleted}})
	rr := httptest.NewRecorder()
	s.SubscriptionsHandler(rr, httptest.NewRequest(http.MethodPost, "/v1/subscriptions", bytes.NewReader(body)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create subscription: got %d", rr.Code)
	}
	var sub struct {
		ID string `json:"ID"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &sub)

	rr = httptest.NewRecorder()
	s.SubscriptionsHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/subscriptions", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("list subscriptions: got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.SubscriptionByIDHandler(rr, httptest.NewRequest(http.MethodDelete, "/v1/subscriptions/"+sub.ID, nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete subscription: got %d", rr.Code)
	}
}
