package solveapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/arenadelta/pdptw-solver/internal/buildinfo"
	"github.com/arenadelta/pdptw-solver/internal/instanceio"
	"github.com/arenadelta/pdptw-solver/internal/notify"
	"github.com/arenadelta/pdptw-solver/internal/pdptw"
	"github.com/arenadelta/pdptw-solver/internal/runstore"
)

type createSolveRequest struct {
	InstanceName string `json:"instanceName"`
	InstanceText string `json:"instanceText"`
	TimeLimitS   int    `json:"timeLimitS,omitempty"`
	Seed         int64  `json:"seed,omitempty"`
}

func (req *createSolveRequest) validate() error {
	if strings.TrimSpace(req.InstanceName) == "" {
		return errRequired("instanceName")
	}
	if strings.TrimSpace(req.InstanceText) == "" {
		return errRequired("instanceText")
	}
	if req.TimeLimitS < 0 {
		return errInvalid("timeLimitS must be >= 0")
	}
	return nil
}

func errRequired(field string) error { return errInvalid(field + " is required") }
func errInvalid(msg string) error    { return &validationError{msg: msg} }

type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }

// SolvesHandler handles POST /v1/solves (queue a run) and GET /v1/solves
// (list recent runs).
func (s *Server) SolvesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createSolve(w, r)
	case http.MethodGet:
		s.listSolves(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) createSolve(w http.ResponseWriter, r *http.Request) {
	var req createSolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := req.validate(); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid solve request", err.Error(), r.URL.Path)
		return
	}

	inst, err := instanceio.ParseInstance(req.InstanceName, strings.NewReader(req.InstanceText))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid instance", err.Error(), r.URL.Path)
		return
	}

	cfg := s.Defaults.ToPDPTWConfig()
	if req.TimeLimitS > 0 {
		cfg.TimeLimit = time.Duration(req.TimeLimitS) * time.Second
	}
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}

	run, err := s.Store.CreateRun(r.Context(), req.InstanceName, cfg)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Create run failed", err.Error(), r.URL.Path)
		return
	}

	go s.runSolve(run.ID, inst, cfg)

	writeJSON(w, http.StatusAccepted, map[string]any{"id": run.ID, "status": run.Status})
}

// runSolve executes the solve in the background, streaming progress
// through the broker and persisting metrics snapshots and the final
// result.
func (s *Server) runSolve(runID string, inst *pdptw.Instance, cfg pdptw.Config) {
	ctx := context.Background()
	_ = s.Store.UpdateRunRunning(ctx, runID)

	cfg.Progress = func(evt pdptw.ProgressEvent) {
		s.Broker.Publish(runID, Event{RunID: runID, ProgressEvent: evt})
		_ = s.Store.AppendMetricsSnapshot(ctx, runstore.MetricsSnapshot{
			RunID:      runID,
			Iteration:  evt.Iteration,
			Vehicles:   evt.Cost.Vehicles,
			Distance:   evt.Cost.Distance,
			Kind:       evt.Kind,
			RecordedAt: time.Now(),
		})
	}

	result := pdptw.Solve(ctx, inst, cfg)

	var status runstore.RunStatus
	var eventType string
	switch result.Status {
	case pdptw.StatusOK:
		status, eventType = runstore.RunSucceeded, notify.EventSolveCompleted
	case pdptw.StatusCancelled:
		status, eventType = runstore.RunCancelled, notify.EventSolveCancelled
	default:
		status, eventType = runstore.RunFailed, notify.EventSolveFailed
	}

	_ = s.Store.CompleteRun(ctx, runID, status, &result, "")
	vehicles := 0
	if result.Solution != nil {
		vehicles = result.Solution.VehicleCount()
	}
	if s.Pub != nil {
		s.Pub.Emit(ctx, eventType, runID, map[string]any{
			"status":   status,
			"vehicles": vehicles,
		})
	}
}

func (s *Server) listSolves(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	runs, err := s.Store.ListRuns(r.Context(), limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List runs failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": runs})
}

// SolveByIDHandler handles GET /v1/solves/{id}; the /v1/solves/{id}/ws
// path is routed to SolveWSHandler instead.
func (s *Server) SolveByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/solves/")
	id = strings.TrimSuffix(id, "/")
	if id == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}

	run, err := s.Store.GetRun(r.Context(), id)
	if err != nil {
		if err == runstore.ErrNotFound {
			writeProblem(w, http.StatusNotFound, "Not Found", "no such run", r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Get run failed", err.Error(), r.URL.Path)
		return
	}

	resp := map[string]any{"run": run}
	if run.Status == runstore.RunSucceeded && run.Result != nil && run.Result.Solution != nil {
		if bk, ok, err := s.BestKnown.Lookup(r.Context(), run.InstanceName); err == nil && ok {
			resp["bestKnown"] = bk
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// SubscriptionsHandler handles POST/GET /v1/subscriptions.
func (s *Server) SubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			URL        string   `json:"url"`
			Secret     string   `json:"secret"`
			EventTypes []string `json:"eventTypes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if strings.TrimSpace(req.URL) == "" {
			writeProblem(w, http.StatusBadRequest, "Invalid subscription", "url is required", r.URL.Path)
			return
		}
		sub, err := s.Store.CreateSubscription(r.Context(), req.URL, req.Secret, req.EventTypes)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create subscription failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, sub)
	case http.MethodGet:
		subs, err := s.Store.ListSubscriptions(r.Context())
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List subscriptions failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": subs})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SubscriptionByIDHandler handles DELETE /v1/subscriptions/{id}.
func (s *Server) SubscriptionByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/subscriptions/")
	if err := s.Store.DeleteSubscription(r.Context(), id); err != nil {
		if err == runstore.ErrNotFound {
			writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Delete subscription failed", err.Error(), r.URL.Path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthHandler handles GET /healthz.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Info()})
}

// ReadyHandler handles GET /readyz.
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
