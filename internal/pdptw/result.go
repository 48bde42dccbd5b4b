package pdptw

import "time"

// Status is the terminal state of a solve.
type Status string

const (
	StatusOK        Status = "ok"
	StatusCancelled Status = "cancelled"
	StatusNoFeasible Status = "no_feasible_solution_found"
)

// Metrics is the structured record of a solve run, replacing the dynamic
// result dictionaries a looser language would reach for here.
type Metrics struct {
	Runtime time.Duration

	ILSIterations int

	Iterations          int
	Improvements        int
	RejectedInfeasible  int
	RejectedLAHC        int
	AcceptedWorse       int
	RepairFailures      int

	AGESEliminations int
	AGESAttemptsFailed int
}

func (m *Metrics) merge(o Metrics) {
	m.Iterations += o.Iterations
	m.Improvements += o.Improvements
	m.RejectedInfeasible += o.RejectedInfeasible
	m.RejectedLAHC += o.RejectedLAHC
	m.AcceptedWorse += o.AcceptedWorse
	m.RepairFailures += o.RepairFailures
}

// SolveResult is the tagged result value returned at the solver's public
// boundary: a solution (present when Status is StatusOK or StatusCancelled,
// nil for StatusNoFeasible), the accumulated metrics, and the terminal
// status.
type SolveResult struct {
	Solution *Solution
	Metrics  Metrics
	Status   Status
}

// ProgressEvent is emitted through a caller-supplied callback rather than
// printed directly, so outer tooling decides formatting and transport.
type ProgressEvent struct {
	Kind string // "iteration_done", "improvement_found", "lns_stats"
	Iteration int
	Cost      Cost
	Metrics   Metrics
}

// ProgressFunc receives ProgressEvents during a solve; a nil func disables
// progress reporting entirely.
type ProgressFunc func(ProgressEvent)
