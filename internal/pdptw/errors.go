package pdptw

import "errors"

// Error kinds surfaced at the solver's public boundary.
var (
	ErrInvalidInstance         = errors.New("pdptw: invalid instance")
	ErrConstructionInfeasible  = errors.New("pdptw: construction_infeasible")
	ErrNoFeasibleSolutionFound = errors.New("pdptw: no_feasible_solution_found")
	ErrCancelled               = errors.New("pdptw: cancelled")
)
