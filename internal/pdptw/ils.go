package pdptw

import (
	"context"
	"time"
)

// Solve runs the full Iterated Local Search outer loop: construct an
// initial incumbent, then alternate LNS, AGES, local-search polish, and
// perturbation-with-revert-on-failure until max_iterations, the
// wall-clock deadline, or ctx cancellation. It returns a tagged
// SolveResult; the Solution field is populated when Status is StatusOK or
// StatusCancelled (the feasible incumbent at cancellation) and is nil for
// StatusNoFeasible.
func Solve(ctx context.Context, inst *Instance, cfg Config) SolveResult {
	cfg = cfg.withDefaults()
	start := time.Now()
	deadline := start.Add(cfg.TimeLimit)
	rng := NewRNG(cfg.Seed)

	incumbent, err := Construct(inst)
	if err != nil {
		return SolveResult{Status: StatusNoFeasible, Metrics: Metrics{Runtime: time.Since(start)}}
	}

	best := incumbent.Clone()
	bestCost := best.Cost(inst)
	current := incumbent.Clone()

	var totalMetrics Metrics
	noImprovement := 0

	for iter := 0; iter < cfg.MaxILSIterations; iter++ {
		if pastDeadline(deadline) || ctxDone(ctx) {
			break
		}
		totalMetrics.ILSIterations++

		state := NewLNSState(rng, cfg, current.Cost(inst))
		lnsResult, _ := RunLNS(inst, current, cfg, state, subDeadline(deadline, cfg.TimeLimit, cfg.MaxILSIterations), cfg.Progress)
		totalMetrics.merge(state.metrics)

		agesResult, _ := AGES(inst, lnsResult, rng, state)
		totalMetrics.AGESEliminations += state.metrics.AGESEliminations
		totalMetrics.AGESAttemptsFailed += state.metrics.AGESAttemptsFailed

		LocalSearch(inst, agesResult)

		if feasible, _ := Validate(inst, agesResult); feasible {
			candCost := agesResult.Cost(inst)
			if candCost.Less(bestCost) {
				best = agesResult.Clone()
				bestCost = candCost
				noImprovement = 0
			} else {
				noImprovement++
			}
		} else {
			noImprovement++
		}

		current = perturb(inst, best, rng)

		remaining := deadline.Sub(time.Now())
		if noImprovement >= cfg.NoImprovementStop && remaining < cfg.TimeLimit/5 {
			break
		}
	}

	LocalSearch(inst, best)
	feasible, _ := Validate(inst, best)
	if !feasible {
		return SolveResult{Status: StatusNoFeasible, Metrics: mergedMetrics(totalMetrics, start)}
	}

	status := StatusOK
	if ctxDone(ctx) {
		status = StatusCancelled
	}
	return SolveResult{Solution: best, Status: status, Metrics: mergedMetrics(totalMetrics, start)}
}

func mergedMetrics(m Metrics, start time.Time) Metrics {
	m.Runtime = time.Since(start)
	return m
}

func pastDeadline(deadline time.Time) bool { return time.Now().After(deadline) }

func ctxDone(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// subDeadline allots an even share of the total time limit (limit /
// maxIters) to a single ILS step's LNS sub-run, never exceeding the
// overall deadline.
func subDeadline(overall time.Time, limit time.Duration, maxIters int) time.Time {
	if maxIters <= 0 {
		maxIters = 1
	}
	share := limit / time.Duration(maxIters)
	candidate := time.Now().Add(share)
	if candidate.After(overall) {
		return overall
	}
	return candidate
}

// perturb applies 2-4 random pair-aware moves to a clone of base,
// reverting to base entirely if the result is infeasible.
func perturb(inst *Instance, base *Solution, rng *RNG) *Solution {
	candidate := base.Clone()
	moves := rng.IntRange(2, 4)
	for i := 0; i < moves; i++ {
		switch rng.Intn(3) {
		case 0:
			perturbRelocatePair(inst, candidate, rng)
		case 1:
			perturbSwapPair(inst, candidate, rng)
		default:
			perturbShuffleSegment(inst, candidate, rng)
		}
	}
	if feasible, _ := Validate(inst, candidate); !feasible {
		return base.Clone()
	}
	return candidate
}

// perturbRelocatePair moves one randomly chosen pair to its cheapest
// feasible slot anywhere, unconditionally (diversification, not
// optimization): unlike relocatePair used by local search, it does not
// require the move to improve cost.
func perturbRelocatePair(inst *Instance, sol *Solution, rng *RNG) {
	if len(sol.Routes) == 0 {
		return
	}
	ri := rng.Intn(len(sol.Routes))
	pickups := pickupsIn(inst, sol.Routes[ri].Stops)
	if len(pickups) == 0 {
		return
	}
	p := pickups[rng.Intn(len(pickups))]
	d := inst.DeliveryOf(p)

	withoutPair := removePair(sol.Routes[ri].Stops, p, d)
	sol.Routes[ri].Stops = withoutPair

	newRi, stops, _, ok := bestInsertionAcrossRoutes(inst, sol, p, d)
	if !ok {
		sol.Routes[ri].Stops = insertAt(insertAt(withoutPair, 0, d), 0, p)
		return
	}
	if newRi == -1 {
		sol.Routes = append(sol.Routes, Route{Stops: stops})
	} else {
		sol.Routes[newRi].Stops = stops
	}
}

// perturbSwapPair swaps one random pair each between two random routes,
// unconditionally.
func perturbSwapPair(inst *Instance, sol *Solution, rng *RNG) {
	if len(sol.Routes) < 2 {
		return
	}
	idxs := rng.Sample(len(sol.Routes), 2)
	i, j := idxs[0], idxs[1]
	pi := pickupsIn(inst, sol.Routes[i].Stops)
	pj := pickupsIn(inst, sol.Routes[j].Stops)
	if len(pi) == 0 || len(pj) == 0 {
		return
	}
	p := pi[rng.Intn(len(pi))]
	q := pj[rng.Intn(len(pj))]
	d, e := inst.DeliveryOf(p), inst.DeliveryOf(q)

	candI, okI := insertPairInto(inst, removePair(sol.Routes[i].Stops, p, d), q, e)
	candJ, okJ := insertPairInto(inst, removePair(sol.Routes[j].Stops, q, e), p, d)
	if !okI || !okJ {
		return
	}
	sol.Routes[i].Stops = candI
	sol.Routes[j].Stops = candJ
}

func perturbShuffleSegment(inst *Instance, sol *Solution, rng *RNG) {
	if len(sol.Routes) == 0 {
		return
	}
	ri := rng.Intn(len(sol.Routes))
	stops := sol.Routes[ri].Stops
	if len(stops) < 4 {
		return
	}
	i := rng.Intn(len(stops) - 2)
	j := i + 1 + rng.Intn(len(stops)-i-1)
	candidate := reverseSegment(stops, i, j)
	if !PairsOrderedOK(inst, candidate) || !RouteLoadOK(inst, candidate) {
		return
	}
	if _, ok := Schedule(inst, candidate); !ok {
		return
	}
	sol.Routes[ri].Stops = candidate
}
