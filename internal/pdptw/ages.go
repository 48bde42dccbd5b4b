package pdptw

// AGES attempts to reduce vehicle_count without ever admitting
// infeasibility: repeatedly picks the smallest route (fewest pairs, ties
// broken by shortest distance), extracts its pairs, and greedily
// reinserts them into the remaining routes. A failed reinsertion aborts
// that attempt without mutating the solution. Occasionally, instead of
// eliminating the smallest route, it tries a random pair of routes and
// attempts to merge them, to escape systematic dead-ends.
//
// Stops after maxEliminations successful eliminations or
// consecutiveFailLimit consecutive failed attempts, whichever comes
// first. Returns the (possibly unchanged) solution and the count of
// eliminations actually committed.
func AGES(inst *Instance, sol *Solution, rng *RNG, state *LNSState) (*Solution, int) {
	const maxEliminations = 100
	const consecutiveFailLimit = 20

	current := sol
	eliminated := 0
	consecutiveFailures := 0

	for eliminated < maxEliminations && consecutiveFailures < consecutiveFailLimit {
		current.Prune()
		if len(current.Routes) <= 1 {
			break
		}

		var next *Solution
		var ok bool
		if rng.Float64() < 0.15 {
			next, ok = attemptMerge(inst, current, rng)
		}
		if !ok {
			next, ok = attemptSmallestEliminate(inst, current, state)
		}

		if ok {
			current = next
			eliminated++
			consecutiveFailures = 0
		} else {
			consecutiveFailures++
			state.metrics.AGESAttemptsFailed++
		}
	}

	state.metrics.AGESEliminations += eliminated
	return current, eliminated
}

func attemptSmallestEliminate(inst *Instance, sol *Solution, state *LNSState) (*Solution, bool) {
	smallest := smallestRouteIndex(inst, sol)
	if smallest < 0 {
		return nil, false
	}

	candidate := sol.Clone()
	victim := candidate.Routes[smallest]
	candidate.Routes = append(candidate.Routes[:smallest], candidate.Routes[smallest+1:]...)

	pairs := pickupsIn(inst, victim.Stops)
	for _, p := range pairs {
		d := inst.DeliveryOf(p)
		bestRoute, bestDelta := -1, 0
		var bestStops []int
		for ri, r := range candidate.Routes {
			stops, delta, _, _, ok := insertionCost(inst, r.Stops, p, d)
			if ok && (bestRoute < 0 || delta < bestDelta) {
				bestRoute, bestDelta, bestStops = ri, delta, stops
			}
		}
		if bestRoute < 0 {
			state.metrics.RepairFailures++
			return nil, false
		}
		candidate.Routes[bestRoute].Stops = bestStops
	}

	candidate.Prune()
	if feasible, _ := Validate(inst, candidate); !feasible {
		return nil, false
	}
	return candidate, true
}

func smallestRouteIndex(inst *Instance, sol *Solution) int {
	best := -1
	bestPairs := int(^uint(0) >> 1)
	bestDist := int(^uint(0) >> 1)
	for i, r := range sol.Routes {
		if len(r.Stops) == 0 {
			continue
		}
		n := r.NPairs(inst)
		d := routeDistance(inst, r.Stops)
		if n < bestPairs || (n == bestPairs && d < bestDist) {
			best, bestPairs, bestDist = i, n, d
		}
	}
	return best
}

// attemptMerge tries concatenating two randomly chosen routes end-to-end,
// committing only if the merged route stays feasible.
func attemptMerge(inst *Instance, sol *Solution, rng *RNG) (*Solution, bool) {
	active := make([]int, 0, len(sol.Routes))
	for i, r := range sol.Routes {
		if len(r.Stops) > 0 {
			active = append(active, i)
		}
	}
	if len(active) < 2 {
		return nil, false
	}
	idxs := rng.Sample(len(active), 2)
	i, j := active[idxs[0]], active[idxs[1]]

	merged := append(append([]int{}, sol.Routes[i].Stops...), sol.Routes[j].Stops...)
	if !RouteLoadOK(inst, merged) {
		return nil, false
	}
	if _, ok := Schedule(inst, merged); !ok {
		return nil, false
	}

	candidate := sol.Clone()
	candidate.Routes[i].Stops = merged
	candidate.Routes = append(candidate.Routes[:j], candidate.Routes[j+1:]...)
	candidate.Prune()
	if feasible, _ := Validate(inst, candidate); !feasible {
		return nil, false
	}
	return candidate, true
}
