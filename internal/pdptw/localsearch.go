package pdptw

// LocalSearch runs 2-opt, relocate, and exchange in round-robin,
// first-improvement order until one full cycle over all three finds no
// improving move, per the neighborhood order described for the engine.
// It mutates sol in place and always leaves it feasible.
func LocalSearch(inst *Instance, sol *Solution) {
	operators := []func(*Instance, *Solution) bool{
		twoOptPass,
		relocatePass,
		exchangePass,
	}
	for {
		improved := false
		for _, op := range operators {
			if op(inst, sol) {
				improved = true
			}
		}
		if !improved {
			return
		}
	}
}

func routeCost(inst *Instance, stops []int) int { return routeDistance(inst, stops) }

// twoOptPass applies first-improvement 2-opt within each route: reverse a
// sub-segment and keep the reversal only if it stays feasible and shortens
// the route.
func twoOptPass(inst *Instance, sol *Solution) bool {
	improved := false
	for ri := range sol.Routes {
		stops := sol.Routes[ri].Stops
		n := len(stops)
		for i := 0; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				candidate := reverseSegment(stops, i, j)
				if !PairsOrderedOK(inst, candidate) || !RouteLoadOK(inst, candidate) {
					continue
				}
				if _, ok := Schedule(inst, candidate); !ok {
					continue
				}
				if routeCost(inst, candidate) < routeCost(inst, stops) {
					sol.Routes[ri].Stops = candidate
					stops = candidate
					improved = true
				}
			}
		}
	}
	return improved
}

func reverseSegment(stops []int, i, j int) []int {
	out := append([]int(nil), stops...)
	for l, r := i, j; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}

// relocatePass moves whole pairs (pickup and delivery together) to a
// different position within their route or into another route, keeping
// precedence. Single nodes are not relocated on their own.
func relocatePass(inst *Instance, sol *Solution) bool {
	improved := false
	for ri := range sol.Routes {
		for _, node := range append([]int(nil), sol.Routes[ri].Stops...) {
			if inst.IsPickup(node) {
				if relocatePair(inst, sol, ri, node, inst.DeliveryOf(node)) {
					improved = true
				}
			}
		}
	}
	return improved
}

// relocatePair removes pair (p, d) from its current route and reinserts it
// at its cheapest feasible position across every route (including its
// own), committing only if that is strictly cheaper overall.
func relocatePair(inst *Instance, sol *Solution, fromRoute, p, d int) bool {
	before := sol.Cost(inst)

	originalStops := sol.Routes[fromRoute].Stops
	withoutPair := removePair(originalStops, p, d)
	sol.Routes[fromRoute].Stops = withoutPair

	ri, stops, _, ok := bestInsertionAcrossRoutes(inst, sol, p, d)
	if !ok {
		sol.Routes[fromRoute].Stops = originalStops
		return false
	}

	var newRouteAdded bool
	if ri == -1 {
		sol.Routes = append(sol.Routes, Route{Stops: stops})
		newRouteAdded = true
	} else {
		sol.Routes[ri].Stops = stops
	}
	sol.Prune()

	after := sol.Cost(inst)
	if after.Less(before) {
		return true
	}

	// Revert: restore the pre-move state exactly.
	sol.Routes[fromRoute].Stops = originalStops
	if newRouteAdded {
		sol.Routes = sol.Routes[:len(sol.Routes)-1]
	} else if ri != fromRoute {
		sol.Routes[ri].Stops = removePair(stops, p, d)
	}
	sol.Prune()
	return false
}

// exchangePass swaps two pairs between routes when doing so strictly
// improves cost and preserves feasibility. Single nodes are not swapped,
// and no swaps are tried within one route.
func exchangePass(inst *Instance, sol *Solution) bool {
	improved := false
	n := len(sol.Routes)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if exchangeRoutes(inst, sol, i, j) {
				improved = true
			}
		}
	}
	return improved
}

func exchangeRoutes(inst *Instance, sol *Solution, i, j int) bool {
	pairsI := pickupsIn(inst, sol.Routes[i].Stops)
	pairsJ := pickupsIn(inst, sol.Routes[j].Stops)

	for _, pi := range pairsI {
		di := inst.DeliveryOf(pi)
		for _, pj := range pairsJ {
			dj := inst.DeliveryOf(pj)
			if trySwapPair(inst, sol, i, j, pi, di, pj, dj) {
				return true
			}
		}
	}
	return false
}

func pickupsIn(inst *Instance, stops []int) []int {
	var out []int
	for _, s := range stops {
		if inst.IsPickup(s) {
			out = append(out, s)
		}
	}
	return out
}

func trySwapPair(inst *Instance, sol *Solution, ri, rj, pi, di, pj, dj int) bool {
	before := sol.Cost(inst)
	origI := sol.Routes[ri].Stops
	origJ := sol.Routes[rj].Stops

	candI, okI := insertPairInto(inst, removePair(origI, pi, di), pj, dj)
	candJ, okJ := insertPairInto(inst, removePair(origJ, pj, dj), pi, di)
	if !okI || !okJ {
		return false
	}

	sol.Routes[ri].Stops = candI
	sol.Routes[rj].Stops = candJ

	after := sol.Cost(inst)
	if after.Less(before) {
		return true
	}
	sol.Routes[ri].Stops = origI
	sol.Routes[rj].Stops = origJ
	return false
}

// insertPairInto finds the cheapest feasible placement of (p, d) into
// stops without considering any other route.
func insertPairInto(inst *Instance, stops []int, p, d int) ([]int, bool) {
	newStops, _, _, _, ok := insertionCost(inst, stops, p, d)
	if !ok {
		return nil, false
	}
	return newStops, true
}
