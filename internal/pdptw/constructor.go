package pdptw

import "sort"

// Construct builds an initial feasible Solution by pair-level greedy
// insertion: pairs are sorted by due(pickup) then time-window width, and
// each is placed at its cheapest feasible (route, position) or given a
// fresh route. If greedy insertion cannot complete, it falls back to a
// Clarke-Wright-style savings merge starting from one route per pair.
//
// Returns ErrConstructionInfeasible if neither strategy produces a
// feasible solution.
func Construct(inst *Instance) (*Solution, error) {
	if sol, ok := greedyConstruct(inst); ok {
		return sol, nil
	}
	if sol, ok := savingsConstruct(inst); ok {
		return sol, nil
	}
	return nil, ErrConstructionInfeasible
}

func sortedPairs(inst *Instance) [][2]int {
	pairs := inst.Pairs()
	sort.Slice(pairs, func(i, j int) bool {
		pi, pj := pairs[i][0], pairs[j][0]
		if inst.Nodes[pi].Due != inst.Nodes[pj].Due {
			return inst.Nodes[pi].Due < inst.Nodes[pj].Due
		}
		wi := inst.Nodes[pi].Due - inst.Nodes[pi].Ready
		wj := inst.Nodes[pj].Due - inst.Nodes[pj].Ready
		return wi < wj
	})
	return pairs
}

func greedyConstruct(inst *Instance) (*Solution, bool) {
	sol := &Solution{}
	for _, pair := range sortedPairs(inst) {
		p, d := pair[0], pair[1]
		ri, stops, _, ok := bestInsertionAcrossRoutes(inst, sol, p, d)
		if !ok {
			return nil, false
		}
		if ri == -1 {
			sol.Routes = append(sol.Routes, Route{Stops: stops})
		} else {
			sol.Routes[ri].Stops = stops
		}
	}
	sol.Prune()
	if feasible, _ := Validate(inst, sol); !feasible {
		return nil, false
	}
	return sol, true
}

// savingsConstruct implements the Clarke-Wright-style pair-level fallback:
// start with one route per pair, then repeatedly merge the two routes
// whose endpoints yield the highest savings s(i,j) = dist(i,0) + dist(0,j)
// - dist(i,j), skipping any merge that would violate an invariant.
func savingsConstruct(inst *Instance) (*Solution, bool) {
	pairs := inst.Pairs()
	routes := make([]Route, 0, len(pairs))
	for _, pair := range pairs {
		stops := []int{pair[0], pair[1]}
		if _, ok := Schedule(inst, stops); !ok || !RouteLoadOK(inst, stops) {
			return nil, false
		}
		routes = append(routes, Route{Stops: stops})
	}

	for {
		bestI, bestJ := -1, -1
		bestSaving := 0
		var bestMerged []int

		for i := 0; i < len(routes); i++ {
			for j := 0; j < len(routes); j++ {
				if i == j {
					continue
				}
				tailI := routes[i].Stops[len(routes[i].Stops)-1]
				headJ := routes[j].Stops[0]
				saving := inst.Dist(tailI, 0) + inst.Dist(0, headJ) - inst.Dist(tailI, headJ)
				if saving <= bestSaving {
					continue
				}
				merged := append(append([]int{}, routes[i].Stops...), routes[j].Stops...)
				if !RouteLoadOK(inst, merged) {
					continue
				}
				if _, ok := Schedule(inst, merged); !ok {
					continue
				}
				if !PairsOrderedOK(inst, merged) {
					continue
				}
				bestSaving = saving
				bestI, bestJ = i, j
				bestMerged = merged
			}
		}

		if bestI < 0 {
			break
		}
		merged := Route{Stops: bestMerged}
		next := make([]Route, 0, len(routes)-1)
		for k, r := range routes {
			if k == bestI || k == bestJ {
				continue
			}
			next = append(next, r)
		}
		next = append(next, merged)
		routes = next
	}

	sol := &Solution{Routes: routes}
	sol.Prune()
	if feasible, _ := Validate(inst, sol); !feasible {
		return nil, false
	}
	return sol, true
}
