package pdptw

import "math"

// insertionCost is the feasible-insertion search shared by the constructor,
// LNS repair operators, and AGES reinsertion: find the cheapest way to
// place pair (p, d) into route stops, trying every pickup position and
// every delivery position after it, and report the resulting stop slice
// alongside the distance delta it costs the route.
//
// Returns ok=false if no combination is feasible.
func insertionCost(inst *Instance, stops []int, p, d int) (newStops []int, delta int, pickupPos, deliveryPos int, ok bool) {
	best := math.MaxInt64
	bestPickupPos, bestDeliveryPos := -1, -1
	baseDist := routeDistance(inst, stops)

	for pp := 0; pp <= len(stops); pp++ {
		withPickup := insertAt(stops, pp, p)
		if !RouteLoadOK(inst, withPickup) {
			continue
		}
		for dp := pp + 1; dp <= len(withPickup); dp++ {
			candidate := insertAt(withPickup, dp, d)
			if !RouteLoadOK(inst, candidate) {
				continue
			}
			if _, ok := Schedule(inst, candidate); !ok {
				continue
			}
			cost := routeDistance(inst, candidate) - baseDist
			if cost < best {
				best = cost
				bestPickupPos, bestDeliveryPos = pp, dp
			}
		}
	}

	if bestPickupPos < 0 {
		return nil, 0, -1, -1, false
	}
	withPickup := insertAt(stops, bestPickupPos, p)
	final := insertAt(withPickup, bestDeliveryPos, d)
	return final, best, bestPickupPos, bestDeliveryPos, true
}

func insertAt(stops []int, pos, node int) []int {
	out := make([]int, 0, len(stops)+1)
	out = append(out, stops[:pos]...)
	out = append(out, node)
	out = append(out, stops[pos:]...)
	return out
}

// removePair returns stops with both p and d removed.
func removePair(stops []int, p, d int) []int {
	out := make([]int, 0, len(stops))
	for _, s := range stops {
		if s != p && s != d {
			out = append(out, s)
		}
	}
	return out
}

// bestInsertionAcrossRoutes finds the globally cheapest feasible insertion
// of pair (p, d) across every route in sol, plus the cost of opening a
// fresh route for it. routeIdx is -1 when opening a new route is cheapest
// or no existing route admits the pair.
func bestInsertionAcrossRoutes(inst *Instance, sol *Solution, p, d int) (routeIdx int, newStops []int, delta int, ok bool) {
	best := math.MaxInt64
	bestRoute := -1
	var bestStops []int

	for ri, r := range sol.Routes {
		stops, cost, _, _, feasible := insertionCost(inst, r.Stops, p, d)
		if feasible && cost < best {
			best = cost
			bestRoute = ri
			bestStops = stops
		}
	}

	newRouteCost := inst.Dist(0, p) + inst.Dist(p, d) + inst.Dist(d, 0)
	if _, feasible := Schedule(inst, []int{p, d}); feasible && newRouteCost < best {
		return -1, []int{p, d}, newRouteCost, true
	}
	if bestRoute >= 0 {
		return bestRoute, bestStops, best, true
	}
	// No existing route admits it; opening a new route is always feasible
	// only if the pair alone is schedule-feasible, checked above. If not
	// even that holds, there's no feasible insertion at all.
	if _, feasible := Schedule(inst, []int{p, d}); feasible {
		return -1, []int{p, d}, newRouteCost, true
	}
	return -1, nil, 0, false
}
