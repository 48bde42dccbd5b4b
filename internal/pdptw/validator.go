package pdptw

import "fmt"

// ViolationKind classifies a single feasibility violation.
type ViolationKind string

const (
	ViolationUnpairedDelivery     ViolationKind = "unpaired_delivery"
	ViolationDeliveryBeforePickup ViolationKind = "delivery_before_pickup"
	ViolationMissingRequest       ViolationKind = "missing_request"
	ViolationDuplicateVisit       ViolationKind = "duplicate_visit"
	ViolationCapacityOverflow     ViolationKind = "capacity_overflow"
	ViolationTimeWindow           ViolationKind = "time_window_violation"
	ViolationDepotReturnLate      ViolationKind = "depot_return_late"
)

// Violation is one structured feasibility defect. Route/Position are -1
// when the violation is not anchored to a single route position (e.g.
// missing_request).
type Violation struct {
	Kind     ViolationKind
	Route    int
	Position int
	Node     int
	Arrival  int
	Due      int
}

func (v Violation) String() string {
	switch v.Kind {
	case ViolationTimeWindow:
		return fmt.Sprintf("time_window_violation: route %d position %d node %d arrival %d due %d", v.Route, v.Position, v.Node, v.Arrival, v.Due)
	case ViolationCapacityOverflow:
		return fmt.Sprintf("capacity_overflow: route %d position %d node %d", v.Route, v.Position, v.Node)
	case ViolationDepotReturnLate:
		return fmt.Sprintf("depot_return_late: route %d arrival %d due %d", v.Route, v.Arrival, v.Due)
	default:
		return fmt.Sprintf("%s: route %d position %d node %d", v.Kind, v.Route, v.Position, v.Node)
	}
}

// Validate is the single source of truth gating every candidate solution.
// It never mutates s and runs in O(total nodes).
func Validate(inst *Instance, s *Solution) (bool, []Violation) {
	var violations []Violation
	visitCount := make([]int, inst.NNodes())

	for ri, r := range s.Routes {
		violations = append(violations, validateRoute(inst, r.Stops, ri, visitCount)...)
	}

	for i := 1; i < inst.NNodes(); i++ {
		switch {
		case visitCount[i] == 0:
			violations = append(violations, Violation{Kind: ViolationMissingRequest, Route: -1, Position: -1, Node: i})
		case visitCount[i] > 1:
			violations = append(violations, Violation{Kind: ViolationDuplicateVisit, Route: -1, Position: -1, Node: i})
		}
	}

	return len(violations) == 0, violations
}

func validateRoute(inst *Instance, stops []int, routeIdx int, visitCount []int) []Violation {
	var violations []Violation
	if len(stops) == 0 {
		return violations
	}

	arrival := 0
	load := 0
	prev := 0
	seenPickup := map[int]bool{}

	for pos, node := range stops {
		visitCount[node]++
		if visitCount[node] > 1 {
			violations = append(violations, Violation{Kind: ViolationDuplicateVisit, Route: routeIdx, Position: pos, Node: node})
		}

		arrival = arrival + inst.Nodes[prev].Service + inst.Travel(prev, node)
		if arrival < inst.Nodes[node].Ready {
			arrival = inst.Nodes[node].Ready
		}
		if arrival > inst.Nodes[node].Due {
			violations = append(violations, Violation{Kind: ViolationTimeWindow, Route: routeIdx, Position: pos, Node: node, Arrival: arrival, Due: inst.Nodes[node].Due})
		}

		if inst.IsDelivery(node) {
			p := inst.PickupOf(node)
			if !seenPickup[p] {
				violations = append(violations, Violation{Kind: ViolationDeliveryBeforePickup, Route: routeIdx, Position: pos, Node: node})
			}
		}
		if inst.IsPickup(node) {
			if inst.DeliveryOf(node) == 0 {
				violations = append(violations, Violation{Kind: ViolationUnpairedDelivery, Route: routeIdx, Position: pos, Node: node})
			}
			seenPickup[node] = true
		}

		load += inst.Nodes[node].Demand
		if load > inst.Capacity || load < 0 {
			violations = append(violations, Violation{Kind: ViolationCapacityOverflow, Route: routeIdx, Position: pos, Node: node})
		}

		prev = node
	}

	arrival = arrival + inst.Nodes[prev].Service + inst.Travel(prev, 0)
	if arrival > inst.Nodes[0].Due {
		violations = append(violations, Violation{Kind: ViolationDepotReturnLate, Route: routeIdx, Position: len(stops), Arrival: arrival, Due: inst.Nodes[0].Due})
	}

	return violations
}

// Schedule computes the arrival times a1..ak+1 for a single route (one per
// stop, then the depot return; the departure a0 = 0 is not included),
// used by local search operators to cheaply evaluate candidate moves
// before committing to a full Validate call. ok is false the moment a due
// bound is exceeded; the returned slice is valid up to (and including) the
// violating entry only.
func Schedule(inst *Instance, stops []int) (arrivals []int, ok bool) {
	arrivals = make([]int, len(stops)+1)
	prev := 0
	t := 0
	for i, node := range stops {
		t = t + inst.Nodes[prev].Service + inst.Travel(prev, node)
		if t < inst.Nodes[node].Ready {
			t = inst.Nodes[node].Ready
		}
		if t > inst.Nodes[node].Due {
			arrivals[i] = t
			return arrivals[:i+1], false
		}
		arrivals[i] = t
		prev = node
	}
	t = t + inst.Nodes[prev].Service + inst.Travel(prev, 0)
	arrivals[len(stops)] = t
	if t > inst.Nodes[0].Due {
		return arrivals, false
	}
	return arrivals, true
}

// RouteLoadOK reports whether cumulative load along stops stays within
// [0, capacity] at every point.
func RouteLoadOK(inst *Instance, stops []int) bool {
	load := 0
	for _, node := range stops {
		load += inst.Nodes[node].Demand
		if load > inst.Capacity || load < 0 {
			return false
		}
	}
	return true
}

// PairsOrderedOK reports whether every pair fully contained in stops has
// its pickup strictly before its delivery, and no delivery appears without
// its pickup present.
func PairsOrderedOK(inst *Instance, stops []int) bool {
	seenPickup := map[int]bool{}
	for _, node := range stops {
		if inst.IsDelivery(node) && !seenPickup[inst.PickupOf(node)] {
			return false
		}
		if inst.IsPickup(node) {
			seenPickup[node] = true
		}
	}
	return true
}
