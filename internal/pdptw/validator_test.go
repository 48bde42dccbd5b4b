package pdptw

import "testing"

func TestValidate_FeasibleSingleRoute(t *testing.T) {
	inst := degenerateInstance(t)
	sol := &Solution{Routes: []Route{{Stops: []int{1, 2}}}}
	feasible, violations := Validate(inst, sol)
	if !feasible {
		t.Fatalf("expected feasible, got violations: %v", violations)
	}
}

func TestValidate_MissingRequest(t *testing.T) {
	inst := degenerateInstance(t)
	sol := &Solution{Routes: []Route{{Stops: []int{1}}}}
	feasible, violations := Validate(inst, sol)
	if feasible {
		t.Fatalf("expected infeasible")
	}
	found := false
	for _, v := range violations {
		if v.Kind == ViolationMissingRequest && v.Node == 2 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected missing_request for node 2, got %v", violations)
	}
}

func TestValidate_DeliveryBeforePickup(t *testing.T) {
	inst := degenerateInstance(t)
	sol := &Solution{Routes: []Route{{Stops: []int{2, 1}}}}
	feasible, violations := Validate(inst, sol)
	if feasible {
		t.Fatalf("expected infeasible")
	}
	found := false
	for _, v := range violations {
		if v.Kind == ViolationDeliveryBeforePickup {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected delivery_before_pickup, got %v", violations)
	}
}

func TestValidate_DuplicateVisit(t *testing.T) {
	inst := degenerateInstance(t)
	sol := &Solution{Routes: []Route{{Stops: []int{1, 1, 2}}}}
	feasible, violations := Validate(inst, sol)
	if feasible {
		t.Fatalf("expected infeasible")
	}
	found := false
	for _, v := range violations {
		if v.Kind == ViolationDuplicateVisit {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected duplicate_visit, got %v", violations)
	}
}

func TestValidate_TimeWindowViolation(t *testing.T) {
	nodes := []Node{
		{X: 0, Y: 0, Demand: 0, Ready: 0, Due: 1000},
		{X: 100, Y: 0, Demand: 1, Ready: 0, Due: 5},
		{X: 200, Y: 0, Demand: -1, Ready: 0, Due: 1000},
	}
	inst, err := NewInstance("tw", 1, nodes, nil, 0)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	sol := &Solution{Routes: []Route{{Stops: []int{1, 2}}}}
	feasible, violations := Validate(inst, sol)
	if feasible {
		t.Fatalf("expected infeasible (pickup arrival 100 > due 5)")
	}
	found := false
	for _, v := range violations {
		if v.Kind == ViolationTimeWindow && v.Node == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected time_window_violation at node 1, got %v", violations)
	}
}

func TestValidate_CapacityOverflow(t *testing.T) {
	nodes := []Node{
		{Demand: 0, Due: 1000},
		{Demand: 2, Due: 1000},
		{Demand: -2, Due: 1000},
	}
	inst, err := NewInstance("cap", 1, nodes, nil, 0)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	sol := &Solution{Routes: []Route{{Stops: []int{1, 2}}}}
	feasible, violations := Validate(inst, sol)
	if feasible {
		t.Fatalf("expected infeasible (demand 2 > capacity 1)")
	}
	found := false
	for _, v := range violations {
		if v.Kind == ViolationCapacityOverflow {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected capacity_overflow, got %v", violations)
	}
}
