package pdptw

import "testing"

func TestConstruct_SinglePairProducesOneRoute(t *testing.T) {
	inst := degenerateInstance(t)
	sol, err := Construct(inst)
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	sol.Prune()
	if len(sol.Routes) != 1 {
		t.Fatalf("expected exactly one route, got %d", len(sol.Routes))
	}
	if feasible, violations := Validate(inst, sol); !feasible {
		t.Fatalf("constructed solution infeasible: %v", violations)
	}
}

func TestConstruct_ZeroCapacityWithPositiveDemandIsInfeasible(t *testing.T) {
	nodes := []Node{
		{Demand: 0, Due: 1000},
		{Demand: 1, Due: 1000},
		{Demand: -1, Due: 1000},
	}
	inst, err := NewInstance("zero-cap", 0, nodes, nil, 0)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	if _, err := Construct(inst); err != ErrConstructionInfeasible {
		t.Fatalf("expected ErrConstructionInfeasible, got %v", err)
	}
}

func TestConstruct_MultiPairFeasible(t *testing.T) {
	nodes := []Node{
		{X: 0, Y: 0, Demand: 0, Ready: 0, Due: 10000},
		{X: 10, Y: 0, Demand: 1, Ready: 0, Due: 1000},
		{X: 15, Y: 0, Demand: -1, Ready: 0, Due: 1000},
		{X: 50, Y: 0, Demand: 1, Ready: 0, Due: 1000},
		{X: 55, Y: 0, Demand: -1, Ready: 0, Due: 1000},
		{X: 100, Y: 0, Demand: 2, Ready: 0, Due: 1000},
		{X: 110, Y: 0, Demand: -2, Ready: 0, Due: 1000},
	}
	inst, err := NewInstance("multi", 2, nodes, nil, 0)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	sol, err := Construct(inst)
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	if feasible, violations := Validate(inst, sol); !feasible {
		t.Fatalf("constructed solution infeasible: %v", violations)
	}
	if got := len(sol.AllPairs(inst)); got != inst.NRequests() {
		t.Fatalf("expected %d pairs present, got %d", inst.NRequests(), got)
	}
}
