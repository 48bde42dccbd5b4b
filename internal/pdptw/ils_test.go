package pdptw

import (
	"context"
	"testing"
	"time"
)

func smallFleetInstance(t *testing.T) *Instance {
	nodes := []Node{
		{X: 0, Y: 0, Demand: 0, Ready: 0, Due: 10000},
		{X: 10, Y: 0, Demand: 1, Ready: 0, Due: 1000},
		{X: 15, Y: 0, Demand: -1, Ready: 0, Due: 1000},
		{X: 50, Y: 0, Demand: 1, Ready: 0, Due: 1000},
		{X: 55, Y: 0, Demand: -1, Ready: 0, Due: 1000},
		{X: 100, Y: 0, Demand: 2, Ready: 0, Due: 1000},
		{X: 110, Y: 0, Demand: -2, Ready: 0, Due: 1000},
	}
	inst, err := NewInstance("small-fleet", 2, nodes, nil, 0)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	return inst
}

func TestSolve_ReturnsFeasibleIncumbent(t *testing.T) {
	inst := smallFleetInstance(t)
	cfg := Config{
		TimeLimit:        500 * time.Millisecond,
		MaxILSIterations: 2,
		LNSIterations:    20,
	}
	result := Solve(context.Background(), inst, cfg)
	if result.Status != StatusOK {
		t.Fatalf("expected StatusOK, got %s", result.Status)
	}
	if feasible, violations := Validate(inst, result.Solution); !feasible {
		t.Fatalf("incumbent infeasible: %v", violations)
	}
}

func TestSolve_DeterministicForFixedSeed(t *testing.T) {
	inst := smallFleetInstance(t)
	cfg := Config{
		TimeLimit:        300 * time.Millisecond,
		MaxILSIterations: 2,
		LNSIterations:    20,
		Seed:             42,
	}
	r1 := Solve(context.Background(), inst, cfg)
	r2 := Solve(context.Background(), inst, cfg)
	if r1.Status != StatusOK || r2.Status != StatusOK {
		t.Fatalf("expected both solves to succeed: %s %s", r1.Status, r2.Status)
	}
	c1, c2 := r1.Solution.Cost(inst), r2.Solution.Cost(inst)
	if c1 != c2 {
		t.Fatalf("expected identical cost for identical seed, got %+v vs %+v", c1, c2)
	}
}

func TestSolve_CancellationReturnsFeasibleIncumbent(t *testing.T) {
	inst := smallFleetInstance(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := Config{
		TimeLimit:        2 * time.Second,
		MaxILSIterations: 20,
		LNSIterations:    500,
	}
	result := Solve(ctx, inst, cfg)
	if result.Status != StatusCancelled {
		t.Fatalf("expected StatusCancelled, got %s", result.Status)
	}
	if feasible, violations := Validate(inst, result.Solution); !feasible {
		t.Fatalf("cancelled incumbent infeasible: %v", violations)
	}
}
