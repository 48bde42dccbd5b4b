package pdptw

import "testing"

func degenerateInstance(t *testing.T) *Instance {
	nodes := []Node{
		{X: 0, Y: 0, Demand: 0, Ready: 0, Due: 1000, Service: 0},
		{X: 10, Y: 0, Demand: 1, Ready: 0, Due: 500, Service: 0},
		{X: 20, Y: 0, Demand: -1, Ready: 0, Due: 1000, Service: 0},
	}
	inst, err := NewInstance("degenerate", 1, nodes, nil, 0)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	return inst
}

func TestNewInstance_PairingInferredFromDemandSign(t *testing.T) {
	inst := degenerateInstance(t)
	if inst.DeliveryOf(1) != 2 {
		t.Fatalf("expected delivery of pickup 1 to be 2, got %d", inst.DeliveryOf(1))
	}
	if inst.PickupOf(2) != 1 {
		t.Fatalf("expected pickup of delivery 2 to be 1, got %d", inst.PickupOf(2))
	}
	if !inst.IsPickup(1) || !inst.IsDelivery(2) {
		t.Fatalf("expected node 1 pickup and node 2 delivery")
	}
}

func TestNewInstance_EuclideanMatrixRounding(t *testing.T) {
	inst := degenerateInstance(t)
	if got := inst.Dist(0, 1); got != 10 {
		t.Fatalf("expected dist(0,1)=10, got %d", got)
	}
	if got := inst.Dist(1, 2); got != 10 {
		t.Fatalf("expected dist(1,2)=10, got %d", got)
	}
}

func TestNewInstance_RejectsUnbalancedPickupsDeliveries(t *testing.T) {
	nodes := []Node{
		{Demand: 0, Due: 1000},
		{Demand: 1, Due: 1000},
		{Demand: 1, Due: 1000},
		{Demand: -1, Due: 1000},
	}
	if _, err := NewInstance("bad", 1, nodes, nil, 0); err != ErrInvalidInstance {
		t.Fatalf("expected ErrInvalidInstance, got %v", err)
	}
}

func TestNewInstance_RejectsReadyAfterDue(t *testing.T) {
	nodes := []Node{
		{Demand: 0, Ready: 0, Due: 100},
		{Demand: 1, Ready: 50, Due: 10},
		{Demand: -1, Ready: 0, Due: 100},
	}
	if _, err := NewInstance("bad", 1, nodes, nil, 0); err != ErrInvalidInstance {
		t.Fatalf("expected ErrInvalidInstance, got %v", err)
	}
}

func TestInstance_PairsOrderedByPickupIndex(t *testing.T) {
	inst := degenerateInstance(t)
	pairs := inst.Pairs()
	if len(pairs) != 1 || pairs[0][0] != 1 || pairs[0][1] != 2 {
		t.Fatalf("unexpected pairs: %v", pairs)
	}
}
