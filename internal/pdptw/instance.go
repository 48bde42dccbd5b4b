// Package pdptw implements the core solver for the pickup-and-delivery
// problem with time windows: feasibility validation, construction,
// local search, large neighborhood search, vehicle-reduction (AGES), and
// the outer iterated local search loop.
package pdptw

import "math"

// Node is a single stop: the depot (index 0), a pickup, or a delivery.
type Node struct {
	X, Y    float64
	Demand  int // positive at pickups, negative at deliveries, zero at depot
	Ready   int
	Due     int
	Service int
}

// Instance is the immutable problem data shared by every component.
// Once built it is never mutated; all solver state lives in Solution.
type Instance struct {
	Name     string
	Capacity int
	Nodes    []Node

	dist       [][]int
	travelTime [][]int

	// pickupOf[delivery] = pickup, deliveryOf[pickup] = delivery. Depot (0) is unpaired.
	pickupOf   []int
	deliveryOf []int
}

// NewInstance builds an Instance from nodes and an explicit symmetric
// distance matrix (Format-A) or, if dist is nil, derives it from node
// coordinates using rounded Euclidean distance (Format-B). speed, if > 0,
// divides distance to produce travel time; otherwise travel time equals
// distance.
func NewInstance(name string, capacity int, nodes []Node, dist [][]int, speed float64) (*Instance, error) {
	n := len(nodes)
	if dist == nil {
		dist = euclideanMatrix(nodes)
	}
	if len(dist) != n {
		return nil, ErrInvalidInstance
	}
	for _, row := range dist {
		if len(row) != n {
			return nil, ErrInvalidInstance
		}
	}
	tt := dist
	if speed > 0 && speed != 1 {
		tt = make([][]int, n)
		for i := range dist {
			tt[i] = make([]int, n)
			for j, d := range dist[i] {
				tt[i][j] = int(math.Round(float64(d) / speed))
			}
		}
	}

	inst := &Instance{
		Name:       name,
		Capacity:   capacity,
		Nodes:      nodes,
		dist:       dist,
		travelTime: tt,
	}
	if err := inst.buildPairing(); err != nil {
		return nil, err
	}
	if err := inst.checkConsistency(); err != nil {
		return nil, err
	}
	return inst, nil
}

func euclideanMatrix(nodes []Node) [][]int {
	n := len(nodes)
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := nodes[i].X - nodes[j].X
			dy := nodes[i].Y - nodes[j].Y
			d := int(math.Round(math.Sqrt(dx*dx + dy*dy)))
			m[i][j] = d
			m[j][i] = d
		}
	}
	return m
}

// buildPairing infers pickup/delivery pairs from the sign of Demand: the
// k-th positive-demand node (in index order) pairs with the k-th
// negative-demand node. Callers that already know explicit pair indices
// should use NewInstanceWithPairs instead.
func (inst *Instance) buildPairing() error {
	n := len(inst.Nodes)
	inst.pickupOf = make([]int, n)
	inst.deliveryOf = make([]int, n)
	var pickups, deliveries []int
	for i := 1; i < n; i++ {
		switch {
		case inst.Nodes[i].Demand > 0:
			pickups = append(pickups, i)
		case inst.Nodes[i].Demand < 0:
			deliveries = append(deliveries, i)
		}
	}
	if len(pickups) != len(deliveries) {
		return ErrInvalidInstance
	}
	for k, p := range pickups {
		d := deliveries[k]
		inst.deliveryOf[p] = d
		inst.pickupOf[d] = p
	}
	return nil
}

// NewInstanceWithPairs builds an Instance using an explicit pickup<->delivery
// mapping rather than inferring one from demand order (used by the
// Format-B parser, which carries pickup_index/delivery_index columns).
func NewInstanceWithPairs(name string, capacity int, nodes []Node, dist [][]int, speed float64, deliveryOf []int) (*Instance, error) {
	inst, err := NewInstance(name, capacity, nodes, dist, speed)
	if err != nil {
		return nil, err
	}
	n := len(nodes)
	inst.pickupOf = make([]int, n)
	inst.deliveryOf = make([]int, n)
	for p, d := range deliveryOf {
		if d == 0 {
			continue
		}
		inst.deliveryOf[p] = d
		inst.pickupOf[d] = p
	}
	if err := inst.checkConsistency(); err != nil {
		return nil, err
	}
	return inst, nil
}

func (inst *Instance) checkConsistency() error {
	n := len(inst.Nodes)
	if n == 0 || n%2 == 0 {
		return ErrInvalidInstance
	}
	for i := 1; i < n; i++ {
		nd := inst.Nodes[i]
		if nd.Ready > nd.Due || nd.Service < 0 {
			return ErrInvalidInstance
		}
		switch {
		case nd.Demand > 0:
			d := inst.deliveryOf[i]
			if d <= 0 || d >= n || inst.Nodes[d].Demand >= 0 {
				return ErrInvalidInstance
			}
		case nd.Demand < 0:
			p := inst.pickupOf[i]
			if p <= 0 || p >= n || inst.Nodes[p].Demand <= 0 {
				return ErrInvalidInstance
			}
		default:
			return ErrInvalidInstance // only the depot may have zero demand
		}
	}
	if inst.Nodes[0].Demand != 0 {
		return ErrInvalidInstance
	}
	for i := range inst.dist {
		for j := range inst.dist[i] {
			if inst.dist[i][j] < 0 || inst.dist[i][j] != inst.dist[j][i] {
				return ErrInvalidInstance
			}
		}
	}
	return nil
}

func (inst *Instance) NNodes() int { return len(inst.Nodes) }

// NRequests is the number of pickup-delivery pairs, (n_nodes-1)/2.
func (inst *Instance) NRequests() int { return (len(inst.Nodes) - 1) / 2 }

func (inst *Instance) Dist(i, j int) int { return inst.dist[i][j] }

func (inst *Instance) Travel(i, j int) int { return inst.travelTime[i][j] }

// DeliveryOf returns the delivery node index paired with pickup p.
func (inst *Instance) DeliveryOf(p int) int { return inst.deliveryOf[p] }

// PickupOf returns the pickup node index paired with delivery d.
func (inst *Instance) PickupOf(d int) int { return inst.pickupOf[d] }

func (inst *Instance) IsPickup(i int) bool { return i != 0 && inst.Nodes[i].Demand > 0 }

func (inst *Instance) IsDelivery(i int) bool { return i != 0 && inst.Nodes[i].Demand < 0 }

// Pairs returns every (pickup, delivery) index pair, ordered by pickup index.
func (inst *Instance) Pairs() [][2]int {
	pairs := make([][2]int, 0, inst.NRequests())
	for i := 1; i < len(inst.Nodes); i++ {
		if inst.IsPickup(i) {
			pairs = append(pairs, [2]int{i, inst.deliveryOf[i]})
		}
	}
	return pairs
}
