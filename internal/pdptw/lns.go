package pdptw

import "time"

// DestroyOperator identifies which removal strategy produced a given
// destroyed set, used only for round-robin selection below.
type destroyOperator int

const (
	destroyRandomPair destroyOperator = iota
	destroyShaw
	numDestroyOperators
)

type repairOperator int

const (
	repairGreedy repairOperator = iota
	repairRegret
	numRepairOperators
)

// lahcHistory is the fixed-length circular buffer of past costs used only
// by the acceptance rule.
type lahcHistory struct {
	buf []Cost
	pos int
}

func newLAHCHistory(length int, initial Cost) *lahcHistory {
	h := &lahcHistory{buf: make([]Cost, length)}
	for i := range h.buf {
		h.buf[i] = initial
	}
	return h
}

// accept applies the LAHC rule: accept candidate iff it is no worse than
// either the current cost or the cost recorded length-iterations ago.
// The history slot is overwritten with the *current* cost only when the
// candidate is accepted.
func (h *lahcHistory) accept(candidate, current Cost) bool {
	historical := h.buf[h.pos]
	accept := candidate.LessOrEqual(current) || candidate.LessOrEqual(historical)
	if accept {
		h.buf[h.pos] = current
	}
	h.pos = (h.pos + 1) % len(h.buf)
	return accept
}

// LNSState carries the engine's counters and LAHC history across
// iterations; callers reuse one LNSState per ILS step's LNS sub-run.
type LNSState struct {
	history *lahcHistory
	rng     *RNG

	iteration int

	destroyRR int
	repairRR  int

	metrics Metrics
}

func NewLNSState(rng *RNG, cfg Config, initial Cost) *LNSState {
	return &LNSState{
		history: newLAHCHistory(cfg.LAHCHistory, initial),
		rng:     rng,
	}
}

// RunLNS executes the destroy/repair/accept loop starting from current,
// bounded by cfg.LNSIterations and deadline. It returns the best-so-far
// solution it observed (S*) and that solution's cost; the counters for this
// sub-run accumulate in state.
func RunLNS(inst *Instance, current *Solution, cfg Config, state *LNSState, deadline time.Time, progress ProgressFunc) (best *Solution, bestCost Cost) {
	best = current.Clone()
	bestCost = best.Cost(inst)
	curCost := bestCost

	for i := 0; i < cfg.LNSIterations; i++ {
		if time.Now().After(deadline) {
			break
		}
		state.iteration++
		state.metrics.Iterations++

		k := state.rng.IntRange(cfg.DestroyMin, cfg.DestroyMax)
		removed, destroyed := destroy(inst, current, k, state)
		repair(inst, destroyed, removed, state)

		feasible, _ := Validate(inst, destroyed)
		if !feasible {
			state.metrics.RejectedInfeasible++
			continue
		}

		if state.iteration%cfg.LocalSearchEvery == 0 {
			LocalSearch(inst, destroyed)
		}

		candCost := destroyed.Cost(inst)
		if candCost.Less(bestCost) {
			LocalSearch(inst, destroyed)
			candCost = destroyed.Cost(inst)
		}

		if state.history.accept(candCost, curCost) {
			if candCost.Less(curCost) {
				state.metrics.Improvements++
			} else if !candCost.Less(curCost) && candCost != curCost {
				state.metrics.AcceptedWorse++
			}
			current = destroyed
			curCost = candCost
			if candCost.Less(bestCost) {
				best = destroyed.Clone()
				bestCost = candCost
				if progress != nil {
					progress(ProgressEvent{Kind: "improvement_found", Iteration: state.iteration, Cost: bestCost, Metrics: state.metrics})
				}
			}
		} else {
			state.metrics.RejectedLAHC++
		}

		if progress != nil {
			progress(ProgressEvent{Kind: "iteration_done", Iteration: state.iteration, Cost: curCost, Metrics: state.metrics})
		}
	}

	if progress != nil {
		progress(ProgressEvent{Kind: "lns_stats", Iteration: state.iteration, Cost: bestCost, Metrics: state.metrics})
	}
	return best, bestCost
}

// destroy removes k pairs from sol (working on a clone) using a
// round-robin choice between random-pair and Shaw removal, returning the
// removed pair pickups and the destroyed clone.
func destroy(inst *Instance, sol *Solution, k int, state *LNSState) (removedPickups []int, destroyed *Solution) {
	destroyed = sol.Clone()
	op := destroyOperator(state.destroyRR % int(numDestroyOperators))
	state.destroyRR++

	switch op {
	case destroyRandomPair:
		removedPickups = randomPairRemoval(inst, destroyed, k, state.rng)
	default:
		removedPickups = shawRemoval(inst, destroyed, k, state.rng)
	}
	return removedPickups, destroyed
}

func randomPairRemoval(inst *Instance, sol *Solution, k int, rng *RNG) []int {
	all := make([]int, 0, inst.NRequests())
	for _, pair := range inst.Pairs() {
		all = append(all, pair[0])
	}
	if k > len(all) {
		k = len(all)
	}
	idxs := rng.Sample(len(all), k)
	chosen := make([]int, len(idxs))
	for i, idx := range idxs {
		chosen[i] = all[idx]
	}
	removePairsFromSolution(inst, sol, chosen)
	return chosen
}

// shawRemoval seeds with one random pair and repeatedly adds the pair
// whose relatedness score to the already-removed set is highest.
func shawRemoval(inst *Instance, sol *Solution, k int, rng *RNG) []int {
	allPickups := make([]int, 0, inst.NRequests())
	for _, pair := range inst.Pairs() {
		allPickups = append(allPickups, pair[0])
	}
	if k > len(allPickups) {
		k = len(allPickups)
	}
	routeOf := routeIndexByNode(sol)

	seed := allPickups[rng.Intn(len(allPickups))]
	removed := []int{seed}
	remaining := make([]int, 0, len(allPickups)-1)
	for _, p := range allPickups {
		if p != seed {
			remaining = append(remaining, p)
		}
	}

	maxDist := maxPairwiseDist(inst)
	maxTWCentre := maxTimeWindowCentreDiff(inst)

	for len(removed) < k && len(remaining) > 0 {
		bestIdx := -1
		bestScore := -1.0
		for i, cand := range remaining {
			score := 0.0
			for _, r := range removed {
				score += relatedness(inst, cand, r, routeOf, maxDist, maxTWCentre)
			}
			score /= float64(len(removed))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		removed = append(removed, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	removePairsFromSolution(inst, sol, removed)
	return removed
}

const (
	shawWeightDist = 0.4
	shawWeightTime = 0.4
	shawWeightRoute = 0.2
)

func relatedness(inst *Instance, a, b int, routeOf map[int]int, maxDist, maxTWCentre float64) float64 {
	da := inst.DeliveryOf(a)
	db := inst.DeliveryOf(b)

	pickupDist := float64(inst.Dist(a, b))
	deliveryDist := float64(inst.Dist(da, db))
	distScore := 1 - (pickupDist+deliveryDist)/(2*maxDist+1)

	centreA := float64(inst.Nodes[a].Ready+inst.Nodes[a].Due) / 2
	centreB := float64(inst.Nodes[b].Ready+inst.Nodes[b].Due) / 2
	timeScore := 1 - abs(centreA-centreB)/(maxTWCentre+1)

	routeScore := 0.0
	if routeOf[a] == routeOf[b] {
		routeScore = 1
	}

	return shawWeightDist*distScore + shawWeightTime*timeScore + shawWeightRoute*routeScore
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func maxPairwiseDist(inst *Instance) float64 {
	max := 0
	for i := 0; i < inst.NNodes(); i++ {
		for j := 0; j < inst.NNodes(); j++ {
			if inst.Dist(i, j) > max {
				max = inst.Dist(i, j)
			}
		}
	}
	if max == 0 {
		return 1
	}
	return float64(max)
}

func maxTimeWindowCentreDiff(inst *Instance) float64 {
	min, max := int(^uint(0)>>1), 0
	for i := 1; i < inst.NNodes(); i++ {
		centre := (inst.Nodes[i].Ready + inst.Nodes[i].Due) / 2
		if centre < min {
			min = centre
		}
		if centre > max {
			max = centre
		}
	}
	if max <= min {
		return 1
	}
	return float64(max - min)
}

func routeIndexByNode(sol *Solution) map[int]int {
	out := map[int]int{}
	for ri, r := range sol.Routes {
		for _, n := range r.Stops {
			out[n] = ri
		}
	}
	return out
}

func removePairsFromSolution(inst *Instance, sol *Solution, pickups []int) {
	set := map[int]bool{}
	for _, p := range pickups {
		set[p] = true
	}
	for ri := range sol.Routes {
		out := sol.Routes[ri].Stops[:0:0]
		for _, n := range sol.Routes[ri].Stops {
			if set[n] {
				continue
			}
			if inst.IsDelivery(n) && set[inst.PickupOf(n)] {
				continue
			}
			out = append(out, n)
		}
		sol.Routes[ri].Stops = out
	}
	sol.Prune()
}

// repair reinserts the removed pair pickups into destroyed using a
// round-robin choice between greedy and regret-k insertion, opening new
// routes for any pair with no feasible existing slot.
func repair(inst *Instance, destroyed *Solution, removedPickups []int, state *LNSState) {
	op := repairOperator(state.repairRR % int(numRepairOperators))
	state.repairRR++

	switch op {
	case repairGreedy:
		greedyRepair(inst, destroyed, removedPickups, state)
	default:
		regretRepair(inst, destroyed, removedPickups, 2, state)
	}
}

func greedyRepair(inst *Instance, sol *Solution, pickups []int, state *LNSState) {
	remaining := append([]int(nil), pickups...)
	for len(remaining) > 0 {
		bestIdx := -1
		bestRoute := -1
		bestDelta := 0
		var bestStops []int
		for i, p := range remaining {
			d := inst.DeliveryOf(p)
			ri, stops, delta, ok := bestInsertionAcrossRoutes(inst, sol, p, d)
			if !ok {
				continue
			}
			if bestIdx == -1 || delta < bestDelta {
				bestIdx, bestRoute, bestDelta, bestStops = i, ri, delta, stops
			}
		}
		if bestIdx == -1 {
			// No remaining pair has a feasible slot; open a fresh route
			// for each, which is always feasible in isolation if the
			// pair's own schedule is feasible; otherwise count a
			// repair failure and drop it (caller's Validate will then
			// reject the candidate).
			for _, p := range remaining {
				d := inst.DeliveryOf(p)
				if _, ok := Schedule(inst, []int{p, d}); ok {
					sol.Routes = append(sol.Routes, Route{Stops: []int{p, d}})
				} else {
					state.metrics.RepairFailures++
				}
			}
			return
		}
		if bestRoute == -1 {
			sol.Routes = append(sol.Routes, Route{Stops: bestStops})
		} else {
			sol.Routes[bestRoute].Stops = bestStops
		}
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
}

func regretRepair(inst *Instance, sol *Solution, pickups []int, k int, state *LNSState) {
	remaining := append([]int(nil), pickups...)
	for len(remaining) > 0 {
		type candidateInsertion struct {
			route int
			stops []int
			delta int
		}

		bestRegretIdx := -1
		bestRegret := -1
		var bestInsertion candidateInsertion

		for i, p := range remaining {
			d := inst.DeliveryOf(p)
			costs := routeInsertionCosts(inst, sol, p, d)
			if len(costs) == 0 {
				continue
			}
			regret := 0
			if len(costs) >= 2 {
				regret = costs[1].delta - costs[0].delta
			}
			if regret > bestRegret {
				bestRegret = regret
				bestRegretIdx = i
				bestInsertion = candidateInsertion{route: costs[0].route, stops: costs[0].stops, delta: costs[0].delta}
			}
		}

		if bestRegretIdx == -1 {
			for _, p := range remaining {
				d := inst.DeliveryOf(p)
				if _, ok := Schedule(inst, []int{p, d}); ok {
					sol.Routes = append(sol.Routes, Route{Stops: []int{p, d}})
				} else {
					state.metrics.RepairFailures++
				}
			}
			return
		}

		if bestInsertion.route == -1 {
			sol.Routes = append(sol.Routes, Route{Stops: bestInsertion.stops})
		} else {
			sol.Routes[bestInsertion.route].Stops = bestInsertion.stops
		}
		remaining = append(remaining[:bestRegretIdx], remaining[bestRegretIdx+1:]...)
	}
}

type routeInsertion struct {
	route int
	stops []int
	delta int
}

// routeInsertionCosts returns every feasible (route, cost) insertion of
// (p, d), including opening a new route, sorted ascending by cost.
func routeInsertionCosts(inst *Instance, sol *Solution, p, d int) []routeInsertion {
	var out []routeInsertion
	for ri, r := range sol.Routes {
		stops, delta, _, _, ok := insertionCost(inst, r.Stops, p, d)
		if ok {
			out = append(out, routeInsertion{route: ri, stops: stops, delta: delta})
		}
	}
	newRouteCost := inst.Dist(0, p) + inst.Dist(p, d) + inst.Dist(d, 0)
	if _, ok := Schedule(inst, []int{p, d}); ok {
		out = append(out, routeInsertion{route: -1, stops: []int{p, d}, delta: newRouteCost})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].delta < out[j-1].delta; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
