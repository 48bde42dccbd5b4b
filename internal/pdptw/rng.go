package pdptw

import "math/rand"

// RNG is the explicit random-number handle threaded through every operator
// that needs randomness (destroy selection, Shaw seeding, perturbation).
// Holding it explicitly rather than reaching for a package-global source
// keeps a run reproducible for a given seed.
type RNG struct {
	r *rand.Rand
}

func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewSource(seed))}
}

func (g *RNG) Intn(n int) int { return g.r.Intn(n) }

func (g *RNG) Float64() float64 { return g.r.Float64() }

// IntRange returns a value in [lo, hi] inclusive.
func (g *RNG) IntRange(lo, hi int) int {
	if lo >= hi {
		return lo
	}
	return lo + g.r.Intn(hi-lo+1)
}

// Shuffle permutes n elements in place through swap, using Fisher-Yates.
func (g *RNG) Shuffle(n int, swap func(i, j int)) {
	g.r.Shuffle(n, swap)
}

// Sample draws k distinct values from [0, n) without replacement.
func (g *RNG) Sample(n, k int) []int {
	if k > n {
		k = n
	}
	perm := g.r.Perm(n)
	return perm[:k]
}
