package fountain

import "math/rand"

// symbolNeighbors derives the (degree, source-index) pair for LT symbol id
// t, purely as a function of (seed, t, k) — spec.md §4.2. The encoder and
// decoder both call this, so they always agree on which source symbols a
// given encoded symbol combines.
func symbolNeighbors(seed uint64, t uint32, k int, dist *robustSoliton) (degree int, indices []int) {
	rng := rand.New(rand.NewSource(int64(seed + uint64(t)))) //nolint:gosec // deterministic derivation, not security-sensitive

	degree = dist.sample(rng)
	if degree > k {
		degree = k
	}

	pool := make([]int, k)
	for i := range pool {
		pool[i] = i
	}
	for i := 0; i < degree; i++ {
		j := i + rng.Intn(k-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	indices = append([]int(nil), pool[:degree]...)
	return degree, indices
}
