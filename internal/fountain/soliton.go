// Package fountain implements the two on-air fountain code backends named
// in spec.md §4.2: Luby Transform (LT) and a RaptorQ-style systematic
// rateless code. Both sides of the link agree out-of-band on which codec a
// deployment uses; a single process never mixes the two (spec.md §9).
package fountain

import (
	"math"
	"math/rand"
)

// robustSoliton is the Robust Soliton Distribution over degrees 1..k used
// to pick how many source symbols an LT-coded symbol XORs together.
type robustSoliton struct {
	k          int
	cumulative []float64 // cumulative[d] for d in 1..k
}

// newRobustSoliton builds the distribution for k source symbols with the
// standard c=0.1, delta=0.5 parameters (spec.md §4.2).
func newRobustSoliton(k int, c, delta float64) *robustSoliton {
	if k < 1 {
		k = 1
	}

	rho := make([]float64, k+1)
	rho[1] = 1.0 / float64(k)
	for d := 2; d <= k; d++ {
		rho[d] = 1.0 / (float64(d) * float64(d-1))
	}

	r := c * math.Log(float64(k)/delta) * math.Sqrt(float64(k))

	tau := make([]float64, k+1)
	threshold := k
	if r > 0 {
		threshold = int(float64(k) / r)
	}
	if threshold > k {
		threshold = k
	}

	for d := 1; d < threshold; d++ {
		tau[d] = r / (float64(d) * float64(k))
	}
	if threshold >= 1 && threshold <= k {
		tau[threshold] = r * math.Log(r/delta) / float64(k)
	}

	mu := make([]float64, k+1)
	var total float64
	for d := 1; d <= k; d++ {
		mu[d] = rho[d] + tau[d]
		total += mu[d]
	}

	cumulative := make([]float64, k+1)
	var cum float64
	for d := 1; d <= k; d++ {
		cum += mu[d] / total
		cumulative[d] = cum
	}

	return &robustSoliton{k: k, cumulative: cumulative}
}

// sample draws one degree in [1, k] via inverse-CDF binary search on a
// single uniform draw.
func (d *robustSoliton) sample(rng *rand.Rand) int {
	r := rng.Float64()

	lo, hi := 1, d.k
	for lo < hi {
		mid := (lo + hi) / 2
		if d.cumulative[mid] < r {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	if lo > d.k {
		return d.k
	}
	return lo
}
