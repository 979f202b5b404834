package montecarlo

import "math/rand/v2"

// Sampler draws random points in [-1,1)×[-1,1) and classifies them against
// the unit circle. A Sampler is not safe for concurrent use; give each
// goroutine its own.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a sampler over src.
func NewSampler(src rand.Source) *Sampler {
	return &Sampler{rng: rand.New(src)}
}

// NewSeededSampler creates a sampler over a PCG generator. Distinct streams
// under the same seed yield independent sequences.
func NewSeededSampler(seed, stream uint64) *Sampler {
	return NewSampler(rand.NewPCG(seed, stream))
}

// Sample draws one point and reports whether it lies within or on the unit
// circle.
func (s *Sampler) Sample() bool {
	x := 2*s.rng.Float64() - 1
	y := 2*s.rng.Float64() - 1
	return InUnitCircle(x, y)
}

// InUnitCircle reports whether x²+y² ≤ 1.
func InUnitCircle(x, y float64) bool {
	return x*x+y*y <= 1.0
}
