package nutransport

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// expRandSource adapts a *math/rand.Rand to the golang.org/x/exp/rand.Source
// interface required by distuv, so the Exponential draw below still pulls
// from the worker's own stream.
type expRandSource struct{ r *rand.Rand }

func (s expRandSource) Uint64() uint64   { return s.r.Uint64() }
func (s expRandSource) Seed(seed uint64) { s.r.Seed(int64(seed)) }

// ThreadRNG is the per-worker random stream capability exposed to the core:
// one stream per worker thread. A ThreadRNG must never be shared across
// goroutines; NewThreadRNGs hands out one per worker so that a
// single-threaded run with a fixed seed is bitwise reproducible.
type ThreadRNG struct {
	src *rand.Rand
}

// NewThreadRNG builds a single reproducible-seed stream.
func NewThreadRNG(seed int64) ThreadRNG {
	return ThreadRNG{src: rand.New(rand.NewSource(seed))}
}

// NewThreadRNGs builds n independent streams from a base seed, one per
// worker, seeded deterministically from the caller's seed so runs are
// reproducible.
func NewThreadRNGs(n int, baseSeed int64) []ThreadRNG {
	out := make([]ThreadRNG, n)
	for i := range out {
		out[i] = NewThreadRNG(baseSeed ^ int64(uint64(i)*0x9e3779b97f4a7c15))
	}
	return out
}

// Uniform returns a sample in [0,1).
func (r ThreadRNG) Uniform() Real { return r.src.Float64() }

// UniformRange returns a sample in [a,b).
func (r ThreadRNG) UniformRange(a, b Real) Real { return a + (b-a)*r.src.Float64() }

// UniformDiscrete returns an integer sample in [a,b].
func (r ThreadRNG) UniformDiscrete(a, b int) int {
	if b <= a {
		return a
	}
	return a + r.src.Intn(b-a+1)
}

// Exponential draws from an exponential distribution with the given mean,
// used to resample the optical-depth budget tau at each
// scattering event. distuv.Exponential is parameterized by rate = 1/mean.
func (r ThreadRNG) Exponential(mean Real) Real {
	if mean <= 0 {
		return 0
	}
	d := distuv.Exponential{Rate: 1.0 / mean, Src: expRandSource{r: r.src}}
	return d.Rand()
}
