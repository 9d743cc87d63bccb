package nutransport

import (
	"math"

	"github.com/lukaszgryglicki/nutransport/internal/physconst"
)

// Real is the transport core's working float type.
type Real = physconst.Real

// FourVector is a general-purpose 4-component quantity: it stands in for a
// packet's 4-position xᵘ (three spatial components plus an affine-length
// budget in the zeroth slot) and for its null 4-wavevector kᵘ. Keeping one
// type for both avoids duplicating the arithmetic helpers; the affine "step
// budget" component here is genuinely mutated like the other three, so a
// single indexed type serves better than distinguishing point-like from
// direction-like values.
type FourVector [4]Real

// Add returns the component-wise sum.
func (a FourVector) Add(b FourVector) FourVector {
	return FourVector{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
}

// Sub returns the component-wise difference.
func (a FourVector) Sub(b FourVector) FourVector {
	return FourVector{a[0] - b[0], a[1] - b[1], a[2] - b[2], a[3] - b[3]}
}

// Scale multiplies every component by s.
func (a FourVector) Scale(s Real) FourVector {
	return FourVector{a[0] * s, a[1] * s, a[2] * s, a[3] * s}
}

// Spatial3 returns the three spatial components (1,2,3), leaving off the
// zeroth "time"/affine component.
func (a FourVector) Spatial3() [3]Real { return [3]Real{a[1], a[2], a[3]} }

// dotMinkowski contracts two 4-vectors with the (-,+,+,+) Minkowski metric
// in the flat-space limit; curved-metric contraction goes through Metric.Dot
// instead. It is the building block for the flat geometry adapter and for
// EinsteinHelper's tetrad-frame arithmetic (tetrad components are always
// Minkowski by construction).
func dotMinkowski(a, b FourVector) Real {
	return -a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
}

func length3(v [3]Real) Real {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func norm3(v [3]Real) [3]Real {
	l := length3(v)
	if l == 0 {
		return v
	}
	return [3]Real{v[0] / l, v[1] / l, v[2] / l}
}

func dot3(a, b [3]Real) Real {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// sampleS2 draws a uniform unit vector on the 2-sphere via Marsaglia's
// method, used here as the isotropic direction primitive in the tetrad
// frame.
func sampleS2(rng ThreadRNG) [3]Real {
	for {
		u := 2*rng.Uniform() - 1
		v := 2*rng.Uniform() - 1
		s := u*u + v*v
		if s > 0 && s < 1 {
			f := 2 * math.Sqrt(1-s)
			return [3]Real{u * f, v * f, 1 - 2*s}
		}
	}
}

// sampleHemisphereS2 draws a uniform direction on the 2-sphere restricted to
// the hemisphere with axis·dir >= 0 ("outward" or "forward" sampling used by
// core emission and by the random-walk exit direction).
func sampleHemisphereS2(rng ThreadRNG, axis [3]Real) [3]Real {
	d := sampleS2(rng)
	if dot3(d, axis) < 0 {
		d = [3]Real{-d[0], -d[1], -d[2]}
	}
	return d
}
