// Package physconst holds the cgs physical constants shared by emission,
// tally, and opacity code so they never drift out of sync with each other.
package physconst

import "math"

// Real is the working floating point type for the transport core. Kept as
// an alias, not a hard dependency on float64, so the numeric precision can
// be retargeted without touching call sites.
type Real = float64

const (
	// C is the speed of light, cm/s.
	C Real = 2.99792458e10
	// H is Planck's constant, erg*s.
	H Real = 6.6260755e-27
	// Kb is Boltzmann's constant, erg/K.
	Kb Real = 1.380658e-16
	// MeV converts MeV to erg.
	MeV Real = 1.60217733e-6
	// TwoPi is 2*pi, used constantly when converting angular frequency to nu.
	TwoPi Real = 6.283185307179586
)

// BlackbodyNumber evaluates the number-form (photon/neutrino-count) blackbody
// distribution B(T, mu, nu): the number of quanta per unit volume per unit
// frequency per unit solid angle, for a Fermi-Dirac population.
//
// T is temperature in the same energy units as mu and h*nu (erg here);
// callers convert from MeV before calling in. mu is the chemical potential.
func BlackbodyNumber(T, mu, nu Real) Real {
	if T <= 0 {
		return 0
	}
	E := H * nu
	x := (E - mu) / T
	// Fermi-Dirac occupation number, guarded against overflow for large x.
	var occ Real
	switch {
	case x > 40:
		occ = 0
	case x < -40:
		occ = 1
	default:
		occ = 1.0 / (math.Exp(x) + 1.0)
	}
	return (2.0 / (C * C * C)) * nu * nu * occ
}
