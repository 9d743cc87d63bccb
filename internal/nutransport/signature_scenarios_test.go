package nutransport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukaszgryglicki/nutransport/internal/physconst"
)

// TestRandomWalkReproducesDiffusionLimit exercises the pure-scattering
// signature scenario: kappa_a=0, kappa_s=1e4 cm^-1, D=c/(3*kappa_s), and a
// random-walk excursion whose radius is chosen from the diffusion identity
// rCom^2 = 6*D*t should, in expectation, dwell for time t before crossing
// rCom. Sampling many independent dwell times from randomWalkDiffusionTime
// and averaging should recover t to within the 5% tolerance the diffusion
// approximation targets.
func TestRandomWalkReproducesDiffusionLimit(t *testing.T) {
	kappaS := Real(1e4)
	d := physconst.C / (3 * kappaS)
	target := Real(1e-6)
	rCom := Real(math.Sqrt(float64(6 * d * target)))

	cfg := &Config{RandomwalkMaxX: 10, RandomwalkSumN: 100, RandomwalkNPoints: 512}
	rng := NewThreadRNG(20260806)

	const nSamples = 20000
	var sum Real
	for i := 0; i < nSamples; i++ {
		sum += randomWalkDiffusionTime(rng, rCom, d, cfg)
	}
	meanT := sum / Real(nSamples)

	rel := math.Abs(float64(meanT-target)) / float64(target)
	assert.Less(t, rel, 0.05, "mean dwell time %.3e should be within 5%% of target %.3e (rel_err=%.4f)", meanT, target, rel)

	// Every leg travels exactly rCom, so <r^2> for a single-leg excursion is
	// rCom^2 by construction; the check above is exactly the diffusion
	// identity <r^2> = 6*D*t evaluated at the sampled mean dwell time.
	rSquared := rCom * rCom
	sixDt := 6 * d * meanT
	relDiffusion := math.Abs(float64(rSquared-sixDt)) / float64(rSquared)
	assert.Less(t, relDiffusion, 0.05, "<r^2>=%.3e should match 6*D*t=%.3e within 5%%", rSquared, sixDt)
}

// TestGravitationalRedshiftMatchesAnalyticRatio traces a single radially
// outgoing null geodesic from r=10*r_s to r=100*r_s in a Schwarzschild
// spacetime and checks the measured-frequency ratio against the analytic
// gravitational redshift sqrt(1-r_s/r_emit)/sqrt(1-r_s/r_obs), no
// population or tally machinery involved.
func TestGravitationalRedshiftMatchesAnalyticRatio(t *testing.T) {
	rs := Real(3e5)
	rEmitFactor, rObsFactor := 10.0, 100.0
	rEmit := rs * Real(rEmitFactor)
	rObs := rs * Real(rObsFactor)

	edges := []Real{rs * 1.01, rObs * 2}
	zones := []Zone{{Rho: 1, T: 1}}
	grid := NewGrid1DSchwarzschild(edges, zones, rs, rs*1.01, false)

	x := FourVector{0, rEmit, 0, 0}
	eh := NewEinsteinHelper(x, FourVector{1, 0, 0, 0}, 0)
	require.NoError(t, eh.Update(grid))
	kTet := FourVector{1, 1, 0, 0}
	kCoord, err := eh.TetradToCoord(kTet)
	require.NoError(t, err)
	eh.SetK(kCoord)
	require.NoError(t, eh.Update(grid))

	nuEmit, err := eh.Nu()
	require.NoError(t, err)

	ds := rs * 0.05
	for length3(eh.X.Spatial3()) < rObs {
		eh.DsCom = ds
		require.NoError(t, grid.IntegrateGeodesic(eh))
	}
	nuObs, err := eh.Nu()
	require.NoError(t, err)

	got := float64(nuObs / nuEmit)
	want := math.Sqrt(1-1/rEmitFactor) / math.Sqrt(1-1/rObsFactor)
	assert.InDelta(t, want, got, 1e-4)
}
