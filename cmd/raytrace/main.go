// Command raytrace runs the single-packet Schwarzschild redshift scenario:
// a photon launched radially outward at r=10 r_s is traced along its null
// geodesic out to r=100 r_s, and the measured-frequency ratio between the
// two radii is checked against the analytic gravitational redshift
// sqrt(1-r_s/r_emit) / sqrt(1-r_s/r_obs). No population/tally machinery
// runs here; this is pure geodesic integration.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/lukaszgryglicki/nutransport/internal/nutransport"
)

func main() {
	rs := flag.Float64("rs", 3e5, "Schwarzschild radius, cm")
	rEmit := flag.Float64("r-emit", 10, "emission radius, in units of r_s")
	rObs := flag.Float64("r-obs", 100, "observation radius, in units of r_s")
	stepFrac := flag.Float64("step-frac", 1e-3, "geodesic step size as a fraction of r_s")
	tol := flag.Float64("tol", 1e-4, "maximum allowed relative deviation from the analytic redshift")
	flag.Parse()

	if err := run(*rs, *rEmit, *rObs, *stepFrac, *tol); err != nil {
		fmt.Fprintf(os.Stderr, "raytrace: %v\n", err)
		os.Exit(1)
	}
}

func run(rs, rEmitFactor, rObsFactor, stepFrac, tol float64) error {
	rsVal := nutransport.Real(rs)
	rEmit := rsVal * nutransport.Real(rEmitFactor)
	rObs := rsVal * nutransport.Real(rObsFactor)

	edges := []nutransport.Real{rsVal * 1.01, rObs * 2}
	zones := []nutransport.Zone{{Rho: 1, T: 1}}
	grid := nutransport.NewGrid1DSchwarzschild(edges, zones, rsVal, rsVal*1.01, false)

	eh, err := launchRadialPhoton(grid, rEmit)
	if err != nil {
		return fmt.Errorf("launching photon: %w", err)
	}
	nuEmit, err := eh.Nu()
	if err != nil {
		return fmt.Errorf("measuring emission frequency: %w", err)
	}

	ds := rsVal * nutransport.Real(stepFrac)
	for radiusOf(eh) < rObs {
		eh.DsCom = ds
		if err := grid.IntegrateGeodesic(eh); err != nil {
			return fmt.Errorf("integrating geodesic: %w", err)
		}
	}
	nuObs, err := eh.Nu()
	if err != nil {
		return fmt.Errorf("measuring observed frequency: %w", err)
	}

	got := float64(nuObs / nuEmit)
	want := math.Sqrt(1-1/rEmitFactor) / math.Sqrt(1-1/rObsFactor)
	rel := math.Abs(got-want) / want

	fmt.Printf("emitted at r=%.3g r_s, observed at r=%.3g r_s\n", rEmitFactor, rObsFactor)
	fmt.Printf("frequency ratio: got=%.10f want=%.10f rel_err=%.3e\n", got, want, rel)
	if rel > tol {
		return fmt.Errorf("redshift check failed: relative error %.3e exceeds tolerance %.3e", rel, tol)
	}
	fmt.Println("redshift check passed")
	return nil
}

// launchRadialPhoton builds a purely radial, outward-directed null
// wavevector at r in the tetrad frame of a static observer there, and
// rotates it into coordinates.
func launchRadialPhoton(grid *nutransport.RadialGrid, r nutransport.Real) (*nutransport.EinsteinHelper, error) {
	x := nutransport.FourVector{0, r, 0, 0}
	eh := nutransport.NewEinsteinHelper(x, nutransport.FourVector{1, 0, 0, 0}, 0)
	if err := eh.Update(grid); err != nil {
		return nil, err
	}
	kTet := nutransport.FourVector{1, 1, 0, 0}
	kCoord, err := eh.TetradToCoord(kTet)
	if err != nil {
		return nil, err
	}
	eh.SetK(kCoord)
	if err := eh.Update(grid); err != nil {
		return nil, err
	}
	return eh, nil
}

func radiusOf(eh *nutransport.EinsteinHelper) nutransport.Real {
	s := eh.X.Spatial3()
	return nutransport.Real(math.Sqrt(float64(s[0]*s[0] + s[1]*s[1] + s[2]*s[2])))
}
