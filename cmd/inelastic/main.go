// Command inelastic runs the inelastic-scattering-kernel scenario: scattering kernels enabled, using the thermal
// table's default kernel (isotropic phi0, zero delta), no core (pure zone emission).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lukaszgryglicki/nutransport/internal/nutransport"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config overlay")
	nZones := flag.Int("zones", 30, "number of radial zones")
	rOuter := flag.Float64("router", 1e7, "outer domain radius, cm")
	nSteps := flag.Int("steps", 1, "number of steps to run")
	stepTime := flag.Float64("step-time", 1e-4, "step duration, s")
	csvOut := flag.String("csv", "escape_spectrum.csv", "escape spectrum CSV output path")
	flag.Parse()

	cfg, err := nutransport.LoadConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	cfg.UseScatteringKernels = true
	cfg.RCore = 0

	edges := make([]nutransport.Real, *nZones+1)
	for i := 0; i <= *nZones; i++ {
		edges[i] = (*rOuter) * nutransport.Real(i) / nutransport.Real(*nZones)
	}
	edges[0] = 1e-3 // avoid a zero-radius inner face

	zones := make([]nutransport.Zone, *nZones)
	for i := range zones {
		zones[i] = nutransport.Zone{Rho: 1e12, T: 15, Ye: 0.15}
	}
	grid := nutransport.NewGrid1DSphere(edges, zones, 0, cfg.ReflectOuter)

	nSpecies := cfg.NumSpecies()
	bins := nutransport.LogBins(1e18, 1e22, 32)
	absOpac := make([]nutransport.Real, nSpecies)
	scatOpac := make([]nutransport.Real, nSpecies)
	for s := range absOpac {
		absOpac[s] = 1e-9
		scatOpac[s] = 1e-6
	}
	opac := nutransport.NewThermalTableOpacity(bins, *nZones, cfg.TCore, cfg.MuCore, absOpac, scatOpac)

	sim, err := nutransport.NewSimulation(cfg, grid, opac, bins)
	if err != nil {
		fatal(err)
	}
	sim.EscapeSpectrumCSVPath = *csvOut

	if _, err := sim.Run(*nSteps, nutransport.Real(*stepTime), cfg.Seed); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "inelastic: %v\n", err)
	os.Exit(1)
}
