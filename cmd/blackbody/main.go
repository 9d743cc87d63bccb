// Command blackbody runs the thermal-equilibrium end-to-end scenario: a Grid1DSphere with a thermal core and thermal zone
// opacities, run to a fixed number of steps, with the escape spectrum
// written to CSV.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lukaszgryglicki/nutransport/internal/nutransport"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config overlay")
	nZones := flag.Int("zones", 20, "number of radial zones")
	rOuter := flag.Float64("router", 5e6, "outer domain radius, cm")
	nSteps := flag.Int("steps", 1, "number of steps to run")
	stepTime := flag.Float64("step-time", 1e-4, "step duration, s")
	csvOut := flag.String("csv", "escape_spectrum.csv", "escape spectrum CSV output path")
	flag.Parse()

	cfg, err := nutransport.LoadConfig(*configPath)
	if err != nil {
		fatal(err)
	}

	edges := make([]nutransport.Real, *nZones+1)
	edges[0] = cfg.RCore
	for i := 1; i <= *nZones; i++ {
		edges[i] = cfg.RCore + (*rOuter-cfg.RCore)*nutransport.Real(i)/nutransport.Real(*nZones)
	}
	zones := make([]nutransport.Zone, *nZones)
	for i := range zones {
		zones[i] = nutransport.Zone{Rho: 1e11, T: 10, Ye: 0.1}
	}
	grid := nutransport.NewGrid1DSphere(edges, zones, cfg.RCore, cfg.ReflectOuter)

	nSpecies := cfg.NumSpecies()
	bins := nutransport.LogBins(1e18, 1e22, 24)
	absOpac := make([]nutransport.Real, nSpecies)
	scatOpac := make([]nutransport.Real, nSpecies)
	for s := range absOpac {
		absOpac[s] = 1e-8
		scatOpac[s] = 1e-9
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
	fmt.Fprintf(os.Stderr, "blackbody: %v\n", err)
	os.Exit(1)
}
