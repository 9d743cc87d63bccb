package nutransport

import "fmt"

// Simulation ties a grid, an opacity table, and a config together into a
// runnable multi-step loop. Grid and opacity construction are scenario
// specific (blackbody / inelastic-scattering / raytrace each build their own
// Grid and Opacity before handing them here), so Simulation only owns the
// step control flow that is common to all three: rank fan-out, reduction,
// normalization, and optional diagnostic output.
type Simulation struct {
	Cfg *Config
	Grid Grid
	Opac Opacity
	Bins []Real

	ranks []*Rank

	// WriteHDF5 is called after each step's Normalize, when non-nil. Real
	// HDF5 export is outside this module's scope; callers wire an actual
	// writer (or leave nil to skip export entirely).
	WriteHDF5 WriteHDF5Func

	// EscapeSpectrumCSVPath, when non-empty, is (re)written after every
	// step with the accumulated escape spectrum.
	EscapeSpectrumCSVPath string
}

// NewSimulation validates cfg and builds the per-rank pools/accumulators
// sized from grid/opac/bins.
func NewSimulation(cfg *Config, grid Grid, opac Opacity, bins []Real) (*Simulation, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	nRanks := cfg.NRanks
	if nRanks < 1 {
		nRanks = 1
	}
	capacityHint := cfg.NEmitCorePerBin*cfg.NumSpecies()*(len(bins)-1) +
		cfg.NEmitZonesPerBin*grid.NumZones()*cfg.NumSpecies()*(len(bins)-1)
	if capacityHint < 1024 {
		capacityHint = 1024
	}
	sim := &Simulation{
		Cfg: cfg, Grid: grid, Opac: opac, Bins: bins,
		ranks: NewRanks(nRanks, grid, opac, cfg, bins, capacityHint),
	}
	return sim, nil
}

// RunStep executes a single emit-propagate-reduce-normalize cycle and
// returns the combined, normalized accumulators. seed determines the
// per-worker RNG streams for this step only; callers that want independent
// steps should vary it (e.g. seed+stepIndex).
func (s *Simulation) RunStep(seed int64, stepTime Real) (*Accumulators, error) {
	combined, err := RunAllRanks(s.ranks, seed)
	if err != nil {
		return nil, fmt.Errorf("nutransport: step failed: %w", err)
	}
	combined.Normalize(s.Grid, s.Bins, stepTime)

	if s.EscapeSpectrumCSVPath != "" {
		if err := combined.WriteEscapeSpectrumCSV(s.EscapeSpectrumCSVPath, s.Bins); err != nil {
			return nil, fmt.Errorf("nutransport: writing escape spectrum: %w", err)
		}
	}
	if s.WriteHDF5 != nil {
		if err := s.WriteHDF5("step", combined); err != nil {
			return nil, fmt.Errorf("nutransport: writing hdf5 output: %w", err)
		}
	}
	return combined, nil
}

// Run executes nSteps consecutive steps, each of duration stepTime, and
// returns the accumulators from the final step. Ranks reset their pools and
// accumulators at the top of every RunStep, so this models the "one
// timestep per call" control flow rather than accumulating
// across steps.
func (s *Simulation) Run(nSteps int, stepTime Real, baseSeed int64) (*Accumulators, error) {
	var last *Accumulators
	for step := 0; step < nSteps; step++ {
		acc, err := s.RunStep(baseSeed+int64(step), stepTime)
		if err != nil {
			return nil, fmt.Errorf("nutransport: step %d: %w", step, err)
		}
		last = acc
		Logf("step %d/%d: emitted=%.6e escaped=%.6e absorbed=%.6e rouletted=%.6e",
			step+1, nSteps,
			acc.Audit().TotalEmittedEnergy, acc.Audit().EscapeEnergy,
			acc.Audit().CoreAbsorbedEnergy, acc.Audit().RouletteEnergy)
	}
	return last, nil
}
