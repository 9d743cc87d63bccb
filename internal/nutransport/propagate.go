package nutransport

import (
	"math"

	"github.com/lukaszgryglicki/nutransport/internal/physconst"
)

type eventKind uint8

const (
	eventZoneEdge eventKind = iota
	eventInteractKind
)

// whichEvent compares the comoving distance to
// the nearest zone boundary against the comoving distance to the next
// scattering/absorption event, and records the chosen step in eh.DsCom.
func whichEvent(eh *EinsteinHelper, pk *Packet, grid Grid, cfg *Config) eventKind {
	lMin := grid.ZoneMinLength(eh.ZoneIndex)
	cellDist := grid.ZoneCellDist(eh.X, eh.ZoneIndex)
	base := math.Max(cfg.StepSize*lMin, cellDist+1e-12*lMin)
	uk := eh.G.Dot(eh.U, eh.K)
	nk := eh.G.NDot(eh.K)
	ratio := Real(1)
	if nk != 0 {
		ratio = uk / nk
	}
	dZone := base * math.Abs(ratio)

	kappaRel := eh.ScatOpac
	if cfg.ExponentialDecay {
		kappaRel = eh.AbsOpac + eh.ScatOpac
	}
	dInteract := math.Inf(1)
	if kappaRel > 0 {
		dInteract = pk.Tau / kappaRel
	}

	if dZone < dInteract {
		eh.DsCom = dZone
		return eventZoneEdge
	}
	eh.DsCom = dInteract
	return eventInteractKind
}

// movePacket integrates the geodesic by eh.DsCom,
// decrements tau, and (in exponential-decay mode) attenuates N and windows.
func movePacket(eh *EinsteinHelper, pk *Packet, grid Grid, cfg *Config, kappaRel Real) error {
	if err := grid.IntegrateGeodesic(eh); err != nil {
		return err
	}
	pk.Tau -= kappaRel * eh.DsCom
	if pk.Tau < 0 {
		pk.Tau = 0
	}
	if cfg.ExponentialDecay {
		pk.N *= math.Exp(-eh.AbsOpac * eh.DsCom)
	}
	pk.X, pk.K = eh.X, eh.K
	return nil
}

// tallyRadiation deposits the tetrad-frame
// energy and four-force this sub-step contributed, and the proportional
// lepton number.
func tallyRadiation(eh *EinsteinHelper, pk *Packet, cfg *Config, acc *Accumulators, groupIdx, depositZone int) error {
	if depositZone < 0 {
		return nil
	}
	nu, err := eh.Nu()
	if err != nil {
		return nil
	}
	lEff := eh.DsCom
	absFrac := eh.AbsOpac * eh.DsCom
	if cfg.ExponentialDecay && eh.AbsOpac > 0 {
		lEff = (1 - math.Exp(-absFrac)) / eh.AbsOpac
	}
	deltaE := pk.N * nu * physconst.H * lEff
	dir, err := tetradDirFromCoord(eh)
	if err != nil {
		return nil
	}
	acc.AddDistribution(depositZone, eh.Species, groupIdx, deltaE, dir)

	absorbedFrac := Real(1) - math.Exp(-absFrac)
	if absorbedFrac > 0 {
		tetK, err := eh.CoordToTetrad(eh.K)
		if err == nil {
			force := tetK.Scale(pk.N * absorbedFrac * physconst.H * physconst.C / (2 * math.Pi))
			acc.AddFourForceAbs(depositZone, force)
			acc.AddAudit(StepAudit{FluidAbsorbedEnergy: pk.N * absorbedFrac * nu * physconst.H})
		}
		lep := pk.N * absorbedFrac * cfg.leptonNumber(eh.Species)
		if lep != 0 {
			acc.AddLepton(eh.Species, lep, 0)
		}
	}
	return nil
}

// boundaryTolerance returns a small absolute tolerance for r<r_core and
// outer-edge tests, scaled to the grid's characteristic size.
func boundaryTolerance(grid Grid) Real {
	if grid.HasCore() && grid.CoreRadius() > 0 {
		return grid.CoreRadius() * 1e-9
	}
	return 1e-9
}

// applyBoundary absorbs packets that
// crossed inside the core, reflects at the outer face when the grid's
// SymmetryBoundaries reflects there and re-derives the cache, or marks escape and lets the caller tally it into
// the escape spectrum.
func applyBoundary(eh *EinsteinHelper, pk *Packet, grid Grid, cfg *Config) error {
	r := length3(eh.X.Spatial3())
	if grid.HasCore() && r < grid.CoreRadius() {
		pk.Fate = Absorbed
		pk.X, pk.K = eh.X, eh.K
		return nil
	}
	if eh.ZoneIndex >= 0 {
		return nil
	}
	tol := boundaryTolerance(grid)
	if grid.SymmetryBoundaries(eh, tol) {
		if err := eh.Update(grid); err != nil {
			return err
		}
		pk.X, pk.K = eh.X, eh.K
		if eh.ZoneIndex < 0 {
			pk.Fate = Escaped
		}
		return nil
	}
	pk.Fate = Escaped
	pk.X, pk.K = eh.X, eh.K
	return nil
}

// PropagatePacket drives one packet through its terminal-state machine until
// it reaches a terminal fate, appending any split copies into pool so the
// caller's dynamic re-pass loop can pick them up in a later chunk. The
// returned slice is always nil; split copies reach the caller only through
// pool.
func PropagatePacket(pk *Packet, grid Grid, opac Opacity, cfg *Config, rng ThreadRNG, pool *Pool, acc *Accumulators, bins []Real) ([]Packet, error) {
	eh := NewEinsteinHelper(pk.X, pk.K, pk.Species)
	if err := eh.Update(grid); err != nil {
		return nil, err
	}
	if eh.ZoneIndex < 0 {
		if err := applyBoundary(eh, pk, grid, cfg); err != nil {
			return nil, err
		}
		if pk.Fate != Moving {
			finalizeTerminal(pk, eh, acc, bins)
			return nil, nil
		}
	}

	for pk.Fate == Moving {
		if err := opac.GetOpacity(eh); err != nil {
			return nil, err
		}
		kind := whichEvent(eh, pk, grid, cfg)
		zoneBefore := eh.ZoneIndex
		kappaRel := eh.ScatOpac
		if cfg.ExponentialDecay {
			kappaRel = eh.AbsOpac + eh.ScatOpac
		}
		groupIdx := groupIndexOf(mustNu(eh), bins)
		if err := tallyRadiation(eh, pk, cfg, acc, groupIdx, zoneBefore); err != nil {
			return nil, err
		}
		if err := movePacket(eh, pk, grid, cfg, kappaRel); err != nil {
			return nil, err
		}
		if cfg.ExponentialDecay {
			copies := window(*pk, cfg, rng, pool.Len())
			if len(copies) == 0 {
				pk.Fate = Rouletted
				finalizeTerminal(pk, eh, acc, bins)
				return nil, nil
			}
			*pk = copies[0]
			if len(copies) > 1 {
				pool.PushMany(copies[1:])
			}
		}

		if err := applyBoundary(eh, pk, grid, cfg); err != nil {
			return nil, err
		}
		if pk.Fate != Moving {
			finalizeTerminal(pk, eh, acc, bins)
			return nil, nil
		}

		if kind == eventInteractKind {
			copies, err := eventInteract(eh, pk, grid, opac, cfg, rng, pool, acc)
			if err != nil {
				return nil, err
			}
			if len(copies) == 0 {
				pk.Fate = Rouletted
				finalizeTerminal(pk, eh, acc, bins)
				return nil, nil
			}
			*pk = copies[0]
			if len(copies) > 1 {
				pool.PushMany(copies[1:])
			}
			if pk.Fate != Moving {
				finalizeTerminal(pk, eh, acc, bins)
				return nil, nil
			}
			if err := eh.Update(grid); err != nil {
				return nil, err
			}
		}
	}
	return nil, nil
}

func mustNu(eh *EinsteinHelper) Real {
	nu, err := eh.Nu()
	if err != nil {
		return 0
	}
	return nu
}

// finalizeTerminal records the audit and escape-spectrum contributions for
// a packet that just reached a terminal fate.
func finalizeTerminal(pk *Packet, eh *EinsteinHelper, acc *Accumulators, bins []Real) {
	nu := mustNu(eh)
	energy := pk.N * nu * physconst.H
	switch pk.Fate {
	case Absorbed:
		acc.AddAudit(StepAudit{CoreAbsorbedEnergy: energy})
	case Escaped:
		acc.AddAudit(StepAudit{EscapeEnergy: energy})
		acc.AddSpectrum(pk.Species, groupIndexOf(nu, bins), energy)
	case Rouletted:
		acc.AddAudit(StepAudit{RouletteEnergy: energy})
	}
	acc.IncActive(pk.Species)
}
