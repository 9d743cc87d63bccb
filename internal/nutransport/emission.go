package nutransport

import (
	"math"

	"github.com/lukaszgryglicki/nutransport/internal/physconst"
)

// leptonNumber returns the configured lepton number for a species; lepton
// number is added proportionally when the species has nonzero lepton
// number. Missing entries default to zero.
func (c *Config) leptonNumber(species int) Real {
	if species < 0 || species >= len(c.LeptonNumber) {
		return 0
	}
	return c.LeptonNumber[species]
}

// binCubeSample draws nu uniform in nu^3 within [lo,hi], matching "frequency
// uniform in nu^3 within the bin (to match isotropic blackbody weighting).
func binCubeSample(lo, hi Real, rng ThreadRNG) Real {
	lo3, hi3 := lo*lo*lo, hi*hi*hi
	u := rng.Uniform()
	return math.Cbrt(lo3 + u*(hi3-lo3))
}

// buildIsotropicPacketK constructs a coordinate-frame null wavevector at x
// with comoving magnitude 2*pi*nu/c and a tetrad-frame direction drawn by
// sampleDir, then folds it back to coordinates via the einstein helper's
// round trip. The returned helper is left updated and ready for
// propagation.
func buildIsotropicPacketK(grid Grid, x FourVector, species int, nu Real, rng ThreadRNG, sampleDir func(ThreadRNG) [3]Real) (*EinsteinHelper, error) {
	eh := NewEinsteinHelper(x, FourVector{1, 0, 0, 0}, species)
	if err := eh.Update(grid); err != nil {
		return nil, err
	}
	mag := 2 * math.Pi * nu / physconst.C
	dir := sampleDir(rng)
	kTet := FourVector{mag, mag * dir[0], mag * dir[1], mag * dir[2]}
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

// EmitInnerSourceByBin emits, for every species and frequency bin,
// n_emit_core_per_bin packets from the core surface.
func EmitInnerSourceByBin(grid Grid, cfg *Config, pool *Pool, acc *Accumulators, bins []Real, rankID int, rng ThreadRNG) error {
	if !grid.HasCore() {
		return nil
	}
	rCore := grid.CoreRadius()
	nSpecies := cfg.NumSpecies()
	weight := 1.0 / Real(cfg.NEmitCorePerBin)
	for s := 0; s < nSpecies; s++ {
		if cfg.TCore[s] <= 0 {
			continue
		}
		for g := 0; g+1 < len(bins); g++ {
			lo, hi := bins[g], bins[g+1]
			dNu3 := hi*hi*hi - lo*lo*lo
			for i := 0; i < cfg.NEmitCorePerBin; i++ {
				x, outward := grid.RandomCoreXD(rCore, rng)
				nu := binCubeSample(lo, hi, rng)
				eh, err := buildIsotropicPacketK(grid, x, s, nu, rng, func(r ThreadRNG) [3]Real {
						return sampleHemisphereS2(r, outward)
					})
				if err != nil {
					continue
				}
				bbNum := physconst.BlackbodyNumber(cfg.TCore[s], cfg.MuCore[s], nu)
				n := bbNum * (4 * math.Pi * rCore * rCore) * math.Pi * (dNu3 / 3) * cfg.CoreLumMultiplier * weight
				if n <= 0 {
					continue
				}
				pk := Packet{X: eh.X, K: eh.K, N: n, Tau: rng.Exponential(1), Species: s, Fate: Moving, Rank: rankID}
				emitAccumulate(pool, acc, grid, eh, &pk, cfg, nu, rng)
			}
		}
	}
	return nil
}

// EmitZonesByBin emits thermal packets from every zone owned by this
// rank, zones partitioned round-robin across ranks.
func EmitZonesByBin(grid Grid, opac Opacity, cfg *Config, pool *Pool, acc *Accumulators, bins []Real, rankID, nRanks int, rng ThreadRNG) error {
	nSpecies := cfg.NumSpecies()
	weight := 1.0 / Real(cfg.NEmitZonesPerBin)
	for z := 0; z < grid.NumZones(); z++ {
		if z%nRanks != rankID {
			continue
		}
		if grid.HasCore() {
			mid := grid.SampleInZone(z, rng)
			if length3(mid.Spatial3()) < grid.CoreRadius() {
				continue
			}
		}
		vol := grid.ZoneVolume(z)
		for s := 0; s < nSpecies; s++ {
			for g := 0; g+1 < len(bins); g++ {
				lo, hi := bins[g], bins[g+1]
				dNu3 := hi*hi*hi - lo*lo*lo
				for i := 0; i < cfg.NEmitZonesPerBin; i++ {
					x := grid.SampleInZone(z, rng)
					nu := binCubeSample(lo, hi, rng)
					eh, err := buildIsotropicPacketK(grid, x, s, nu, rng, sampleS2)
					if err != nil {
						continue
					}
					if err := opac.GetOpacity(eh); err != nil {
						continue
					}
					bbNum := opac.BB(s, eh.DirIndex.Spatial[0], nu)
					n := bbNum * eh.AbsOpac * (4 * math.Pi / (physconst.C * physconst.C)) * (dNu3 / 3) * vol * weight
					if n <= 0 {
						continue
					}
					pk := Packet{X: eh.X, K: eh.K, N: n, Tau: rng.Exponential(1), Species: s, Fate: Moving, Rank: rankID}
					emitAccumulate(pool, acc, grid, eh, &pk, cfg, nu, rng)
				}
			}
		}
	}
	return nil
}

// emitAccumulate runs the post-creation opacity/windowing pass ("roulette
// low-weight packets at birth"), pushes surviving copies into the pool, and
// atomically folds the emission into N_net_lab, l_emit, and fourforce_emit.
func emitAccumulate(pool *Pool, acc *Accumulators, grid Grid, eh *EinsteinHelper, pk *Packet, cfg *Config, nu Real, rng ThreadRNG) {
	copies := window(*pk, cfg, rng, pool.Len())
	if len(copies) == 0 {
		return
	}
	tetK, tetErr := eh.CoordToTetrad(eh.K)
	for i := range copies {
		if copies[i].Fate != Moving {
			continue
		}
		pool.Push(copies[i])
		energy := copies[i].N * nu * physconst.H
		acc.AddNetLab(copies[i].N)
		acc.AddLepton(pk.Species, 0, copies[i].N*cfg.leptonNumber(pk.Species))
		if tetErr == nil {
			force := tetK.Scale(copies[i].N * physconst.H * physconst.C / (2 * math.Pi))
			acc.AddFourForceEmit(eh.ZoneIndex, force)
		}
		acc.AddAudit(StepAudit{TotalEmittedEnergy: energy})
	}
}
