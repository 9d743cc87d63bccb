package nutransport

import (
	"math"

	"github.com/lukaszgryglicki/nutransport/internal/physconst"
)

// window is the population-control pass: Russian roulette for underweight
// packets, splitting for overweight ones. The roulette loop flips a fair
// coin per doubling attempt, and the split count is floor(N/max)+1 equal
// shares.
func window(pk Packet, cfg *Config, rng ThreadRNG, poolLen int) []Packet {
	if pk.N <= 0 {
		pk.Fate = Rouletted
		return nil
	}
	for pk.N <= cfg.MinPacketNumber && pk.Fate == Moving {
		if rng.Uniform() < 0.5 {
			pk.Fate = Rouletted
		} else {
			pk.N *= 2
		}
	}
	if pk.Fate != Moving {
		return []Packet{pk}
	}
	if pk.N > cfg.MaxPacketNumber {
		nNew := int(pk.N / cfg.MaxPacketNumber)
		if nNew >= 1 && poolLen+nNew < cfg.MaxParticles {
			total := nNew + 1
			pk.N /= Real(total)
			copies := make([]Packet, total)
			for i := range copies {
				copies[i] = pk
			}
			return copies
		}
	}
	return []Packet{pk}
}

// eventInteract handles an interaction event: in non-exponential mode it
// first analytically attenuates N by the absorption fraction, then
// scatters, then (if still alive) resamples tau and re-runs window.
func eventInteract(eh *EinsteinHelper, pk *Packet, grid Grid, opac Opacity, cfg *Config, rng ThreadRNG, pool *Pool, acc *Accumulators) ([]Packet, error) {
	if !cfg.ExponentialDecay {
		total := eh.AbsOpac + eh.ScatOpac
		if total > 0 {
			pk.N *= eh.ScatOpac / total
		}
	}
	if err := scatterPacket(eh, pk, grid, opac, cfg, rng, acc); err != nil {
		return nil, err
	}
	if pk.Fate != Moving {
		return []Packet{*pk}, nil
	}
	pk.Tau = rng.Exponential(1)
	return window(*pk, cfg, rng, pool.Len()), nil
}

// scatterPacket attempts the random-walk
// acceleration when the geometry and opacity allow it, otherwise samples a
// new direction (isotropic, or kernel-weighted when scattering kernels are
// enabled).
func scatterPacket(eh *EinsteinHelper, pk *Packet, grid Grid, opac Opacity, cfg *Config, rng ThreadRNG, acc *Accumulators) error {
	if cfg.RandomwalkSphereSize > 0 && eh.ScatOpac > 0 {
		rLab := grid.ZoneMinLength(eh.ZoneIndex) * cfg.RandomwalkSphereSize
		gamma := eh.U[0]
		v := 0.0
		if gamma > 1 {
			v = math.Sqrt(1 - 1/(gamma*gamma))
		}
		D := physconst.C / (3 * eh.ScatOpac)
		rCom := randomWalkComovingRadius(rLab, gamma, v, cfg.RandomwalkMaxX, D)
		if eh.ScatOpac*rCom >= cfg.RandomwalkMinOpticalDepth {
			return randomWalk(eh, pk, grid, cfg, rng, acc, rCom, D)
		}
	}
	dir := sampleS2(rng)
	nuIn, err := eh.Nu()
	if err != nil {
		return err
	}
	nuOut := nuIn
	if cfg.UseScatteringKernels {
		out, weightMul, ok := sampleScatteringFinalState(opac, eh, nuIn, rng)
		if ok {
			nuOut = out
			pk.N *= weightMul
		}
	}
	mag := 2 * math.Pi * nuOut / physconst.C
	kTet := FourVector{mag, mag * dir[0], mag * dir[1], mag * dir[2]}
	kCoord, err := eh.TetradToCoord(kTet)
	if err != nil {
		return err
	}
	eh.SetK(kCoord)
	if err := eh.Update(grid); err != nil {
		return err
	}
	pk.K = eh.K
	return nil
}

// sampleScatteringFinalState rejection-samples the outgoing frequency bin
// (giving up after 8 rejected draws), then returns as weight multiplier the
// (1+delta*cos) or (1+-cos)^b angular factor. No phi0-ratio reweighting of
// N is applied.
func sampleScatteringFinalState(opac Opacity, eh *EinsteinHelper, nuIn Real, rng ThreadRNG) (nuOut Real, weightMultiplier Real, accepted bool) {
	bins := opac.FrequencyBins()
	if len(bins) < 2 || eh.ScatOpac <= 0 {
		return nuIn, 1, false
	}
	for attempt := 0; attempt < 8; attempt++ {
		g := rng.UniformDiscrete(0, len(bins)-2)
		lo, hi := bins[g], bins[g+1]
		nuOut = lo + rng.Uniform()*(hi-lo)
		phi0 := opac.ScatteringPhi0(eh.Species, eh.DirIndex.Spatial[0], nuIn, nuOut)
		p := phi0 * (hi - lo) / eh.ScatOpac
		if p > 1 {
			p = 1
		}
		if rng.Uniform() >= p {
			continue
		}
		delta := opac.ScatteringDelta(eh.Species, eh.DirIndex.Spatial[0], nuIn, nuOut)
		cosTheta := 2*rng.Uniform() - 1
		var angular Real
		if math.Abs(delta) <= 1 {
			angular = 1 + delta*cosTheta
		} else {
			b := 2 * math.Abs(delta) / (3 - math.Abs(delta))
			sign := 1.0
			if delta < 0 {
				sign = -1.0
			}
			angular = math.Pow(1+sign*cosTheta, b)
		}
		return nuOut, angular, true
	}
	return nuIn, 1, false
}

// randomWalkComovingRadius solves Rcom = 2*Rlab / (gamma*(1 + sqrt(1 + 4*Rlab*v*xmax/(gamma*D)))).
func randomWalkComovingRadius(rLab, gamma, v, xMax, D Real) Real {
	if gamma <= 0 {
		gamma = 1
	}
	inner := 1 + 4*rLab*v*xMax/(gamma*D)
	if inner < 0 {
		inner = 0
	}
	return 2 * rLab / (gamma * (1 + math.Sqrt(inner)))
}

// randomWalkDiffusionTime samples a dwell time from the first-passage-time
// distribution of a diffusing particle in a sphere of radius Rcom, via the
// series Sum 2*(-1)^(n-1)*exp(-x*n^2*pi^2/3), 1<=n<=N.
func randomWalkDiffusionTime(rng ThreadRNG, rCom, D Real, cfg *Config) Real {
	u := rng.Uniform()
	n := cfg.RandomwalkNPoints
	if n < 2 {
		n = 2
	}
	xLo, xHi := 0.0, cfg.RandomwalkMaxX
	cdf := func(x Real) Real {
		sum := 0.0
		sign := 1.0
		for k := 1; k <= cfg.RandomwalkSumN; k++ {
			sum += sign * 2 * math.Exp(-x*Real(k*k)*math.Pi*math.Pi/3)
			sign = -sign
		}
		return 1 - sum
	}
	for i := 0; i < n; i++ {
		mid := 0.5 * (xLo + xHi)
		if cdf(mid) < u {
			xLo = mid
		} else {
			xHi = mid
		}
	}
	x := 0.5 * (xLo + xHi)
	return x * rCom * rCom / D
}

// randomWalk advances the packet by
// Rcom along a uniformly sampled tetrad direction transformed to lab frame,
// sample the outgoing direction isotropically in the forward hemisphere
// relative to the displacement, tally the traversed path (directly plus
// randomwalk_n_isotropic isotropic legs), and attenuate N by absorption
// over the total path length.
func randomWalk(eh *EinsteinHelper, pk *Packet, grid Grid, cfg *Config, rng ThreadRNG, acc *Accumulators, rCom, D Real) error {
	t := randomWalkDiffusionTime(rng, rCom, D, cfg)
	pathLen := physconst.C * t

	nuIn, err := eh.Nu()
	if err != nil {
		return err
	}
	zoneBefore := eh.ZoneIndex

	dirTet := sampleS2(rng)
	kTetDir := FourVector{1, dirTet[0], dirTet[1], dirTet[2]}
	dirCoord, err := eh.TetradToCoord(kTetDir)
	if err != nil {
		return err
	}
	dLab := norm3(dirCoord.Spatial3())

	if acc != nil {
		legDir, dirErr := tetradDirFromCoord(eh)
		if dirErr == nil {
			acc.AddDistribution(zoneBefore, eh.Species, groupIndexOf(nuIn, nil), pk.N*nuIn*physconst.H*pathLen, legDir)
		}
		for i := 0; i < cfg.RandomwalkNIsotropic; i++ {
			isoDir := sampleS2(rng)
			acc.AddDistribution(zoneBefore, eh.Species, groupIndexOf(nuIn, nil), pk.N*nuIn*physconst.H*pathLen/Real(cfg.RandomwalkNIsotropic), isoDir)
		}
	}

	newX := FourVector{
		eh.X[0] + pathLen,
		eh.X[1] + rCom*dLab[0],
		eh.X[2] + rCom*dLab[1],
		eh.X[3] + rCom*dLab[2],
	}
	eh.SetX(newX)
	if err := eh.Update(grid); err != nil {
		return err
	}

	outDir := sampleHemisphereS2(rng, dLab)
	mag := 2 * math.Pi * nuIn / physconst.C
	kTet := FourVector{mag, mag * outDir[0], mag * outDir[1], mag * outDir[2]}
	kCoord, err := eh.TetradToCoord(kTet)
	if err != nil {
		return err
	}
	eh.SetK(kCoord)
	if err := eh.Update(grid); err != nil {
		return err
	}
	pk.N *= math.Exp(-eh.AbsOpac * pathLen)
	pk.X, pk.K = eh.X, eh.K
	return applyBoundary(eh, pk, grid, cfg)
}

// groupIndexOf finds the frequency bin containing nu; if bins is nil, bin 0
// is used (random-walk tallies don't always have direct access to the
// opacity table's bin list at the call site, so callers may pre-resolve).
func groupIndexOf(nu Real, bins []Real) int {
	if bins == nil {
		return 0
	}
	for g := 0; g+1 < len(bins); g++ {
		if nu >= bins[g] && nu < bins[g+1] {
			return g
		}
	}
	return len(bins) - 2
}
