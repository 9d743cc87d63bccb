package nutransport

import (
	"math"
	"sort"

	"github.com/lukaszgryglicki/nutransport/internal/physconst"
)

// LogBins builds n+1 frequency bin edges log-spaced between lo and hi,
// matching the corpus's convention of tabulating microphysics on a
// logarithmic energy grid.
func LogBins(lo, hi Real, n int) []Real {
	edges := make([]Real, n+1)
	logLo, logHi := math.Log(lo), math.Log(hi)
	for i := range edges {
		t := Real(i) / Real(n)
		edges[i] = math.Exp(logLo + t*(logHi-logLo))
	}
	return edges
}

// Opacity is the read-only microphysics oracle: everything a
// packet needs to know about how matter interacts with radiation at its
// current comoving frequency and zone, looked up by GetOpacity and the
// kernel/blackbody accessors below.
type Opacity interface {
	// GetOpacity fills eh.AbsOpac and eh.ScatOpac from the packet's current
	// comoving frequency and zone index. eh must already be updated.
	GetOpacity(eh *EinsteinHelper) error

	// ScatteringPhi0 and ScatteringDelta are the isotropic and first
	// Legendre-moment components of the in-to-out redistribution kernel,
	// indexed by species, spatial dir_ind, in-frequency and out-frequency.
	ScatteringPhi0(species, spatialIdx int, nuIn, nuOut Real) Real
	ScatteringDelta(species, spatialIdx int, nuIn, nuOut Real) Real

	// BB is the black-body reference number field used by thermal emission
	// sampling.
	BB(species, spatialIdx int, nu Real) Real

	// FrequencyBins returns the bin edges (length Ngroups+1) shared by all
	// species, used by emission and tally to iterate groups.
	FrequencyBins() []Real
}

// opacityPoint is one tabulated (species, zone, nu) -> (emissivity, absopac,
// scatopac) sample, linearly interpolated in nu within a zone.
type opacityPoint struct {
	Nu Real
	Emissivity Real
	AbsOpac, ScatOpac Real
}

// TableOpacity is a small in-memory linear-interpolation oracle, standing in
// for a delegated nulib/HDF5 opacity table format (out of scope for this
// core; only the interpolation shape is implemented, not the table
// format). Sufficient to drive the blackbody and inelastic-scattering
// end-to-end scenarios without an external table dependency.
type TableOpacity struct {
	bins []Real // Ngroups+1 frequency bin edges, ascending
	points [][]opacityPoint // [species][zone], each sorted by Nu ascending
	phi0 func(species, spatialIdx int, nuIn, nuOut Real) Real
	delta func(species, spatialIdx int, nuIn, nuOut Real) Real
	bb func(species, spatialIdx int, nu Real) Real
	nZones int
	nSpecies int
}

// NewTableOpacity builds a table from per-(species,zone) samples. phi0/delta
// may be nil (defaults to isotropic, phi0=1/(4*pi), delta=0) when
// use_scattering_kernels is off; bb may be nil, in which case BB returns 0
// (NewThermalTableOpacity supplies a bb derived from
// physconst.BlackbodyNumber).
func NewTableOpacity(bins []Real, points [][]opacityPoint,
	phi0, delta func(species, spatialIdx int, nuIn, nuOut Real) Real,
	bb func(species, spatialIdx int, nu Real) Real) *TableOpacity {
	if phi0 == nil {
		phi0 = func(int, int, Real, Real) Real { return 1.0 / (4 * 3.141592653589793) }
	}
	if delta == nil {
		delta = func(int, int, Real, Real) Real { return 0 }
	}
	nSpecies := len(points)
	nZones := 0
	if nSpecies > 0 {
		nZones = len(points[0])
	}
	return &TableOpacity{
		bins: bins, points: points, phi0: phi0, delta: delta, bb: bb,
		nZones: nZones, nSpecies: nSpecies,
	}
}

// NewThermalTableOpacity builds a table whose emissivity comes from LTE at
// (T, mu) via physconst.BlackbodyNumber, and whose absorption and scattering
// opacities are constants per species. All zones in a species share the same
// tabulated curve; per-zone T,Ye variation is left to a richer table.
func NewThermalTableOpacity(bins []Real, nZones int, tCore, muCore, absOpac, scatOpac []Real) *TableOpacity {
	nSpecies := len(tCore)
	mid := make([]Real, len(bins)-1)
	for i := range mid {
		mid[i] = 0.5 * (bins[i] + bins[i+1])
	}
	perSpecies := make([][]opacityPoint, nSpecies)
	for s := 0; s < nSpecies; s++ {
		perSpecies[s] = make([]opacityPoint, len(mid))
		for i, nu := range mid {
			bbNum := 0.0
			if tCore[s] > 0 {
				bbNum = physconstBlackbody(tCore[s], muCore[s], nu)
			}
			perSpecies[s][i] = opacityPoint{
				Nu: nu,
				Emissivity: bbNum,
				AbsOpac: absOpac[s],
				ScatOpac: scatOpac[s],
			}
		}
	}
	return NewTableOpacity(bins, replicatePerZone(perSpecies, nZones), nil, nil, func(s, _ int, nu Real) Real {
			if tCore[s] <= 0 {
				return 0
			}
			return physconstBlackbody(tCore[s], muCore[s], nu)
		})
}

// replicatePerZone turns [species][bin] samples (no zone dependence yet)
// into [species][zone*bin] entries so TableOpacity's zone-indexed lookup
// works uniformly even for a spatially homogeneous test setup.
func replicatePerZone(perSpeciesBins [][]opacityPoint, nZones int) [][]opacityPoint {
	if nZones <= 0 {
		nZones = 1
	}
	out := make([][]opacityPoint, len(perSpeciesBins))
	for s, bins := range perSpeciesBins {
		row := make([]opacityPoint, 0, nZones*len(bins))
		for z := 0; z < nZones; z++ {
			row = append(row, bins...)
		}
		out[s] = row
	}
	return out
}

func physconstBlackbody(T, mu, nu Real) Real { return physconst.BlackbodyNumber(T, mu, nu) }

func (t *TableOpacity) FrequencyBins() []Real { return t.bins }

func (t *TableOpacity) zoneBinCount() int {
	if t.nZones == 0 {
		return 0
	}
	return len(t.bins) - 1
}

func (t *TableOpacity) lookup(species, zoneIndex int, nu Real) opacityPoint {
	row := t.points[species]
	perZone := t.zoneBinCount()
	if perZone == 0 || zoneIndex < 0 {
		zoneIndex = 0
	}
	lo := zoneIndex * perZone
	hi := lo + perZone
	if hi > len(row) {
		hi = len(row)
	}
	slab := row[lo:hi]
	if len(slab) == 0 {
		return opacityPoint{}
	}
	i := sort.Search(len(slab), func(i int) bool { return slab[i].Nu >= nu })
	if i == 0 {
		return slab[0]
	}
	if i >= len(slab) {
		return slab[len(slab)-1]
	}
	a, b := slab[i-1], slab[i]
	if b.Nu == a.Nu {
		return b
	}
	frac := (nu - a.Nu) / (b.Nu - a.Nu)
	return opacityPoint{
		Nu: nu,
		Emissivity: a.Emissivity + frac*(b.Emissivity-a.Emissivity),
		AbsOpac: a.AbsOpac + frac*(b.AbsOpac-a.AbsOpac),
		ScatOpac: a.ScatOpac + frac*(b.ScatOpac-a.ScatOpac),
	}
}

func (t *TableOpacity) GetOpacity(eh *EinsteinHelper) error {
	if err := eh.requireUpdated(); err != nil {
		return err
	}
	nu, err := eh.Nu()
	if err != nil {
		return err
	}
	z := eh.ZoneIndex
	if z < 0 || eh.Species < 0 || eh.Species >= t.nSpecies {
		eh.AbsOpac, eh.ScatOpac = 0, 0
		return nil
	}
	p := t.lookup(eh.Species, z, nu)
	eh.AbsOpac = p.AbsOpac
	eh.ScatOpac = p.ScatOpac
	return nil
}

func (t *TableOpacity) ScatteringPhi0(species, spatialIdx int, nuIn, nuOut Real) Real {
	return t.phi0(species, spatialIdx, nuIn, nuOut)
}

func (t *TableOpacity) ScatteringDelta(species, spatialIdx int, nuIn, nuOut Real) Real {
	return t.delta(species, spatialIdx, nuIn, nuOut)
}

func (t *TableOpacity) BB(species, spatialIdx int, nu Real) Real {
	if t.bb == nil {
		return 0
	}
	return t.bb(species, spatialIdx, nu)
}

// SetAbsOpac overrides the absorption opacity for every tabulated bin of a
// species.
func (t *TableOpacity) SetAbsOpac(species int, value Real) {
	for i := range t.points[species] {
		t.points[species][i].AbsOpac = value
	}
}

// SetScatOpac overrides the scattering opacity for every tabulated bin of a
// species.
func (t *TableOpacity) SetScatOpac(species int, value Real) {
	for i := range t.points[species] {
		t.points[species][i].ScatOpac = value
	}
}
