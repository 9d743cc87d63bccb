package nutransport

import (
	"math"
	"sort"

	"github.com/lukaszgryglicki/nutransport/internal/physconst"
)

// Zone is a spatial cell's read-only-within-a-step matter state.
type Zone struct {
	Rho Real // density, g/cm^3
	T Real // temperature, MeV
	Ye Real // electron fraction
	U [3]Real // fluid 3-velocity, units of c
}

// Grid is the capability interface every geometry variant must satisfy
// so the propagator's hot loop never branches on grid type. Method names
// mirror the corresponding transport operations directly.
type Grid interface {
	NumZones() int
	Zone(zoneIndex int) Zone
	Metric() Metric

	ZoneIndex(x FourVector) int
	DirectionalIndices(x FourVector) DirIndex
	FluidFourVelocity(zoneIndex int) FourVector
	ZoneMinLength(zoneIndex int) Real
	ZoneCellDist(x FourVector, zoneIndex int) Real
	ZoneVolume(zoneIndex int) Real
	SampleInZone(zoneIndex int, rng ThreadRNG) FourVector
	AxisVector(zoneIndex int, axis int) [3]Real

	IntegrateGeodesic(eh *EinsteinHelper) error
	IsotropicKupTet(nu Real, x FourVector, rng ThreadRNG) FourVector
	SymmetryBoundaries(eh *EinsteinHelper, tol Real) (reflected bool)
	RandomCoreXD(rCore Real, rng ThreadRNG) (FourVector, [3]Real)

	HasCore() bool
	CoreRadius() Real
	ReflectOuter() bool
}

// RadialGrid is a 1D spherically symmetric mesh: the shared implementation
// behind both Grid1DSphere (flat metric) and Grid1DSchwarzschild (curved
// metric), keeping the metric evaluation monomorphic per grid instance
// while not duplicating the index/geodesic bookkeeping that doesn't
// depend on curvature.
type RadialGrid struct {
	edges []Real // Nzones+1 radii, edges[0] is either 0 or r_core
	zones []Zone
	metric Metric
	rCore Real // 0 means no core
	reflectOut bool
}

// NewGrid1DSphere builds the flat-metric radial grid: do_GR=false.
func NewGrid1DSphere(edges []Real, zones []Zone, rCore Real, reflectOuter bool) *RadialGrid {
	return newRadialGrid(edges, zones, FlatMetric{}, rCore, reflectOuter)
}

// NewGrid1DSchwarzschild builds the curved-metric radial grid: do_GR=true.
func NewGrid1DSchwarzschild(edges []Real, zones []Zone, rs, rCore Real, reflectOuter bool) *RadialGrid {
	return newRadialGrid(edges, zones, SchwarzschildMetric{Rs: rs}, rCore, reflectOuter)
}

func newRadialGrid(edges []Real, zones []Zone, m Metric, rCore Real, reflectOuter bool) *RadialGrid {
	if len(edges) != len(zones)+1 {
		panic("nutransport: edges must have len(zones)+1 entries")
	}
	if !sort.SliceIsSorted(edges, func(i, j int) bool { return edges[i] < edges[j] }) {
		panic("nutransport: grid edges must be sorted ascending")
	}
	return &RadialGrid{edges: edges, zones: zones, metric: m, rCore: rCore, reflectOut: reflectOuter}
}

func (g *RadialGrid) NumZones() int { return len(g.zones) }
func (g *RadialGrid) Zone(i int) Zone { return g.zones[i] }
func (g *RadialGrid) Metric() Metric { return g.metric }
func (g *RadialGrid) HasCore() bool { return g.rCore > 0 }
func (g *RadialGrid) CoreRadius() Real { return g.rCore }
func (g *RadialGrid) ReflectOuter() bool { return g.reflectOut }

// ZoneIndex bisects the packet's areal radius into a radial bin.
// Negative return means outside the domain.
func (g *RadialGrid) ZoneIndex(x FourVector) int {
	r := length3(x.Spatial3())
	if r < g.edges[0] || r >= g.edges[len(g.edges)-1] {
		return -1
	}
	i := sort.SearchFloat64s(g.edges, r)
	if i > 0 && (i == len(g.edges) || g.edges[i] > r) {
		i--
	}
	if i < 0 || i >= len(g.zones) {
		return -1
	}
	return i
}

// DirectionalIndices for a 1D spherical grid is just the radial zone index;
// there is no independent angular binning.
func (g *RadialGrid) DirectionalIndices(x FourVector) DirIndex {
	return DirIndex{Spatial: [3]int{g.ZoneIndex(x), 0, 0}}
}

// FluidFourVelocity builds u^mu from the zone's 3-velocity, normalized so
// g(u,u) = -1, matching "fluid 4-velocity uⁱ" per zone.
func (g *RadialGrid) FluidFourVelocity(zoneIndex int) FourVector {
	z := g.zones[zoneIndex]
	v := z.U
	v2 := dot3(v, v)
	if v2 >= 1 {
		v2 = 1 - 1e-12
	}
	gamma := 1 / math.Sqrt(1-v2)
	// Approximate midpoint of the zone for metric evaluation.
	rMid := 0.5 * (g.edges[zoneIndex] + g.edges[zoneIndex+1])
	at := g.metric.At(FourVector{0, rMid, 0, 0})
	u0 := gamma / at.Alpha
	return FourVector{u0, gamma * v[0], gamma * v[1], gamma * v[2]}
}

func (g *RadialGrid) ZoneMinLength(zoneIndex int) Real {
	return g.edges[zoneIndex+1] - g.edges[zoneIndex]
}

// ZoneCellDist is the distance from x to the nearer of the zone's two
// bounding radii, along the radial direction: the "distance to nearest
// face" term of d_zone.
func (g *RadialGrid) ZoneCellDist(x FourVector, zoneIndex int) Real {
	r := length3(x.Spatial3())
	inner := r - g.edges[zoneIndex]
	outer := g.edges[zoneIndex+1] - r
	if inner < outer {
		return inner
	}
	return outer
}

// ZoneVolume returns the comoving spherical-shell volume of the zone.
func (g *RadialGrid) ZoneVolume(zoneIndex int) Real {
	r0, r1 := g.edges[zoneIndex], g.edges[zoneIndex+1]
	return (4.0 / 3.0) * math.Pi * (r1*r1*r1 - r0*r0*r0)
}

// SampleInZone draws a position uniform in comoving volume within the
// shell [r0,r1).
func (g *RadialGrid) SampleInZone(zoneIndex int, rng ThreadRNG) FourVector {
	r0, r1 := g.edges[zoneIndex], g.edges[zoneIndex+1]
	u := rng.Uniform()
	r3 := r0*r0*r0 + u*(r1*r1*r1-r0*r0*r0)
	r := math.Cbrt(r3)
	dir := sampleS2(rng)
	return FourVector{0, r * dir[0], r * dir[1], r * dir[2]}
}

// AxisVector returns the zone's local orthonormal basis vector for the
// given moment axis (0=radial, 1/2=transverse). tally.go does not call it;
// AddDistribution takes the tetrad direction directly.
func (g *RadialGrid) AxisVector(zoneIndex int, axis int) [3]Real {
	rMid := 0.5 * (g.edges[zoneIndex] + g.edges[zoneIndex+1])
	if rMid == 0 {
		rMid = 1e-30
	}
	switch axis {
	case 0:
		return [3]Real{1, 0, 0} // radial, in the local tetrad frame
	case 1:
		return [3]Real{0, 1, 0}
	default:
		return [3]Real{0, 0, 1}
	}
}

// IsotropicKupTet builds a tetrad-frame null wavevector with uniform
// direction and comoving magnitude 2*pi*nu/c.
func (g *RadialGrid) IsotropicKupTet(nu Real, x FourVector, rng ThreadRNG) FourVector {
	mag := 2 * math.Pi * nu / physconst.C
	dir := sampleS2(rng)
	return FourVector{mag, mag * dir[0], mag * dir[1], mag * dir[2]}
}

// RandomCoreXD samples a point on the inner emitting surface and an
// outward direction uniform in the forward hemisphere.
func (g *RadialGrid) RandomCoreXD(rCore Real, rng ThreadRNG) (FourVector, [3]Real) {
	n := sampleS2(rng)
	x := FourVector{0, rCore * n[0], rCore * n[1], rCore * n[2]}
	d := sampleHemisphereS2(rng, n)
	return x, d
}

// SymmetryBoundaries applies reflection at the outer edge (if configured)
// and, when a core is present, leaves absorption to the caller. The
// reflected direction is always re-derived from the packet's current k,
// never left uninitialized.
func (g *RadialGrid) SymmetryBoundaries(eh *EinsteinHelper, tol Real) bool {
	r := length3(eh.X.Spatial3())
	outer := g.edges[len(g.edges)-1]
	if g.reflectOut && r >= outer-tol {
		n := norm3(eh.X.Spatial3())
		kSpatial := eh.K.Spatial3()
		vn := dot3(kSpatial, n)
		reflected := [3]Real{
			kSpatial[0] - 2*vn*n[0],
			kSpatial[1] - 2*vn*n[1],
			kSpatial[2] - 2*vn*n[2],
		}
		eh.SetK(FourVector{eh.K[0], reflected[0], reflected[1], reflected[2]})
		x := eh.X.Spatial3()
		scale := (outer - tol) / length3(x)
		eh.SetX(FourVector{eh.X[0], x[0] * scale, x[1] * scale, x[2] * scale})
		return true
	}
	return false
}

// IntegrateGeodesic advances (x^u,k^u) by the affine step eh.DsCom,
// preserving the null condition to second order. The implementation
// conserves the static-metric Killing energy E = -g_00 k^0 exactly (valid
// along any geodesic of a static metric, radial or not) and renormalizes
// the spatial wavevector against the exact null condition at the new
// point every step. For FlatMetric this degenerates to exact
// straight-line propagation at c.
func (g *RadialGrid) IntegrateGeodesic(eh *EinsteinHelper) error {
	if err := eh.requireUpdated(); err != nil {
		return err
	}
	ds := eh.DsCom
	g0 := eh.G
	energy := g0.Alpha * g0.Alpha * eh.K[0]

	kSpatial := eh.K.Spatial3()
	newSpatial := [3]Real{
		eh.X[1] + kSpatial[0]/eh.K[0]*ds,
		eh.X[2] + kSpatial[1]/eh.K[0]*ds,
		eh.X[3] + kSpatial[2]/eh.K[0]*ds,
	}
	newX := FourVector{eh.X[0] + ds, newSpatial[0], newSpatial[1], newSpatial[2]}

	g1 := g.metric.At(newX)
	newK0 := energy / (g1.Alpha * g1.Alpha)

	// Renormalize k_spatial, direction preserved, so the null condition
	// holds exactly at the new point.
	dirLen := length3(kSpatial)
	var newK FourVector
	if dirLen == 0 || newK0 == 0 {
		newK = FourVector{newK0, kSpatial[0], kSpatial[1], kSpatial[2]}
	} else {
		dir := [3]Real{kSpatial[0] / dirLen, kSpatial[1] / dirLen, kSpatial[2] / dirLen}
		na := dot3(dir, g1.N)
		gDirDir := 1 + (g1.X*g1.X-1)*na*na // g(dir,dir) for unit-length dir
		targetMag2 := (g1.Alpha * g1.Alpha * newK0 * newK0) / gDirDir
		if targetMag2 < 0 {
			targetMag2 = 0
		}
		mag := math.Sqrt(targetMag2)
		newK = FourVector{newK0, dir[0] * mag, dir[1] * mag, dir[2] * mag}
	}

	eh.SetX(newX)
	eh.SetK(newK)
	return eh.Update(g)
}
