package nutransport

// Grid2DSphere and Grid3DCartesian are thinner flat-metric grid variants
// alongside Grid1DSphere and Grid1DSchwarzschild: they exist so the Grid
// interface's polymorphism is
// exercised by more than one concrete flat-space geometry, not because
// their radial binning differs from RadialGrid's. Both embed RadialGrid
// unmodified — a spherically symmetric shell decomposition is already
// coordinate-count-agnostic, since ZoneIndex/SampleInZone only ever look
// at length3(x.Spatial3()) — and exist purely so tests can construct a
// grid under a name that documents which coordinate convention the caller
// had in mind (2D axisymmetric vs. 3D Cartesian) without duplicating the
// bisection/volume/sampling logic.

// Grid2DSphere is a flat-metric grid for callers thinking in (r,theta)
// axisymmetric terms; the underlying decomposition is a 1D radial shell
// mesh identical to Grid1DSphere.
type Grid2DSphere struct {
	*RadialGrid
}

// NewGrid2DSphere builds a Grid2DSphere from the same edge/zone data as
// NewGrid1DSphere.
func NewGrid2DSphere(edges []Real, zones []Zone, rCore Real, reflectOuter bool) *Grid2DSphere {
	return &Grid2DSphere{RadialGrid: newRadialGrid(edges, zones, FlatMetric{}, rCore, reflectOuter)}
}

// Grid3DCartesian is a flat-metric grid for callers thinking in full 3D
// Cartesian terms; the underlying decomposition is still a spherical shell
// mesh, since none of the zone bookkeeping depends on which axes the
// caller labels x/y/z.
type Grid3DCartesian struct {
	*RadialGrid
}

// NewGrid3DCartesian builds a Grid3DCartesian from the same edge/zone data
// as NewGrid1DSphere.
func NewGrid3DCartesian(edges []Real, zones []Zone, rCore Real, reflectOuter bool) *Grid3DCartesian {
	return &Grid3DCartesian{RadialGrid: newRadialGrid(edges, zones, FlatMetric{}, rCore, reflectOuter)}
}
