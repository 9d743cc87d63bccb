package nutransport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogBinsEndpointsAndCount(t *testing.T) {
	edges := LogBins(1, 100, 4)
	require.Len(t, edges, 5)
	assert.InDelta(t, 1.0, edges[0], 1e-9)
	assert.InDelta(t, 100.0, edges[4], 1e-6)
}

func TestLogBinsAreLogSpaced(t *testing.T) {
	edges := LogBins(1, 16, 4)
	for i := 0; i+1 < len(edges); i++ {
		ratio := edges[i+1] / edges[i]
		assert.InDelta(t, 2.0, ratio, 1e-9)
	}
}

func TestThermalTableOpacityReturnsTabulatedConstantOpacities(t *testing.T) {
	bins := LogBins(1e18, 1e20, 8)
	opac := NewThermalTableOpacity(bins, 3, []Real{4}, []Real{0}, []Real{1e-8}, []Real{1e-9})

	grid := flatGridForTetradTests()
	eh := NewEinsteinHelper(FourVector{0, 1.5, 0, 0}, FourVector{1, 1, 0, 0}, 0)
	require.NoError(t, eh.Update(grid))

	require.NoError(t, opac.GetOpacity(eh))
	assert.InDelta(t, 1e-8, eh.AbsOpac, 1e-15)
	assert.InDelta(t, 1e-9, eh.ScatOpac, 1e-15)
}

func TestTableOpacityOutOfRangeSpeciesReturnsZero(t *testing.T) {
	bins := LogBins(1e18, 1e20, 4)
	opac := NewThermalTableOpacity(bins, 1, []Real{4}, []Real{0}, []Real{1e-8}, []Real{1e-9})

	grid := flatGridForTetradTests()
	eh := NewEinsteinHelper(FourVector{0, 1.5, 0, 0}, FourVector{1, 1, 0, 0}, 5)
	require.NoError(t, eh.Update(grid))
	require.NoError(t, opac.GetOpacity(eh))
	assert.Equal(t, Real(0), eh.AbsOpac)
	assert.Equal(t, Real(0), eh.ScatOpac)
}

func TestDefaultScatteringPhi0IsIsotropic(t *testing.T) {
	bins := LogBins(1e18, 1e20, 4)
	opac := NewThermalTableOpacity(bins, 1, []Real{4}, []Real{0}, []Real{1e-8}, []Real{1e-9})
	got := opac.ScatteringPhi0(0, 0, 1e19, 1e19)
	assert.InDelta(t, 1.0/(4*math.Pi), got, 1e-12)
	assert.Equal(t, Real(0), opac.ScatteringDelta(0, 0, 1e19, 1e19))
}

func TestSetAbsOpacOverridesAllBins(t *testing.T) {
	bins := LogBins(1e18, 1e20, 4)
	opac := NewThermalTableOpacity(bins, 1, []Real{4}, []Real{0}, []Real{1e-8}, []Real{1e-9})
	opac.SetAbsOpac(0, 42)
	for _, p := range opac.points[0] {
		assert.Equal(t, Real(42), p.AbsOpac)
	}
}
