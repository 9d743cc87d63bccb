package nutransport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatMetricIsMinkowski(t *testing.T) {
	m := FlatMetric{}
	g := m.At(FourVector{0, 3, 4, 0})
	assert.Equal(t, Real(1), g.Alpha)
	assert.Equal(t, Real(1), g.X)
	assert.Equal(t, Real(0), m.SchwarzschildRadius())
	assert.InDelta(t, 5.0, g.R, 1e-12)
}

func TestFlatMetricDotMatchesMinkowski(t *testing.T) {
	m := FlatMetric{}
	g := m.At(FourVector{0, 1, 0, 0})
	a := FourVector{1, 1, 0, 0}
	assert.InDelta(t, dotMinkowski(a, a), g.Dot(a, a), 1e-12)
}

func TestSchwarzschildMetricRecoversFlatFarAway(t *testing.T) {
	m := SchwarzschildMetric{Rs: 1}
	g := m.At(FourVector{0, 1e9, 0, 0})
	assert.InDelta(t, 1.0, g.Alpha, 1e-6)
	assert.InDelta(t, 1.0, g.X, 1e-6)
}

func TestSchwarzschildMetricLapseVanishesAtHorizon(t *testing.T) {
	m := SchwarzschildMetric{Rs: 10}
	g := m.At(FourVector{0, 10, 0, 0})
	assert.InDelta(t, 0, g.Alpha, 1e-2)
}

func TestSchwarzschildXIsInverseAlpha(t *testing.T) {
	m := SchwarzschildMetric{Rs: 2}
	g := m.At(FourVector{0, 20, 0, 0})
	assert.InDelta(t, 1/g.Alpha, g.X, 1e-9)
}

func TestSchwarzschildDAlphaDrSignPositive(t *testing.T) {
	// alpha(r) increases with r outside the horizon, so dAlpha/dr > 0.
	m := SchwarzschildMetric{Rs: 5}
	g := m.At(FourVector{0, 50, 0, 0})
	assert.Greater(t, g.DAlphaDr, 0.0)
}

func TestNullConditionResidualZeroForExactNullVector(t *testing.T) {
	g := FlatMetric{}.At(FourVector{0, 0, 0, 0})
	k := FourVector{1, 1, 0, 0}
	assert.InDelta(t, 0, nullConditionResidual(g, k), 1e-12)
}

func TestNullConditionResidualInfWhenK0Zero(t *testing.T) {
	g := FlatMetric{}.At(FourVector{0, 0, 0, 0})
	k := FourVector{0, 1, 0, 0}
	assert.True(t, math.IsInf(nullConditionResidual(g, k), 1))
}
