package nutransport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulatorsAddDistributionAndMoment(t *testing.T) {
	acc := NewAccumulators(2, 1, 3)
	dir := [3]Real{1, 0, 0}
	acc.AddDistribution(0, 0, 1, 10, dir)
	assert.Equal(t, Real(10), acc.Moment(0, 0, 1, MomentE))
	assert.Equal(t, Real(10), acc.Moment(0, 0, 1, MomentFr))
	assert.Equal(t, Real(10), acc.Moment(0, 0, 1, MomentPrr))
}

func TestAccumulatorsAddDistributionIgnoresOutOfRange(t *testing.T) {
	acc := NewAccumulators(2, 1, 3)
	acc.AddDistribution(-1, 0, 0, 10, [3]Real{1, 0, 0})
	acc.AddDistribution(0, 0, 99, 10, [3]Real{1, 0, 0})
	for i := range acc.distribution {
		assert.Equal(t, Real(0), acc.distribution[i])
	}
}

func TestAccumulatorsResetZeroesEverything(t *testing.T) {
	acc := NewAccumulators(1, 1, 1)
	acc.AddDistribution(0, 0, 0, 5, [3]Real{1, 0, 0})
	acc.AddFourForceAbs(0, FourVector{1, 1, 1, 1})
	acc.AddLepton(0, 1, 2)
	acc.AddSpectrum(0, 0, 3)
	acc.AddAudit(StepAudit{TotalEmittedEnergy: 7})
	acc.IncActive(0)

	acc.Reset()

	assert.Equal(t, Real(0), acc.Moment(0, 0, 0, MomentE))
	assert.Equal(t, Real(0), acc.LAbs(0))
	assert.Equal(t, Real(0), acc.LEmit(0))
	assert.Equal(t, 0, acc.NEscape(0))
	assert.Equal(t, 0, acc.NActive(0))
	assert.Equal(t, StepAudit{}, acc.Audit())
}

func TestAccumulatorsAddSpectrumTracksEscapeCount(t *testing.T) {
	acc := NewAccumulators(1, 2, 4)
	acc.AddSpectrum(1, 2, 100)
	acc.AddSpectrum(1, 2, 50)
	assert.Equal(t, Real(150), acc.spectrum[1][2])
	assert.Equal(t, 2, acc.NEscape(1))
}

func TestMPIAllCombineSumsAcrossRanks(t *testing.T) {
	a := NewAccumulators(1, 1, 1)
	b := NewAccumulators(1, 1, 1)
	a.AddDistribution(0, 0, 0, 10, [3]Real{1, 0, 0})
	b.AddDistribution(0, 0, 0, 20, [3]Real{1, 0, 0})
	a.AddAudit(StepAudit{TotalEmittedEnergy: 1})
	b.AddAudit(StepAudit{TotalEmittedEnergy: 2})
	a.IncActive(0)
	b.IncActive(0)

	combined := MPIAllCombine([]*Accumulators{a, b})
	require.NotNil(t, combined)
	assert.Equal(t, Real(30), combined.Moment(0, 0, 0, MomentE))
	assert.InDelta(t, 3.0, combined.Audit().TotalEmittedEnergy, 1e-12)
	assert.Equal(t, 2, combined.NActive(0))
}

func TestMPIAllCombineEmptyReturnsNil(t *testing.T) {
	assert.Nil(t, MPIAllCombine(nil))
}

func TestNormalizeDividesByVolumeFreqStep(t *testing.T) {
	edges := []Real{0, 1}
	zones := []Zone{{Rho: 1, T: 1}}
	grid := NewGrid1DSphere(edges, zones, 0, false)
	bins := []Real{1e18, 2e18}

	acc := NewAccumulators(1, 1, 1)
	acc.AddDistribution(0, 0, 0, 12, [3]Real{1, 0, 0})

	vol := grid.ZoneVolume(0)
	stepTime := Real(2)
	dNu := bins[1] - bins[0]
	want := Real(12) / (vol * dNu * stepTime)

	acc.Normalize(grid, bins, stepTime)
	assert.InDelta(t, want, acc.Moment(0, 0, 0, MomentE), want*1e-9)
}

func TestNormalizeSkipsZeroVolumeOrStepTime(t *testing.T) {
	edges := []Real{0, 1}
	zones := []Zone{{Rho: 1, T: 1}}
	grid := NewGrid1DSphere(edges, zones, 0, false)
	bins := []Real{1e18, 2e18}

	acc := NewAccumulators(1, 1, 1)
	acc.AddDistribution(0, 0, 0, 12, [3]Real{1, 0, 0})
	acc.Normalize(grid, bins, 0)
	assert.Equal(t, Real(12), acc.Moment(0, 0, 0, MomentE))
}

func TestWriteEscapeSpectrumCSVWritesRows(t *testing.T) {
	acc := NewAccumulators(1, 1, 2)
	acc.AddSpectrum(0, 0, 5)
	acc.AddSpectrum(0, 1, 15)
	bins := []Real{1e18, 2e18, 3e18}

	dir := t.TempDir()
	path := filepath.Join(dir, "spectrum.csv")
	require.NoError(t, acc.WriteEscapeSpectrumCSV(path, bins))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "species")
	assert.Contains(t, string(data), "5")
	assert.Contains(t, string(data), "15")
}

func TestTetradDirFromCoordReturnsUnitVector(t *testing.T) {
	grid := flatGridForTetradTests()
	eh := NewEinsteinHelper(FourVector{0, 1.5, 0, 0}, FourVector{1, 1, 0, 0}, 0)
	require.NoError(t, eh.Update(grid))
	dir, err := tetradDirFromCoord(eh)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, length3(dir), 1e-9)
}
