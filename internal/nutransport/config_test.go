package nutransport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigEmbeddedDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.NumSpecies())
	assert.True(t, cfg.ReflectOuter)
	assert.False(t, cfg.DoGR)
}

func TestLoadConfigOverlayOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("do_gr: true\nn_ranks: 4\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.DoGR)
	assert.Equal(t, 4, cfg.NRanks)
	// Fields not present in the overlay keep the embedded default.
	assert.True(t, cfg.ReflectOuter)
}

func TestLoadConfigMissingFileErrors(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/to/config.yaml")
	assert.ErrorIs(t, err, ErrConfig)
}

func TestValidateRejectsBadPacketBounds(t *testing.T) {
	cfg := &Config{MinPacketNumber: 10, MaxPacketNumber: 5, MaxParticles: 10, StepSize: 1}
	assert.ErrorIs(t, cfg.validate(), ErrConfig)
}

func TestValidateRejectsMismatchedCoreTables(t *testing.T) {
	cfg := &Config{
		MinPacketNumber: 1, MaxPacketNumber: 10, MaxParticles: 10, StepSize: 1,
		TCore: []Real{1, 2}, MuCore: []Real{1},
	}
	assert.ErrorIs(t, cfg.validate(), ErrConfig)
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := &Config{
		MinPacketNumber: 1, MaxPacketNumber: 10, MaxParticles: 10, StepSize: 1,
		TCore: []Real{1, 2}, MuCore: []Real{0, 0},
	}
	assert.NoError(t, cfg.validate())
}
