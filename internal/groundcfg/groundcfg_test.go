package groundcfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPassesValidation(t *testing.T) {
	assert.NoError(t, Default().validate())
}

func TestLoadWithoutOverlayOrEnvReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestEnvOverridesMaxPendingImages(t *testing.T) {
	t.Setenv("HAB_MAX_PENDING_IMAGES", "20")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.MaxPendingImages)
}

func TestValidateRejectsZeroMaxPendingImages(t *testing.T) {
	cfg := Default()
	cfg.MaxPendingImages = 0
	assert.Error(t, cfg.validate())
}

func TestValidateRejectsZeroImageTimeout(t *testing.T) {
	cfg := Default()
	cfg.ImageTimeoutSec = 0
	assert.Error(t, cfg.validate())
}
