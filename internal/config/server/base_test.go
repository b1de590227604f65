package server

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, GetServerDefault(), *cfg)
}

func TestLoadServerConfig_Overrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("catalog.id_prefix", "LAB")
	viper.Set("catalog.id_width", 5)
	viper.Set("search.debounce", "150ms")

	cfg, err := LoadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, "LAB", cfg.Catalog.IDPrefix)
	assert.Equal(t, 5, cfg.Catalog.IDWidth)
	assert.Equal(t, 3, cfg.Catalog.CreateRetries)
	assert.Equal(t, "150ms", cfg.Search.Debounce)
}

func TestLoadServerConfig_InvalidCatalog(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("catalog.id_width", 0)

	_, err := LoadServerConfig()
	assert.ErrorContains(t, err, "id_width")
}
