package sheetorm_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetorm/sheetorm"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheetorm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_ttl: 10s\nmax_cache_size: 16\n"), 0644))

	cfg, err := sheetorm.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.CacheTTL)
	assert.Equal(t, 16, cfg.MaxCacheSize)
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheetorm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))

	cfg, err := sheetorm.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, sheetorm.DefaultConfig().CacheTTL, cfg.CacheTTL)
	assert.Equal(t, sheetorm.DefaultMaxCacheSize, cfg.MaxCacheSize)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheetorm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_ttl: 10s\n"), 0644))

	t.Setenv("SHEETORM_CACHE_TTL", "250ms")
	t.Setenv("SHEETORM_MAX_CACHE_SIZE", "4")

	cfg, err := sheetorm.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.CacheTTL)
	assert.Equal(t, 4, cfg.MaxCacheSize)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := sheetorm.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
