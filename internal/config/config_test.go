package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("MONKE_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.ServerAddr)
	require.Equal(t, "monke", cfg.StorePrefix)
	require.Equal(t, 5*time.Second, cfg.StoreTimeout)
	require.Equal(t, 24, cfg.SeriesCap)
	require.Empty(t, cfg.StoreURL)
	require.Empty(t, cfg.APIKey)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_addr: ":9000"
store_url: "redis://file:6379"
store_timeout: 2s
series_cap: 48
api_key: "from-file"
`), 0o600))

	t.Setenv("REDIS_URL", "rediss://default@env:6379")
	t.Setenv("REDIS_TOKEN", "tok")
	t.Setenv("MONKE_API_KEY", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.ServerAddr)
	require.Equal(t, "rediss://default@env:6379", cfg.StoreURL)
	require.Equal(t, "tok", cfg.StoreToken)
	require.Equal(t, 2*time.Second, cfg.StoreTimeout)
	require.Equal(t, 48, cfg.SeriesCap)
	require.Equal(t, "from-file", cfg.APIKey)
}

func TestApplyEnv_Fallback(t *testing.T) {
	env := map[string]string{"UPSTASH_REDIS_URL": "rediss://up:6379"}
	cfg := &Config{}

	applyEnv(cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	require.Equal(t, "rediss://up:6379", cfg.StoreURL)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("series_cap: [oops"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}
