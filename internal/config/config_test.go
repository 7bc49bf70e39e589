package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"addr": ":9090",
		"database_url": "postgres://localhost/matcher",
		"max_jobs": 200,
		"cache_ttl_minutes": 10,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "postgres://localhost/matcher", cfg.DatabaseURL)
	assert.Equal(t, 200, cfg.MaxJobs)
	assert.Equal(t, 10, cfg.CacheTTLMinutes)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate_RejectsNegativeValues(t *testing.T) {
	cases := []Config{
		{MaxJobs: -1},
		{MaxConcurrent: -2},
		{TimeoutSecs: -1},
		{CacheTTLMinutes: -5},
		{CacheCapacity: -1},
		{SemanticWeight: -0.5},
	}
	for _, cfg := range cases {
		assert.Error(t, cfg.Validate())
	}
}

func TestValidate_AcceptsDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults_FillsEmptyFields(t *testing.T) {
	cfg := Config{Addr: ":7000"}

	merged := cfg.MergeWithDefaults(DefaultConfig())

	assert.Equal(t, ":7000", merged.Addr)
	assert.Equal(t, 500, merged.MaxJobs)
	assert.Equal(t, 30, merged.CacheTTLMinutes)
	assert.Equal(t, 100, merged.CacheCapacity)
}

func TestApplyEnv_ExplicitValuesWin(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")

	fromEnv := Config{}
	fromEnv.ApplyEnv()
	assert.Equal(t, "postgres://env/db", fromEnv.DatabaseURL)

	explicit := Config{DatabaseURL: "postgres://file/db"}
	explicit.ApplyEnv()
	assert.Equal(t, "postgres://file/db", explicit.DatabaseURL)
}

func TestWeights_ReportsOverride(t *testing.T) {
	none := Config{}
	_, _, _, ok := none.Weights()
	assert.False(t, ok)

	cfg := Config{SemanticWeight: 0.6, LexicalWeight: 0.2, SkillWeight: 0.2}
	s, l, k, ok := cfg.Weights()
	require.True(t, ok)
	assert.Equal(t, 0.6, s)
	assert.Equal(t, 0.2, l)
	assert.Equal(t, 0.2, k)
}
