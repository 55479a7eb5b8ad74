package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "pearson", c.CorrelationMethod)
	assert.Equal(t, 3, c.TopN)
	assert.Equal(t, 0.05, c.Alpha)
	assert.Equal(t, ":8080", c.ServerAddr)
	assert.Equal(t, 30, c.RequestTimeoutSec)
	assert.Equal(t, 32, c.MaxUploadMB)
	assert.Empty(t, c.Metrics)
	assert.Equal(t, Defaults(), c)
	require.NoError(t, Defaults().Validate())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
correlation_method: spearman
top_n: 5
metrics:
  - name: Revenue
    column: Sales
    aggregation: sum
    unit: "$"
  - name: Margin
    column: Ratio
    aggregation: mean
    scale: 100
`), 0o644))
	t.Setenv("STATLOOM_TOP_N", "2")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "spearman", c.CorrelationMethod)
	assert.Equal(t, 2, c.TopN)
	require.Len(t, c.Metrics, 2)
	assert.Equal(t, "Sales", c.Metrics[0].Column)
	assert.Equal(t, 100.0, c.Metrics[1].Scale)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("correlation_method: cosine\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "correlation_method")
}

func TestSetAndSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	c, err := Load("")
	require.NoError(t, err)

	require.NoError(t, c.Set("correlation_method", "Kendall"))
	require.NoError(t, c.Set("alpha", "0.01"))
	require.NoError(t, c.Set("max_rows", "1000"))
	require.NoError(t, c.Set("auto_locale", "true"))
	require.Error(t, c.Set("alpha", "2"))
	require.Error(t, c.Set("top_n", "-1"))
	require.Error(t, c.Set("colour", "blue"))
	require.NoError(t, Save(c, ""))

	_, err = os.Stat(filepath.Join(dir, ".statloom", "config.yaml"))
	require.NoError(t, err)

	again, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "kendall", again.CorrelationMethod)
	assert.Equal(t, 0.01, again.Alpha)
	assert.Equal(t, 1000, again.MaxRows)
	assert.True(t, again.AutoLocale)
}
