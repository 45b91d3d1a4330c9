package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bighogz/tradie/internal/llm"
	"github.com/bighogz/tradie/internal/scraper"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "tradie.toml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRADIE_CONFIG", "")
	t.Setenv("PORT", "")
	t.Setenv("TRADIE_ADDR", "")
	t.Setenv("CFO_THRESHOLD", "")
	t.Setenv("TRADIE_TRUST_PROXY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, scraper.DefaultURL, cfg.Scraper.URL)
	assert.Equal(t, "table.tinytable", cfg.Scraper.Table.Selector)
	assert.Equal(t, 11, cfg.Scraper.Table.Index)
	assert.Equal(t, 10.0, cfg.Thresholds.CFO)
	assert.Equal(t, 0.0, cfg.Thresholds.CEO)
	assert.Equal(t, llm.ProviderGemini, cfg.LLM.Provider)
	assert.False(t, cfg.Server.TrustProxy)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeFile(t, `
[server]
addr = ":9000"

[scraper]
strict_dates = true

[scraper.table]
selector = "table.other"
table_index = 3

[thresholds]
ceo_threshold = 40
cfo_threshold = 5

[llm]
provider = "anthropic"
model = "claude-haiku-4-5"
`)
	t.Setenv("CFO_THRESHOLD", "12.5")
	t.Setenv("ANTHROPIC_API_KEY", "secret")
	t.Setenv("PORT", "")
	t.Setenv("TRADIE_ADDR", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Scraper.StrictDates)
	assert.Equal(t, "table.other", cfg.Scraper.Table.Selector)
	assert.Equal(t, 3, cfg.Scraper.Table.Index)
	assert.Equal(t, 40.0, cfg.Thresholds.CEO)
	assert.Equal(t, 12.5, cfg.Thresholds.CFO)
	assert.Equal(t, llm.ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, "secret", cfg.LLM.APIKey)

	opts := cfg.ScraperOptions()
	assert.Equal(t, 40.0, opts.Thresholds.CEO)
	assert.True(t, opts.StrictDates)
}

func TestLoadEnvConfigPath(t *testing.T) {
	path := writeFile(t, "[thresholds]\ndirector_threshold = 2\n")
	t.Setenv("TRADIE_CONFIG", path)
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.Thresholds.Director)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoadTrustProxy(t *testing.T) {
	path := writeFile(t, "[server]\ntrust_proxy = true\n")
	t.Setenv("TRADIE_TRUST_PROXY", "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Server.TrustProxy)

	t.Setenv("TRADIE_TRUST_PROXY", "false")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Server.TrustProxy)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "[thresholds\n"))
	assert.Error(t, err)

	t.Setenv("CEO_THRESHOLD", "lots")
	_, err = Load(writeFile(t, ""))
	assert.ErrorContains(t, err, "CEO_THRESHOLD")
}
