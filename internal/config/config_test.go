package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "swimming_pools.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, StrategyAuto, cfg.Enrich.Strategy)
	assert.Equal(t, "anthropic", cfg.Enrich.Provider)
	assert.Equal(t, 1000, cfg.Enrich.PacingMS)
	assert.Equal(t, 15, cfg.Enrich.FetchTimeoutSecs)
	assert.Equal(t, 60, cfg.Enrich.ExtractTimeoutSecs)
	assert.Equal(t, 1, cfg.Enrich.Concurrency)
	assert.Equal(t, 8000, cfg.Enrich.MaxTextChars)
	assert.Equal(t, 3000, cfg.Enrich.SearchPageChars)
	assert.Equal(t, 3, cfg.Enrich.SearchResults)
	assert.Equal(t, "자유수영 가격 시간표", cfg.Enrich.SearchSuffix)
	assert.InDelta(t, 100.0, cfg.Dedup.ThresholdMeters, 0.001)
	assert.Equal(t, []string{"blog", "cafe", "post", "news"}, cfg.Scrape.ExcludeKeywords)
	assert.True(t, cfg.Scrape.Jina)
	assert.False(t, cfg.Scrape.Browser.Enabled)
	assert.Equal(t, "https://r.jina.ai", cfg.Jina.BaseURL)
	assert.Equal(t, []string{"kakao"}, cfg.Ingest.Sources)
	assert.Equal(t, 5, cfg.Ingest.Concurrency)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/pools
log:
  level: debug
  format: console
server:
  port: 9090
enrich:
  strategy: heuristic
  concurrency: 4
ingest:
  sources: [kakao, static]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/pools", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, StrategyHeuristic, cfg.Enrich.Strategy)
	assert.Equal(t, 4, cfg.Enrich.Concurrency)
	assert.Equal(t, []string{"kakao", "static"}, cfg.Ingest.Sources)
	// Defaults still apply for unset values
	assert.Equal(t, 8000, cfg.Enrich.MaxTextChars)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("POOL_STORE_DRIVER", "postgres")
	t.Setenv("POOL_LOG_LEVEL", "warn")
	t.Setenv("POOL_KAKAO_REST_KEY", "kakao-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "kakao-key", cfg.Kakao.RestKey)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unclosed"), 0o644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "pools.db"
	cfg.Server.Port = 8000
	cfg.Enrich.Strategy = StrategyAuto
	cfg.Enrich.Provider = "anthropic"
	cfg.Enrich.SearchProvider = "naver"
	cfg.Enrich.Concurrency = 1
	cfg.Enrich.SearchResults = 3
	cfg.Ingest.Sources = []string{"static"}
	cfg.Ingest.StaticPath = "pools.yaml"
	cfg.Ingest.Concurrency = 5
	return cfg
}

func TestValidate_SimpleModes(t *testing.T) {
	cfg := validDefaults()
	for _, mode := range []string{"migrate", "clean", "status", "serve", "enrich", "ingest"} {
		assert.NoError(t, cfg.Validate(mode), mode)
	}
}

func TestValidate_Store(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"
	cfg.Store.DatabaseURL = ""

	err := cfg.Validate("status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `store.driver must be sqlite or postgres, got "mysql"`)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateEnrich_ModelNeedsKey(t *testing.T) {
	cfg := validDefaults()
	cfg.Enrich.Strategy = StrategyModel

	err := cfg.Validate("enrich")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")

	cfg.Anthropic.Key = "sk-ant-key"
	assert.NoError(t, cfg.Validate("enrich"))

	cfg.Enrich.Provider = "openai"
	err = cfg.Validate("enrich")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai.key is required")

	cfg.OpenAI.Key = "sk-key"
	assert.NoError(t, cfg.Validate("enrich"))
}

func TestValidateEnrich_Bounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Enrich.Concurrency = 0
	cfg.Enrich.Strategy = "magic"
	cfg.Enrich.Provider = "mistral"
	cfg.Enrich.SearchProvider = "bing"

	err := cfg.Validate("enrich")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enrich.concurrency must be between 1 and 20")
	assert.Contains(t, err.Error(), "enrich.strategy must be heuristic, model or auto")
	assert.Contains(t, err.Error(), "enrich.provider must be anthropic or openai")
	assert.Contains(t, err.Error(), "enrich.search_provider must be naver, jina or none")
}

func TestValidateIngest_SourceKeys(t *testing.T) {
	cfg := validDefaults()
	cfg.Ingest.Sources = []string{"kakao", "naver_local", "google_places", "seoul_opendata", "publicdata", "yelp"}

	err := cfg.Validate("ingest")
	require.Error(t, err)
	for _, want := range []string{
		"kakao.rest_key is required",
		"naver.client_id and naver.client_secret are required",
		"google.key is required",
		"seoul.key is required",
		"publicdata.key is required",
		`unknown source "yelp"`,
	} {
		assert.Contains(t, err.Error(), want)
	}

	cfg.Ingest.Sources = []string{"kakao"}
	cfg.Kakao.RestKey = "k"
	assert.NoError(t, cfg.Validate("ingest"))
}

func TestValidateIngest_NoSources(t *testing.T) {
	cfg := validDefaults()
	cfg.Ingest.Sources = nil

	err := cfg.Validate("ingest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest.sources must name at least one source")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestModelKey(t *testing.T) {
	cfg := validDefaults()
	cfg.Anthropic.Key = "a"
	cfg.OpenAI.Key = "o"

	assert.Equal(t, "a", cfg.ModelKey())
	cfg.Enrich.Provider = "openai"
	assert.Equal(t, "o", cfg.ModelKey())
}
