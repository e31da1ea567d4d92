package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai" mapstructure:"openai"`
	Naver      NaverConfig      `yaml:"naver" mapstructure:"naver"`
	Kakao      KakaoConfig      `yaml:"kakao" mapstructure:"kakao"`
	Google     GoogleConfig     `yaml:"google" mapstructure:"google"`
	Seoul      SeoulConfig      `yaml:"seoul" mapstructure:"seoul"`
	PublicData PublicDataConfig `yaml:"publicdata" mapstructure:"publicdata"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Scrape     ScrapeConfig     `yaml:"scrape" mapstructure:"scrape"`
	Enrich     EnrichConfig     `yaml:"enrich" mapstructure:"enrich"`
	Dedup      DedupConfig      `yaml:"dedup" mapstructure:"dedup"`
	Ingest     IngestConfig     `yaml:"ingest" mapstructure:"ingest"`
}

// StoreConfig configures the database backend. For sqlite DatabaseURL is
// the file path.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// NaverConfig holds Naver Open API credentials.
type NaverConfig struct {
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
}

// KakaoConfig holds the Kakao REST API key.
type KakaoConfig struct {
	RestKey string `yaml:"rest_key" mapstructure:"rest_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// GoogleConfig holds the Google Places API key.
type GoogleConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SeoulConfig holds the Seoul open-data key.
type SeoulConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PublicDataConfig holds the data.go.kr service key.
type PublicDataConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// JinaConfig holds Jina AI Reader settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// ScrapeConfig configures page text acquisition.
type ScrapeConfig struct {
	UserAgent       string        `yaml:"user_agent" mapstructure:"user_agent"`
	ExcludeKeywords []string      `yaml:"exclude_keywords" mapstructure:"exclude_keywords"`
	ExcludePatterns []string      `yaml:"exclude_patterns" mapstructure:"exclude_patterns"`
	Jina            bool          `yaml:"jina" mapstructure:"jina"`
	Browser         BrowserConfig `yaml:"browser" mapstructure:"browser"`
}

// BrowserConfig configures the headless browser fallback.
type BrowserConfig struct {
	Enabled     bool   `yaml:"enabled" mapstructure:"enabled"`
	ExecPath    string `yaml:"exec_path" mapstructure:"exec_path"`
	MaxTabs     int    `yaml:"max_tabs" mapstructure:"max_tabs"`
	SettleMS    int    `yaml:"settle_ms" mapstructure:"settle_ms"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// EnrichConfig configures the enrichment orchestrator.
type EnrichConfig struct {
	Strategy           string `yaml:"strategy" mapstructure:"strategy"`
	Provider           string `yaml:"provider" mapstructure:"provider"`
	SearchProvider     string `yaml:"search_provider" mapstructure:"search_provider"`
	PacingMS           int    `yaml:"pacing_ms" mapstructure:"pacing_ms"`
	FetchTimeoutSecs   int    `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	ExtractTimeoutSecs int    `yaml:"extract_timeout_secs" mapstructure:"extract_timeout_secs"`
	Concurrency        int    `yaml:"concurrency" mapstructure:"concurrency"`
	MaxTextChars       int    `yaml:"max_text_chars" mapstructure:"max_text_chars"`
	SearchPageChars    int    `yaml:"search_page_chars" mapstructure:"search_page_chars"`
	SearchResults      int    `yaml:"search_results" mapstructure:"search_results"`
	SearchSuffix       string `yaml:"search_suffix" mapstructure:"search_suffix"`
}

// DedupConfig configures the duplicate detector.
type DedupConfig struct {
	ThresholdMeters float64 `yaml:"threshold_meters" mapstructure:"threshold_meters"`
}

// IngestConfig configures source collection.
type IngestConfig struct {
	Sources          []string `yaml:"sources" mapstructure:"sources"`
	StaticPath       string   `yaml:"static_path" mapstructure:"static_path"`
	PacingMS         int      `yaml:"pacing_ms" mapstructure:"pacing_ms"`
	Concurrency      int      `yaml:"concurrency" mapstructure:"concurrency"`
	FetchTimeoutSecs int      `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	SeedFromStore    bool     `yaml:"seed_from_store" mapstructure:"seed_from_store"`
	BadKeywords      []string `yaml:"bad_keywords" mapstructure:"bad_keywords"`
	RescueKeywords   []string `yaml:"rescue_keywords" mapstructure:"rescue_keywords"`
}

// Enrichment strategies.
const (
	StrategyHeuristic = "heuristic"
	StrategyModel     = "model"
	// StrategyAuto uses the model when a key is configured and the
	// heuristic otherwise.
	StrategyAuto = "auto"
)

// Source names accepted in ingest.sources.
var SourceNames = []string{"kakao", "naver_local", "google_places", "seoul_opendata", "publicdata", "static"}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("POOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "swimming_pools.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (compatible; pool-cli/1.0)")
	v.SetDefault("scrape.exclude_keywords", []string{"blog", "cafe", "post", "news"})
	v.SetDefault("scrape.jina", true)
	v.SetDefault("scrape.browser.max_tabs", 2)
	v.SetDefault("scrape.browser.settle_ms", 2000)
	v.SetDefault("scrape.browser.timeout_secs", 30)
	v.SetDefault("enrich.strategy", StrategyAuto)
	v.SetDefault("enrich.provider", "anthropic")
	v.SetDefault("enrich.search_provider", "naver")
	v.SetDefault("enrich.pacing_ms", 1000)
	v.SetDefault("enrich.fetch_timeout_secs", 15)
	v.SetDefault("enrich.extract_timeout_secs", 60)
	v.SetDefault("enrich.concurrency", 1)
	v.SetDefault("enrich.max_text_chars", 8000)
	v.SetDefault("enrich.search_page_chars", 3000)
	v.SetDefault("enrich.search_results", 3)
	v.SetDefault("enrich.search_suffix", "자유수영 가격 시간표")
	v.SetDefault("dedup.threshold_meters", 100.0)
	v.SetDefault("ingest.sources", []string{"kakao"})
	v.SetDefault("ingest.static_path", "pools.yaml")
	v.SetDefault("ingest.pacing_ms", 300)
	v.SetDefault("ingest.concurrency", 5)
	v.SetDefault("ingest.fetch_timeout_secs", 600)

	// Unmarshal only sees env vars for keys viper already knows.
	for _, key := range []string{
		"anthropic.key", "openai.key", "openai.base_url",
		"naver.client_id", "naver.client_secret", "naver.base_url",
		"kakao.rest_key", "kakao.base_url",
		"google.key", "google.base_url",
		"seoul.key", "seoul.base_url",
		"publicdata.key", "publicdata.base_url",
		"jina.key", "scrape.browser.exec_path",
	} {
		v.SetDefault(key, "")
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode needs: "ingest", "enrich",
// "serve", "migrate", "clean" or "status". All problems are reported at
// once.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}

	switch mode {
	case "migrate", "clean", "status":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
	case "enrich":
		errs = append(errs, c.validateEnrich()...)
	case "ingest":
		errs = append(errs, c.validateIngest()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateEnrich() []string {
	var errs []string
	e := c.Enrich
	if e.Concurrency < 1 || e.Concurrency > 20 {
		errs = append(errs, "enrich.concurrency must be between 1 and 20")
	}
	if e.SearchResults < 1 {
		errs = append(errs, "enrich.search_results must be >= 1")
	}
	switch e.Strategy {
	case StrategyHeuristic, StrategyAuto:
	case StrategyModel:
		if key := c.ModelKey(); key == "" {
			errs = append(errs, fmt.Sprintf("%s.key is required for enrich.strategy=model", e.Provider))
		}
	default:
		errs = append(errs, fmt.Sprintf("enrich.strategy must be heuristic, model or auto, got %q", e.Strategy))
	}
	switch e.Provider {
	case "anthropic", "openai":
	default:
		errs = append(errs, fmt.Sprintf("enrich.provider must be anthropic or openai, got %q", e.Provider))
	}
	switch e.SearchProvider {
	case "naver", "jina", "none", "":
	default:
		errs = append(errs, fmt.Sprintf("enrich.search_provider must be naver, jina or none, got %q", e.SearchProvider))
	}
	return errs
}

func (c *Config) validateIngest() []string {
	var errs []string
	if len(c.Ingest.Sources) == 0 {
		errs = append(errs, "ingest.sources must name at least one source")
	}
	if c.Ingest.Concurrency < 1 {
		errs = append(errs, "ingest.concurrency must be >= 1")
	}
	for _, name := range c.Ingest.Sources {
		switch name {
		case "kakao":
			if c.Kakao.RestKey == "" {
				errs = append(errs, "kakao.rest_key is required")
			}
		case "naver_local":
			if c.Naver.ClientID == "" || c.Naver.ClientSecret == "" {
				errs = append(errs, "naver.client_id and naver.client_secret are required")
			}
		case "google_places":
			if c.Google.Key == "" {
				errs = append(errs, "google.key is required")
			}
		case "seoul_opendata":
			if c.Seoul.Key == "" {
				errs = append(errs, "seoul.key is required")
			}
		case "publicdata":
			if c.PublicData.Key == "" {
				errs = append(errs, "publicdata.key is required")
			}
		case "static":
			if c.Ingest.StaticPath == "" {
				errs = append(errs, "ingest.static_path is required")
			}
		default:
			errs = append(errs, fmt.Sprintf("unknown source %q (valid: %s)", name, strings.Join(SourceNames, ", ")))
		}
	}
	return errs
}

// ModelKey returns the API key of the configured enrichment provider.
func (c *Config) ModelKey() string {
	if c.Enrich.Provider == "openai" {
		return c.OpenAI.Key
	}
	return c.Anthropic.Key
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
