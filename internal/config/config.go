// Package config loads settings from defaults, an optional TOML file and the
// environment, in that order of increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/bighogz/tradie/internal/classify"
	"github.com/bighogz/tradie/internal/llm"
	"github.com/bighogz/tradie/internal/scraper"
	"github.com/bighogz/tradie/internal/table"
)

// DefaultPath is read when TRADIE_CONFIG is unset. A missing default file is not an error.
const DefaultPath = "tradie.toml"

type Config struct {
	Server     ServerConfig        `toml:"server"`
	Scraper    ScraperConfig       `toml:"scraper"`
	Thresholds classify.Thresholds `toml:"thresholds"`
	Prices     PricesConfig        `toml:"prices"`
	LLM        llm.Config          `toml:"llm"`
	RunLog     RunLogConfig        `toml:"runlog"`
	Logging    LoggingConfig       `toml:"logging"`
	Telemetry  TelemetryConfig     `toml:"telemetry"`
}

type ServerConfig struct {
	Addr           string  `toml:"addr"`
	AdminAPIKey    string  `toml:"admin_api_key"`
	RateLimit      float64 `toml:"rate_limit"`
	RateBurst      int     `toml:"rate_burst"`
	TrustProxy     bool    `toml:"trust_proxy"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Timeout is the per-request deadline.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

type ScraperConfig struct {
	URL            string        `toml:"url"`
	Table          table.Locator `toml:"table"`
	StrictDates    bool          `toml:"strict_dates"`
	UserAgent      string        `toml:"user_agent"`
	TimeoutSeconds int           `toml:"timeout_seconds"`
}

type PricesConfig struct {
	YahooBaseURL string `toml:"yahoo_base_url"`
	FMPAPIKey    string `toml:"fmp_api_key"`
}

type RunLogConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`
	Output []string `toml:"output"`
	File   string   `toml:"file"`
}

type TelemetryConfig struct {
	Enabled bool   `toml:"enabled"`
	Output  string `toml:"output"`
}

// NewDefaultConfig returns the built-in settings.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			RateLimit:      2,
			RateBurst:      10,
			TimeoutSeconds: 60,
		},
		Scraper: ScraperConfig{
			URL:            scraper.DefaultURL,
			Table:          table.DefaultLocator(),
			TimeoutSeconds: 30,
		},
		Thresholds: classify.DefaultThresholds(),
		LLM: llm.Config{
			Provider:  llm.ProviderGemini,
			MaxTokens: 1024,
		},
		RunLog: RunLogConfig{
			Enabled: true,
			Path:    "data/runs.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"console"},
			File:   "logs/tradie.log",
		},
		Telemetry: TelemetryConfig{
			Output: "stdout",
		},
	}
}

// ScraperOptions projects the scraper and threshold settings onto scraper.Options.
func (c *Config) ScraperOptions() scraper.Options {
	return scraper.Options{
		URL:         c.Scraper.URL,
		Locator:     c.Scraper.Table,
		Thresholds:  c.Thresholds,
		StrictDates: c.Scraper.StrictDates,
		UserAgent:   c.Scraper.UserAgent,
	}
}

// Load reads .env into the environment, then merges defaults, the TOML files
// and environment overrides. With no paths, TRADIE_CONFIG or DefaultPath is used.
func Load(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	explicit := len(paths) > 0
	if !explicit {
		if p := os.Getenv("TRADIE_CONFIG"); p != "" {
			paths = []string{p}
			explicit = true
		} else {
			paths = []string{DefaultPath}
		}
	}

	cfg := NewDefaultConfig()
	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if port := get("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	setString(&cfg.Server.Addr, "TRADIE_ADDR")
	setString(&cfg.Server.AdminAPIKey, "ADMIN_API_KEY")
	setString(&cfg.Scraper.URL, "TRADIE_SCRAPE_URL")
	setString(&cfg.Scraper.Table.Selector, "TRADIE_TABLE_SELECTOR")
	setString(&cfg.Prices.FMPAPIKey, "FMP_API_KEY")
	setString(&cfg.Prices.YahooBaseURL, "TRADIE_YAHOO_BASE_URL")
	setString(&cfg.RunLog.Path, "TRADIE_RUNLOG_PATH")
	setString(&cfg.Logging.Level, "TRADIE_LOG_LEVEL")
	setString(&cfg.Telemetry.Output, "TRADIE_TRACE_OUTPUT")
	if out := get("TRADIE_LOG_OUTPUT"); out != "" {
		cfg.Logging.Output = splitList(out)
	}

	var errs []error
	errs = append(errs,
		setBool(&cfg.Scraper.StrictDates, "TRADIE_STRICT_DATES"),
		setBool(&cfg.Server.TrustProxy, "TRADIE_TRUST_PROXY"),
		setBool(&cfg.RunLog.Enabled, "TRADIE_RUNLOG"),
		setBool(&cfg.Telemetry.Enabled, "TRADIE_TRACE"),
		setInt(&cfg.Scraper.Table.Index, "TRADIE_TABLE_INDEX"),
		setFloat(&cfg.Server.RateLimit, "TRADIE_RATE_LIMIT"),
		setFloat(&cfg.Thresholds.CEO, "CEO_THRESHOLD"),
		setFloat(&cfg.Thresholds.President, "PRES_THRESHOLD"),
		setFloat(&cfg.Thresholds.CFO, "CFO_THRESHOLD"),
		setFloat(&cfg.Thresholds.Director, "DIRECTOR_THRESHOLD"),
		setFloat(&cfg.Thresholds.TenPercent, "TEN_PERCENT_THRESHOLD"),
	)

	if p := get("LLM_PROVIDER"); p != "" {
		cfg.LLM.Provider = llm.Provider(strings.ToLower(p))
	}
	setString(&cfg.LLM.Model, "LLM_MODEL")
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = providerKey(cfg.LLM.Provider)
	}
	return errors.Join(errs...)
}

// providerKey reads the conventional API key variable of each backend.
func providerKey(p llm.Provider) string {
	switch p {
	case llm.ProviderOpenAI:
		return get("OPENAI_API_KEY")
	case llm.ProviderAnthropic:
		return get("ANTHROPIC_API_KEY")
	}
	if k := get("GEMINI_API_KEY"); k != "" {
		return k
	}
	return get("GOOGLE_API_KEY")
}

func get(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, key string) {
	if v := get(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := strings.ToLower(get(key))
	switch v {
	case "":
		return nil
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	default:
		return fmt.Errorf("config: %s: invalid boolean %q", key, v)
	}
	return nil
}

func setInt(dst *int, key string) error {
	v := get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := get(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = f
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
