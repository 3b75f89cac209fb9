package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// SSOT: 所有環境變數只在這裡讀取
type Config struct {
	// Server (status API)
	Port string
	Env  string // development, staging, production

	// Screening pipeline
	Screener ScreenerConfig

	// Universe construction
	Universe UniverseConfig

	// External endpoints
	TWSE  TWSEConfig
	Yahoo YahooConfig
	News  NewsConfig

	// Notification
	Discord DiscordConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// ScreenerConfig holds settings the screening pipeline consumes
type ScreenerConfig struct {
	PolicyFile       string        // YAML policy definition; empty = built-in
	PolicyName       string        // built-in policy name when no file is given
	RankingKey       string        // "distance_from_high" or "volume_ratio"
	ReportLimit      int           // hard report size ceiling in characters
	MaxHeadlines     int           // headlines per match
	Workers          int           // per-symbol concurrency bound
	CallTimeout      time.Duration // per upstream call
	FetchPace        time.Duration // pacing for sequential history fetch
	ExtremesLookback int           // sessions for rolling high/low
	Schedule         string        // cron spec for schedule/serve commands
}

// UniverseConfig holds universe source selection
type UniverseConfig struct {
	Sources  []string          // enabled sources: core, ranking, listing
	CoreList map[string]string // code -> display name (手動核心清單)
	TopN     int               // ranking source size
}

// TWSEConfig holds Taiwan exchange endpoint configuration
type TWSEConfig struct {
	BaseURL string
	MopsURL string
}

// YahooConfig holds the chart API configuration
type YahooConfig struct {
	BaseURL string
}

// NewsConfig holds headline search configuration
type NewsConfig struct {
	BaseURL string
	Window  time.Duration // how far back headlines are considered
}

// DiscordConfig holds the webhook sink configuration
type DiscordConfig struct {
	WebhookURL string
}

// defaultCoreList mirrors the hand-curated watch list the screener started from
const defaultCoreList = "2330:台積電,2317:鴻海,2454:聯發科,NVDA:輝達,AAPL:蘋果"

// Load reads configuration from environment variables
// SSOT: 只有這個函式呼叫 os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Screener: ScreenerConfig{
			PolicyFile:       getEnv("POLICY_FILE", ""),
			PolicyName:       getEnv("POLICY_NAME", "ma200-breakout"),
			RankingKey:       getEnv("RANKING_KEY", "distance_from_high"),
			ReportLimit:      getEnvAsInt("REPORT_LIMIT", 1900),
			MaxHeadlines:     getEnvAsInt("MAX_HEADLINES", 3),
			Workers:          getEnvAsInt("WORKERS", 4),
			CallTimeout:      getEnvAsDuration("CALL_TIMEOUT", "15s"),
			FetchPace:        getEnvAsDuration("FETCH_PACE", "300ms"),
			ExtremesLookback: getEnvAsInt("EXTREMES_LOOKBACK", 240),
			Schedule:         getEnv("SCHEDULE", "0 30 14 * * MON-FRI"),
		},

		Universe: UniverseConfig{
			Sources:  splitList(getEnv("UNIVERSE_SOURCES", "core,ranking")),
			CoreList: parseCoreList(getEnv("CORE_LIST", defaultCoreList)),
			TopN:     getEnvAsInt("UNIVERSE_TOP_N", 50),
		},

		TWSE: TWSEConfig{
			BaseURL: getEnv("TWSE_BASE_URL", "https://www.twse.com.tw"),
			MopsURL: getEnv("MOPS_BASE_URL", "https://mops.twse.com.tw"),
		},

		Yahoo: YahooConfig{
			BaseURL: getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		},

		News: NewsConfig{
			BaseURL: getEnv("NEWS_BASE_URL", "https://tw.stock.yahoo.com"),
			Window:  getEnvAsDuration("NEWS_WINDOW", "72h"),
		},

		Discord: DiscordConfig{
			WebhookURL: getEnv("STOCK_WEBHOOK", ""),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Screener.ReportLimit <= 0 {
		return fmt.Errorf("REPORT_LIMIT must be positive")
	}

	if c.Screener.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive")
	}

	switch c.Screener.RankingKey {
	case "distance_from_high", "volume_ratio":
	default:
		return fmt.Errorf("RANKING_KEY must be distance_from_high or volume_ratio")
	}

	if len(c.Universe.Sources) == 0 {
		return fmt.Errorf("UNIVERSE_SOURCES must name at least one source")
	}
	for _, src := range c.Universe.Sources {
		switch src {
		case "core", "ranking", "listing":
		default:
			return fmt.Errorf("unknown universe source: %s", src)
		}
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

// parseCoreList parses "code:name,code:name" pairs
func parseCoreList(raw string) map[string]string {
	out := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		code, name, found := strings.Cut(entry, ":")
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if !found || strings.TrimSpace(name) == "" {
			name = code
		} else {
			name = strings.TrimSpace(name)
		}
		out[code] = name
	}
	return out
}

func splitList(raw string) []string {
	var out []string
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
