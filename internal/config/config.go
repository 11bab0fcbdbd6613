package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port        string
	DatabaseURL string
	// Provider
	CollectAPIBase  string
	CollectAPIToken string
	ProviderTimeout time.Duration
	// Tracked assets
	ReferenceCurrency string
	CurrencyCodes     []string
	GoldFormats       []string
	SilverFormats     []string
	// News
	NewsSources    []string
	NewsCategories []string
	NewsCountry    string
	// Scheduler
	MarketInterval      time.Duration
	NewsInterval        time.Duration
	MaintenanceInterval time.Duration
	HistoryRetention    time.Duration
	NewsRetention       time.Duration
	// Read cache
	CacheBackend  string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func listEnv(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func durMin(key string, defMin int) time.Duration {
	return time.Duration(atoiDef(getEnv(key, strconv.Itoa(defMin)), defMin)) * time.Minute
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:             getEnv("ENV", "local"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		CollectAPIBase:  getEnv("COLLECTAPI_BASE", "https://api.collectapi.com"),
		CollectAPIToken: getEnv("COLLECTAPI_TOKEN", ""),
		ProviderTimeout: time.Duration(atoiDef(getEnv("PROVIDER_TIMEOUT_MS", "10000"), 10000)) * time.Millisecond,

		ReferenceCurrency: getEnv("REFERENCE_CURRENCY", "TRY"),
		CurrencyCodes: listEnv("CURRENCY_CODES", []string{
			"TRY", "USD", "EUR", "JPY", "GBP", "CNY", "CHF", "CAD", "AUD",
			"NZD", "SGD", "HKD", "SEK", "KRW", "NOK", "INR",
		}),
		GoldFormats: listEnv("GOLD_FORMATS", []string{
			"Gram Altın", "ONS Altın", "Çeyrek Altın", "Yarım Altın", "Tam Altın",
			"Cumhuriyet Altını", "Has Altın", "Ziynet Altın", "Reşat Lira Altın",
		}),
		SilverFormats: listEnv("SILVER_FORMATS", []string{"Gümüş"}),

		NewsSources:    listEnv("NEWS_SOURCES", []string{"NTV", "CNN", "Cumhuriyet", "HaberTürk"}),
		NewsCategories: listEnv("NEWS_CATEGORIES", []string{"general", "economy", "sport", "health", "technology"}),
		NewsCountry:    getEnv("NEWS_COUNTRY", "tr"),

		MarketInterval:      durMin("MARKET_INTERVAL_MIN", 60),
		NewsInterval:        durMin("NEWS_INTERVAL_MIN", 60),
		MaintenanceInterval: durMin("MAINTENANCE_INTERVAL_MIN", 24*60),
		HistoryRetention:    durMin("HISTORY_RETENTION_MIN", 30*24*60),
		NewsRetention:       durMin("NEWS_RETENTION_MIN", 7*24*60),

		CacheBackend:  getEnv("CACHE_BACKEND", "redis"),
		CacheTTL:      time.Duration(atoiDef(getEnv("CACHE_TTL_SEC", "120"), 120)) * time.Second,
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       atoiDef(getEnv("REDIS_DB", "0"), 0),
	}
}
