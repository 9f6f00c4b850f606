package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	RTSURL     string
	DateFormat string
	TimeFormat string
	Timezone   string

	HTTPPort         string
	InternalAPIToken string

	MongoURL string
	MongoDB  string
	NatsURL  string
	RedisURL string

	PageCacheTTL    time.Duration
	CollectInterval time.Duration
	CollectHubs     []string
	FetchTimeout    time.Duration
	FetchRatePerMin int
}

// Load reads .env files when present, then the environment.
func Load(envFiles ...string) *Config {
	godotenv.Load(envFiles...)

	return &Config{
		RTSURL:     getEnv("ERCOT_RTS_URL", "https://www.ercot.com/content/cdr/html/real_time_spp.html"),
		DateFormat: getEnv("ERCOT_DATE_FORMAT", "01/02/2006"),
		TimeFormat: getEnv("ERCOT_TIME_FORMAT", "1504"),
		Timezone:   getEnv("ERCOT_TIMEZONE", "America/Chicago"),

		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		InternalAPIToken: getEnv("INTERNAL_API_TOKEN", ""),

		MongoURL: getEnv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "ercot_rts"),
		NatsURL:  getEnv("NATS_URL", "nats://localhost:4222"),
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		PageCacheTTL:    getEnvDuration("PAGE_CACHE_TTL", time.Minute),
		CollectInterval: getEnvDuration("COLLECT_INTERVAL", 5*time.Minute),
		CollectHubs:     getEnvList("COLLECT_HUBS", nil),
		FetchTimeout:    getEnvDuration("FETCH_TIMEOUT", 30*time.Second),
		FetchRatePerMin: getEnvInt("FETCH_RATE_PER_MIN", 6),
	}
}

func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
