package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Common contains Elasticsearch parameters shared by every service.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// API describes the search HTTP service configuration.
type API struct {
	Common
	BindAddr       string
	RedisURL       string
	KafkaBrokers   []string
	AnalyticsTopic string
	DefaultLimit   int
	MaxLimit       int
	FetchLimit     int
	HistoryLimit   int
	CacheEntries   int
	CacheTTL       time.Duration
}

// Worker holds configuration for the Kafka -> Elasticsearch ingest worker.
type Worker struct {
	Common
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaConsumer  string
	DedupeCapacity int
	DedupeTTL      time.Duration
	BatchSize      int
}

// Retention configures the expired-opportunity cleanup job.
type Retention struct {
	Common
	CronSpec  string
	MaxAge    time.Duration
	BatchSize int
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Common:         loadCommon(),
		BindAddr:       getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		RedisURL:       getEnv("REDIS_URL", "redis://redis:6379/0"),
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		AnalyticsTopic: getEnv("ANALYTICS_TOPIC", "search_events"),
		DefaultLimit:   getInt("API_PAGE_SIZE", 20),
		MaxLimit:       getInt("API_MAX_PAGE_SIZE", 100),
		FetchLimit:     getInt("API_FETCH_LIMIT", 500),
		HistoryLimit:   getInt("API_HISTORY_LIMIT", 10),
		CacheEntries:   getInt("API_CACHE_ENTRIES", 20),
		CacheTTL:       getDuration("API_CACHE_TTL", "5m"),
	}

	if c.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL must not be empty")
	}
	if c.DefaultLimit <= 0 {
		return nil, fmt.Errorf("API_PAGE_SIZE must be positive")
	}
	if c.MaxLimit <= 0 {
		return nil, fmt.Errorf("API_MAX_PAGE_SIZE must be positive")
	}
	if c.DefaultLimit > c.MaxLimit {
		return nil, fmt.Errorf("API_PAGE_SIZE cannot exceed API_MAX_PAGE_SIZE")
	}
	if c.FetchLimit <= 0 {
		return nil, fmt.Errorf("API_FETCH_LIMIT must be positive")
	}
	if c.HistoryLimit <= 0 {
		return nil, fmt.Errorf("API_HISTORY_LIMIT must be positive")
	}
	if c.CacheEntries <= 0 {
		return nil, fmt.Errorf("API_CACHE_ENTRIES must be positive")
	}
	if c.CacheTTL <= 0 {
		return nil, fmt.Errorf("API_CACHE_TTL must be positive")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common:         loadCommon(),
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "opportunities_raw"),
		KafkaConsumer:  getEnv("KAFKA_CONSUMER_GROUP", "opportunity-worker"),
		DedupeCapacity: getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:      getDuration("WORKER_DEDUPE_TTL", "24h"),
		BatchSize:      getInt("WORKER_BATCH_SIZE", 10),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Common:    loadCommon(),
		CronSpec:  getEnv("RETENTION_CRON", "0 3 * * *"),
		MaxAge:    getDuration("RETENTION_MAX_AGE", "720h"),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.CronSpec == "" {
		return nil, fmt.Errorf("RETENTION_CRON must not be empty")
	}
	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "opportunities"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
