package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voluntra/opportunity-search/internal/config"
)

func TestLoadAPIDefaults(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "")
	t.Setenv("ELASTICSEARCH_INDEX", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, "http://elasticsearch:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "opportunities", cfg.ElasticsearchIndex)
	require.Equal(t, "redis://redis:6379/0", cfg.RedisURL)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, "search_events", cfg.AnalyticsTopic)
	require.Equal(t, 20, cfg.DefaultLimit)
	require.Equal(t, 100, cfg.MaxLimit)
	require.Equal(t, 10, cfg.HistoryLimit)
	require.Equal(t, 20, cfg.CacheEntries)
	require.Equal(t, 5*time.Minute, cfg.CacheTTL)
}

func TestLoadAPIOverrides(t *testing.T) {
	t.Setenv("API_BIND_ADDR", ":9090")
	t.Setenv("REDIS_URL", "redis://localhost:6380/1")
	t.Setenv("KAFKA_BROKERS", "broker-a:29092,broker-b:29093")
	t.Setenv("ANALYTICS_TOPIC", "events_custom")
	t.Setenv("API_PAGE_SIZE", "15")
	t.Setenv("API_MAX_PAGE_SIZE", "200")
	t.Setenv("API_FETCH_LIMIT", "1000")
	t.Setenv("API_CACHE_TTL", "90s")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, "redis://localhost:6380/1", cfg.RedisURL)
	require.Len(t, cfg.KafkaBrokers, 2)
	require.Equal(t, "broker-a:29092", cfg.KafkaBrokers[0])
	require.Equal(t, "events_custom", cfg.AnalyticsTopic)
	require.Equal(t, 15, cfg.DefaultLimit)
	require.Equal(t, 200, cfg.MaxLimit)
	require.Equal(t, 1000, cfg.FetchLimit)
	require.Equal(t, 90*time.Second, cfg.CacheTTL)
}

func TestLoadAPIRejectsPageSizeAboveMax(t *testing.T) {
	t.Setenv("API_PAGE_SIZE", "200")
	t.Setenv("API_MAX_PAGE_SIZE", "100")

	_, err := config.LoadAPI()
	require.Error(t, err)
}

func TestLoadWorkerDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_TOPIC", "")
	t.Setenv("KAFKA_CONSUMER_GROUP", "")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Len(t, cfg.KafkaBrokers, 1)
	require.Equal(t, "kafka:9092", cfg.KafkaBrokers[0])
	require.Equal(t, "opportunities_raw", cfg.KafkaTopic)
	require.Equal(t, "opportunity-worker", cfg.KafkaConsumer)
	require.Equal(t, 20000, cfg.DedupeCapacity)
	require.Equal(t, 24*time.Hour, cfg.DedupeTTL)
	require.Equal(t, 10, cfg.BatchSize)
}

func TestLoadWorkerOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker-a:29092,broker-b:29093")
	t.Setenv("KAFKA_TOPIC", "custom_topic")
	t.Setenv("KAFKA_CONSUMER_GROUP", "custom-group")
	t.Setenv("WORKER_DEDUPE_CAPACITY", "5")
	t.Setenv("WORKER_DEDUPE_TTL", "48h")
	t.Setenv("WORKER_BATCH_SIZE", "3")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Len(t, cfg.KafkaBrokers, 2)
	require.Equal(t, "custom_topic", cfg.KafkaTopic)
	require.Equal(t, "custom-group", cfg.KafkaConsumer)
	require.Equal(t, 5, cfg.DedupeCapacity)
	require.Equal(t, 48*time.Hour, cfg.DedupeTTL)
	require.Equal(t, 3, cfg.BatchSize)
}

func TestLoadRetention(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "http://ret-es:9200")
	t.Setenv("ELASTICSEARCH_INDEX", "ret-index")
	t.Setenv("RETENTION_CRON", "30 2 * * *")
	t.Setenv("RETENTION_MAX_AGE", "36h")
	t.Setenv("RETENTION_BATCH_SIZE", "123")

	cfg, err := config.LoadRetention()
	require.NoError(t, err)

	require.Equal(t, "30 2 * * *", cfg.CronSpec)
	require.Equal(t, 36*time.Hour, cfg.MaxAge)
	require.Equal(t, 123, cfg.BatchSize)
	require.Equal(t, "http://ret-es:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "ret-index", cfg.ElasticsearchIndex)
}
