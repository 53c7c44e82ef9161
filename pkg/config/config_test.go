package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "yahoo", c.MarketData.Source)
	assert.Equal(t, 10, c.MarketData.NewsCount)
	assert.Equal(t, "fail", c.Pipeline.DegenerateColumnPolicy)
	assert.Equal(t, 30*time.Second, c.Model.Timeout)
	assert.Equal(t, []string{"localhost:9092"}, c.Kafka.Brokers)
	assert.Equal(t, []string{"*"}, c.Server.CORSOrigins)
	assert.Equal(t, 1024, c.MarketData.CacheMaxEntries)
	assert.Equal(t, int64(8<<20), c.MarketData.MaxResponseBytes)
	assert.Equal(t, "voting_ensemble", c.Pipeline.DefaultModel)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
market_data:
  source: clickhouse
  news_count: 3
pipeline:
  degenerate_column_policy: leave_unscaled
model:
  timeout: 5s
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "clickhouse", c.MarketData.Source)
	assert.Equal(t, 3, c.MarketData.NewsCount)
	assert.Equal(t, "leave_unscaled", c.Pipeline.DegenerateColumnPolicy)
	assert.Equal(t, 5*time.Second, c.Model.Timeout)
	assert.Equal(t, "candles_1d", c.ClickHouse.DailyTable)
}

func TestLoad_RejectsUnknownSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("market_data:\n  source: bloomberg\n"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadWithEnv_Overrides(t *testing.T) {
	t.Setenv("MODEL_SERVICE_URL", "http://models:9000")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := LoadWithEnv("")
	require.NoError(t, err)
	assert.Equal(t, "http://models:9000", c.Model.ServiceURL)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "debug", c.Log.Level)
}
