package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
model:
  artifact_path: config/crypto_liquidity_model.json
`

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 15*time.Second, c.Server.ShutdownTimeout)
	assert.Equal(t, ModelArtifact, c.Model.Type)
	assert.Equal(t, "default", c.Model.Schema)
	assert.Equal(t, StorageNone, c.Storage.Backend)
	assert.Equal(t, 5*time.Minute, c.Cache.TTL)
	assert.Equal(t, "liquidity.predictions", c.Kafka.PredictionsTopic)
	assert.False(t, c.UsesClickHouse())
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
environment: production
server:
  port: 9090
model:
  type: http
  service_url: http://model:8000
  timeout: 1500ms
storage:
  backend: clickhouse
kafka:
  enabled: true
  brokers: [kafka:9092]
`))
	require.NoError(t, err)

	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, ModelHTTP, c.Model.Type)
	assert.Equal(t, 1500*time.Millisecond, c.Model.Timeout)
	assert.Equal(t, []string{"kafka:9092"}, c.Kafka.Brokers)
	assert.True(t, c.UsesClickHouse())
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"missing artifact path": "model:\n  type: artifact\n",
		"missing service url":   "model:\n  type: http\n",
		"unknown model type":    "model:\n  type: onnx\n",
		"unknown storage":       minimal + "storage:\n  backend: postgres\n",
		"kafka without brokers": minimal + "kafka:\n  enabled: true\n",
		"bad rate limit":        minimal + "rate_limit:\n  enabled: true\n  rps: 0\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Parse([]byte(minimal))
	require.NoError(t, err)

	env := map[string]string{
		"SERVER_PORT":     "7000",
		"MODEL_TYPE":      "http",
		"STORAGE_BACKEND": "sqlite",
		"KAFKA_BROKERS":   "a:9092,b:9092",
	}
	require.NoError(t, c.applyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, 7000, c.Server.Port)
	assert.Equal(t, ModelHTTP, c.Model.Type)
	assert.Equal(t, StorageSQLite, c.Storage.Backend)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)

	env["SERVER_PORT"] = "eighty"
	assert.Error(t, c.applyEnv(func(k string) string { return env[k] }))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "config/crypto_liquidity_model.json", c.Model.ArtifactPath)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestShippedConfigIsValid(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, c.Storage.Backend)
	assert.Equal(t, "liquidity.snapshots", c.Kafka.SnapshotsTopic)
	assert.True(t, c.RateLimit.Enabled)
}
