package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func Test_parseFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("json", func(t *testing.T) {
		path := writeTemp(t, "cfg.json", `{
			"endpoint_addr_grpc": "www.example:9000",
			"database_dsn": "postgres://db",
			"secret_key": "my_secret_key",
			"s3_bucket": "bucket",
			"presign_expiry": "5m",
			"kafka_brokers": ["k1:9092", "k2:9092"],
			"reply_timeout": 2000000000
		}`)
		os.Args = []string{"testbin", "-config", path}

		var cfg Config
		cfg.LoadDefaults()
		require.NoError(t, parseFile(&cfg))

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, 5*time.Minute, cfg.PresignExpiry)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
		assert.Equal(t, 2*time.Second, cfg.ReplyTimeout)
		// untouched keys keep defaults
		assert.Equal(t, "us-east-1", cfg.S3Region)
		assert.Equal(t, 5*time.Second, cfg.RealtimeQueryTimeout)
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeTemp(t, "cfg.yml", `
log_level: debug
kafka_events_topic: gw.events
kafka_group_id: g1
realtime_query_timeout: 750ms
`)
		os.Args = []string{"testbin", "-c", path}

		var cfg Config
		cfg.LoadDefaults()
		require.NoError(t, parseFile(&cfg))

		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "gw.events", cfg.KafkaEventsTopic)
		assert.Equal(t, "g1", cfg.KafkaGroupID)
		assert.Equal(t, 750*time.Millisecond, cfg.RealtimeQueryTimeout)
	})

	t.Run("env fallback", func(t *testing.T) {
		path := writeTemp(t, "cfg.json", `{"s3_region": "eu-north-1"}`)
		os.Args = []string{"testbin"}
		t.Setenv("DEVLOGS_CONFIG", path)

		var cfg Config
		require.NoError(t, parseFile(&cfg))
		assert.Equal(t, "eu-north-1", cfg.S3Region)
	})

	t.Run("no file, no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv("DEVLOGS_CONFIG", "")

		cfg := Config{EndpointAddrGRPC: "defaults:1234"}
		require.NoError(t, parseFile(&cfg))
		assert.Equal(t, "defaults:1234", cfg.EndpointAddrGRPC)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := writeTemp(t, "bad.json", `{"reply_timeout": true}`)
		os.Args = []string{"testbin", "-c", path}

		var cfg Config
		assert.Error(t, parseFile(&cfg))
	})

	t.Run("invalid yaml duration", func(t *testing.T) {
		path := writeTemp(t, "bad.yaml", "reply_timeout: soon\n")
		os.Args = []string{"testbin", "-c", path}

		var cfg Config
		assert.Error(t, parseFile(&cfg))
	})
}
