package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-d", "db", "-s", "secret", "-l", "debug",
				"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
				"-x", "90s",
				"-kafka-brokers", "k1:9092, k2:9092", "-kafka-commands-topic", "cmds",
				"-kafka-events-topic=evts", "-kafka-group", "grp",
				"-reply-timeout", "3s", "-realtime-timeout", "1s",
				"-c", "ignored.json",
			},
			expected: &Config{
				EndpointAddrGRPC:     "127.0.0.1:9090",
				DatabaseDSN:          "db",
				SecretKey:            "secret",
				LogLevel:             "debug",
				S3RootUser:           "user",
				S3RootPassword:       "password",
				S3Bucket:             "bucket",
				S3Region:             "us-west-1",
				S3BaseEndpoint:       "http://endpoint",
				PresignExpiry:        90 * time.Second,
				KafkaBrokers:         []string{"k1:9092", "k2:9092"},
				KafkaCommandsTopic:   "cmds",
				KafkaEventsTopic:     "evts",
				KafkaGroupID:         "grp",
				ReplyTimeout:         3 * time.Second,
				RealtimeQueryTimeout: time.Second,
			},
		},
		{
			name:    "bad duration",
			args:    []string{"cmd", "-reply-timeout", "forever"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			err := parseFlags(config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if d := cmp.Diff(tt.expected, config); d != "" {
				t.Fatalf("config mismatch (-want +got):\n%s", d)
			}
		})
	}
}
