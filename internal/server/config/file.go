package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/devlogs/internal/flagx"
	"github.com/dmitrijs2005/devlogs/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration. Durations use
// timex.Duration so both "10s" and integer nanoseconds are accepted.
// Only keys present in the file override the current values.
type FileConfig struct {
	EndpointAddrGRPC     string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	DatabaseDSN          string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey            string         `json:"secret_key" yaml:"secret_key"`
	LogLevel             string         `json:"log_level" yaml:"log_level"`
	S3RootUser           string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword       string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket             string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region             string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint       string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	PresignExpiry        timex.Duration `json:"presign_expiry" yaml:"presign_expiry"`
	KafkaBrokers         []string       `json:"kafka_brokers" yaml:"kafka_brokers"`
	KafkaCommandsTopic   string         `json:"kafka_commands_topic" yaml:"kafka_commands_topic"`
	KafkaEventsTopic     string         `json:"kafka_events_topic" yaml:"kafka_events_topic"`
	KafkaGroupID         string         `json:"kafka_group_id" yaml:"kafka_group_id"`
	ReplyTimeout         timex.Duration `json:"reply_timeout" yaml:"reply_timeout"`
	RealtimeQueryTimeout timex.Duration `json:"realtime_query_timeout" yaml:"realtime_query_timeout"`
}

// parseFile overlays values from the file named by -c/-config (or
// $DEVLOGS_CONFIG). Files ending in .yml or .yaml are read as YAML,
// anything else as JSON. No file means no changes.
func parseFile(config *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}

func (fc *FileConfig) apply(c *Config) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, v timex.Duration) {
		if v.Duration != 0 {
			*dst = v.Duration
		}
	}

	setString(&c.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.SecretKey, fc.SecretKey)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.S3RootUser, fc.S3RootUser)
	setString(&c.S3RootPassword, fc.S3RootPassword)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
	setDuration(&c.PresignExpiry, fc.PresignExpiry)
	if len(fc.KafkaBrokers) > 0 {
		c.KafkaBrokers = fc.KafkaBrokers
	}
	setString(&c.KafkaCommandsTopic, fc.KafkaCommandsTopic)
	setString(&c.KafkaEventsTopic, fc.KafkaEventsTopic)
	setString(&c.KafkaGroupID, fc.KafkaGroupID)
	setDuration(&c.ReplyTimeout, fc.ReplyTimeout)
	setDuration(&c.RealtimeQueryTimeout, fc.RealtimeQueryTimeout)
}
