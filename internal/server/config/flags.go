package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/devlogs/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string                  gRPC bind address (e.g., ":50051")
//	-d string                  PostgreSQL DSN, or "memory"
//	-s string                  JWT HMAC secret key
//	-l string                  log level
//	-u string                  S3 root user
//	-p string                  S3 root password
//	-b string                  S3 bucket name
//	-g string                  S3 region
//	-e string                  S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-x duration                presigned URL expiry
//	-kafka-brokers string      comma-separated broker list
//	-kafka-commands-topic      topic commands are published to
//	-kafka-events-topic        topic gateway events are read from
//	-kafka-group string        consumer group id
//	-reply-timeout duration    gateway reply timeout
//	-realtime-timeout duration live domain query timeout
//
// os.Args is first filtered to the flags recognised here using
// flagx.FilterArgs, so -c/-config and foreign flags do not collide.
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-l", "-u", "-p", "-b", "-g", "-e", "-x",
		"-kafka-brokers", "-kafka-commands-topic", "-kafka-events-topic", "-kafka-group",
		"-reply-timeout", "-realtime-timeout",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.DurationVar(&config.PresignExpiry, "x", config.PresignExpiry, "presigned URL expiry")

	brokers := fs.String("kafka-brokers", strings.Join(config.KafkaBrokers, ","), "kafka brokers, comma-separated")
	fs.StringVar(&config.KafkaCommandsTopic, "kafka-commands-topic", config.KafkaCommandsTopic, "gateway commands topic")
	fs.StringVar(&config.KafkaEventsTopic, "kafka-events-topic", config.KafkaEventsTopic, "gateway events topic")
	fs.StringVar(&config.KafkaGroupID, "kafka-group", config.KafkaGroupID, "kafka consumer group")

	fs.DurationVar(&config.ReplyTimeout, "reply-timeout", config.ReplyTimeout, "gateway reply timeout")
	fs.DurationVar(&config.RealtimeQueryTimeout, "realtime-timeout", config.RealtimeQueryTimeout, "realtime domain query timeout")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	config.KafkaBrokers = splitList(*brokers)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
