package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/devlogs/internal/logging"
	"github.com/segmentio/kafka-go"
)

// ErrMalformed marks a message that could not be decoded. Such messages are
// committed and skipped.
var ErrMalformed = errors.New("malformed gateway message")

// Publisher sends command envelopes towards gateways.
type Publisher interface {
	Publish(ctx context.Context, env *Envelope) error
	Close() error
}

// Subscriber yields envelopes coming back from gateways. The ack callback
// must be called once the envelope has been handled.
type Subscriber interface {
	Consume(ctx context.Context) (env *Envelope, ack func(success bool), err error)
	Close() error
}

type KafkaConfig struct {
	Brokers       []string
	CommandsTopic string
	EventsTopic   string
	GroupID       string
}

// KafkaPublisher writes envelopes to the commands topic keyed by device
// serial, so commands to one device stay ordered.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    logging.Logger
}

func NewKafkaPublisher(cfg KafkaConfig, log logging.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 || cfg.CommandsTopic == "" {
		return nil, errors.New("kafka publisher configuration incomplete: brokers and commands topic are required")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.CommandsTopic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 5 * time.Second,
		ReadTimeout:  5 * time.Second,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error(context.Background(), "kafka writer error", "detail", fmt.Sprintf(msg, args...))
		}),
	}

	return &KafkaPublisher{writer: w, log: log}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, env *Envelope) error {
	b, err := Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(env.DeviceSN), Value: b}); err != nil {
		return fmt.Errorf("failed to write to kafka: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// messageReader is the part of *kafka.Reader the subscriber uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSubscriber reads the events topic in a consumer group and commits
// offsets only after the envelope has been handled.
type KafkaSubscriber struct {
	reader messageReader
	log    logging.Logger
}

func NewKafkaSubscriber(cfg KafkaConfig, log logging.Logger) (*KafkaSubscriber, error) {
	if len(cfg.Brokers) == 0 || cfg.EventsTopic == "" || cfg.GroupID == "" {
		return nil, errors.New("incomplete kafka configuration: brokers, events topic, group id are all required")
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.EventsTopic,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
		StartOffset: kafka.LastOffset,
	})

	return &KafkaSubscriber{reader: r, log: log}, nil
}

func (s *KafkaSubscriber) Consume(ctx context.Context) (*Envelope, func(bool), error) {
	msg, err := s.reader.FetchMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, err
	}

	var env Envelope
	if err := Unmarshal(msg.Value, &env); err != nil {
		if cerr := s.reader.CommitMessages(context.Background(), msg); cerr != nil {
			s.log.Error(ctx, "failed to commit malformed message", "offset", msg.Offset, "error", cerr)
		}
		return nil, nil, fmt.Errorf("%w (offset %d): %v", ErrMalformed, msg.Offset, err)
	}

	ack := func(success bool) {
		if !success {
			s.log.Warn(ctx, "gateway message not acknowledged", "offset", msg.Offset, "bid", env.Bid)
			return
		}
		if err := s.reader.CommitMessages(context.Background(), msg); err != nil {
			s.log.Error(ctx, "failed to commit offset", "offset", msg.Offset, "error", err)
		}
	}
	return &env, ack, nil
}

func (s *KafkaSubscriber) Close() error {
	return s.reader.Close()
}

var (
	_ Publisher  = (*KafkaPublisher)(nil)
	_ Subscriber = (*KafkaSubscriber)(nil)
)
