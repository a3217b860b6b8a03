package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
)

type Balancer int

const (
	RoundRobin Balancer = iota
	Hash
	Random
)

type RequiredAcks int

const (
	RequireNone RequiredAcks = iota
	RequireLocal
	RequireAll
)

type Producer interface {
	PushMessage(ctx context.Context, key, payload []byte, topic string) error
	Close() error
}

type ProducerOption func(*sarama.Config)

func WithBalancer(balancer Balancer) ProducerOption {
	return func(cfg *sarama.Config) {
		switch balancer {
		case Hash:
			cfg.Producer.Partitioner = sarama.NewHashPartitioner
		case Random:
			cfg.Producer.Partitioner = sarama.NewRandomPartitioner
		default:
			cfg.Producer.Partitioner = sarama.NewRoundRobinPartitioner
		}
	}
}

func WithRequiredAcks(acks RequiredAcks) ProducerOption {
	return func(cfg *sarama.Config) {
		switch acks {
		case RequireNone:
			cfg.Producer.RequiredAcks = sarama.NoResponse
		case RequireLocal:
			cfg.Producer.RequiredAcks = sarama.WaitForLocal
		default:
			cfg.Producer.RequiredAcks = sarama.WaitForAll
		}
	}
}

type producer struct {
	sync sarama.SyncProducer
}

func NewProducer(brokers []string, opts ...ProducerOption) (Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 3

	for _, opt := range opts {
		opt(cfg)
	}

	sync, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync producer: %w", err)
	}

	return &producer{sync: sync}, nil
}

func (p *producer) PushMessage(ctx context.Context, key, payload []byte, topic string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.ByteEncoder(key),
		Value: sarama.ByteEncoder(payload),
	}

	if _, _, err := p.sync.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to send message to topic %q: %w", topic, err)
	}

	return nil
}

func (p *producer) Close() error {
	return p.sync.Close()
}
