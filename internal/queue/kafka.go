package queue

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"mintwatch/internal/domain"
	"mintwatch/internal/log"
)

type Kafka struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafka(brokers []string, topic string) (*Kafka, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return NewKafkaWithProducer(producer, topic), nil
}

func NewKafkaWithProducer(producer sarama.SyncProducer, topic string) *Kafka {
	return &Kafka{
		producer: producer,
		topic:    topic,
	}
}

// Publish keys messages by launch so a launch's transitions stay ordered
// within one partition.
func (k *Kafka) Publish(ctx context.Context, t domain.Transition) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}

	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(t.Launch),
		Value: sarama.ByteEncoder(data),
	})

	return err
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}

type KafkaConsumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler Handler
	logger  zerolog.Logger
}

func NewKafkaConsumer(brokers []string, groupID, topic string) (*KafkaConsumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, err
	}

	return &KafkaConsumer{
		group:  group,
		topic:  topic,
		logger: log.WithComponent("kafka"),
	}, nil
}

func (c *KafkaConsumer) Consume(ctx context.Context, handler Handler) error {
	c.handler = handler

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.group.Consume(ctx, []string{c.topic}, c); err != nil {
				return err
			}
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.group.Close()
}

func (c *KafkaConsumer) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (c *KafkaConsumer) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (c *KafkaConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var t domain.Transition
		if err := json.Unmarshal(msg.Value, &t); err != nil {
			c.logger.Warn().Err(err).Int64("offset", msg.Offset).Msg("skipping undecodable transition")
			session.MarkMessage(msg, "")
			continue
		}

		if err := c.handler(session.Context(), t); err != nil {
			c.logger.Error().Err(err).Str("launch", t.Launch).Msg("handle transition")
			continue
		}

		session.MarkMessage(msg, "")
	}
	return nil
}
