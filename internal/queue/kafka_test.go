package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintwatch/internal/domain"
)

func producerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	return config
}

func TestKafka_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, producerConfig())
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got domain.Transition
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		assert.Equal(t, "apes", got.Launch)
		assert.Equal(t, domain.PhaseGracePeriod, got.From)
		assert.Equal(t, domain.PhaseLottery, got.To)
		return nil
	})

	k := NewKafkaWithProducer(producer, "phase-transitions")
	err := k.Publish(context.Background(), domain.Transition{
		ID:     "abc",
		Launch: "apes",
		From:   domain.PhaseGracePeriod,
		To:     domain.PhaseLottery,
		At:     time.Date(2021, 11, 1, 14, 0, 1, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, k.Close())
}

func TestKafka_PublishError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, producerConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	k := NewKafkaWithProducer(producer, "phase-transitions")
	err := k.Publish(context.Background(), domain.Transition{Launch: "apes"})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, k.Close())
}
