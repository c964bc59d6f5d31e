package rabbitmq_consumer

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/pkg/rabbitmq/rabbitmq_common"
)

func xDeath(entries ...amqp.Table) amqp.Table {
	deaths := make([]interface{}, len(entries))
	for i, e := range entries {
		deaths[i] = e
	}
	return amqp.Table{"x-death": deaths}
}

func TestDeathCount(t *testing.T) {
	assert.Equal(t, int64(0), deathCount(nil, "q"))
	assert.Equal(t, int64(0), deathCount(amqp.Table{"x-death": "garbage"}, "q"))

	headers := xDeath(
		amqp.Table{"queue": "q_retry_wait", "count": int64(5)},
		amqp.Table{"queue": "q", "count": int64(2)},
	)
	assert.Equal(t, int64(2), deathCount(headers, "q"))
	assert.Equal(t, int64(0), deathCount(headers, "other"))
}

func TestDecideOnFailure(t *testing.T) {
	cfg := ConsumerConfig{EnableRetryMechanism: true, MaxRetries: 3}

	assert.Equal(t, actionDrop, decideOnFailure(ConsumerConfig{}, amqp.Delivery{}, "q"))
	assert.Equal(t, actionRetry, decideOnFailure(cfg, amqp.Delivery{}, "q"))
	assert.Equal(t, actionRetry, decideOnFailure(cfg, amqp.Delivery{Headers: xDeath(amqp.Table{"queue": "q", "count": int64(2)})}, "q"))
	assert.Equal(t, actionDeadLetter, decideOnFailure(cfg, amqp.Delivery{Headers: xDeath(amqp.Table{"queue": "q", "count": int64(3)})}, "q"))
}

func TestConsumerConfigValidate(t *testing.T) {
	base := ConsumerConfig{Config: rabbitmq_common.Config{URL: "amqp://localhost/"}, QueueName: "q", DeclareQueue: true}
	assert.NoError(t, base.Validate())

	noQueue := base
	noQueue.DeclareQueue, noQueue.QueueName = false, ""
	assert.Error(t, noQueue.Validate())

	retry := base
	retry.EnableRetryMechanism = true
	assert.Error(t, retry.Validate())

	retry.RetryExchange, retry.RetryQueue = "q_retry_ex", "q_retry_wait"
	retry.FinalDLXExchange, retry.FinalDLQ = "dlx", "dlq"
	retry.RetryTTL, retry.MaxRetries = 10000, 3
	assert.NoError(t, retry.Validate())

	retry.RetryTTL = 0
	assert.Error(t, retry.Validate())
}
