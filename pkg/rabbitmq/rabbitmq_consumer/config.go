package rabbitmq_consumer

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/pkg/rabbitmq/rabbitmq_common"
)

type ConsumerConfig struct {
	rabbitmq_common.Config

	QueueName       string // пустое имя при DeclareQueue - сервер сгенерирует свое
	DeclareQueue    bool
	DurableQueue    bool
	ExclusiveQueue  bool
	AutoDeleteQueue bool
	QueueArgs       amqp.Table

	// привязка выполняется, только если задан ExchangeNameForBind
	ExchangeNameForBind    string
	DeclareExchangeForBind bool
	ExchangeTypeForBind    string
	DurableExchangeForBind bool
	RoutingKeyForBind      string

	PrefetchCount int // 0 - без ограничений

	ConsumerTag       string
	ExclusiveConsumer bool

	// Повторы: упавшее сообщение уходит в RetryExchange, ждет RetryTTL мс в RetryQueue
	// и возвращается в основной обменник. После MaxRetries - в FinalDLXExchange.
	EnableRetryMechanism bool
	RetryExchange        string
	RetryQueue           string
	RetryTTL             int
	FinalDLXExchange     string
	FinalDLQ             string
	FinalDLQRoutingKey   string
	MaxRetries           int

	Logger rabbitmq_common.Logger
}

func (c ConsumerConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if !c.DeclareQueue && c.QueueName == "" {
		return fmt.Errorf("consumer: queue name is required if DeclareQueue is false")
	}
	if c.DeclareExchangeForBind && c.ExchangeNameForBind != "" && c.ExchangeTypeForBind == "" {
		return fmt.Errorf("consumer: exchange type is required when declaring an exchange for binding")
	}
	if c.EnableRetryMechanism {
		if c.RetryExchange == "" || c.RetryQueue == "" || c.FinalDLXExchange == "" || c.FinalDLQ == "" {
			return fmt.Errorf("consumer: retry and dead-letter names are required when retries are enabled")
		}
		if c.RetryTTL <= 0 {
			return fmt.Errorf("consumer: RetryTTL must be positive")
		}
		if c.MaxRetries < 0 {
			return fmt.Errorf("consumer: MaxRetries must not be negative")
		}
	}
	return nil
}
