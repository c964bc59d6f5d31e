package rabbitmq_consumer

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/pkg/rabbitmq/rabbitmq_common"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/pkg/rabbitmq/rabbitmq_producer"
)

// MessageHandler обрабатывает одно сообщение. Ack/nack/повтор решает потребитель
// по возвращенной ошибке.
type MessageHandler func(delivery amqp.Delivery) error

// Consumer - то, что нужно адаптерам: запустить до отмены ctx и закрыть.
type Consumer interface {
	StartConsuming(ctx context.Context) error
	Close() error
}

// DistributingConsumer обрабатывает каждое сообщение в своей горутине.
type DistributingConsumer struct {
	config     ConsumerConfig
	connection *amqp.Connection
	channel    *amqp.Channel
	queueName  string
	handler    MessageHandler

	dlxPublisher *rabbitmq_producer.Publisher
	wg           sync.WaitGroup

	Logger rabbitmq_common.Logger
}

func NewDistributingConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*DistributingConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("distributing consumer: message handler is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("distributing consumer: invalid config: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("distributing consumer: failed to get channel from manager: %w", err)
	}
	c := &DistributingConsumer{config: cfg, connection: conn, channel: ch, handler: handler, Logger: logger}

	if err := c.setup(); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("distributing consumer: setup failed: %w", err)
	}

	if cfg.EnableRetryMechanism {
		c.dlxPublisher, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:       cfg.Config,
			ExchangeName: cfg.FinalDLXExchange,
			Logger:       logger,
		}, connManager)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("distributing consumer: failed to create final DLX publisher: %w", err)
		}
	}
	return c, nil
}

// setup объявляет очередь, привязку и, если включены повторы, retry-обменник,
// очередь ожидания и финальную DLQ.
func (c *DistributingConsumer) setup() error {
	cfg := c.config

	if cfg.PrefetchCount > 0 {
		if err := c.channel.Qos(cfg.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	queueArgs := amqp.Table{}
	for k, v := range cfg.QueueArgs {
		queueArgs[k] = v
	}
	if cfg.EnableRetryMechanism {
		queueArgs["x-dead-letter-exchange"] = cfg.RetryExchange
	}

	c.queueName = cfg.QueueName
	if cfg.DeclareQueue {
		q, err := c.channel.QueueDeclare(cfg.QueueName, cfg.DurableQueue, cfg.AutoDeleteQueue, cfg.ExclusiveQueue, false, queueArgs)
		if err != nil {
			return fmt.Errorf("failed to declare queue '%s': %w", cfg.QueueName, err)
		}
		c.queueName = q.Name
	}

	if cfg.ExchangeNameForBind != "" {
		if cfg.DeclareExchangeForBind {
			err := c.channel.ExchangeDeclare(cfg.ExchangeNameForBind, cfg.ExchangeTypeForBind, cfg.DurableExchangeForBind, false, false, false, nil)
			if err != nil {
				return fmt.Errorf("failed to declare exchange '%s': %w", cfg.ExchangeNameForBind, err)
			}
		}
		if err := c.channel.QueueBind(c.queueName, cfg.RoutingKeyForBind, cfg.ExchangeNameForBind, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue '%s' to exchange '%s': %w", c.queueName, cfg.ExchangeNameForBind, err)
		}
	}

	if cfg.EnableRetryMechanism {
		if err := c.setupRetry(); err != nil {
			return err
		}
	}

	c.Logger.Debug("Consumer setup complete", "queue", c.queueName)
	return nil
}

func (c *DistributingConsumer) setupRetry() error {
	cfg := c.config

	if err := c.channel.ExchangeDeclare(cfg.FinalDLXExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLX: %w", err)
	}
	if _, err := c.channel.QueueDeclare(cfg.FinalDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLQ: %w", err)
	}
	if err := c.channel.QueueBind(cfg.FinalDLQ, cfg.FinalDLQRoutingKey, cfg.FinalDLXExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind final DLQ: %w", err)
	}

	if err := c.channel.ExchangeDeclare(cfg.RetryExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare retry exchange: %w", err)
	}

	// без привязки к обменнику сообщение возвращается прямо в основную очередь
	waitArgs := amqp.Table{"x-message-ttl": int32(cfg.RetryTTL)}
	if cfg.ExchangeNameForBind != "" {
		waitArgs["x-dead-letter-exchange"] = cfg.ExchangeNameForBind
	} else {
		waitArgs["x-dead-letter-exchange"] = ""
		waitArgs["x-dead-letter-routing-key"] = c.queueName
	}
	if _, err := c.channel.QueueDeclare(cfg.RetryQueue, true, false, false, false, waitArgs); err != nil {
		return fmt.Errorf("failed to declare retry-wait queue: %w", err)
	}
	if err := c.channel.QueueBind(cfg.RetryQueue, "", cfg.RetryExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind retry-wait queue: %w", err)
	}
	return nil
}

// StartConsuming блокируется до отмены ctx (nil) или закрытия соединения (ошибка).
func (c *DistributingConsumer) StartConsuming(ctx context.Context) error {
	if c.channel == nil || c.connection == nil || c.connection.IsClosed() {
		return fmt.Errorf("distributing consumer: not connected")
	}

	msgs, err := c.channel.Consume(c.queueName, c.config.ConsumerTag, false, c.config.ExclusiveConsumer, false, false, nil)
	if err != nil {
		return fmt.Errorf("distributing consumer %s: failed to consume from '%s': %w", c.config.ConsumerTag, c.queueName, err)
	}
	c.Logger.Info("Waiting for messages", "queue_name", c.queueName)

	go c.dispatch(ctx, msgs)

	notifyClose := c.connection.NotifyClose(make(chan *amqp.Error, 1))
	select {
	case <-ctx.Done():
		c.Logger.Info("Context cancelled, consumer stopping", "consumer_tag", c.config.ConsumerTag)
		return nil
	case amqpErr := <-notifyClose:
		c.Logger.Error(amqpErr, "Connection closed for consumer", "consumer_tag", c.config.ConsumerTag)
		if amqpErr == nil {
			return fmt.Errorf("distributing consumer %s: connection closed", c.config.ConsumerTag)
		}
		return amqpErr
	}
}

func (c *DistributingConsumer) dispatch(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		// отмена проверяется первой, чтобы не брать новых сообщений после остановки
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				c.Logger.Info("Deliveries channel closed", "consumer_tag", c.config.ConsumerTag)
				return
			}
			c.wg.Add(1)
			go func(d amqp.Delivery) {
				defer c.wg.Done()
				c.process(d)
			}(d)
		}
	}
}

func (c *DistributingConsumer) process(d amqp.Delivery) {
	err := c.handler(d)
	if err == nil {
		_ = d.Ack(false)
		c.Logger.Debug("Message acked", "delivery_tag", d.DeliveryTag)
		return
	}

	c.Logger.Error(err, "Handler error", "delivery_tag", d.DeliveryTag)
	switch decideOnFailure(c.config, d, c.queueName) {
	case actionDrop:
		_ = d.Nack(false, false)
	case actionRetry:
		c.Logger.Info("Retrying message", "delivery_tag", d.DeliveryTag, "death_count", deathCount(d.Headers, c.queueName))
		_ = d.Nack(false, false)
	case actionDeadLetter:
		err := c.dlxPublisher.Publish(context.Background(), c.config.FinalDLQRoutingKey, amqp.Publishing{
			ContentType:  d.ContentType,
			Body:         d.Body,
			Headers:      d.Headers,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		})
		if err != nil {
			c.Logger.Error(err, "Failed to publish to final DLX, message goes through retry again", "delivery_tag", d.DeliveryTag)
			_ = d.Nack(false, false)
			return
		}
		c.Logger.Warn("Max retries reached, message moved to final DLQ", "delivery_tag", d.DeliveryTag)
		_ = d.Ack(false)
	}
}

// Close дожидается обработчиков и закрывает каналы.
func (c *DistributingConsumer) Close() error {
	c.wg.Wait()

	var firstErr error
	if c.dlxPublisher != nil {
		if err := c.dlxPublisher.Close(); err != nil {
			firstErr = err
		}
	}
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && firstErr == nil {
			c.Logger.Error(err, "Error closing channel")
			firstErr = err
		}
		c.channel = nil
	}
	c.Logger.Info("Consumer closed")
	return firstErr
}
