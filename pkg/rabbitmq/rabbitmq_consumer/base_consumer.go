package rabbitmq_consumer

import (
	"context"
	"fmt"
	"sync"

	"listing-service/pkg/rabbitmq/rabbitmq_common"
	"listing-service/pkg/rabbitmq/rabbitmq_producer"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerConfig describes the queue, its binding and the retry topology.
type ConsumerConfig struct {
	rabbitmq_common.Config

	QueueName       string // empty lets the server generate a name
	DeclareQueue    bool
	DurableQueue    bool
	ExclusiveQueue  bool
	AutoDeleteQueue bool
	QueueArgs       amqp.Table

	ExchangeNameForBind    string // empty means no binding
	DeclareExchangeForBind bool
	ExchangeTypeForBind    string
	DurableExchangeForBind bool
	ExchangeArgsForBind    amqp.Table

	RoutingKeyForBind string
	BindingArgs       amqp.Table

	PrefetchCount int
	PrefetchSize  int
	QosGlobal     bool

	ConsumerTag       string
	ExclusiveConsumer bool

	// Failed messages are dead-lettered into RetryExchange, wait RetryTTL ms
	// in RetryQueue and come back. After MaxRetries they go to FinalDLXExchange.
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

func (cfg ConsumerConfig) validate() error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid base config: %w", err)
	}
	if !cfg.DeclareQueue && cfg.QueueName == "" {
		return fmt.Errorf("queue name is required if DeclareQueue is false")
	}
	if cfg.ExchangeNameForBind != "" && cfg.ExchangeTypeForBind == "" && cfg.DeclareExchangeForBind {
		return fmt.Errorf("exchange type is required if declaring an exchange for binding")
	}
	if cfg.EnableRetryMechanism {
		if cfg.RetryExchange == "" || cfg.RetryQueue == "" || cfg.FinalDLXExchange == "" || cfg.FinalDLQ == "" {
			return fmt.Errorf("retry exchange, retry queue, final DLX and final DLQ are required when retries are enabled")
		}
		if cfg.MaxRetries <= 0 {
			return fmt.Errorf("max retries must be positive when retries are enabled")
		}
	}
	return nil
}

type deadLetterPublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
	Close() error
}

// baseConsumer holds the channel, the declared topology and the in-flight handlers.
type baseConsumer struct {
	config            ConsumerConfig
	connection        *amqp.Connection
	channel           *amqp.Channel
	actualQueueName   string
	finalDlxPublisher deadLetterPublisher
	wg                sync.WaitGroup

	Logger rabbitmq_common.Logger
}

func newBaseConsumer(cfg ConsumerConfig, connManager *rabbitmq_common.ConnectionManager) (*baseConsumer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("base Consumer: %w", err)
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("base Consumer: failed to get channel from manager: %w", err)
	}

	c := &baseConsumer{
		config:     cfg,
		connection: conn,
		channel:    ch,
		Logger:     logger,
	}
	c.Logger.Debug("Channel obtained from ConnectionManager")

	if err := c.setup(); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("base Consumer: setup failed: %w", err)
	}

	if cfg.EnableRetryMechanism {
		dlxPublisher, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:       rabbitmq_common.Config{URL: cfg.URL},
			ExchangeName: cfg.FinalDLXExchange,
			Logger:       logger,
		}, connManager)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("base Consumer: failed to create final DLX publisher: %w", err)
		}
		c.finalDlxPublisher = dlxPublisher
	}

	return c, nil
}

func (c *baseConsumer) setup() error {
	if c.config.PrefetchCount > 0 || c.config.PrefetchSize > 0 {
		c.Logger.Debug("Setting QoS",
			"prefetch_count", c.config.PrefetchCount,
			"prefetch_size", c.config.PrefetchSize,
			"global", c.config.QosGlobal,
		)
		if err := c.channel.Qos(c.config.PrefetchCount, c.config.PrefetchSize, c.config.QosGlobal); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	if c.config.EnableRetryMechanism {
		if c.config.QueueArgs == nil {
			c.config.QueueArgs = amqp.Table{}
		}
		c.config.QueueArgs["x-dead-letter-exchange"] = c.config.RetryExchange
	}

	c.actualQueueName = c.config.QueueName
	if c.config.DeclareQueue {
		c.Logger.Debug("Declaring queue", "name", c.config.QueueName, "durable", c.config.DurableQueue)
		q, err := c.channel.QueueDeclare(
			c.config.QueueName,
			c.config.DurableQueue,
			c.config.AutoDeleteQueue,
			c.config.ExclusiveQueue,
			false, // no-wait
			c.config.QueueArgs,
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue '%s': %w", c.config.QueueName, err)
		}
		c.actualQueueName = q.Name
	}

	if c.config.DeclareExchangeForBind {
		c.Logger.Debug("Declaring exchange", "name", c.config.ExchangeNameForBind, "type", c.config.ExchangeTypeForBind)
		err := c.channel.ExchangeDeclare(
			c.config.ExchangeNameForBind,
			c.config.ExchangeTypeForBind,
			c.config.DurableExchangeForBind,
			false, // auto-deleted
			false, // internal
			false, // no-wait
			c.config.ExchangeArgsForBind,
		)
		if err != nil {
			return fmt.Errorf("failed to declare exchange '%s' for binding: %w", c.config.ExchangeNameForBind, err)
		}
	}

	if c.config.ExchangeNameForBind != "" {
		c.Logger.Debug("Binding queue to exchange",
			"queue_name", c.actualQueueName,
			"exchange_name", c.config.ExchangeNameForBind,
			"routing_key", c.config.RoutingKeyForBind,
		)
		err := c.channel.QueueBind(c.actualQueueName, c.config.RoutingKeyForBind, c.config.ExchangeNameForBind, false, c.config.BindingArgs)
		if err != nil {
			return fmt.Errorf("failed to bind queue '%s' to exchange '%s': %w", c.actualQueueName, c.config.ExchangeNameForBind, err)
		}
	}

	if c.config.EnableRetryMechanism {
		if err := c.setupRetryTopology(); err != nil {
			return err
		}
	}

	c.Logger.Debug("Setup complete", "queue", c.actualQueueName)
	return nil
}

func (c *baseConsumer) setupRetryTopology() error {
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

	waitArgs := amqp.Table{
		"x-message-ttl":          int32(cfg.RetryTTL),
		"x-dead-letter-exchange": cfg.ExchangeNameForBind,
	}
	// messages consumed from the default exchange go back by queue name
	if cfg.ExchangeNameForBind == "" {
		waitArgs["x-dead-letter-routing-key"] = c.actualQueueName
	}
	c.Logger.Debug("Declaring retry-wait queue", "name", cfg.RetryQueue, "ttl", cfg.RetryTTL)
	if _, err := c.channel.QueueDeclare(cfg.RetryQueue, true, false, false, false, waitArgs); err != nil {
		return fmt.Errorf("failed to declare retry-wait queue: %w", err)
	}
	if err := c.channel.QueueBind(cfg.RetryQueue, "", cfg.RetryExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind retry-wait queue: %w", err)
	}
	return nil
}

// deathCount returns how many times the message was dead-lettered from queueName.
func deathCount(d amqp.Delivery, queueName string) int64 {
	if d.Headers == nil {
		return 0
	}
	deaths, ok := d.Headers["x-death"].([]interface{})
	if !ok {
		return 0
	}
	for _, death := range deaths {
		tbl, ok := death.(amqp.Table)
		if !ok {
			continue
		}
		if queue, ok := tbl["queue"].(string); ok && queue == queueName {
			if count, ok := tbl["count"].(int64); ok {
				return count
			}
		}
	}
	return 0
}

// Close waits for in-flight handlers and closes the channel.
func (c *baseConsumer) Close() error {
	c.Logger.Debug("Waiting for message handlers to finish...")
	c.wg.Wait()

	var firstErr error
	if c.finalDlxPublisher != nil {
		if err := c.finalDlxPublisher.Close(); err != nil {
			c.Logger.Error(err, "Error closing final DLX publisher")
			firstErr = err
		}
	}
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.Logger.Error(err, "Error closing channel")
			if firstErr == nil {
				firstErr = err
			}
		}
		c.channel = nil
	}

	c.Logger.Info("Consumer closed")
	return firstErr
}
