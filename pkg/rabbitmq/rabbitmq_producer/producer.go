package rabbitmq_producer

import (
	"context"
	"fmt"

	"listing-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PublisherConfig describes the exchange a publisher writes to.
type PublisherConfig struct {
	rabbitmq_common.Config
	ExchangeName       string // empty string means the default exchange
	ExchangeType       string // direct, fanout, topic, headers
	DurableExchange    bool
	AutoDeleteExchange bool
	InternalExchange   bool
	ExchangeArgs       amqp.Table

	// When false the exchange is expected to exist already.
	DeclareExchangeIfMissing bool

	Logger rabbitmq_common.Logger
}

// Publisher publishes messages over a channel taken from the ConnectionManager.
type Publisher struct {
	config     PublisherConfig
	connection *amqp.Connection
	channel    *amqp.Channel

	Logger rabbitmq_common.Logger
}

func (cfg PublisherConfig) validate() error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid base config: %w", err)
	}
	if cfg.DeclareExchangeIfMissing && cfg.ExchangeName == "" && cfg.ExchangeType != "" {
		return fmt.Errorf("producer: exchange name is required if ExchangeType is specified and DeclareExchangeIfMissing is true")
	}
	if cfg.DeclareExchangeIfMissing && cfg.ExchangeType == "" && cfg.ExchangeName != "" {
		return fmt.Errorf("producer: exchange type is required if ExchangeName is specified and DeclareExchangeIfMissing is true")
	}
	return nil
}

// NewPublisher opens a channel and declares the exchange when asked to.
func NewPublisher(cfg PublisherConfig, connManager *rabbitmq_common.ConnectionManager) (*Publisher, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("producer: failed to get channel from manager: %w", err)
	}

	p := &Publisher{
		config:     cfg,
		connection: conn,
		channel:    ch,
		Logger:     logger,
	}

	if cfg.DeclareExchangeIfMissing {
		p.Logger.Debug("Declaring exchange", "name", cfg.ExchangeName, "type", cfg.ExchangeType)
		err = ch.ExchangeDeclare(
			cfg.ExchangeName,
			cfg.ExchangeType,
			cfg.DurableExchange,
			cfg.AutoDeleteExchange,
			cfg.InternalExchange,
			false, // no-wait
			cfg.ExchangeArgs,
		)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("producer: failed to declare exchange '%s': %w", cfg.ExchangeName, err)
		}
	} else if cfg.ExchangeName != "" {
		p.Logger.Debug("Assuming exchange already exists", "name", cfg.ExchangeName)
	}

	p.Logger.Debug("Producer channel ready", "exchange", cfg.ExchangeName)
	return p, nil
}

// Publish sends msg to the configured exchange with the given routing key.
func (p *Publisher) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	if p.channel == nil || p.connection == nil || p.connection.IsClosed() {
		return fmt.Errorf("producer: not connected or channel/connection is closed")
	}

	err := p.channel.PublishWithContext(
		ctx,
		p.config.ExchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("producer: failed to publish message: %w", err)
	}
	return nil
}

// Close closes the publisher channel. The shared connection stays open.
func (p *Publisher) Close() error {
	p.Logger.Debug("Producer: Closing...")
	var firstErr error

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.Logger.Error(err, "Error closing channel")
			firstErr = err
		}
		p.channel = nil
	}

	p.Logger.Info("Producer closed")
	return firstErr
}
