package rabbitmq_consumer

import (
	"context"
	"fmt"
	"time"

	"listing-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler processes one delivery. The consumer acks on nil and
// routes the message through the retry topology otherwise.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

// DistributingConsumer runs every delivery in its own goroutine.
type DistributingConsumer struct {
	baseConsumer *baseConsumer
	handler      MessageHandler
}

func NewDistributingConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*DistributingConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("distributing Consumer: message handler is required")
	}

	bc, err := newBaseConsumer(cfg, connManager)
	if err != nil {
		return nil, fmt.Errorf("distributing Consumer: %w", err)
	}

	return &DistributingConsumer{baseConsumer: bc, handler: handler}, nil
}

// StartConsuming blocks until ctx is cancelled or the connection closes.
func (c *DistributingConsumer) StartConsuming(ctx context.Context) error {
	bc := c.baseConsumer
	if bc.channel == nil || bc.connection == nil || bc.connection.IsClosed() {
		return fmt.Errorf("distributing Consumer: not connected")
	}

	msgs, err := bc.channel.Consume(
		bc.actualQueueName,
		bc.config.ConsumerTag,
		false, // auto-ack
		bc.config.ExclusiveConsumer,
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("distributing Consumer %s: failed to register a consumer on queue '%s': %w", bc.config.ConsumerTag, bc.actualQueueName, err)
	}

	bc.Logger.Info("[*] Waiting for messages on queue", "queue_name", bc.actualQueueName)

	go c.dispatch(ctx, msgs)

	notifyClose := make(chan *amqp.Error, 1)
	bc.connection.NotifyClose(notifyClose)

	select {
	case <-ctx.Done():
		bc.Logger.Info("Context cancelled. Shutting down consumer.", "consumer_tag", bc.config.ConsumerTag)
		return nil
	case amqpErr := <-notifyClose:
		bc.Logger.Error(amqpErr, "Connection closed for consumer.", "consumer_tag", bc.config.ConsumerTag)
		if amqpErr == nil {
			return fmt.Errorf("distributing Consumer: connection closed")
		}
		return amqpErr
	}
}

func (c *DistributingConsumer) dispatch(ctx context.Context, msgs <-chan amqp.Delivery) {
	bc := c.baseConsumer
	for {
		// check cancellation first so no new worker starts after shutdown began
		select {
		case <-ctx.Done():
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				bc.Logger.Info("Deliveries channel closed by RabbitMQ", "consumer_tag", bc.config.ConsumerTag)
				return
			}
			bc.wg.Add(1)
			go func(delivery amqp.Delivery) {
				defer bc.wg.Done()
				c.handleDelivery(ctx, delivery)
			}(d)
		}
	}
}

func (c *DistributingConsumer) handleDelivery(ctx context.Context, delivery amqp.Delivery) {
	bc := c.baseConsumer
	tag := bc.config.ConsumerTag

	processErr := c.handler(ctx, delivery)
	if processErr == nil {
		_ = delivery.Ack(false)
		bc.Logger.Debug("[+] Message Ack'd", "consumer_tag", tag, "delivery_tag", delivery.DeliveryTag)
		return
	}

	bc.Logger.Error(processErr, "Handler error for message", "consumer_tag", tag, "delivery_tag", delivery.DeliveryTag)

	if !bc.config.EnableRetryMechanism {
		_ = delivery.Nack(false, false)
		return
	}

	deaths := deathCount(delivery, bc.actualQueueName)
	if deaths < int64(bc.config.MaxRetries) {
		bc.Logger.Info("Retrying message", "consumer_tag", tag, "delivery_tag", delivery.DeliveryTag, "death_count", deaths)
		_ = delivery.Nack(false, false)
		return
	}

	bc.Logger.Warn("Max retries reached, publishing to final DLX", "consumer_tag", tag, "delivery_tag", delivery.DeliveryTag)
	err := bc.finalDlxPublisher.Publish(context.Background(), bc.config.FinalDLQRoutingKey, amqp.Publishing{
		ContentType:  delivery.ContentType,
		Body:         delivery.Body,
		Headers:      delivery.Headers,
		Timestamp:    time.Now(),
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		bc.Logger.Error(err, "Failed to publish to final DLX, sending through retry loop again", "consumer_tag", tag)
		_ = delivery.Nack(false, false)
		return
	}
	_ = delivery.Ack(false)
}

// Close waits for running handlers and closes the consumer channel.
func (c *DistributingConsumer) Close() error {
	c.baseConsumer.Logger.Info("Closing consumer")
	return c.baseConsumer.Close()
}
