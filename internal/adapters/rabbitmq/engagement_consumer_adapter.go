package rabbitmq_adapter

import (
	"context"
	"encoding/json"
	"errors"

	"listing-service/internal/contextkeys"
	"listing-service/internal/contracts"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"listing-service/internal/core/port/usecases_port"
	"listing-service/pkg/rabbitmq/rabbitmq_common"
	"listing-service/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type messageConsumer interface {
	StartConsuming(ctx context.Context) error
	Close() error
}

// EngagementConsumerAdapter moves listing counters from engagement events.
type EngagementConsumerAdapter struct {
	consumer messageConsumer
	useCase  usecases_port.RecordEngagementUseCasePort
	logger   port.LoggerPort
}

func NewEngagementConsumerAdapter(
	cfg rabbitmq_consumer.ConsumerConfig,
	uc usecases_port.RecordEngagementUseCasePort,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*EngagementConsumerAdapter, error) {
	adapter := &EngagementConsumerAdapter{useCase: uc, logger: logger}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_distributing_consumer", "consumer_tag": cfg.ConsumerTag})
	cfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewDistributingConsumer(cfg, adapter.messageHandler, connManager)
	if err != nil {
		return nil, err
	}
	adapter.consumer = consumer
	return adapter, nil
}

// messageHandler returns nil for messages that can never succeed so they are
// acked and dropped; any other error sends the delivery to the retry queue.
func (a *EngagementConsumerAdapter) messageHandler(ctx context.Context, d amqp.Delivery) error {
	traceID, ok := d.Headers["x-trace-id"].(string)
	if !ok || traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"delivery_tag": d.DeliveryTag,
	})

	eventType, _ := d.Headers["event-type"].(string)
	eventVersion, _ := d.Headers["event-version"].(string)
	if eventType == "" {
		eventType = contracts.EventTypeListingEngagement
	}
	if eventVersion == "" {
		eventVersion = contracts.VersionV1
	}

	if err := contracts.ValidateEvent(eventType, eventVersion, d.Body); err != nil {
		msgLogger.Error("Engagement event failed schema validation, dropping message", err, port.Fields{
			"event_type":    eventType,
			"event_version": eventVersion,
		})
		return nil
	}

	var event domain.EngagementEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		msgLogger.Error("Failed to unmarshal engagement event, dropping message", err, nil)
		return nil
	}

	handlerLogger := msgLogger.WithFields(port.Fields{"listing_id": event.ListingID.String()})
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)
	ctx = contextkeys.ContextWithLogger(ctx, handlerLogger)

	if err := a.useCase.Execute(ctx, event); err != nil {
		if errors.Is(err, domain.ErrInvalidEngagement) {
			handlerLogger.Warn("Invalid engagement event dropped", port.Fields{"error": err.Error()})
			return nil
		}
		handlerLogger.Error("Failed to record engagement, message will be retried", err, nil)
		return err
	}

	return nil
}

func (a *EngagementConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

func (a *EngagementConsumerAdapter) Close() error { return a.consumer.Close() }
