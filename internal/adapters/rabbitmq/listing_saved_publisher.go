package rabbitmq_adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"listing-service/internal/constants"
	"listing-service/internal/contextkeys"
	"listing-service/internal/contracts"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
)

type publisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// ListingSavedPublisherAdapter implements port.ListingEventsPort over RabbitMQ.
type ListingSavedPublisherAdapter struct {
	producer publisher
}

func NewListingSavedPublisherAdapter(producer publisher) (*ListingSavedPublisherAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	return &ListingSavedPublisherAdapter{producer: producer}, nil
}

func (a *ListingSavedPublisherAdapter) PublishListingSaved(ctx context.Context, event domain.ListingSavedEvent) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":  "ListingSavedPublisherAdapter",
		"listing_id": event.ListingID.String(),
		"action":     string(event.Action),
	})

	body, err := json.Marshal(event)
	if err != nil {
		adapterLogger.Error("Failed to marshal event to JSON", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to marshal listing.saved for %s: %w", event.ListingID, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			"event-type":    contracts.EventTypeListingSaved,
			"event-version": contracts.VersionV1,
		},
	}

	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	routingKey := constants.RoutingKeyListingSavedPrefix + string(event.Kind)
	if err := a.producer.Publish(publishCtx, routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish listing.saved event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish listing.saved for %s: %w", event.ListingID, err)
	}

	adapterLogger.Debug("Published listing.saved event", port.Fields{"routing_key": routingKey})
	return nil
}
