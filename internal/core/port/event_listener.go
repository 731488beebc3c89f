package port

import "context"

// EventListenerPort is an inbound adapter that runs until ctx is cancelled.
type EventListenerPort interface {
	Start(ctx context.Context) error
	Close() error
}
