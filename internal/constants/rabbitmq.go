package constants

// Exchanges
const (
	ListingEventsExchange = "listing_events"
	EngagementExchange    = "listing_engagement"
)

// Queue names
const (
	QueueListingEngagement = "listing_engagement"
)

// Routing keys
const (
	// RoutingKeyListingSavedPrefix is followed by the listing kind: listing.saved.property
	RoutingKeyListingSavedPrefix = "listing.saved."
	RoutingKeyEngagement         = "listing.engagement.#"
)

const (
	RetryExchange      = "listing_engagement_retry"
	RetryQueue         = "listing_engagement_retry"
	RetryTTLMillis     = 10000
	MaxRetries         = 3
	FinalDLXExchange   = "listing_engagement_final_dlx"
	FinalDLQ           = "listing_engagement_final_dlq"
	FinalDLQRoutingKey = "engagement.dlq.key"
)
