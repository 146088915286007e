package messaging

import (
	"context"

	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/entity"
)

// QueuePublisher pushes image jobs onto the durable work queue consumed by
// the resize pipeline. Delivery is at-least-once and owned by the transport;
// this service only guarantees the publish is attempted after the listing
// has been persisted.
type QueuePublisher interface {
	PublishImageJob(ctx context.Context, job entity.ImageJob) error
}

// Broadcaster fans listing events out to whoever is listening right now.
// Subscribers absent at publish time simply miss the event.
type Broadcaster interface {
	BroadcastListingEvent(ctx context.Context, event entity.ListingEvent) error
}
