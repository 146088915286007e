package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/entity"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Broadcaster fans listing events out over a Redis pub/sub channel. There is
// no persistence: whoever is subscribed at publish time gets the event,
// everyone else misses it.
type Broadcaster struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

func NewBroadcaster(client *redis.Client, channel string, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

func (b *Broadcaster) BroadcastListingEvent(ctx context.Context, event entity.ListingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal listing event: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish listing event to channel %s: %w", b.channel, err)
	}
	b.logger.Debug("Broadcast listing event",
		zap.String("channel", b.channel),
		zap.String("event_type", string(event.Type)),
		zap.String("listing_id", event.ListingID),
	)
	return nil
}
