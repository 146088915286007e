package entity

type EventType string

const (
	EventListingCreated EventType = "listing.created"
	EventListingEdited  EventType = "listing.edited"
	EventListingDeleted EventType = "listing.deleted"
)

// ImageJob is the durable work-queue message consumed by the image resizer.
// Filename is the staged blob name so the resizer can locate its input under
// saved/ (or temp/, if the promote failed).
type ImageJob struct {
	Filename  string `json:"filename"`
	ListingID string `json:"listingId"`
}

// ListingEvent is the best-effort broadcast message fanned out to live
// subscribers (caches, UIs). It is never persisted.
type ListingEvent struct {
	EventID   string    `json:"eventId"`
	Type      EventType `json:"type"`
	ListingID string    `json:"listingId"`
}
