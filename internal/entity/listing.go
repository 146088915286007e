package entity

import "time"

type ListingStatus string

const (
	// StatusProcessing is the only status this service ever writes. The
	// image pipeline flips a listing to ready or failed once the resized
	// variants exist (or could not be produced).
	StatusProcessing ListingStatus = "processing"
	StatusReady      ListingStatus = "ready"
	StatusFailed     ListingStatus = "failed"
)

type Listing struct {
	ID          string
	AccountID   string
	Username    string
	ItemName    string
	Type        string
	Description string
	Price       string
	ImageName   string
	Status      ListingStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Account is owned by the user service; this service only reads it to verify
// that a session's account exists and to snapshot the username onto a new
// listing.
type Account struct {
	ID       string
	Username string
}

// ListingFilter is the view-side filter. Zero-value fields are ignored.
type ListingFilter struct {
	ID        string
	Type      string
	Username  string
	AccountID string
}

// ListingUpdate carries a partial edit. Nil fields are left untouched.
type ListingUpdate struct {
	ItemName    *string
	Type        *string
	Description *string
	Price       *string
}

func (u ListingUpdate) Empty() bool {
	return u.ItemName == nil && u.Type == nil && u.Description == nil && u.Price == nil
}
