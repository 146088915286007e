package repository

import (
	"context"
	"errors"
	"time"

	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/entity"
)

var (
	ErrNotFound = errors.New("listing not found")
	// ErrDuplicate is returned by Create when the unique index over
	// (item_name, type, description, price) rejects the insert.
	ErrDuplicate = errors.New("duplicate listing")
)

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) (string, error)
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	FindDuplicate(ctx context.Context, itemName, listingType, description, price string) (*entity.Listing, error)
	Search(ctx context.Context, filter entity.ListingFilter) ([]*entity.Listing, error)
	Update(ctx context.Context, id string, update entity.ListingUpdate) error
	Delete(ctx context.Context, id string) error
	// FindStaleProcessing returns listings still in processing status that
	// were created before the cutoff. Used by the reconciler to re-derive
	// queue events that may never have been delivered.
	FindStaleProcessing(ctx context.Context, olderThan time.Time, limit int) ([]*entity.Listing, error)
}
