package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/entity"
	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/port/cache"
	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/port/messaging"
	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/port/repository"
	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/port/storage"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("listing-service/usecase")

var (
	ErrMissingFields    = errors.New("all required fields must be filled out")
	ErrNoEditFields     = errors.New("at least one field must be updated")
	ErrUnauthenticated  = errors.New("user must be logged in")
	ErrListingNotFound  = errors.New("listing does not exist")
	ErrAccountNotFound  = errors.New("account does not exist")
	ErrDuplicateListing = errors.New("cannot create duplicate listing")
	ErrNotOwner         = errors.New("user is not the owner of the listing")
)

type ListingUseCase struct {
	listingRepo repository.ListingRepository
	accountRepo repository.AccountRepository
	images      storage.ImageStore
	queue       messaging.QueuePublisher
	broadcast   messaging.Broadcaster
	cacheRepo   cache.CacheRepository
	logger      *zap.Logger
}

func NewListingUseCase(
	lr repository.ListingRepository,
	ar repository.AccountRepository,
	is storage.ImageStore,
	qp messaging.QueuePublisher,
	bc messaging.Broadcaster,
	cr cache.CacheRepository,
	log *zap.Logger,
) *ListingUseCase {
	return &ListingUseCase{
		listingRepo: lr,
		accountRepo: ar,
		images:      is,
		queue:       qp,
		broadcast:   bc,
		cacheRepo:   cr,
		logger:      log,
	}
}

func listingCacheKey(id string) string {
	return fmt.Sprintf("listing:%s", id)
}

const listingCacheTTL = 5 * time.Minute

type CreateListingInput struct {
	AccountID   string
	ItemName    string
	Type        string
	Description string
	Price       string
	// StagedImageName is the content-derived name the transport staged the
	// upload under in temp/. Empty when no file was received.
	StagedImageName string
}

// CreateListing runs the whole ingestion flow: validate, deduplicate,
// resolve the account, persist, promote the staged blob and notify both
// channels. Every abort after a file was staged discards the temp blob; once
// the listing is persisted the flow never fails, it only logs.
func (uc *ListingUseCase) CreateListing(ctx context.Context, input CreateListingInput) (string, error) {
	ctx, span := tracer.Start(ctx, "ListingUseCase.CreateListing")
	defer span.End()

	if input.ItemName == "" || input.Type == "" || input.Description == "" ||
		input.Price == "" || input.StagedImageName == "" {
		// When no file was staged there is nothing to clean up.
		uc.discardStaged(ctx, input.StagedImageName)
		return "", ErrMissingFields
	}
	if input.AccountID == "" {
		uc.discardStaged(ctx, input.StagedImageName)
		return "", ErrUnauthenticated
	}

	existing, err := uc.listingRepo.FindDuplicate(ctx, input.ItemName, input.Type, input.Description, input.Price)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		uc.logger.Error("Failed to check for duplicate listing", zap.Error(err), zap.String("item_name", input.ItemName))
		uc.discardStaged(ctx, input.StagedImageName)
		return "", fmt.Errorf("ListingUseCase.CreateListing: duplicate check failed: %w", err)
	}
	if existing != nil {
		uc.discardStaged(ctx, input.StagedImageName)
		return "", ErrDuplicateListing
	}

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		uc.discardStaged(ctx, input.StagedImageName)
		if errors.Is(err, repository.ErrAccountNotFound) {
			return "", ErrAccountNotFound
		}
		uc.logger.Error("Failed to look up account", zap.Error(err), zap.String("account_id", input.AccountID))
		return "", fmt.Errorf("ListingUseCase.CreateListing: account lookup failed: %w", err)
	}

	now := time.Now()
	listing := &entity.Listing{
		AccountID:   account.ID,
		Username:    account.Username,
		ItemName:    input.ItemName,
		Type:        input.Type,
		Description: input.Description,
		Price:       input.Price,
		ImageName:   input.StagedImageName,
		Status:      entity.StatusProcessing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	createdID, err := uc.listingRepo.Create(ctx, listing)
	if err != nil {
		uc.discardStaged(ctx, input.StagedImageName)
		if errors.Is(err, repository.ErrDuplicate) {
			// Two identical submissions raced past the application-level
			// check; the unique index caught the second one.
			return "", ErrDuplicateListing
		}
		uc.logger.Error("Failed to create listing in repository", zap.Error(err), zap.String("item_name", input.ItemName))
		return "", fmt.Errorf("ListingUseCase.CreateListing: failed to create listing in repo: %w", err)
	}
	listing.ID = createdID
	span.SetAttributes(attribute.String("listing_id", createdID))

	// The listing exists from here on. Blob promotion and both notification
	// sends are best effort; their failures must never surface to the caller.
	if err := uc.images.Promote(ctx, input.StagedImageName); err != nil {
		uc.logger.Error("Failed to promote staged image, resizer may not find its input",
			zap.Error(err),
			zap.String("listing_id", createdID),
			zap.String("image_name", input.StagedImageName),
		)
	}

	if err := uc.queue.PublishImageJob(ctx, entity.ImageJob{
		Filename:  input.StagedImageName,
		ListingID: createdID,
	}); err != nil {
		uc.logger.Warn("Failed to publish image job to work queue",
			zap.Error(err),
			zap.String("listing_id", createdID),
		)
	}

	uc.broadcastEvent(ctx, entity.EventListingCreated, createdID)
	uc.cacheListing(ctx, listing)

	uc.logger.Info("Listing created",
		zap.String("listing_id", createdID),
		zap.String("account_id", account.ID),
		zap.String("image_name", input.StagedImageName),
	)
	return createdID, nil
}

func (uc *ListingUseCase) GetListingByID(ctx context.Context, id string) (*entity.Listing, error) {
	if uc.cacheRepo != nil {
		key := listingCacheKey(id)
		cachedBytes, err := uc.cacheRepo.Get(ctx, key)
		if err == nil {
			var listing entity.Listing
			if unmarshalErr := json.Unmarshal(cachedBytes, &listing); unmarshalErr == nil {
				return &listing, nil
			}
			if delErr := uc.cacheRepo.Delete(ctx, key); delErr != nil {
				uc.logger.Warn("Failed to delete corrupted cache entry", zap.String("key", key), zap.Error(delErr))
			}
		} else if !errors.Is(err, cache.ErrNotFound) {
			uc.logger.Warn("Failed to get listing from cache", zap.Error(err), zap.String("key", key))
		}
	}

	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		uc.logger.Error("Failed to get listing by ID from repository", zap.Error(err), zap.String("listing_id", id))
		return nil, fmt.Errorf("ListingUseCase.GetListingByID: %w", err)
	}

	uc.cacheListing(ctx, listing)
	return listing, nil
}

// SearchListings serves the view operation. ownerOnly restricts results to
// the caller's own listings and therefore requires a session.
func (uc *ListingUseCase) SearchListings(ctx context.Context, filter entity.ListingFilter, ownerOnly bool, accountID string) ([]*entity.Listing, error) {
	if ownerOnly {
		if accountID == "" {
			return nil, ErrUnauthenticated
		}
		filter.AccountID = accountID
	}

	listings, err := uc.listingRepo.Search(ctx, filter)
	if err != nil {
		uc.logger.Error("Failed to search listings", zap.Error(err), zap.Any("filter", filter))
		return nil, fmt.Errorf("ListingUseCase.SearchListings: %w", err)
	}
	return listings, nil
}

type EditListingInput struct {
	ListingID string
	AccountID string
	Update    entity.ListingUpdate
}

func (uc *ListingUseCase) EditListing(ctx context.Context, input EditListingInput) error {
	if input.ListingID == "" {
		return ErrMissingFields
	}
	if input.Update.Empty() {
		return ErrNoEditFields
	}
	if input.AccountID == "" {
		return ErrUnauthenticated
	}

	listing, err := uc.listingRepo.GetByID(ctx, input.ListingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrListingNotFound
		}
		uc.logger.Error("Failed to get listing for edit", zap.Error(err), zap.String("listing_id", input.ListingID))
		return fmt.Errorf("ListingUseCase.EditListing: %w", err)
	}
	if listing.AccountID != input.AccountID {
		uc.logger.Warn("Edit forbidden: caller is not the owner",
			zap.String("listing_id", input.ListingID),
			zap.String("owner_id", listing.AccountID),
			zap.String("caller_id", input.AccountID),
		)
		return ErrNotOwner
	}

	if err := uc.listingRepo.Update(ctx, input.ListingID, input.Update); err != nil {
		uc.logger.Error("Failed to update listing in repository", zap.Error(err), zap.String("listing_id", input.ListingID))
		return fmt.Errorf("ListingUseCase.EditListing: failed to update listing in repo: %w", err)
	}

	uc.invalidateCache(ctx, input.ListingID)
	uc.broadcastEvent(ctx, entity.EventListingEdited, input.ListingID)
	return nil
}

func (uc *ListingUseCase) DeleteListing(ctx context.Context, listingID, accountID string) error {
	if listingID == "" {
		return ErrMissingFields
	}
	if accountID == "" {
		return ErrUnauthenticated
	}

	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrListingNotFound
		}
		uc.logger.Error("Failed to get listing for delete", zap.Error(err), zap.String("listing_id", listingID))
		return fmt.Errorf("ListingUseCase.DeleteListing: %w", err)
	}
	if listing.AccountID != accountID {
		uc.logger.Warn("Delete forbidden: caller is not the owner",
			zap.String("listing_id", listingID),
			zap.String("owner_id", listing.AccountID),
			zap.String("caller_id", accountID),
		)
		return ErrNotOwner
	}

	if err := uc.listingRepo.Delete(ctx, listingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrListingNotFound
		}
		uc.logger.Error("Failed to delete listing from repository", zap.Error(err), zap.String("listing_id", listingID))
		return fmt.Errorf("ListingUseCase.DeleteListing: failed to delete listing from repo: %w", err)
	}

	uc.invalidateCache(ctx, listingID)
	uc.broadcastEvent(ctx, entity.EventListingDeleted, listingID)
	return nil
}

func (uc *ListingUseCase) discardStaged(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := uc.images.Discard(ctx, name); err != nil {
		uc.logger.Warn("Failed to discard staged image", zap.Error(err), zap.String("image_name", name))
	}
}

func (uc *ListingUseCase) broadcastEvent(ctx context.Context, eventType entity.EventType, listingID string) {
	if uc.broadcast == nil {
		return
	}
	event := entity.ListingEvent{
		EventID:   uuid.New().String(),
		Type:      eventType,
		ListingID: listingID,
	}
	if err := uc.broadcast.BroadcastListingEvent(ctx, event); err != nil {
		uc.logger.Warn("Failed to broadcast listing event",
			zap.Error(err),
			zap.String("event_type", string(eventType)),
			zap.String("listing_id", listingID),
		)
	}
}

func (uc *ListingUseCase) cacheListing(ctx context.Context, listing *entity.Listing) {
	if uc.cacheRepo == nil || listing == nil {
		return
	}
	listingBytes, err := json.Marshal(listing)
	if err != nil {
		uc.logger.Warn("Failed to marshal listing for caching", zap.Error(err), zap.String("listing_id", listing.ID))
		return
	}
	key := listingCacheKey(listing.ID)
	if err := uc.cacheRepo.Set(ctx, key, listingBytes, listingCacheTTL); err != nil {
		uc.logger.Warn("Failed to set listing in cache", zap.Error(err), zap.String("key", key))
	}
}

func (uc *ListingUseCase) invalidateCache(ctx context.Context, id string) {
	if uc.cacheRepo == nil {
		return
	}
	key := listingCacheKey(id)
	if err := uc.cacheRepo.Delete(ctx, key); err != nil {
		uc.logger.Warn("Failed to delete listing from cache", zap.Error(err), zap.String("key", key))
	}
}
