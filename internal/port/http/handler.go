package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/entity"
	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/platform/metrics"
	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/port/http/middleware"
	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/usecase"
	"go.uber.org/zap"
)

const (
	responseTypeCreate = "/api/listing/create"
	responseTypeView   = "/api/listing/view"
	responseTypeEdit   = "/api/listing/edit"
	responseTypeDelete = "/api/listing/delete"
	responseTypeImage  = "/api/listing/image"
)

type ListingService interface {
	CreateListing(ctx context.Context, input usecase.CreateListingInput) (string, error)
	GetListingByID(ctx context.Context, id string) (*entity.Listing, error)
	SearchListings(ctx context.Context, filter entity.ListingFilter, ownerOnly bool, accountID string) ([]*entity.Listing, error)
	EditListing(ctx context.Context, input usecase.EditListingInput) error
	DeleteListing(ctx context.Context, listingID, accountID string) error
}

type ImageService interface {
	StageUpload(ctx context.Context, data []byte, originalFilename, contentType, itemName, listingType, description, price string) (string, error)
	GetVariant(ctx context.Context, imageName string, size int) (io.ReadCloser, string, error)
}

type Handler struct {
	listings       ListingService
	images         ImageService
	metrics        *metrics.Manager
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewHandler(listings ListingService, images ImageService, m *metrics.Manager, maxUploadBytes int64, logger *zap.Logger) *Handler {
	return &Handler{
		listings:       listings,
		images:         images,
		metrics:        m,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

type listingResponse struct {
	ListingID   string `json:"listingId"`
	AccountID   string `json:"accountId"`
	Username    string `json:"username"`
	ItemName    string `json:"itemName"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ImageName   string `json:"imageName"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toListingResponse(l *entity.Listing) listingResponse {
	return listingResponse{
		ListingID:   l.ID,
		AccountID:   l.AccountID,
		Username:    l.Username,
		ItemName:    l.ItemName,
		Type:        l.Type,
		Description: l.Description,
		Price:       l.Price,
		ImageName:   l.ImageName,
		Status:      string(l.Status),
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   l.UpdatedAt.Format(time.RFC3339),
	}
}

// HandleCreate receives the multipart submission. The file, when present, is
// staged into temp/ before the coordinator runs, so any later abort can
// clean it up; the coordinator itself enforces the full check order.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.logger.Warn("Failed to parse multipart form", zap.Error(err))
		h.fail(w, responseTypeCreate, "All required fields must be filled out")
		return
	}

	itemName := r.FormValue("itemName")
	listingType := r.FormValue("type")
	description := r.FormValue("description")
	price := r.FormValue("price")

	var stagedName string
	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			h.logger.Error("Failed to read uploaded image", zap.Error(readErr))
			h.fail(w, responseTypeCreate, readErr.Error())
			return
		}
		contentType := header.Header.Get("Content-Type")
		stagedName, err = h.images.StageUpload(ctx, data, header.Filename, contentType, itemName, listingType, description, price)
		if err != nil {
			h.logger.Error("Failed to stage uploaded image", zap.Error(err))
			h.fail(w, responseTypeCreate, err.Error())
			return
		}
	}

	listingID, err := h.listings.CreateListing(ctx, usecase.CreateListingInput{
		AccountID:       middleware.AccountIDFromContext(ctx),
		ItemName:        itemName,
		Type:            listingType,
		Description:     description,
		Price:           price,
		StagedImageName: stagedName,
	})
	if err != nil {
		h.failWithError(w, responseTypeCreate, err, "")
		return
	}

	h.metrics.ListingsCreatedTotal.Inc()
	writeSuccess(w, responseTypeCreate, map[string]string{"listingId": listingID})
}

func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filter := entity.ListingFilter{
		ID:       query.Get("listingId"),
		Type:     query.Get("type"),
		Username: query.Get("username"),
	}
	myListings := query.Get("myListings")
	ownerOnly := myListings == "true" || myListings == "True"

	var listings []*entity.Listing
	var err error
	if filter.ID != "" && filter.Type == "" && filter.Username == "" && !ownerOnly {
		// A pure id lookup goes through the cache-aside read; an unknown
		// id is an empty result, not an error.
		listing, getErr := h.listings.GetListingByID(ctx, filter.ID)
		switch {
		case getErr == nil:
			listings = []*entity.Listing{listing}
		case errors.Is(getErr, usecase.ErrListingNotFound):
			listings = []*entity.Listing{}
		default:
			err = getErr
		}
	} else {
		listings, err = h.listings.SearchListings(ctx, filter, ownerOnly, middleware.AccountIDFromContext(ctx))
	}
	if err != nil {
		h.failWithError(w, responseTypeView, err, "")
		return
	}

	results := make([]listingResponse, len(listings))
	for i, l := range listings {
		results[i] = toListingResponse(l)
	}
	writeSuccess(w, responseTypeView, map[string]interface{}{"listings": results})
}

type editRequest struct {
	ListingID   string `json:"listingId"`
	ItemName    string `json:"itemName"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, responseTypeEdit, "All required fields must be filled out")
		return
	}

	update := entity.ListingUpdate{}
	if req.ItemName != "" {
		update.ItemName = &req.ItemName
	}
	if req.Type != "" {
		update.Type = &req.Type
	}
	if req.Description != "" {
		update.Description = &req.Description
	}
	if req.Price != "" {
		update.Price = &req.Price
	}

	err := h.listings.EditListing(ctx, usecase.EditListingInput{
		ListingID: req.ListingID,
		AccountID: middleware.AccountIDFromContext(ctx),
		Update:    update,
	})
	if err != nil {
		h.failWithError(w, responseTypeEdit, err, "You must be the owner of a listing to edit")
		return
	}

	h.metrics.ListingsEditedTotal.Inc()
	writeSuccess(w, responseTypeEdit, map[string]string{"listingId": req.ListingID})
}

type deleteRequest struct {
	ListingID string `json:"listingId"`
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, responseTypeDelete, "All required fields must be filled out")
		return
	}

	err := h.listings.DeleteListing(ctx, req.ListingID, middleware.AccountIDFromContext(ctx))
	if err != nil {
		h.failWithError(w, responseTypeDelete, err, "You must be the owner of a listing to delete")
		return
	}

	h.metrics.ListingsDeletedTotal.Inc()
	writeSuccess(w, responseTypeDelete, map[string]string{"listingId": req.ListingID})
}

func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	imageName := query.Get("imageName")
	sizeParam := query.Get("size")
	if imageName == "" || sizeParam == "" {
		h.fail(w, responseTypeImage, "All required fields must be filled out")
		return
	}

	size, err := strconv.Atoi(sizeParam)
	if err != nil {
		h.fail(w, responseTypeImage, "Request image size must be 100 or 500")
		return
	}

	reader, contentType, err := h.images.GetVariant(ctx, imageName, size)
	if err != nil {
		h.failWithError(w, responseTypeImage, err, "")
		return
	}
	defer reader.Close()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error("Failed to stream image variant",
			zap.Error(err),
			zap.String("image_name", imageName),
			zap.Int("size", size),
		)
	}
}

func (h *Handler) fail(w http.ResponseWriter, responseType, reason string) {
	h.metrics.RequestErrorsTotal.WithLabelValues(responseType, reason).Inc()
	writeFailure(w, responseType, reason)
}

// failWithError maps usecase errors onto the reason strings the original
// front end expects; anything unrecognized is forwarded verbatim.
func (h *Handler) failWithError(w http.ResponseWriter, responseType string, err error, notOwnerReason string) {
	var reason string
	switch {
	case errors.Is(err, usecase.ErrMissingFields), errors.Is(err, usecase.ErrMissingImageName):
		reason = "All required fields must be filled out"
	case errors.Is(err, usecase.ErrNoEditFields):
		reason = "At least one field must be updated"
	case errors.Is(err, usecase.ErrUnauthenticated):
		reason = "User must be logged in"
	case errors.Is(err, usecase.ErrListingNotFound):
		reason = "Listing does not exist"
	case errors.Is(err, usecase.ErrAccountNotFound):
		reason = "Account does not exist"
	case errors.Is(err, usecase.ErrDuplicateListing):
		reason = "Cannot create duplicate listing"
	case errors.Is(err, usecase.ErrNotOwner):
		reason = notOwnerReason
	case errors.Is(err, usecase.ErrInvalidSize):
		reason = "Request image size must be 100 or 500"
	case errors.Is(err, usecase.ErrVariantNotReady):
		reason = "Requested image size has not been processed"
	default:
		h.logger.Error("Request failed with internal error",
			zap.String("response_type", responseType),
			zap.Error(err),
		)
		reason = err.Error()
	}
	h.fail(w, responseType, reason)
}
