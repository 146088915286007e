package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/entity"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestReconcileOnce_RepublishesStaleJobs(t *testing.T) {
	listingRepo := new(MockListingRepository)
	queue := new(MockQueuePublisher)

	stale := []*entity.Listing{
		{ID: "listing1", ImageName: "aaa.jpeg", Status: entity.StatusProcessing},
		{ID: "listing2", ImageName: "bbb.png", Status: entity.StatusProcessing},
	}
	listingRepo.On("FindStaleProcessing", mock.Anything, mock.AnythingOfType("time.Time"), 100).
		Return(stale, nil).Once()
	queue.On("PublishImageJob", mock.Anything, entity.ImageJob{Filename: "aaa.jpeg", ListingID: "listing1"}).
		Return(nil).Once()
	queue.On("PublishImageJob", mock.Anything, entity.ImageJob{Filename: "bbb.png", ListingID: "listing2"}).
		Return(nil).Once()

	r := NewReconciler(listingRepo, queue, time.Minute, 10*time.Minute, 100, zap.NewNop())
	r.ReconcileOnce(context.Background())

	listingRepo.AssertExpectations(t)
	queue.AssertExpectations(t)
}

func TestReconcileOnce_NothingStale(t *testing.T) {
	listingRepo := new(MockListingRepository)
	queue := new(MockQueuePublisher)

	listingRepo.On("FindStaleProcessing", mock.Anything, mock.AnythingOfType("time.Time"), 100).
		Return([]*entity.Listing{}, nil).Once()

	r := NewReconciler(listingRepo, queue, time.Minute, 10*time.Minute, 100, zap.NewNop())
	r.ReconcileOnce(context.Background())

	queue.AssertNotCalled(t, "PublishImageJob", mock.Anything, mock.Anything)
}

func TestReconcileOnce_ContinuesPastPublishError(t *testing.T) {
	listingRepo := new(MockListingRepository)
	queue := new(MockQueuePublisher)

	stale := []*entity.Listing{
		{ID: "listing1", ImageName: "aaa.jpeg"},
		{ID: "listing2", ImageName: "bbb.png"},
	}
	listingRepo.On("FindStaleProcessing", mock.Anything, mock.AnythingOfType("time.Time"), 100).
		Return(stale, nil).Once()
	queue.On("PublishImageJob", mock.Anything, entity.ImageJob{Filename: "aaa.jpeg", ListingID: "listing1"}).
		Return(errors.New("nats down")).Once()
	queue.On("PublishImageJob", mock.Anything, entity.ImageJob{Filename: "bbb.png", ListingID: "listing2"}).
		Return(nil).Once()

	r := NewReconciler(listingRepo, queue, time.Minute, 10*time.Minute, 100, zap.NewNop())
	r.ReconcileOnce(context.Background())

	queue.AssertExpectations(t)
}
