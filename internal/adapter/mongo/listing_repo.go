package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/entity"
	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/port/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const listingsCollectionName = "listings"

type ListingMongoRepository struct {
	db *mongo.Database
}

func NewListingMongoRepository(client *mongo.Client, dbName string) *ListingMongoRepository {
	return &ListingMongoRepository{
		db: client.Database(dbName),
	}
}

type listingDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	AccountID   string             `bson:"account_id"`
	Username    string             `bson:"username"`
	ItemName    string             `bson:"item_name"`
	Type        string             `bson:"type"`
	Description string             `bson:"description"`
	Price       string             `bson:"price"`
	ImageName   string             `bson:"image_name"`
	Status      string             `bson:"status"`
	CreatedAt   primitive.DateTime `bson:"created_at"`
	UpdatedAt   primitive.DateTime `bson:"updated_at"`
}

func toListingDocument(l *entity.Listing) (*listingDocument, error) {
	doc := &listingDocument{
		AccountID:   l.AccountID,
		Username:    l.Username,
		ItemName:    l.ItemName,
		Type:        l.Type,
		Description: l.Description,
		Price:       l.Price,
		ImageName:   l.ImageName,
		Status:      string(l.Status),
		CreatedAt:   primitive.NewDateTimeFromTime(l.CreatedAt),
		UpdatedAt:   primitive.NewDateTimeFromTime(l.UpdatedAt),
	}
	if l.ID != "" {
		objID, err := primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid listing ID format: %w", err)
		}
		doc.ID = objID
	}
	return doc, nil
}

func toListingEntity(doc *listingDocument) *entity.Listing {
	return &entity.Listing{
		ID:          doc.ID.Hex(),
		AccountID:   doc.AccountID,
		Username:    doc.Username,
		ItemName:    doc.ItemName,
		Type:        doc.Type,
		Description: doc.Description,
		Price:       doc.Price,
		ImageName:   doc.ImageName,
		Status:      entity.ListingStatus(doc.Status),
		CreatedAt:   doc.CreatedAt.Time(),
		UpdatedAt:   doc.UpdatedAt.Time(),
	}
}

// EnsureIndexes creates the unique compound index over the four defining
// fields. With it in place, two identical submissions racing past the
// application-level duplicate check still produce exactly one listing; the
// loser sees a duplicate-key error.
func (r *ListingMongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(listingsCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "item_name", Value: 1},
			{Key: "type", Value: 1},
			{Key: "description", Value: 1},
			{Key: "price", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("unique_listing_fields"),
	})
	if err != nil {
		return fmt.Errorf("failed to create unique listing index: %w", err)
	}
	return nil
}

func (r *ListingMongoRepository) Create(ctx context.Context, listing *entity.Listing) (string, error) {
	doc, err := toListingDocument(listing)
	if err != nil {
		return "", err
	}

	res, err := r.db.Collection(listingsCollectionName).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", repository.ErrDuplicate
		}
		return "", fmt.Errorf("failed to create listing in mongo: %w", err)
	}

	insertedID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted_id to ObjectID")
	}
	return insertedID.Hex(), nil
}

func (r *ListingMongoRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	var doc listingDocument
	err = r.db.Collection(listingsCollectionName).FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing by id from mongo: %w", err)
	}
	return toListingEntity(&doc), nil
}

func (r *ListingMongoRepository) FindDuplicate(ctx context.Context, itemName, listingType, description, price string) (*entity.Listing, error) {
	matcher := bson.M{
		"item_name":   itemName,
		"type":        listingType,
		"description": description,
		"price":       price,
	}

	var doc listingDocument
	err := r.db.Collection(listingsCollectionName).FindOne(ctx, matcher).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to check for duplicate listing in mongo: %w", err)
	}
	return toListingEntity(&doc), nil
}

func (r *ListingMongoRepository) Search(ctx context.Context, filter entity.ListingFilter) ([]*entity.Listing, error) {
	matcher := bson.M{}
	if filter.ID != "" {
		objID, err := primitive.ObjectIDFromHex(filter.ID)
		if err != nil {
			// An unparseable id can never match a document.
			return []*entity.Listing{}, nil
		}
		matcher["_id"] = objID
	}
	if filter.Type != "" {
		matcher["type"] = filter.Type
	}
	if filter.Username != "" {
		matcher["username"] = filter.Username
	}
	if filter.AccountID != "" {
		matcher["account_id"] = filter.AccountID
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.db.Collection(listingsCollectionName).Find(ctx, matcher, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings in mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []listingDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listing search results from mongo: %w", err)
	}

	listings := make([]*entity.Listing, len(docs))
	for i, doc := range docs {
		listings[i] = toListingEntity(&doc)
	}
	return listings, nil
}

func (r *ListingMongoRepository) Update(ctx context.Context, id string, update entity.ListingUpdate) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}

	setFields := bson.M{"updated_at": primitive.NewDateTimeFromTime(time.Now())}
	if update.ItemName != nil {
		setFields["item_name"] = *update.ItemName
	}
	if update.Type != nil {
		setFields["type"] = *update.Type
	}
	if update.Description != nil {
		setFields["description"] = *update.Description
	}
	if update.Price != nil {
		setFields["price"] = *update.Price
	}

	res, err := r.db.Collection(listingsCollectionName).UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": setFields})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to update listing in mongo: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ListingMongoRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}

	res, err := r.db.Collection(listingsCollectionName).DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete listing from mongo: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ListingMongoRepository) FindStaleProcessing(ctx context.Context, olderThan time.Time, limit int) ([]*entity.Listing, error) {
	matcher := bson.M{
		"status":     string(entity.StatusProcessing),
		"created_at": bson.M{"$lt": primitive.NewDateTimeFromTime(olderThan)},
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.db.Collection(listingsCollectionName).Find(ctx, matcher, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find stale processing listings in mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []listingDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode stale processing listings from mongo: %w", err)
	}

	listings := make([]*entity.Listing, len(docs))
	for i, doc := range docs {
		listings[i] = toListingEntity(&doc)
	}
	return listings, nil
}
