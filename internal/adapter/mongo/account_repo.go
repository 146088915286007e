package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/entity"
	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/port/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const usersCollectionName = "users"

// AccountMongoRepository reads the user service's collection. This service
// never writes to it.
type AccountMongoRepository struct {
	db *mongo.Database
}

func NewAccountMongoRepository(client *mongo.Client, dbName string) *AccountMongoRepository {
	return &AccountMongoRepository{
		db: client.Database(dbName),
	}
}

type accountDocument struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"username"`
}

func (r *AccountMongoRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrAccountNotFound
	}

	var doc accountDocument
	err = r.db.Collection(usersCollectionName).FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by id from mongo: %w", err)
	}

	return &entity.Account{
		ID:       doc.ID.Hex(),
		Username: doc.Username,
	}, nil
}
