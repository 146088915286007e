package repository

import (
	"context"
	"errors"

	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/entity"
)

var ErrAccountNotFound = errors.New("account not found")

// AccountRepository is a read-only view of the user service's collection.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Account, error)
}
