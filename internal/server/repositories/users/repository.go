// Package users persists account records.
package users

import (
	"context"

	"github.com/dmitrijs2005/sundaram/internal/server/models"
)

// Repository is the user store. Implementations keep login and email unique
// (Create returns common.ErrorConflict) and return common.ErrorNotFound for
// missing records. Returned users are copies owned by the caller.
type Repository interface {
	// Create assigns a fresh id and persists the user.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// FindByCredentials matches login and password by exact equality.
	FindByCredentials(ctx context.Context, login, password string) (*models.User, error)
	// FindBySessionToken looks a user up by its current session token.
	FindBySessionToken(ctx context.Context, token string) (*models.User, error)
	// Save overwrites the stored record with the same id.
	Save(ctx context.Context, user *models.User) error
	// LoadAll returns every user ordered by id.
	LoadAll(ctx context.Context) ([]*models.User, error)
}
