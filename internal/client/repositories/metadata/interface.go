// Package metadata stores the CLI session in the local key/value table.
package metadata

import (
	"context"

	"github.com/dmitrijs2005/sundaram/internal/client/models"
)

type Repository interface {
	// LoadSession returns nil, nil when no session is stored.
	LoadSession(ctx context.Context) (*models.Session, error)
	SaveSession(ctx context.Context, s *models.Session) error
	ClearSession(ctx context.Context) error
}
