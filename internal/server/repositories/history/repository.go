// Package history persists per-user audit logs.
//
// A log has a lifecycle separate from the user record: it is created
// explicitly, entries are appended to it, and it can be cleared but never
// partially deleted. Appending to a log that was never created is a silent
// no-op.
package history

import (
	"context"

	"github.com/dmitrijs2005/sundaram/internal/server/models"
)

type Repository interface {
	// Create initializes an empty log. It is a no-op if the log exists.
	Create(ctx context.Context, userID int64) error
	Append(ctx context.Context, entry models.HistoryEntry) error
	// List returns entries oldest first, or common.ErrorNotFound when the
	// log does not exist.
	List(ctx context.Context, userID int64) ([]models.HistoryEntry, error)
	// Clear truncates the log. A missing log is created, so List succeeds
	// afterwards.
	Clear(ctx context.Context, userID int64) error
}
