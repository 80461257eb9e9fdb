package services

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/logging"
	"github.com/dmitrijs2005/sundaram/internal/server/models"
	"github.com/dmitrijs2005/sundaram/internal/server/repositories/history"
	"github.com/dmitrijs2005/sundaram/internal/server/repositories/users"
)

// HistoryService writes and reads the per-user audit log. Writes are best
// effort: failures are logged and never reach the caller.
type HistoryService struct {
	guard
	repo   history.Repository
	logger logging.Logger
	clock  func() time.Time
}

func NewHistoryService(repo history.Repository, usersRepo users.Repository, locks *UserLocks, logger logging.Logger) *HistoryService {
	return &HistoryService{
		guard:  guard{users: usersRepo, locks: locks},
		repo:   repo,
		logger: logger.With("module", "history"),
		clock:  time.Now,
	}
}

// Init creates the empty log of a new user.
func (s *HistoryService) Init(ctx context.Context, userID int64) {
	if err := s.repo.Create(ctx, userID); err != nil {
		s.logger.Warn(ctx, "history init failed", "user_id", userID, "error", err)
	}
}

// Record appends one entry.
func (s *HistoryService) Record(ctx context.Context, userID int64, op, details string) {
	now := s.clock()
	e := models.HistoryEntry{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		UserID:    userID,
		Time:      now.UTC(),
		Operation: op,
		Details:   details,
	}
	if err := s.repo.Append(ctx, e); err != nil {
		s.logger.Warn(ctx, "history append failed", "user_id", userID, "operation", op, "error", err)
	}
}

// List returns the caller's log, oldest first.
func (s *HistoryService) List(ctx context.Context, caller *models.User) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	err := s.withUser(ctx, caller, func(u *models.User) error {
		var err error
		entries, err = s.repo.List(ctx, u.ID)
		if errors.Is(err, common.ErrorNotFound) {
			return common.Detail(common.ErrorNotFound, "history not found")
		}
		if err != nil {
			return internalError("list history", err)
		}
		return nil
	})
	return entries, err
}

// Clear empties the caller's log, creating it when it is missing.
func (s *HistoryService) Clear(ctx context.Context, caller *models.User) error {
	return s.withUser(ctx, caller, func(u *models.User) error {
		if err := s.repo.Clear(ctx, u.ID); err != nil {
			return internalError("clear history", err)
		}
		return nil
	})
}
