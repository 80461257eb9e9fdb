package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/logging"
	"github.com/dmitrijs2005/sundaram/internal/server/metrics"
	"github.com/dmitrijs2005/sundaram/internal/server/models"
	"github.com/dmitrijs2005/sundaram/internal/server/repositories/users"
	"github.com/dmitrijs2005/sundaram/internal/sieve"
)

// SieveService computes primes for a caller and manages the caller's current
// result and saved parameters.
type SieveService struct {
	guard
	history  *HistoryService
	maxLimit int
	metrics  *metrics.Metrics
	logger   logging.Logger
	clock    func() time.Time
}

func NewSieveService(usersRepo users.Repository, history *HistoryService, locks *UserLocks, maxLimit int,
	m *metrics.Metrics, logger logging.Logger) *SieveService {
	return &SieveService{
		guard:    guard{users: usersRepo, locks: locks},
		history:  history,
		maxLimit: maxLimit,
		metrics:  m,
		logger:   logger.With("module", "sieve"),
		clock:    time.Now,
	}
}

// Generate computes the primes up to limit and stores them as the caller's
// current result.
func (s *SieveService) Generate(ctx context.Context, caller *models.User, limit int) ([]int, error) {
	if limit < 1 {
		return nil, common.Detail(common.ErrorBadRequest, "limit must be a positive integer")
	}
	if limit > s.maxLimit {
		return nil, common.Detail(common.ErrorBadRequest, "limit must not exceed %d", s.maxLimit)
	}

	primes := sieve.PrimesUpTo(limit)

	err := s.withUser(ctx, caller, func(u *models.User) error {
		u.SetResult(limit, primes)
		if err := s.save(ctx, u); err != nil {
			return err
		}
		s.history.Record(ctx, u.ID, models.OpGenerate, fmt.Sprintf("generated %d primes up to %d", len(primes), limit))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddPrimes(len(primes))
	return primes, nil
}

// Current returns the caller's current result. An empty result is NotFound.
func (s *SieveService) Current(ctx context.Context, caller *models.User) ([]int, models.SieveParams, error) {
	var (
		primes []int
		params models.SieveParams
	)
	err := s.withUser(ctx, caller, func(u *models.User) error {
		if !u.HasResult() {
			return common.Detail(common.ErrorNotFound, "no current result")
		}
		primes, params = u.CurrentPrimes, u.CurrentParams
		s.history.Record(ctx, u.ID, models.OpGetCurrent, fmt.Sprintf("retrieved %d primes", len(primes)))
		return nil
	})
	return primes, params, err
}

// DeleteCurrent drops the caller's current result. It succeeds when there is
// none.
func (s *SieveService) DeleteCurrent(ctx context.Context, caller *models.User) error {
	return s.withUser(ctx, caller, func(u *models.User) error {
		u.ClearResult()
		if err := s.save(ctx, u); err != nil {
			return err
		}
		s.history.Record(ctx, u.ID, models.OpDeleteCurrent, "result deleted")
		return nil
	})
}

// SaveParams stores limit under name and returns the number of saved entries.
func (s *SieveService) SaveParams(ctx context.Context, caller *models.User, name string, limit int) (int, error) {
	if strings.TrimSpace(name) == "" {
		return 0, common.Detail(common.ErrorBadRequest, "name is required")
	}

	var total int
	err := s.withUser(ctx, caller, func(u *models.User) error {
		if u.SavedIndex(name) >= 0 {
			return common.Detail(common.ErrorConflict, "params named %q already exist", name)
		}
		u.SavedParams = append(u.SavedParams, models.SavedParams{
			Name:      name,
			Limit:     limit,
			CreatedAt: s.clock().UTC(),
		})
		if err := s.save(ctx, u); err != nil {
			return err
		}
		s.history.Record(ctx, u.ID, models.OpSaveParams, fmt.Sprintf("saved params '%s' (limit=%d)", name, limit))
		total = len(u.SavedParams)
		return nil
	})
	return total, err
}

// ListSaved returns the caller's saved parameters in insertion order.
func (s *SieveService) ListSaved(ctx context.Context, caller *models.User) ([]models.SavedParams, error) {
	var out []models.SavedParams
	err := s.withUser(ctx, caller, func(u *models.User) error {
		out = u.SavedParams
		return nil
	})
	return out, err
}

// DeleteSaved removes the entry called name and returns how many remain.
func (s *SieveService) DeleteSaved(ctx context.Context, caller *models.User, name string) (int, error) {
	var remaining int
	err := s.withUser(ctx, caller, func(u *models.User) error {
		if !u.RemoveSaved(name) {
			return common.Detail(common.ErrorNotFound, "params named %q not found", name)
		}
		if err := s.save(ctx, u); err != nil {
			return err
		}
		s.history.Record(ctx, u.ID, models.OpDeleteParams, fmt.Sprintf("deleted params '%s'", name))
		remaining = len(u.SavedParams)
		return nil
	})
	return remaining, err
}
