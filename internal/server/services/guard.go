package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/server/models"
	"github.com/dmitrijs2005/sundaram/internal/server/repositories/users"
)

// guard runs read-modify-write sequences for an authenticated caller under
// the caller's lock.
type guard struct {
	users users.Repository
	locks *UserLocks
}

// withUser locks caller.ID, reloads the record and checks that the session
// the caller authenticated with is still current, then calls fn with the
// fresh record. fn may save the user; the lock is held until fn returns.
func (g *guard) withUser(ctx context.Context, caller *models.User, fn func(u *models.User) error) error {
	unlock := g.locks.Lock(caller.ID)
	defer unlock()

	u, err := g.users.GetByID(ctx, caller.ID)
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrInvalidSignature
	}
	if err != nil {
		return internalError("load user", err)
	}
	if u.SessionSecret != caller.SessionSecret {
		return common.ErrInvalidSignature
	}

	return fn(u)
}

func (g *guard) save(ctx context.Context, u *models.User) error {
	if err := g.users.Save(ctx, u); err != nil {
		return internalError("save user", err)
	}
	return nil
}

// internalError keeps domain sentinels and marks everything else internal.
func internalError(op string, err error) error {
	for _, sentinel := range []error{
		common.ErrorUnauthorized, common.ErrorNotFound, common.ErrorConflict, common.ErrorBadRequest, common.ErrorInternal,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %w", common.ErrorInternal, op, err)
}
