// Package services contains server-side business logic: accounts and
// sessions (UserService), sieve results and saved parameters (SieveService)
// and the audit log (HistoryService).
//
// Every operation on an authenticated caller runs under the caller's lock
// and re-reads the user record first, so two requests from one session never
// lose each other's updates.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/logging"
	"github.com/dmitrijs2005/sundaram/internal/server/models"
	"github.com/dmitrijs2005/sundaram/internal/server/repositories/users"
	"github.com/dmitrijs2005/sundaram/internal/signature"
)

// UserService handles registration, login and password changes. Each of them
// issues a new session and thereby invalidates the previous secret.
type UserService struct {
	guard
	history *HistoryService
	logger  logging.Logger
	clock   func() time.Time
	issue   func(now time.Time) (signature.Session, error)
}

func NewUserService(usersRepo users.Repository, history *HistoryService, locks *UserLocks, logger logging.Logger) *UserService {
	return &UserService{
		guard:   guard{users: usersRepo, locks: locks},
		history: history,
		logger:  logger.With("module", "users"),
		clock:   time.Now,
		issue:   signature.Issue,
	}
}

func (s *UserService) rotate(u *models.User, now time.Time) error {
	sess, err := s.issue(now)
	if err != nil {
		return internalError("issue session", err)
	}
	u.SessionSecret = sess.Secret
	u.SessionToken = sess.Token
	return nil
}

// Register creates a user with a fresh session and an empty history log.
// Login and email must be unused.
func (s *UserService) Register(ctx context.Context, login, email, password string) (*models.User, error) {
	if strings.TrimSpace(login) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, common.Detail(common.ErrorBadRequest, "login, email and password are required")
	}

	now := s.clock()
	u := models.NewUser(login, email, password)
	u.CreatedAt = now.UTC()
	if err := s.rotate(u, now); err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return nil, internalError("create user", err)
	}

	s.history.Init(ctx, created.ID)
	s.history.Record(ctx, created.ID, models.OpRegister, "user registered")
	s.logger.Info(ctx, "user registered", "user_id", created.ID, "login", created.Login)

	return created, nil
}

// Authenticate checks credentials and rotates the session.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	found, err := s.users.FindByCredentials(ctx, login, password)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.Detail(common.ErrorUnauthorized, "invalid login or password")
	}
	if err != nil {
		return nil, internalError("find user", err)
	}

	unlock := s.locks.Lock(found.ID)
	defer unlock()

	u, err := s.users.GetByID(ctx, found.ID)
	if err != nil {
		return nil, internalError("load user", err)
	}
	// the password may have changed between lookup and lock
	if u.Login != login || u.Password != password {
		return nil, common.Detail(common.ErrorUnauthorized, "invalid login or password")
	}

	if err := s.rotate(u, s.clock()); err != nil {
		return nil, err
	}
	if err := s.save(ctx, u); err != nil {
		return nil, err
	}

	s.history.Record(ctx, u.ID, models.OpAuthenticate, "successful login")
	return u, nil
}

// ChangePassword replaces the password when oldPassword matches and rotates
// the session. The returned user carries the new session.
func (s *UserService) ChangePassword(ctx context.Context, caller *models.User, oldPassword, newPassword string) (*models.User, error) {
	if newPassword == "" {
		return nil, common.Detail(common.ErrorBadRequest, "new password is required")
	}

	var out *models.User
	err := s.withUser(ctx, caller, func(u *models.User) error {
		if u.Password != oldPassword {
			return common.Detail(common.ErrorBadRequest, "old password does not match")
		}
		u.Password = newPassword
		if err := s.rotate(u, s.clock()); err != nil {
			return err
		}
		if err := s.save(ctx, u); err != nil {
			return err
		}
		s.history.Record(ctx, u.ID, models.OpChangePassword, "password changed")
		out = u
		return nil
	})
	return out, err
}
