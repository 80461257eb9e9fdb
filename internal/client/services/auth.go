// Package services contains application services for the Sundaram client.
// AuthService owns the session: it logs in, keeps the signing credentials
// of the API client in sync and persists them in the local database.
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/sundaram/internal/client/client"
	"github.com/dmitrijs2005/sundaram/internal/client/models"
	"github.com/dmitrijs2005/sundaram/internal/client/repositories/metadata"
)

// AuthService defines session operations for the CLI.
//
// Register and Login start a session, ChangePassword replaces it (the server
// issues a new secret), Logout forgets it locally. Restore reinstates the
// session saved by a previous run.
type AuthService interface {
	Restore(ctx context.Context) (*models.Session, error)
	Register(ctx context.Context, login, email string, password []byte) error
	Login(ctx context.Context, login string, password []byte) error
	ChangePassword(ctx context.Context, oldPassword, newPassword []byte) error
	Logout(ctx context.Context) error
	CurrentLogin() string
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	repo   metadata.Repository

	mu    sync.RWMutex
	login string
}

func NewAuthService(c client.Client, repo metadata.Repository) AuthService {
	return &authService{client: c, repo: repo}
}

func (a *authService) start(ctx context.Context, login, secret, token string) error {
	a.client.SetSession(secret, token)

	a.mu.Lock()
	a.login = login
	a.mu.Unlock()

	if err := a.repo.SaveSession(ctx, &models.Session{Login: login, Secret: secret, Token: token}); err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}
	return nil
}

func (a *authService) Restore(ctx context.Context) (*models.Session, error) {
	s, err := a.repo.LoadSession(ctx)
	if err != nil || s == nil {
		return nil, err
	}
	a.client.SetSession(s.Secret, s.Token)

	a.mu.Lock()
	a.login = s.Login
	a.mu.Unlock()
	return s, nil
}

func (a *authService) Register(ctx context.Context, login, email string, password []byte) error {
	resp, err := a.client.Register(ctx, login, email, string(password))
	if err != nil {
		return err
	}
	return a.start(ctx, resp.Login, resp.SessionSecret, resp.SessionToken)
}

func (a *authService) Login(ctx context.Context, login string, password []byte) error {
	resp, err := a.client.Authenticate(ctx, login, string(password))
	if err != nil {
		return err
	}
	return a.start(ctx, resp.Login, resp.SessionSecret, resp.SessionToken)
}

func (a *authService) ChangePassword(ctx context.Context, oldPassword, newPassword []byte) error {
	login := a.CurrentLogin()
	if login == "" {
		return client.ErrNotLoggedIn
	}
	resp, err := a.client.ChangePassword(ctx, string(oldPassword), string(newPassword))
	if err != nil {
		return err
	}
	return a.start(ctx, login, resp.NewSessionSecret, resp.NewSessionToken)
}

func (a *authService) Logout(ctx context.Context) error {
	a.client.SetSession("", "")

	a.mu.Lock()
	a.login = ""
	a.mu.Unlock()

	return a.repo.ClearSession(ctx)
}

func (a *authService) CurrentLogin() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.login
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
