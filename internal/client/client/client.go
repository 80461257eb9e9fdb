package client

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/sundaram/internal/api"
	"github.com/dmitrijs2005/sundaram/internal/signature"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error

	// SetSession installs the credentials used to sign later calls. Empty
	// values log the client out.
	SetSession(secret, token string)

	Register(ctx context.Context, login, email, password string) (*api.SessionResponse, error)
	Authenticate(ctx context.Context, login, password string) (*api.SessionResponse, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) (*api.ChangePasswordResponse, error)

	Generate(ctx context.Context, limit int) (*api.GenerateResponse, error)
	GetCurrent(ctx context.Context) (*api.CurrentResponse, error)
	DeleteCurrent(ctx context.Context) (*api.DeleteCurrentResponse, error)
	SaveParams(ctx context.Context, name string, limit int) (*api.SaveParamsResponse, error)
	ListSavedParams(ctx context.Context) (*api.SavedParamsResponse, error)
	DeleteSavedParams(ctx context.Context, name string) (*api.DeleteSavedResponse, error)

	GetHistory(ctx context.Context) (*api.HistoryResponse, error)
	DeleteHistory(ctx context.Context) (*api.MessageResponse, error)
}

// signer holds the session credentials shared by both transports.
type signer struct {
	mu     sync.RWMutex
	secret string
	token  string
	now    func() time.Time
}

func (s *signer) SetSession(secret, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret, s.token = secret, token
}

// sign returns the signature of the canonical body at the current second
// and the token hint.
func (s *signer) sign(body string) (string, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.secret == "" {
		return "", "", ErrNotLoggedIn
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	return signature.Sign(s.secret, body, now().Unix()), s.token, nil
}
