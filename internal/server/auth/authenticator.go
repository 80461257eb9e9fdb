// Package auth resolves signed requests to users.
//
// A signature is checked against every stored user's session secret for each
// offset in signature.Offsets (offsets outer, users inner, first match wins).
// The cost is O(window x users). When the caller supplies its session token
// as a hint, the token index narrows the search to one user; if that fails
// the full scan runs anyway, so hints never change the outcome.
//
// The session token is a display value and a lookup key only. It must never
// authenticate a request on its own: a request is accepted only when its
// signature matches a stored session secret.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/logging"
	"github.com/dmitrijs2005/sundaram/internal/server/metrics"
	"github.com/dmitrijs2005/sundaram/internal/server/models"
	"github.com/dmitrijs2005/sundaram/internal/signature"
)

// UserSource is the part of the user repository the authenticator reads.
type UserSource interface {
	LoadAll(ctx context.Context) ([]*models.User, error)
	FindBySessionToken(ctx context.Context, token string) (*models.User, error)
}

// Request is one signed call. Body must already be canonical.
type Request struct {
	Signature    string
	Body         string
	SessionToken string
	Now          time.Time
}

type Authenticator struct {
	users   UserSource
	offsets []int64
	logger  logging.Logger
	metrics *metrics.Metrics
}

func NewAuthenticator(users UserSource, logger logging.Logger, m *metrics.Metrics) *Authenticator {
	return &Authenticator{
		users:   users,
		offsets: signature.Offsets,
		logger:  logger.With("module", "auth"),
		metrics: m,
	}
}

// Resolve returns the user whose current secret produced req.Signature.
func (a *Authenticator) Resolve(ctx context.Context, req Request) (*models.User, error) {
	if req.Signature == "" {
		a.metrics.ObserveAuth("none", "missing", 0)
		return nil, common.ErrMissingSignature
	}

	now := req.Now.Unix()

	if req.SessionToken != "" {
		u, n, err := a.resolveHint(ctx, req, now)
		if err != nil {
			return nil, err
		}
		if u != nil {
			a.metrics.ObserveAuth("hint", "ok", n)
			return u, nil
		}
		a.metrics.ObserveAuth("hint", "miss", n)
	}

	users, err := a.users.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load users: %w", common.ErrorInternal, err)
	}

	n := 0
	for _, off := range a.offsets {
		for _, u := range users {
			n++
			if signature.Matches(u.SessionSecret, req.Body, now+off, req.Signature) {
				a.metrics.ObserveAuth("scan", "ok", n)
				return u, nil
			}
		}
	}

	a.metrics.ObserveAuth("scan", "fail", n)
	a.logger.Debug(ctx, "signature did not match", "users", len(users), "candidates", n)
	return nil, common.ErrInvalidSignature
}

// resolveHint checks only the user owning token. A nil user with a nil error
// means the hint did not help.
func (a *Authenticator) resolveHint(ctx context.Context, req Request, now int64) (*models.User, int, error) {
	u, err := a.users.FindBySessionToken(ctx, req.SessionToken)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%w: token lookup: %w", common.ErrorInternal, err)
	}

	for i, off := range a.offsets {
		if signature.Matches(u.SessionSecret, req.Body, now+off, req.Signature) {
			return u, i + 1, nil
		}
	}
	return nil, len(a.offsets), nil
}
