// Package repomanager hands out the repositories of the configured storage
// backend.
package repomanager

import (
	"errors"
	"io"

	"github.com/dmitrijs2005/sundaram/internal/server/repositories/history"
	"github.com/dmitrijs2005/sundaram/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users() users.Repository
	History() history.Repository
	Close() error
}

// overlay replaces the history repository of a base manager, e.g. with the
// Redis log, and closes both on Close.
type overlay struct {
	RepositoryManager
	history history.Repository
	closer  io.Closer
}

// WithHistory returns m with its history repository replaced by h. closer,
// if not nil, is closed together with m.
func WithHistory(m RepositoryManager, h history.Repository, closer io.Closer) RepositoryManager {
	return &overlay{RepositoryManager: m, history: h, closer: closer}
}

func (o *overlay) History() history.Repository { return o.history }

func (o *overlay) Close() error {
	err := o.RepositoryManager.Close()
	if o.closer != nil {
		err = errors.Join(err, o.closer.Close())
	}
	return err
}
