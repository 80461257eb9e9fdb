package repomanager

import (
	"context"

	"github.com/dmitrijs2005/sundaram/internal/server/blobstore"
	"github.com/dmitrijs2005/sundaram/internal/server/repositories/history"
	"github.com/dmitrijs2005/sundaram/internal/server/repositories/users"
)

// FileRepositoryManager keeps users and history as JSON documents in a
// blobstore.Store (a local directory or an S3 bucket).
type FileRepositoryManager struct {
	users   *users.FileRepository
	history *history.FileRepository
}

func NewFileRepositoryManager(ctx context.Context, store blobstore.Store) (*FileRepositoryManager, error) {
	u, err := users.OpenFileRepository(ctx, store)
	if err != nil {
		return nil, err
	}
	return &FileRepositoryManager{users: u, history: history.NewFileRepository(store)}, nil
}

func (m *FileRepositoryManager) Users() users.Repository     { return m.users }
func (m *FileRepositoryManager) History() history.Repository { return m.history }
func (m *FileRepositoryManager) Close() error                { return nil }
