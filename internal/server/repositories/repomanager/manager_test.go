package repomanager

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sundaram/internal/server/blobstore"
	"github.com/dmitrijs2005/sundaram/internal/server/repositories/history"
	"github.com/dmitrijs2005/sundaram/internal/server/repositories/users"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newFileManager(t *testing.T) *FileRepositoryManager {
	t.Helper()
	store, err := blobstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	m, err := NewFileRepositoryManager(context.Background(), store)
	require.NoError(t, err)
	return m
}

func TestFileRepositoryManager(t *testing.T) {
	m := newFileManager(t)

	assert.IsType(t, &users.FileRepository{}, m.Users())
	assert.IsType(t, &history.FileRepository{}, m.History())
	assert.NoError(t, m.Close())
}

func TestWithHistory(t *testing.T) {
	base := newFileManager(t)
	store, err := blobstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	replacement := history.NewFileRepository(store)

	closed := false
	m := WithHistory(base, replacement, closerFunc(func() error {
		closed = true
		return errors.New("close failed")
	}))

	assert.Same(t, replacement, m.History())
	assert.Same(t, base.Users(), m.Users())

	err = m.Close()
	assert.True(t, closed)
	assert.ErrorContains(t, err, "close failed")
}
