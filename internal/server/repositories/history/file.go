package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/server/blobstore"
	"github.com/dmitrijs2005/sundaram/internal/server/models"
)

func logKey(userID int64) string {
	return "history/history_" + strconv.FormatInt(userID, 10) + ".json"
}

// FileRepository keeps each log as a JSON array document.
type FileRepository struct {
	store blobstore.Store
	mu    sync.Mutex
}

func NewFileRepository(store blobstore.Store) *FileRepository {
	return &FileRepository{store: store}
}

func (r *FileRepository) read(ctx context.Context, userID int64) ([]models.HistoryEntry, error) {
	data, err := r.store.Get(ctx, logKey(userID))
	if err != nil {
		return nil, err
	}
	entries := []models.HistoryEntry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode history %d: %w", userID, err)
	}
	return entries, nil
}

func (r *FileRepository) write(ctx context.Context, userID int64, entries []models.HistoryEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history %d: %w", userID, err)
	}
	if err := r.store.Put(ctx, logKey(userID), data); err != nil {
		return fmt.Errorf("write history %d: %w", userID, err)
	}
	return nil
}

func (r *FileRepository) Create(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ok, err := r.store.Exists(ctx, logKey(userID))
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return r.write(ctx, userID, []models.HistoryEntry{})
}

func (r *FileRepository) Append(ctx context.Context, entry models.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.read(ctx, entry.UserID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.write(ctx, entry.UserID, append(entries, entry))
}

func (r *FileRepository) List(ctx context.Context, userID int64) ([]models.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.read(ctx, userID)
}

// Clear overwrites the log with an empty array, creating it if missing.
func (r *FileRepository) Clear(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.write(ctx, userID, []models.HistoryEntry{})
}
