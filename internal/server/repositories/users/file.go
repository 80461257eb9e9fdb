package users

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/server/blobstore"
	"github.com/dmitrijs2005/sundaram/internal/server/models"
)

const (
	keyPrefix = "users/user_"
	keySuffix = ".json"
)

func userKey(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10) + keySuffix
}

// FileRepository stores one JSON document per user in a blobstore.Store and
// serves reads from an in-memory index built at open time. Writes go to the
// store first and update the index only on success.
type FileRepository struct {
	store blobstore.Store

	mu      sync.RWMutex
	byID    map[int64]*models.User
	ids     []int64
	byLogin map[string]int64
	byEmail map[string]int64
	byToken map[string]int64
	lastID  int64
}

// OpenFileRepository loads all user documents from store.
func OpenFileRepository(ctx context.Context, store blobstore.Store) (*FileRepository, error) {
	r := &FileRepository{
		store:   store,
		byID:    map[int64]*models.User{},
		byLogin: map[string]int64{},
		byEmail: map[string]int64{},
		byToken: map[string]int64{},
	}

	keys, err := store.List(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	for _, key := range keys {
		if !strings.HasSuffix(key, keySuffix) {
			continue
		}
		data, err := store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		u := &models.User{}
		if err := json.Unmarshal(data, u); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		r.index(u.Normalize())
	}

	return r, nil
}

// index must be called with mu held for writing (or before r is shared).
func (r *FileRepository) index(u *models.User) {
	if old, ok := r.byID[u.ID]; ok {
		delete(r.byLogin, old.Login)
		delete(r.byEmail, old.Email)
		delete(r.byToken, old.SessionToken)
	} else {
		i, _ := slices.BinarySearch(r.ids, u.ID)
		r.ids = slices.Insert(r.ids, i, u.ID)
	}

	r.byID[u.ID] = u
	r.byLogin[u.Login] = u.ID
	r.byEmail[u.Email] = u.ID
	if u.SessionToken != "" {
		r.byToken[u.SessionToken] = u.ID
	}
	if u.ID > r.lastID {
		r.lastID = u.ID
	}
}

func (r *FileRepository) write(ctx context.Context, u *models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user %d: %w", u.ID, err)
	}
	if err := r.store.Put(ctx, userKey(u.ID), data); err != nil {
		return fmt.Errorf("write user %d: %w", u.ID, err)
	}
	return nil
}

func (r *FileRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byLogin[user.Login]; ok {
		return nil, common.Detail(common.ErrorConflict, "login already taken")
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.Detail(common.ErrorConflict, "email already taken")
	}

	u := user.Clone()
	u.ID = r.lastID + 1

	if err := r.write(ctx, u); err != nil {
		return nil, err
	}
	r.index(u)

	return u.Clone(), nil
}

func (r *FileRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u.Clone(), nil
}

func (r *FileRepository) FindByCredentials(_ context.Context, login, password string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.ids {
		u := r.byID[id]
		if u.Login == login && u.Password == password {
			return u.Clone(), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *FileRepository) FindBySessionToken(_ context.Context, token string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byToken[token]
	if !ok || token == "" {
		return nil, common.ErrorNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *FileRepository) Save(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.byID[user.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if id, taken := r.byLogin[user.Login]; taken && id != user.ID {
		return common.Detail(common.ErrorConflict, "login already taken")
	}
	if id, taken := r.byEmail[user.Email]; taken && id != user.ID {
		return common.Detail(common.ErrorConflict, "email already taken")
	}

	u := user.Clone()
	u.CreatedAt = old.CreatedAt
	if err := r.write(ctx, u); err != nil {
		return err
	}
	r.index(u)
	return nil
}

func (r *FileRepository) LoadAll(_ context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.User, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.byID[id].Clone())
	}
	return out, nil
}
