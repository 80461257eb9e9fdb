package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sundaram/internal/client/models"
	"github.com/dmitrijs2005/sundaram/internal/dbx"
)

const (
	keyLogin   = "login"
	keySecret  = "session_secret"
	keyToken   = "session_token"
	keySavedAt = "saved_at"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func get(ctx context.Context, q dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func set(ctx context.Context, q dbx.DBTX, key string, value []byte) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) LoadSession(ctx context.Context) (*models.Session, error) {
	s := &models.Session{}
	for key, dst := range map[string]*string{keyLogin: &s.Login, keySecret: &s.Secret, keyToken: &s.Token} {
		v, err := get(ctx, r.db, key)
		if err != nil {
			return nil, err
		}
		*dst = string(v)
	}
	if !s.Valid() {
		return nil, nil
	}

	savedAt, err := get(ctx, r.db, keySavedAt)
	if err != nil {
		return nil, err
	}
	if len(savedAt) > 0 {
		if t, err := time.Parse(time.RFC3339, string(savedAt)); err == nil {
			s.SavedAt = t
		}
	}
	return s, nil
}

// SaveSession replaces the stored session in one transaction.
func (r *SQLiteRepository) SaveSession(ctx context.Context, s *models.Session) error {
	savedAt := s.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		values := []struct {
			key   string
			value string
		}{
			{keyLogin, s.Login},
			{keySecret, s.Secret},
			{keyToken, s.Token},
			{keySavedAt, savedAt.UTC().Format(time.RFC3339)},
		}
		for _, kv := range values {
			if err := set(ctx, tx, kv.key, []byte(kv.value)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) ClearSession(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key IN (?, ?, ?, ?)`,
		keyLogin, keySecret, keyToken, keySavedAt)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
