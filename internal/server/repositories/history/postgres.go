package history

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/dbx"
	"github.com/dmitrijs2005/sundaram/internal/server/models"
)

// PostgresRepository uses history_logs as the existence marker and
// history_entries for the entries themselves.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID int64) error {
	query :=
		`INSERT INTO history_logs (user_id)
		 VALUES ($1)
		 ON CONFLICT (user_id) DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Append(ctx context.Context, e models.HistoryEntry) error {
	query :=
		`INSERT INTO history_entries (id, user_id, created_at, operation, details)
		 SELECT $1, $2, $3, $4, $5
		 WHERE EXISTS (SELECT 1 FROM history_logs WHERE user_id = $2)
		 `

	if _, err := r.db.ExecContext(ctx, query, e.ID, e.UserID, e.Time, e.Operation, e.Details); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) exists(ctx context.Context, userID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM history_logs WHERE user_id = $1)`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID int64) ([]models.HistoryEntry, error) {
	ok, err := r.exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrorNotFound
	}

	query :=
		`SELECT id, user_id, created_at, operation, details FROM history_entries
		 WHERE user_id = $1
		 ORDER BY created_at, id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Time, &e.Operation, &e.Details); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entries, nil
}

// Clear registers the log if it is missing and deletes its entries in one
// statement.
func (r *PostgresRepository) Clear(ctx context.Context, userID int64) error {
	query :=
		`WITH log AS (
		   INSERT INTO history_logs (user_id) VALUES ($1)
		   ON CONFLICT (user_id) DO NOTHING
		 )
		 DELETE FROM history_entries WHERE user_id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
