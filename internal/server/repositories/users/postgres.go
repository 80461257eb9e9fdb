package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/dbx"
	"github.com/dmitrijs2005/sundaram/internal/server/models"
)

const uniqueViolation = "23505"

const selectColumns = `id, login, email, password, session_secret, session_token,
		 current_primes, current_params, saved_params, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var primes, params, saved []byte

	err := row.Scan(&u.ID, &u.Login, &u.Email, &u.Password, &u.SessionSecret, &u.SessionToken,
		&primes, &params, &saved, &u.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := unmarshalColumn(primes, &u.CurrentPrimes); err != nil {
		return nil, fmt.Errorf("current_primes: %w", err)
	}
	if err := unmarshalColumn(params, &u.CurrentParams); err != nil {
		return nil, fmt.Errorf("current_params: %w", err)
	}
	if err := unmarshalColumn(saved, &u.SavedParams); err != nil {
		return nil, fmt.Errorf("saved_params: %w", err)
	}
	return u.Normalize(), nil
}

func unmarshalColumn(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func marshalColumns(u *models.User) (primes, params, saved []byte, err error) {
	u.Normalize()
	if primes, err = json.Marshal(u.CurrentPrimes); err != nil {
		return
	}
	if params, err = json.Marshal(u.CurrentParams); err != nil {
		return
	}
	saved, err = json.Marshal(u.SavedParams)
	return
}

// mapWriteError turns unique violations into common.ErrorConflict.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "users_login_key":
			return common.Detail(common.ErrorConflict, "login already taken")
		case "users_email_key":
			return common.Detail(common.ErrorConflict, "email already taken")
		default:
			return common.ErrorConflict
		}
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	primes, params, saved, err := marshalColumns(user)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}

	query :=
		`INSERT INTO users (login, email, password, session_secret, session_token,
		 current_primes, current_params, saved_params)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at
		 `

	u := user.Clone()
	err = r.db.QueryRowContext(ctx, query,
		u.Login, u.Email, u.Password, u.SessionSecret, u.SessionToken,
		primes, params, saved).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, mapWriteError(err)
	}

	return u, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, args ...any) (*models.User, error) {
	query := `SELECT ` + selectColumns + ` FROM users
		 WHERE ` + where

	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *PostgresRepository) FindByCredentials(ctx context.Context, login, password string) (*models.User, error) {
	return r.getOne(ctx, `login = $1 AND password = $2`, login, password)
}

func (r *PostgresRepository) FindBySessionToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrorNotFound
	}
	return r.getOne(ctx, `session_token = $1`, token)
}

func (r *PostgresRepository) Save(ctx context.Context, user *models.User) error {
	primes, params, saved, err := marshalColumns(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	query :=
		`UPDATE users SET login = $2, email = $3, password = $4, session_secret = $5,
		 session_token = $6, current_primes = $7, current_params = $8, saved_params = $9
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, user.ID,
		user.Login, user.Email, user.Password, user.SessionSecret, user.SessionToken,
		primes, params, saved)
	if err != nil {
		return mapWriteError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) LoadAll(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + selectColumns + ` FROM users
		 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
