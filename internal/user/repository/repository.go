package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/avlasov/userhub/internal/common/db"
	commonerrors "github.com/avlasov/userhub/internal/common/errors"
	"github.com/avlasov/userhub/internal/user/domain"
)

var (
	ErrUserNotFound          = commonerrors.ErrUserNotFound
	ErrUsernameAlreadyExists = commonerrors.ErrUsernameAlreadyExists
	ErrEmailAlreadyExists    = commonerrors.ErrEmailAlreadyExists
)

type Repository interface {
	Create(ctx context.Context, user domain.User) (int64, error)
	FindByID(ctx context.Context, id int64) (domain.User, error)
	FindByOpaqueID(ctx context.Context, opaqueID string) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	SetOpaqueID(ctx context.Context, id int64, opaqueID string) error
	SearchByUsername(ctx context.Context, query string, limit int) ([]domain.Summary, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, user domain.User) (int64, error) {
	start := time.Now()

	var id int64
	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id`,
		user.Username,
		user.Email,
		user.PasswordHash,
	).Scan(&id)
	if err := db.HandleQueryError(err, nil, "create_user", "users", start); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return 0, ErrEmailAlreadyExists
			}
			return 0, ErrUsernameAlreadyExists
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	return id, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id int64) (domain.User, error) {
	start := time.Now()

	row := r.pool.QueryRow(
		ctx,
		`SELECT id, COALESCE(opaque_id, ''), username, email, password_hash, created_at
		 FROM users WHERE id = $1`,
		id,
	)

	user, err := scanUser(row)
	if err := db.HandleQueryError(err, ErrUserNotFound, "find_user_by_id", "users", start); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

func (r *PgRepository) FindByOpaqueID(ctx context.Context, opaqueID string) (domain.User, error) {
	start := time.Now()

	row := r.pool.QueryRow(
		ctx,
		`SELECT id, COALESCE(opaque_id, ''), username, email, password_hash, created_at
		 FROM users WHERE opaque_id = $1`,
		opaqueID,
	)

	user, err := scanUser(row)
	if err := db.HandleQueryError(err, ErrUserNotFound, "find_user_by_opaque_id", "users", start); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	start := time.Now()

	row := r.pool.QueryRow(
		ctx,
		`SELECT id, COALESCE(opaque_id, ''), username, email, password_hash, created_at
		 FROM users WHERE username = $1`,
		username,
	)

	user, err := scanUser(row)
	if err := db.HandleQueryError(err, ErrUserNotFound, "find_user_by_username", "users", start); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// SetOpaqueID writes the opaque id at most once per row: the emptiness guard
// in the predicate makes repeated calls a no-op, and single-row update
// atomicity is the only coordination needed under concurrent creation.
func (r *PgRepository) SetOpaqueID(ctx context.Context, id int64, opaqueID string) error {
	start := time.Now()

	_, err := r.pool.Exec(
		ctx,
		`UPDATE users SET opaque_id = $2 WHERE id = $1 AND (opaque_id IS NULL OR opaque_id = '')`,
		id,
		opaqueID,
	)
	if err := db.HandleQueryError(err, nil, "set_opaque_id", "users", start); err != nil {
		return fmt.Errorf("failed to set opaque id: %w", err)
	}

	return nil
}

func (r *PgRepository) SearchByUsername(ctx context.Context, query string, limit int) ([]domain.Summary, error) {
	start := time.Now()

	searchPattern := "%" + query + "%"
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, COALESCE(opaque_id, ''), username, created_at
		 FROM users
		 WHERE username ILIKE $1
		 ORDER BY username ASC
		 LIMIT $2`,
		searchPattern,
		limit,
	)
	if err := db.HandleQueryError(err, nil, "search_users", "users", start); err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var users []domain.Summary
	for rows.Next() {
		var u domain.Summary
		if err := rows.Scan(&u.ID, &u.OpaqueID, &u.Username, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return users, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.OpaqueID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}
