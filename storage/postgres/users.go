package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/jrsteele09/world-explorer/internal/errors"
	"github.com/jrsteele09/world-explorer/users"
)

var _ users.Repo = (*UserRepo)(nil)

type UserRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, email, username, password_hash, avatar, created_at, updated_at`

// Create inserts u, assigning a new id when u has none.
func (r *UserRepo) Create(ctx context.Context, u *users.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	query := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Username, u.PasswordHash, u.Avatar, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", u.Email, apperrors.ErrAlreadyExists)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg string) (*users.User, error) {
	u := &users.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", arg, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}
