package users

import "context"

// Repo stores users. Implementations return errors wrapping apperrors.ErrNotFound for
// missing users and apperrors.ErrAlreadyExists when the email is taken.
type Repo interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Delete(ctx context.Context, id string) error
}
