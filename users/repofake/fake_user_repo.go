package fakeuserrepo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/world-explorer/internal/errors"
	"github.com/jrsteele09/world-explorer/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

// FakeUserRepo keeps users in memory. It is used by tests and by the server when
// STORAGE=memory.
type FakeUserRepo struct {
	users    map[string]*users.User
	emailIds map[string]string // email to user id
	lock     sync.RWMutex
	now      func() time.Time
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[string]*users.User),
		emailIds: make(map[string]string),
		now:      time.Now,
	}
}

func (ur *FakeUserRepo) Create(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, ok := ur.emailIds[user.Email]; ok {
		return fmt.Errorf("email %s: %w", user.Email, apperrors.ErrAlreadyExists)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = ur.now()
	}
	user.UpdatedAt = user.CreatedAt

	cp := *user
	ur.users[user.ID] = &cp
	ur.emailIds[user.Email] = user.ID
	return nil
}

func (ur *FakeUserRepo) Delete(_ context.Context, id string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, apperrors.ErrNotFound)
	}
	delete(ur.emailIds, u.Email)
	delete(ur.users, id)
	return nil
}

func (ur *FakeUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[email]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
	}
	cp := *ur.users[id]
	return &cp, nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, apperrors.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

// Exists reports whether id is a stored user.
func (ur *FakeUserRepo) Exists(id string) bool {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	_, ok := ur.users[id]
	return ok
}
