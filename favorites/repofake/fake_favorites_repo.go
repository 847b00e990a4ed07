package fakefavoritesrepo

import (
	"context"
	"sync"

	"github.com/jrsteele09/world-explorer/favorites"
)

var _ favorites.Repo = (*FakeFavoritesRepo)(nil)

type FakeFavoritesRepo struct {
	codes map[string][]string // user id to codes, oldest first
	lock  sync.RWMutex
}

func NewFakeFavoritesRepo() *FakeFavoritesRepo {
	return &FakeFavoritesRepo{codes: make(map[string][]string)}
}

func (fr *FakeFavoritesRepo) List(_ context.Context, userID string) ([]string, error) {
	fr.lock.RLock()
	defer fr.lock.RUnlock()
	return append([]string{}, fr.codes[userID]...), nil
}

func (fr *FakeFavoritesRepo) Add(_ context.Context, userID, code string) (bool, error) {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	for _, c := range fr.codes[userID] {
		if c == code {
			return false, nil
		}
	}
	fr.codes[userID] = append(fr.codes[userID], code)
	return true, nil
}

func (fr *FakeFavoritesRepo) Remove(_ context.Context, userID, code string) (bool, error) {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	current := fr.codes[userID]
	for i, c := range current {
		if c == code {
			fr.codes[userID] = append(current[:i:i], current[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
