package fakequizrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/jrsteele09/world-explorer/quiz"
)

var _ quiz.Repo = (*FakeQuizRepo)(nil)

type FakeQuizRepo struct {
	results map[string][]quiz.Result // user id to results
	lock    sync.RWMutex
}

func NewFakeQuizRepo() *FakeQuizRepo {
	return &FakeQuizRepo{results: make(map[string][]quiz.Result)}
}

func (qr *FakeQuizRepo) Save(_ context.Context, result *quiz.Result) error {
	qr.lock.Lock()
	defer qr.lock.Unlock()
	qr.results[result.UserID] = append(qr.results[result.UserID], *result)
	return nil
}

func (qr *FakeQuizRepo) ListByUser(_ context.Context, userID string) ([]quiz.Result, error) {
	qr.lock.RLock()
	out := append([]quiz.Result{}, qr.results[userID]...)
	qr.lock.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].QuizDate.After(out[j].QuizDate)
	})
	return out, nil
}
