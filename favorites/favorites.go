// Package favorites manages the set of countries each explorer has starred.
package favorites

import (
	"context"
	"strings"

	apperrors "github.com/jrsteele09/world-explorer/internal/errors"
	"github.com/jrsteele09/world-explorer/users"
)

type Service struct {
	repo     Repo
	userRepo users.Repo
}

func NewService(repo Repo, userRepo users.Repo) *Service {
	return &Service{repo: repo, userRepo: userRepo}
}

func (s *Service) List(ctx context.Context, userID string) ([]string, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.list(ctx, userID)
}

func (s *Service) Add(ctx context.Context, userID, code string) ([]string, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	added, err := s.repo.Add(ctx, userID, code)
	if err != nil {
		return nil, apperrors.Internal(err, "add favorite")
	}
	if !added {
		return nil, apperrors.Validation("Country already in favorites")
	}
	return s.list(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID, code string) ([]string, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	removed, err := s.repo.Remove(ctx, userID, code)
	if err != nil {
		return nil, apperrors.Internal(err, "remove favorite")
	}
	if !removed {
		return nil, apperrors.Validation("Country not in favorites")
	}
	return s.list(ctx, userID)
}

// Toggle adds code when it is absent and removes it when present.
func (s *Service) Toggle(ctx context.Context, userID, code string) ([]string, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	current, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if contains(current, code) {
		return s.Remove(ctx, userID, code)
	}
	return s.Add(ctx, userID, code)
}

func (s *Service) list(ctx context.Context, userID string) ([]string, error) {
	codes, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "list favorites")
	}
	if codes == nil {
		codes = []string{}
	}
	return codes, nil
}

func (s *Service) ensureUser(ctx context.Context, userID string) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("User not found")
		}
		return apperrors.Internal(err, "load user")
	}
	return nil
}

func normalizeCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", apperrors.Validation("Country code is required")
	}
	return code, nil
}

func contains(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
