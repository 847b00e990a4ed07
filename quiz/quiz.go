// Package quiz stores the outcome of each quiz an explorer finishes.
package quiz

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/world-explorer/internal/errors"
	"github.com/jrsteele09/world-explorer/internal/utils"
)

type Result struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	Score          int             `json:"score"`
	TotalQuestions int             `json:"totalQuestions"`
	CorrectAnswers int             `json:"correctAnswers"`
	QuizDate       time.Time       `json:"quizDate"`
	Questions      json.RawMessage `json:"questions"`
}

// Input is the body of a save request. The counts are pointers so a missing
// field can be told apart from zero.
type Input struct {
	Score          *int            `json:"score"`
	TotalQuestions *int            `json:"totalQuestions"`
	CorrectAnswers *int            `json:"correctAnswers"`
	Questions      json.RawMessage `json:"questions,omitempty"`
}

type Repo interface {
	Save(ctx context.Context, result *Result) error
	// ListByUser returns results newest first.
	ListByUser(ctx context.Context, userID string) ([]Result, error)
}

type Service struct {
	repo Repo
	now  func() time.Time
}

type Option func(*Service)

func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repo, options ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, o := range options {
		o(s)
	}
	return s
}

func (s *Service) Save(ctx context.Context, userID string, in Input) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	questions := bytes.TrimSpace(in.Questions)
	if len(questions) == 0 || bytes.Equal(questions, []byte("null")) {
		questions = []byte("[]")
	}

	r := &Result{
		ID:             uuid.New().String(),
		UserID:         userID,
		Score:          utils.Value(in.Score),
		TotalQuestions: utils.Value(in.TotalQuestions),
		CorrectAnswers: utils.Value(in.CorrectAnswers),
		QuizDate:       s.now().UTC(),
		Questions:      json.RawMessage(questions),
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, apperrors.Internal(err, "save quiz result")
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Result, error) {
	results, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "list quiz results")
	}
	if results == nil {
		results = []Result{}
	}
	return results, nil
}

func (in Input) validate() error {
	if in.Score == nil || in.TotalQuestions == nil || in.CorrectAnswers == nil {
		return apperrors.Validation("Please provide score, totalQuestions and correctAnswers")
	}
	if *in.Score < 0 || *in.TotalQuestions < 0 || *in.CorrectAnswers < 0 {
		return apperrors.Validation("Quiz values cannot be negative")
	}
	if *in.CorrectAnswers > *in.TotalQuestions {
		return apperrors.Validation("correctAnswers cannot exceed totalQuestions")
	}
	if len(in.Questions) > 0 {
		trimmed := bytes.TrimSpace(in.Questions)
		if !bytes.Equal(trimmed, []byte("null")) && (len(trimmed) == 0 || trimmed[0] != '[' || !json.Valid(trimmed)) {
			return apperrors.Validation("questions must be an array")
		}
	}
	return nil
}
