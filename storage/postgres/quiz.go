package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/world-explorer/quiz"
)

var _ quiz.Repo = (*QuizRepo)(nil)

type QuizRepo struct {
	db DBTX
}

func NewQuizRepo(db DBTX) *QuizRepo {
	return &QuizRepo{db: db}
}

func (r *QuizRepo) Save(ctx context.Context, res *quiz.Result) error {
	query := `INSERT INTO quiz_results
		(id, user_id, score, total_questions, correct_answers, quiz_date, questions)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)`

	_, err := r.db.ExecContext(ctx, query,
		res.ID, res.UserID, res.Score, res.TotalQuestions, res.CorrectAnswers, res.QuizDate, string(res.Questions))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *QuizRepo) ListByUser(ctx context.Context, userID string) ([]quiz.Result, error) {
	query := `SELECT id, user_id, score, total_questions, correct_answers, quiz_date, questions
		FROM quiz_results WHERE user_id = $1 ORDER BY quiz_date DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	results := []quiz.Result{}
	for rows.Next() {
		var (
			res       quiz.Result
			questions []byte
		)
		if err := rows.Scan(&res.ID, &res.UserID, &res.Score, &res.TotalQuestions,
			&res.CorrectAnswers, &res.QuizDate, &questions); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		res.Questions = json.RawMessage(questions)
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return results, nil
}
