package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jrsteele09/world-explorer/internal/errors"
	"github.com/jrsteele09/world-explorer/quiz"
	"github.com/jrsteele09/world-explorer/users"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func q(s string) string {
	return regexp.QuoteMeta(s)
}

var userCols = []string{"id", "email", "username", "password_hash", "avatar", "created_at", "updated_at"}

func TestUserRepoCreate(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	u := &users.User{ID: "u-1", Email: "kid1@example.com", Username: "kid1", PasswordHash: "hash", Avatar: "lion", CreatedAt: now, UpdatedAt: now}

	t.Run("success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(q("INSERT INTO users")).
			WithArgs("u-1", "kid1@example.com", "kid1", "hash", "lion", now, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewUserRepo(db).Create(context.Background(), u))
	})

	t.Run("assigns an id when missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(q("INSERT INTO users")).
			WithArgs(sqlmock.AnyArg(), "kid2@example.com", "kid2", "hash", "lion", now, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		nu := &users.User{Email: "kid2@example.com", Username: "kid2", PasswordHash: "hash", Avatar: "lion", CreatedAt: now, UpdatedAt: now}
		require.NoError(t, NewUserRepo(db).Create(context.Background(), nu))
		_, err := uuid.Parse(nu.ID)
		require.NoError(t, err)
	})

	t.Run("unique violation", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(q("INSERT INTO users")).
			WillReturnError(&pgconn.PgError{Code: uniqueViolation})

		err := NewUserRepo(db).Create(context.Background(), u)
		require.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	})

	t.Run("db error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(q("INSERT INTO users")).WillReturnError(errors.New("db down"))

		err := NewUserRepo(db).Create(context.Background(), u)
		require.ErrorContains(t, err, "db error: db down")
		require.False(t, errors.Is(err, apperrors.ErrAlreadyExists))
	})
}

func TestUserRepoGet(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("by email", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(q("FROM users WHERE email = $1")).
			WithArgs("kid1@example.com").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("u-1", "kid1@example.com", "kid1", "hash", "lion", now, now))

		got, err := NewUserRepo(db).GetByEmail(context.Background(), "kid1@example.com")
		require.NoError(t, err)
		require.Equal(t, "u-1", got.ID)
		require.Equal(t, "hash", got.PasswordHash)
		require.Equal(t, now, got.CreatedAt)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(q("FROM users WHERE id = $1")).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		_, err := NewUserRepo(db).GetByID(context.Background(), "ghost")
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestUserRepoDelete(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(q("DELETE FROM users WHERE id = $1")).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM users WHERE id = $1")).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewUserRepo(db)
	require.NoError(t, repo.Delete(context.Background(), "u-1"))
	require.ErrorIs(t, repo.Delete(context.Background(), "u-1"), apperrors.ErrNotFound)
}

func TestFavoritesRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("list in insertion order", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(q("SELECT country_code FROM favorite_countries WHERE user_id = $1 ORDER BY id")).
			WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows([]string{"country_code"}).AddRow("FRA").AddRow("JPN"))

		got, err := NewFavoritesRepo(db).List(ctx, "u-1")
		require.NoError(t, err)
		require.Equal(t, []string{"FRA", "JPN"}, got)
	})

	t.Run("add reports conflicts", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(q("ON CONFLICT (user_id, country_code) DO NOTHING")).
			WithArgs("u-1", "FRA").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(q("ON CONFLICT (user_id, country_code) DO NOTHING")).
			WithArgs("u-1", "FRA").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewFavoritesRepo(db)
		added, err := repo.Add(ctx, "u-1", "FRA")
		require.NoError(t, err)
		require.True(t, added)
		added, err = repo.Add(ctx, "u-1", "FRA")
		require.NoError(t, err)
		require.False(t, added)
	})

	t.Run("remove", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(q("DELETE FROM favorite_countries")).
			WithArgs("u-1", "FRA").
			WillReturnError(errors.New("db err"))

		_, err := NewFavoritesRepo(db).Remove(ctx, "u-1", "FRA")
		require.ErrorContains(t, err, "db error: db err")
	})
}

func TestQuizRepo(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("save", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(q("INSERT INTO quiz_results")).
			WithArgs("r-1", "u-1", 80, 10, 8, now, `[{"q":1}]`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewQuizRepo(db).Save(ctx, &quiz.Result{
			ID: "r-1", UserID: "u-1", Score: 80, TotalQuestions: 10, CorrectAnswers: 8,
			QuizDate: now, Questions: json.RawMessage(`[{"q":1}]`),
		})
		require.NoError(t, err)
	})

	t.Run("list", func(t *testing.T) {
		db, mock := newMockDB(t)
		cols := []string{"id", "user_id", "score", "total_questions", "correct_answers", "quiz_date", "questions"}
		mock.ExpectQuery(q("ORDER BY quiz_date DESC")).
			WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("r-2", "u-1", 90, 10, 9, now.Add(time.Hour), []byte(`[]`)).
				AddRow("r-1", "u-1", 80, 10, 8, now, []byte(`[{"q":1}]`)))

		got, err := NewQuizRepo(db).ListByUser(ctx, "u-1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, "r-2", got[0].ID)
		require.JSONEq(t, `[{"q":1}]`, string(got[1].Questions))
	})
}

func TestRunMigrations(t *testing.T) {
	db, _ := newMockDB(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(_ context.Context, gotDB *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		require.Same(t, db, gotDB)
		gotDir = dir
		return nil
	}

	require.NoError(t, NewStore(db).RunMigrations(context.Background()))
	require.Equal(t, ".", gotDir)

	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	require.EqualError(t, NewStore(db).RunMigrations(context.Background()), "boom")
}
