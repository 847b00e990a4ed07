// Package postgres implements the user, favorites and quiz repositories on PostgreSQL
// through the pgx database/sql driver, with schema migrations run by goose.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/jrsteele09/world-explorer/storage/postgres/migrations"
)

const uniqueViolation = "23505"

// DBTX is the subset of database/sql the repositories use. Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store owns the connection pool and vends the repositories bound to it.
type Store struct {
	db        *sql.DB
	Users     *UserRepo
	Favorites *FavoritesRepo
	Quiz      *QuizRepo
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Open connects to dsn, checks the connection and runs the migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	s := NewStore(db)
	if err := s.RunMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return s, nil
}

// NewStore wraps an existing pool without touching the schema.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:        db,
		Users:     NewUserRepo(db),
		Favorites: NewFavoritesRepo(db),
		Quiz:      NewQuizRepo(db),
	}
}

func (s *Store) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return gooseUpContext(ctx, s.db, ".")
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
