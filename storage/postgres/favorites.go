package postgres

import (
	"context"
	"fmt"

	"github.com/jrsteele09/world-explorer/favorites"
)

var _ favorites.Repo = (*FavoritesRepo)(nil)

type FavoritesRepo struct {
	db DBTX
}

func NewFavoritesRepo(db DBTX) *FavoritesRepo {
	return &FavoritesRepo{db: db}
}

func (r *FavoritesRepo) List(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT country_code FROM favorite_countries WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return codes, nil
}

func (r *FavoritesRepo) Add(ctx context.Context, userID, code string) (bool, error) {
	return r.exec(ctx,
		`INSERT INTO favorite_countries (user_id, country_code) VALUES ($1, $2)
		 ON CONFLICT (user_id, country_code) DO NOTHING`, userID, code)
}

func (r *FavoritesRepo) Remove(ctx context.Context, userID, code string) (bool, error) {
	return r.exec(ctx,
		`DELETE FROM favorite_countries WHERE user_id = $1 AND country_code = $2`, userID, code)
}

// exec reports whether the statement touched a row.
func (r *FavoritesRepo) exec(ctx context.Context, query, userID, code string) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, userID, code)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
