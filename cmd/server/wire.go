package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/world-explorer/auth"
	"github.com/jrsteele09/world-explorer/favorites"
	fakefavoritesrepo "github.com/jrsteele09/world-explorer/favorites/repofake"
	"github.com/jrsteele09/world-explorer/internal/config"
	"github.com/jrsteele09/world-explorer/quiz"
	fakequizrepo "github.com/jrsteele09/world-explorer/quiz/repofake"
	"github.com/jrsteele09/world-explorer/server"
	"github.com/jrsteele09/world-explorer/storage/postgres"
	"github.com/jrsteele09/world-explorer/token"
	"github.com/jrsteele09/world-explorer/users"
	fakeuserrepo "github.com/jrsteele09/world-explorer/users/repofake"
)

const denylistCleanupInterval = 10 * time.Minute

type dependencies struct {
	services    server.Services
	healthCheck func(ctx context.Context) error
	close       func()
}

type repositories struct {
	users     users.Repo
	favorites favorites.Repo
	quiz      quiz.Repo
}

// wire builds the services for the configured storage backend.
func wire(ctx context.Context, c config.Config, log zerolog.Logger) (*dependencies, error) {
	deps := &dependencies{
		healthCheck: func(context.Context) error { return nil },
		close:       func() {},
	}

	if c.IsProduction() && !c.HasExplicitSecrets() {
		return nil, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must be set in production")
	}

	var repos repositories
	switch c.GetStorage() {
	case config.StorageMemory:
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		repos = repositories{
			users:     fakeuserrepo.NewFakeUserRepo(),
			favorites: fakefavoritesrepo.NewFakeFavoritesRepo(),
			quiz:      fakequizrepo.NewFakeQuizRepo(),
		}
	case config.StoragePostgres:
		store, err := postgres.Open(ctx, c.GetDatabaseURL())
		if err != nil {
			return nil, err
		}
		log.Info().Msg("Connected to Postgres, migrations applied")
		repos = repositories{users: store.Users, favorites: store.Favorites, quiz: store.Quiz}
		deps.healthCheck = store.Ping
		deps.close = func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close database")
			}
		}
	default:
		return nil, fmt.Errorf("unknown storage %q", c.GetStorage())
	}

	tokenOpts := []token.ManagerOption{
		token.WithTokenExpiry(c.GetAccessTokenExpiry(), c.GetRefreshTokenExpiry()),
	}
	if c.GetRefreshTokenDenylist() {
		cache := token.NewInMemoryRevokedTokenCache()
		tokenOpts = append(tokenOpts, token.WithRevokedTokenCache(cache))
		go token.RunCleanup(ctx, cache, denylistCleanupInterval)
		log.Info().Msg("Refresh token denylist enabled")
	}
	tokens := token.New(
		token.NewHMACSigner(c.GetAccessTokenSecret()),
		token.NewHMACSigner(c.GetRefreshTokenSecret()),
		tokenOpts...,
	)

	authService, err := auth.NewAuthService(auth.Repos{Users: repos.users, Favorites: repos.favorites}, tokens,
		auth.WithBcryptCost(c.GetBcryptCost()),
		auth.WithLogger(log),
	)
	if err != nil {
		deps.close()
		return nil, fmt.Errorf("auth.NewAuthService: %w", err)
	}

	deps.services = server.Services{
		Auth:      authService,
		Favorites: favorites.NewService(repos.favorites, repos.users),
		Quiz:      quiz.NewService(repos.quiz),
	}
	return deps, nil
}
