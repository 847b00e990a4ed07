package auth_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/world-explorer/auth"
	fakefavoritesrepo "github.com/jrsteele09/world-explorer/favorites/repofake"
	apperrors "github.com/jrsteele09/world-explorer/internal/errors"
	"github.com/jrsteele09/world-explorer/token"
	fakeuserrepo "github.com/jrsteele09/world-explorer/users/repofake"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessSecret     = "access-1234"
	refreshSecret    = "refresh-1234"
	testUsername     = "kid1"
	testUserEmail    = "kid1@example.com"
	testUserPassword = "Str0ng!Pass"
)

// testFixture holds all test dependencies
type testFixture struct {
	userRepo *fakeuserrepo.FakeUserRepo
	favRepo  *fakefavoritesrepo.FakeFavoritesRepo
	tokens   *token.Manager
	revoked  *token.InMemoryRevokedTokenCache
	service  *auth.AuthService
	now      time.Time
	ctx      context.Context
}

// setupTestFixture creates a new test fixture with all dependencies
func setupTestFixture(t *testing.T, denylist bool) *testFixture {
	t.Helper()

	f := &testFixture{
		userRepo: fakeuserrepo.NewFakeUserRepo(),
		favRepo:  fakefavoritesrepo.NewFakeFavoritesRepo(),
		now:      time.Now(),
		ctx:      context.Background(),
	}
	nowFunc := func() time.Time { return f.now }

	opts := []token.ManagerOption{token.WithNowFunc(nowFunc)}
	if denylist {
		f.revoked = token.NewInMemoryRevokedTokenCache().WithClock(nowFunc)
		opts = append(opts, token.WithRevokedTokenCache(f.revoked))
	}
	f.tokens = token.New(token.NewHMACSigner(accessSecret), token.NewHMACSigner(refreshSecret), opts...)

	svc, err := auth.NewAuthService(
		auth.Repos{Users: f.userRepo, Favorites: f.favRepo},
		f.tokens,
		auth.WithBcryptCost(bcrypt.MinCost),
		auth.WithNowTime(nowFunc),
	)
	require.NoError(t, err)
	f.service = svc
	return f
}

func (f *testFixture) register(t *testing.T) *auth.Session {
	t.Helper()
	s, err := f.service.Register(f.ctx, auth.RegisterRequest{
		Username: testUsername, Email: testUserEmail, Password: testUserPassword,
	})
	require.NoError(t, err)
	return s
}

func TestNewAuthServiceRequiresDependencies(t *testing.T) {
	_, err := auth.NewAuthService(auth.Repos{}, nil)
	require.Error(t, err)
}

func TestRegister(t *testing.T) {
	t.Run("access token carries the user id", func(t *testing.T) {
		f := setupTestFixture(t, false)
		s := f.register(t)

		require.Equal(t, testUserEmail, s.User.Email)
		require.Equal(t, "lion", s.User.Avatar)
		require.Empty(t, s.User.FavoriteCountries)

		claims, err := f.tokens.ParseAccessToken(s.AccessToken)
		require.NoError(t, err)
		require.Equal(t, s.User.ID, claims.UserID)

		rc, err := f.tokens.ParseRefreshToken(s.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, s.User.ID, rc.UserID)
	})

	t.Run("email is normalized", func(t *testing.T) {
		f := setupTestFixture(t, false)
		s, err := f.service.Register(f.ctx, auth.RegisterRequest{
			Username: "  kid2 ", Email: " KID2@Example.com ", Password: testUserPassword,
		})
		require.NoError(t, err)
		require.Equal(t, "kid2@example.com", s.User.Email)
		require.Equal(t, "kid2", s.User.Username)
	})

	t.Run("password at the maximum length", func(t *testing.T) {
		f := setupTestFixture(t, false)
		long := "Str0ng!Pass" + strings.Repeat("a", 117)
		require.Len(t, long, 128)

		s, err := f.service.Register(f.ctx, auth.RegisterRequest{
			Username: "kid3", Email: "kid3@example.com", Password: long,
		})
		require.NoError(t, err)
		require.NotEmpty(t, s.AccessToken)

		_, err = f.service.Login(f.ctx, auth.LoginRequest{Email: "kid3@example.com", Password: long})
		require.NoError(t, err)

		_, err = f.service.Login(f.ctx, auth.LoginRequest{Email: "kid3@example.com", Password: long[:127] + "b"})
		require.Equal(t, apperrors.KindAuth, apperrors.KindOf(err))
	})

	t.Run("password is hashed with the configured cost", func(t *testing.T) {
		f := setupTestFixture(t, false)
		s := f.register(t)
		u, err := f.userRepo.GetByID(f.ctx, s.User.ID)
		require.NoError(t, err)
		require.NotEqual(t, testUserPassword, u.PasswordHash)
		cost, err := bcrypt.Cost([]byte(u.PasswordHash))
		require.NoError(t, err)
		require.Equal(t, bcrypt.MinCost, cost)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := setupTestFixture(t, false)
		f.register(t)
		_, err := f.service.Register(f.ctx, auth.RegisterRequest{
			Username: "other", Email: "KID1@example.com", Password: testUserPassword,
		})
		require.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
		require.Equal(t, auth.EmailRegisteredMsg, apperrors.PublicMessage(err))
	})

	t.Run("concurrent duplicate registrations", func(t *testing.T) {
		f := setupTestFixture(t, false)
		var wg sync.WaitGroup
		errs := make(chan error, 5)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.service.Register(f.ctx, auth.RegisterRequest{
					Username: testUsername, Email: testUserEmail, Password: testUserPassword,
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		ok := 0
		for err := range errs {
			if err == nil {
				ok++
				continue
			}
			require.Equal(t, auth.EmailRegisteredMsg, apperrors.PublicMessage(err))
		}
		require.Equal(t, 1, ok)
	})

	t.Run("validation", func(t *testing.T) {
		f := setupTestFixture(t, false)
		tests := []struct {
			name string
			req  auth.RegisterRequest
			msg  string
		}{
			{"missing username", auth.RegisterRequest{Email: testUserEmail, Password: testUserPassword}, auth.MissingRegisterFieldsMsg},
			{"blank username", auth.RegisterRequest{Username: "  ", Email: testUserEmail, Password: testUserPassword}, auth.MissingRegisterFieldsMsg},
			{"missing password", auth.RegisterRequest{Username: testUsername, Email: testUserEmail}, auth.MissingRegisterFieldsMsg},
			{"bad email", auth.RegisterRequest{Username: testUsername, Email: "kid1@example", Password: testUserPassword}, auth.InvalidEmailMsg},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.service.Register(f.ctx, tt.req)
				require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
				require.Equal(t, tt.msg, apperrors.PublicMessage(err))
			})
		}
	})

	t.Run("every weak password fails and names each unmet rule", func(t *testing.T) {
		f := setupTestFixture(t, false)
		tests := []struct {
			password string
			wants    []string
		}{
			{"Sh0rt!", []string{"at least 8 characters"}},
			{"str0ng!pass", []string{"at least one uppercase letter"}},
			{"STR0NG!PASS", []string{"at least one lowercase letter"}},
			{"Strong!Pass", []string{"at least one number"}},
			{"Str0ngPass", []string{"at least one special character"}},
			{"Aa1!" + strings.Repeat("x", 125), []string{"no more than 128 characters"}},
			{"abc", []string{"at least 8 characters", "uppercase", "number", "special"}},
		}
		for _, tt := range tests {
			_, err := f.service.Register(f.ctx, auth.RegisterRequest{
				Username: testUsername, Email: testUserEmail, Password: tt.password,
			})
			require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err), tt.password)
			msg := apperrors.PublicMessage(err)
			for _, want := range tt.wants {
				require.Contains(t, msg, want)
			}
		}
		_, err := f.userRepo.GetByEmail(f.ctx, testUserEmail)
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestLogin(t *testing.T) {
	f := setupTestFixture(t, false)
	registered := f.register(t)

	t.Run("success", func(t *testing.T) {
		s, err := f.service.Login(f.ctx, auth.LoginRequest{Email: " KID1@example.com", Password: testUserPassword})
		require.NoError(t, err)
		require.Equal(t, registered.User.ID, s.User.ID)
		require.NotEmpty(t, s.AccessToken)
		require.NotEmpty(t, s.RefreshToken)
	})

	t.Run("favorites are included", func(t *testing.T) {
		_, err := f.favRepo.Add(f.ctx, registered.User.ID, "FRA")
		require.NoError(t, err)
		s, err := f.service.Login(f.ctx, auth.LoginRequest{Email: testUserEmail, Password: testUserPassword})
		require.NoError(t, err)
		require.Equal(t, []string{"FRA"}, s.User.FavoriteCountries)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		_, wrongPw := f.service.Login(f.ctx, auth.LoginRequest{Email: testUserEmail, Password: "Wr0ng!Pass"})
		_, unknown := f.service.Login(f.ctx, auth.LoginRequest{Email: "nobody@example.com", Password: testUserPassword})

		require.Equal(t, apperrors.KindAuth, apperrors.KindOf(wrongPw))
		require.Equal(t, apperrors.KindAuth, apperrors.KindOf(unknown))
		require.Equal(t, auth.InvalidCredentialsMsg, apperrors.PublicMessage(wrongPw))
		require.Equal(t, apperrors.PublicMessage(wrongPw), apperrors.PublicMessage(unknown))
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := f.service.Login(f.ctx, auth.LoginRequest{Email: testUserEmail})
		require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		require.Equal(t, auth.MissingLoginFieldsMsg, apperrors.PublicMessage(err))
	})
}

func TestRefresh(t *testing.T) {
	t.Run("issues a new access token only", func(t *testing.T) {
		f := setupTestFixture(t, false)
		s := f.register(t)

		access, err := f.service.Refresh(f.ctx, s.RefreshToken)
		require.NoError(t, err)
		userID, err := f.service.Authenticate(access)
		require.NoError(t, err)
		require.Equal(t, s.User.ID, userID)

		// no rotation, the same refresh token keeps working
		_, err = f.service.Refresh(f.ctx, s.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("no token", func(t *testing.T) {
		f := setupTestFixture(t, false)
		_, err := f.service.Refresh(f.ctx, "")
		require.Equal(t, apperrors.KindAuth, apperrors.KindOf(err))
		require.Equal(t, auth.NoRefreshTokenMsg, apperrors.PublicMessage(err))
	})

	t.Run("tampered token", func(t *testing.T) {
		f := setupTestFixture(t, false)
		s := f.register(t)
		access, err := f.service.Refresh(f.ctx, s.RefreshToken+"x")
		require.Empty(t, access)
		require.Equal(t, auth.InvalidRefreshTokenMsg, apperrors.PublicMessage(err))
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		f := setupTestFixture(t, false)
		s := f.register(t)
		_, err := f.service.Refresh(f.ctx, s.AccessToken)
		require.Equal(t, auth.InvalidRefreshTokenMsg, apperrors.PublicMessage(err))
	})

	t.Run("expired token", func(t *testing.T) {
		f := setupTestFixture(t, false)
		s := f.register(t)
		f.now = f.now.Add(token.DefaultRefreshTokenExpiry + time.Minute)
		access, err := f.service.Refresh(f.ctx, s.RefreshToken)
		require.Empty(t, access)
		require.Equal(t, apperrors.KindAuth, apperrors.KindOf(err))
		require.True(t, apperrors.Is(err, apperrors.ErrTokenExpired))
	})
}

func TestLogout(t *testing.T) {
	t.Run("idempotent without a denylist", func(t *testing.T) {
		f := setupTestFixture(t, false)
		s := f.register(t)
		require.NoError(t, f.service.Logout(f.ctx, s.RefreshToken))
		require.NoError(t, f.service.Logout(f.ctx, s.RefreshToken))
		require.NoError(t, f.service.Logout(f.ctx, ""))

		_, err := f.service.Refresh(f.ctx, s.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("denylist rejects a logged out token", func(t *testing.T) {
		f := setupTestFixture(t, true)
		s := f.register(t)
		require.NoError(t, f.service.Logout(f.ctx, s.RefreshToken))

		_, err := f.service.Refresh(f.ctx, s.RefreshToken)
		require.Equal(t, auth.InvalidRefreshTokenMsg, apperrors.PublicMessage(err))
		require.True(t, apperrors.Is(err, apperrors.ErrTokenRevoked))

		// a fresh login still works
		s2, err := f.service.Login(f.ctx, auth.LoginRequest{Email: testUserEmail, Password: testUserPassword})
		require.NoError(t, err)
		_, err = f.service.Refresh(f.ctx, s2.RefreshToken)
		require.NoError(t, err)
	})
}

func TestWhoAmIAndAuthenticate(t *testing.T) {
	f := setupTestFixture(t, false)
	s := f.register(t)

	t.Run("whoami", func(t *testing.T) {
		u, err := f.service.WhoAmI(f.ctx, s.User.ID)
		require.NoError(t, err)
		require.Equal(t, s.User, *u)
	})

	t.Run("whoami for deleted user", func(t *testing.T) {
		_, err := f.service.WhoAmI(f.ctx, "missing")
		require.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
		require.Equal(t, auth.UserNotFoundMsg, apperrors.PublicMessage(err))
	})

	t.Run("bearer header", func(t *testing.T) {
		id, err := f.service.ParseBearer("Bearer " + s.AccessToken)
		require.NoError(t, err)
		require.Equal(t, s.User.ID, id)

		_, err = f.service.ParseBearer("")
		require.Equal(t, auth.NotAuthorizedMsg, apperrors.PublicMessage(err))
		_, err = f.service.ParseBearer("Basic abc")
		require.Equal(t, auth.NotAuthorizedMsg, apperrors.PublicMessage(err))
		_, err = f.service.ParseBearer("Bearer not-a-jwt")
		require.Equal(t, auth.InvalidAccessTokenMsg, apperrors.PublicMessage(err))
		_, err = f.service.ParseBearer("Bearer " + s.RefreshToken)
		require.Equal(t, auth.InvalidAccessTokenMsg, apperrors.PublicMessage(err))
	})

	t.Run("expired access token", func(t *testing.T) {
		f.now = f.now.Add(token.DefaultAccessTokenExpiry + time.Second)
		_, err := f.service.Authenticate(s.AccessToken)
		require.Equal(t, apperrors.KindAuth, apperrors.KindOf(err))
		require.Equal(t, auth.InvalidAccessTokenMsg, apperrors.PublicMessage(err))
	})
}
