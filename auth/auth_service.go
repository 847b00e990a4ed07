package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/world-explorer/favorites"
	apperrors "github.com/jrsteele09/world-explorer/internal/errors"
	"github.com/jrsteele09/world-explorer/token"
	"github.com/jrsteele09/world-explorer/users"
)

const defaultBcryptCost = 12

// Session is what a successful register or login hands back. The refresh token goes
// into a cookie and never into a response body.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         users.PublicUser
}

// Repos holds all repository dependencies for the AuthService
type Repos struct {
	Users     users.Repo
	Favorites favorites.Repo
}

// AuthService registers and logs in users and issues their token pairs.
type AuthService struct {
	repos      Repos
	tokens     *token.Manager
	validator  *Validator
	bcryptCost int
	nowTime    func() time.Time
	log        zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// AuthServiceOption defines a function type to modify the AuthService instance.
type AuthServiceOption func(*AuthService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AuthServiceOption {
	return func(as *AuthService) {
		as.nowTime = nowFunc
	}
}

func WithBcryptCost(cost int) AuthServiceOption {
	return func(as *AuthService) {
		as.bcryptCost = cost
	}
}

func WithLogger(log zerolog.Logger) AuthServiceOption {
	return func(as *AuthService) {
		as.log = log
	}
}

func NewAuthService(repos Repos, tokens *token.Manager, options ...AuthServiceOption) (*AuthService, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewAuthService] Users repo is required")
	}
	if repos.Favorites == nil {
		return nil, errors.New("[NewAuthService] Favorites repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewAuthService] token manager is required")
	}

	as := &AuthService{
		repos:      repos,
		tokens:     tokens,
		validator:  NewValidator(),
		bcryptCost: defaultBcryptCost,
		nowTime:    time.Now,
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(as)
	}
	return as, nil
}

func (as *AuthService) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	if err := as.validator.ValidateRegistration(&req); err != nil {
		return nil, err
	}

	if _, err := as.repos.Users.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.Conflict(EmailRegisteredMsg)
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Internal(err, "[Register] GetByEmail")
	}

	hash, err := users.HashPassword(req.Password, as.bcryptCost)
	if err != nil {
		return nil, apperrors.Internal(err, "[Register] HashPassword")
	}

	now := as.nowTime().UTC()
	user := &users.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		Avatar:       users.DefaultAvatar,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := as.repos.Users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if apperrors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.Conflict(EmailRegisteredMsg)
		}
		return nil, apperrors.Internal(err, "[Register] Create")
	}

	as.log.Info().Str("userId", user.ID).Msg("user registered")
	return as.newSession(user, []string{})
}

func (as *AuthService) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	if err := as.validator.ValidateUserCredentials(&req); err != nil {
		return nil, err
	}

	user, err := as.repos.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Internal(err, "[Login] GetByEmail")
		}
		// Spend the same bcrypt time as a real comparison.
		users.CheckPasswordHash(req.Password, as.dummyPasswordHash())
		return nil, apperrors.AuthWrap(apperrors.ErrInvalidCredentials, InvalidCredentialsMsg)
	}
	if !user.CheckPassword(req.Password) {
		return nil, apperrors.AuthWrap(apperrors.ErrInvalidCredentials, InvalidCredentialsMsg)
	}

	favs, err := as.repos.Favorites.List(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Internal(err, "[Login] Favorites")
	}
	return as.newSession(user, favs)
}

// Logout always succeeds. With the denylist enabled the refresh token stops working
// immediately instead of at its expiry.
func (as *AuthService) Logout(_ context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := as.tokens.RevokeRefreshToken(refreshToken); err != nil {
		as.log.Warn().Err(err).Msg("failed to revoke refresh token")
	}
	return nil
}

// Refresh exchanges a refresh token for a new access token. The refresh token is not rotated.
func (as *AuthService) Refresh(_ context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperrors.Auth(NoRefreshTokenMsg)
	}
	claims, err := as.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", apperrors.AuthWrap(err, InvalidRefreshTokenMsg)
	}
	access, err := as.tokens.CreateAccessToken(claims.UserID)
	if err != nil {
		return "", apperrors.Internal(err, "[Refresh] CreateAccessToken")
	}
	return access, nil
}

func (as *AuthService) WhoAmI(ctx context.Context, userID string) (*users.PublicUser, error) {
	user, err := as.repos.Users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound(UserNotFoundMsg)
		}
		return nil, apperrors.Internal(err, "[WhoAmI] GetByID")
	}
	favs, err := as.repos.Favorites.List(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Internal(err, "[WhoAmI] Favorites")
	}
	pub := user.Public(favs)
	return &pub, nil
}

// Authenticate verifies an access token and returns the user id it was issued to.
func (as *AuthService) Authenticate(accessToken string) (string, error) {
	claims, err := as.tokens.ParseAccessToken(accessToken)
	if err != nil {
		return "", apperrors.AuthWrap(err, InvalidAccessTokenMsg)
	}
	return claims.UserID, nil
}

// ParseBearer pulls the token out of an Authorization header and authenticates it.
func (as *AuthService) ParseBearer(header string) (string, error) {
	tok, err := as.validator.ValidateBearerHeader(header)
	if err != nil {
		return "", err
	}
	return as.Authenticate(tok)
}

func (as *AuthService) RefreshTokenExpiry() time.Duration {
	return as.tokens.RefreshTokenExpiry()
}

func (as *AuthService) newSession(user *users.User, favs []string) (*Session, error) {
	access, err := as.tokens.CreateAccessToken(user.ID)
	if err != nil {
		return nil, apperrors.Internal(err, "CreateAccessToken")
	}
	refresh, err := as.tokens.CreateRefreshToken(user.ID)
	if err != nil {
		return nil, apperrors.Internal(err, "CreateRefreshToken")
	}
	return &Session{AccessToken: access, RefreshToken: refresh, User: user.Public(favs)}, nil
}

func (as *AuthService) dummyPasswordHash() string {
	as.dummyOnce.Do(func() {
		as.dummyHash, _ = users.HashPassword("dummy-password-for-timing", as.bcryptCost)
	})
	return as.dummyHash
}
