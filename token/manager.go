package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/world-explorer/internal/errors"
)

// Type tells access and refresh tokens apart. It is carried in the "typ" claim.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

const (
	DefaultAccessTokenExpiry  = 15 * time.Minute
	DefaultRefreshTokenExpiry = 7 * 24 * time.Hour
)

// Claims is the payload of both token types.
type Claims struct {
	UserID string `json:"userId"`
	Type   Type   `json:"typ"`
	jwt.RegisteredClaims
}

// Manager mints and verifies the access/refresh token pair. The two token types are
// signed by different signers so one can never be accepted as the other.
type Manager struct {
	accessSigner       Signer
	refreshSigner      Signer
	revokedCache       RevokedTokenCache // nil disables the refresh token denylist
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	nowFunc            func() time.Time
}

type ManagerOption func(*Manager)

func WithTokenExpiry(accessTokenExpiry time.Duration, refreshTokenExpiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = accessTokenExpiry
		m.refreshTokenExpiry = refreshTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

// WithRevokedTokenCache enables the refresh token denylist.
func WithRevokedTokenCache(cache RevokedTokenCache) ManagerOption {
	return func(m *Manager) {
		m.revokedCache = cache
	}
}

func New(accessSigner, refreshSigner Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		accessSigner:  accessSigner,
		refreshSigner: refreshSigner,
	}

	for _, opt := range options {
		opt(m)
	}

	if m.accessTokenExpiry == 0 {
		m.accessTokenExpiry = DefaultAccessTokenExpiry
	}
	if m.refreshTokenExpiry == 0 {
		m.refreshTokenExpiry = DefaultRefreshTokenExpiry
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	return m
}

func (m *Manager) AccessTokenExpiry() time.Duration {
	return m.accessTokenExpiry
}

func (m *Manager) RefreshTokenExpiry() time.Duration {
	return m.refreshTokenExpiry
}

func (m *Manager) CreateAccessToken(userID string) (string, error) {
	return m.create(m.accessSigner, userID, TypeAccess, m.accessTokenExpiry)
}

func (m *Manager) CreateRefreshToken(userID string) (string, error) {
	return m.create(m.refreshSigner, userID, TypeRefresh, m.refreshTokenExpiry)
}

func (m *Manager) create(signer Signer, userID string, typ Type, expiry time.Duration) (string, error) {
	now := m.nowFunc()
	claims := Claims{
		UserID: userID,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			ID:        uuid.New().String(),
		},
	}
	signed, err := signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("Manager.create %s: %w", typ, err)
	}
	return signed, nil
}

// ParseAccessToken verifies an access token and returns its claims.
func (m *Manager) ParseAccessToken(raw string) (*Claims, error) {
	return m.parse(m.accessSigner, raw, TypeAccess)
}

// ParseRefreshToken verifies a refresh token, including the denylist when enabled.
func (m *Manager) ParseRefreshToken(raw string) (*Claims, error) {
	claims, err := m.parse(m.refreshSigner, raw, TypeRefresh)
	if err != nil {
		return nil, err
	}
	if m.revokedCache != nil && m.revokedCache.IsRevoked(claims.ID) {
		return nil, apperrors.ErrTokenRevoked
	}
	return claims, nil
}

// RevokeRefreshToken denylists a refresh token until it expires. It is a no-op when the
// denylist is disabled or the token does not verify.
func (m *Manager) RevokeRefreshToken(raw string) error {
	if m.revokedCache == nil {
		return nil
	}
	claims, err := m.parse(m.refreshSigner, raw, TypeRefresh)
	if err != nil || claims.ID == "" {
		return nil
	}
	return m.revokedCache.Add(claims.ID, claims.ExpiresAt.Time)
}

func (m *Manager) parse(signer Signer, raw string, want Type) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperrors.ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(m.nowFunc),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	claims := &Claims{}
	if _, err := parser.ParseWithClaims(raw, claims, signer.GetVerificationKey); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	if claims.Type != want || claims.UserID == "" {
		return nil, fmt.Errorf("%w: expected %s token", apperrors.ErrInvalidToken, want)
	}
	return claims, nil
}
