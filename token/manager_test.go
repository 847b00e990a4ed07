package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/world-explorer/internal/errors"
	"github.com/jrsteele09/world-explorer/token"
	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "access-secret"
	refreshSecret = "refresh-secret"
	testUserID    = "user-1"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func newManager(c *clock, opts ...token.ManagerOption) *token.Manager {
	opts = append([]token.ManagerOption{token.WithNowFunc(c.Now)}, opts...)
	return token.New(token.NewHMACSigner(accessSecret), token.NewHMACSigner(refreshSecret), opts...)
}

func TestAccessToken(t *testing.T) {
	c := &clock{now: time.Now()}
	m := newManager(c)

	raw, err := m.CreateAccessToken(testUserID)
	require.NoError(t, err)

	claims, err := m.ParseAccessToken(raw)
	require.NoError(t, err)
	require.Equal(t, testUserID, claims.UserID)
	require.Equal(t, testUserID, claims.Subject)
	require.Equal(t, token.TypeAccess, claims.Type)
	require.NotEmpty(t, claims.ID)
	require.Equal(t, c.now.Add(token.DefaultAccessTokenExpiry).Unix(), claims.ExpiresAt.Unix())

	t.Run("raw claims use the wire names", func(t *testing.T) {
		mc := jwt.MapClaims{}
		_, _, err := jwt.NewParser().ParseUnverified(raw, mc)
		require.NoError(t, err)
		require.Equal(t, testUserID, mc["userId"])
		require.Equal(t, "access", mc["typ"])
		for _, k := range []string{"sub", "iat", "exp", "jti"} {
			require.Contains(t, mc, k)
		}
	})

	t.Run("expired", func(t *testing.T) {
		c.now = c.now.Add(token.DefaultAccessTokenExpiry + time.Second)
		_, err := m.ParseAccessToken(raw)
		require.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	m := newManager(&clock{now: time.Now()})

	access, err := m.CreateAccessToken(testUserID)
	require.NoError(t, err)
	refresh, err := m.CreateRefreshToken(testUserID)
	require.NoError(t, err)

	_, err = m.ParseRefreshToken(access)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	_, err = m.ParseAccessToken(refresh)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)

	t.Run("same secret still checks the type", func(t *testing.T) {
		shared := token.NewHMACSigner("shared")
		m := token.New(shared, shared)
		refresh, err := m.CreateRefreshToken(testUserID)
		require.NoError(t, err)
		_, err = m.ParseAccessToken(refresh)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestRefreshTokenRejections(t *testing.T) {
	c := &clock{now: time.Now()}
	m := newManager(c)
	refresh, err := m.CreateRefreshToken(testUserID)
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, err := m.ParseRefreshToken("")
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("tampered signature", func(t *testing.T) {
		parts := strings.Split(refresh, ".")
		require.Len(t, parts, 3)
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		_, err := m.ParseRefreshToken(parts[0] + "." + parts[1] + "." + string(sig))
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := token.New(token.NewHMACSigner(accessSecret), token.NewHMACSigner("other"))
		_, err := other.ParseRefreshToken(refresh)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("alg none", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, token.Claims{
			UserID: testUserID,
			Type:   token.TypeRefresh,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(c.now.Add(time.Hour)),
			},
		})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.ParseRefreshToken(raw)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := newManager(&clock{now: c.now.Add(token.DefaultRefreshTokenExpiry + time.Minute)})
		_, err := later.ParseRefreshToken(refresh)
		require.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})
}

func TestRefreshDenylist(t *testing.T) {
	c := &clock{now: time.Now()}
	cache := token.NewInMemoryRevokedTokenCache().WithClock(c.Now)
	m := newManager(c, token.WithRevokedTokenCache(cache))

	refresh, err := m.CreateRefreshToken(testUserID)
	require.NoError(t, err)
	other, err := m.CreateRefreshToken(testUserID)
	require.NoError(t, err)

	require.NoError(t, m.RevokeRefreshToken(refresh))
	require.NoError(t, m.RevokeRefreshToken("garbage"))

	_, err = m.ParseRefreshToken(refresh)
	require.ErrorIs(t, err, apperrors.ErrTokenRevoked)
	_, err = m.ParseRefreshToken(other)
	require.NoError(t, err)

	require.Equal(t, 1, cache.Len())
	cache.Cleanup()
	require.Equal(t, 1, cache.Len())

	c.now = c.now.Add(token.DefaultRefreshTokenExpiry + time.Second)
	cache.Cleanup()
	require.Equal(t, 0, cache.Len())
}

func TestRevokeWithoutDenylistIsNoop(t *testing.T) {
	m := newManager(&clock{now: time.Now()})
	refresh, err := m.CreateRefreshToken(testUserID)
	require.NoError(t, err)

	require.NoError(t, m.RevokeRefreshToken(refresh))
	_, err = m.ParseRefreshToken(refresh)
	require.NoError(t, err)
}
