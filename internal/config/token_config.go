package config

import (
	"os"
	"time"
)

const (
	jwtSecretEnvVar        = "JWT_SECRET"
	jwtRefreshSecretEnvVar = "JWT_REFRESH_SECRET"
	accessTokenTTLEnvVar   = "ACCESS_TOKEN_TTL"
)

type TokenConfig interface {
	GetAccessTokenSecret() string
	GetRefreshTokenSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	HasExplicitSecrets() bool
}

type Tokens struct{}

var _ TokenConfig = Tokens{}

func (Tokens) GetAccessTokenSecret() string {
	return GetEnv(jwtSecretEnvVar, "dev-access-secret-change-me")
}

func (Tokens) GetRefreshTokenSecret() string {
	return GetEnv(jwtRefreshSecretEnvVar, "dev-refresh-secret-change-me")
}

func (Tokens) GetAccessTokenExpiry() time.Duration {
	return GetEnvDuration(accessTokenTTLEnvVar, 15*time.Minute)
}

func (Tokens) GetRefreshTokenExpiry() time.Duration {
	return 7 * 24 * time.Hour // 7 days, also the cookie Max-Age
}

// HasExplicitSecrets reports whether both signing secrets come from the environment
// rather than the development defaults.
func (Tokens) HasExplicitSecrets() bool {
	return os.Getenv(jwtSecretEnvVar) != "" && os.Getenv(jwtRefreshSecretEnvVar) != ""
}
