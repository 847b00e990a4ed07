package config

const (
	bcryptCostEnvVar      = "BCRYPT_COST"
	refreshDenylistEnvVar = "REFRESH_TOKEN_DENYLIST"
)

type SecurityConfig interface {
	GetBcryptCost() int
	GetRefreshTokenDenylist() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetBcryptCost() int {
	return GetEnvInt(bcryptCostEnvVar, 12)
}

// GetRefreshTokenDenylist turns on remembering logged-out refresh tokens until they expire.
func (Security) GetRefreshTokenDenylist() bool {
	return GetEnvBool(refreshDenylistEnvVar, false)
}
