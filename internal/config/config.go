package config

type Config interface {
	EnvConfig
	CorsConfig
	TokenConfig
	SecurityConfig
	StorageConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsProduction() bool
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type StorageConfig interface {
	GetStorage() string
	GetDatabaseURL() string
}

type mainConfig struct {
	EnvVars
	Cors
	Tokens
	Security
	Storage
}

func New() Config {
	return mainConfig{}
}
