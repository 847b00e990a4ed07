package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	envVar         = "ENV"
	logLevelEnvVar = "LOG_LEVEL"

	// ProductionEnv is the ENV value that switches on Secure cookies and hides error detail.
	ProductionEnv = "production"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "World Explorer")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "DEV")
}

func (e EnvVars) IsProduction() bool {
	return strings.EqualFold(e.GetEnv(), ProductionEnv)
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelEnvVar, "info")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvDuration parses a Go duration ("15m", "1h"); invalid values fall back to the default.
func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func GetEnvInt(envVar string, defaultValue int) int {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}

func GetEnvBool(envVar string, defaultValue bool) bool {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
