package config

import (
	"sort"
	"strings"
)

const allowedOriginsEnvVar = "ALLOWED_ORIGINS"

type Cors struct{}

var _ CorsConfig = Cors{}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	sort.Strings(origins)
	return strings.Join(origins, ", ")
}

// ParseAllowedOrigins splits a comma separated origin list. Trailing slashes are dropped
// because browsers never send them in the Origin header.
func ParseAllowedOrigins(list string) AllowedOrigins {
	origins := AllowedOrigins{}
	for _, o := range strings.Split(list, ",") {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o != "" {
			origins[o] = nullValue{}
		}
	}
	return origins
}

func (Cors) GetAllowedOrigins() AllowedOrigins {
	return ParseAllowedOrigins(GetEnv(allowedOriginsEnvVar, "http://localhost:5173"))
}

func (Cors) GetAllowedMethods() string {
	return "GET, POST, PUT, PATCH, DELETE"
}

func (Cors) GetAllowedHeaders() string {
	return "Content-Type, Authorization"
}
