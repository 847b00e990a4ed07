package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteAuthRegister         = "/api/auth/register"
	RouteAuthLogin            = "/api/auth/login"
	RouteAuthLogout           = "/api/auth/logout"
	RouteAuthRefreshToken     = "/api/auth/refresh-token"
	RouteAuthMe               = "/api/auth/me"
	RouteAuthStatus           = "/api/auth/status"
	RouteAuthValidatePassword = "/api/auth/validate-password"

	// Favorites Routes
	RouteFavorites       = "/api/favorites"
	RouteFavoritesToggle = "/api/favorites/toggle"
	RouteFavoriteCountry = "/api/favorites/{countryCode}"

	// Quiz Routes
	RouteQuizResults = "/api/quiz/results"

	RouteHealth = "/healthz"
)

// RefreshCookieName is the HttpOnly cookie carrying the refresh token
const RefreshCookieName = "refreshToken"
