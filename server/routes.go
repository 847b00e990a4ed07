package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	// AUTH
	s.RegisterRouteFunc("POST "+RouteAuthRegister, s.RegisterHandler())
	s.RegisterRouteFunc("POST "+RouteAuthLogin, s.LoginHandler())
	s.RegisterRouteFunc("POST "+RouteAuthLogout, s.LogoutHandler())
	s.RegisterRouteFunc("GET "+RouteAuthRefreshToken, s.RefreshTokenHandler())
	s.RegisterRouteFunc("POST "+RouteAuthValidatePassword, s.ValidatePasswordHandler())
	s.RegisterRouteHandler("GET "+RouteAuthMe, ChainMiddleware(s.MeHandler(), s.RequireAuth()))
	s.RegisterRouteHandler("GET "+RouteAuthStatus, ChainMiddleware(s.StatusHandler(), s.RequireAuth()))

	// FAVORITES
	s.RegisterRouteHandler("GET "+RouteFavorites, ChainMiddleware(s.ListFavoritesHandler(), s.RequireAuth()))
	s.RegisterRouteHandler("POST "+RouteFavorites, ChainMiddleware(s.AddFavoriteHandler(), s.RequireAuth()))
	s.RegisterRouteHandler("POST "+RouteFavoritesToggle, ChainMiddleware(s.ToggleFavoriteHandler(), s.RequireAuth()))
	s.RegisterRouteHandler("DELETE "+RouteFavoriteCountry, ChainMiddleware(s.RemoveFavoriteHandler(), s.RequireAuth()))

	// QUIZ
	s.RegisterRouteHandler("GET "+RouteQuizResults, ChainMiddleware(s.ListQuizResultsHandler(), s.RequireAuth()))
	s.RegisterRouteHandler("POST "+RouteQuizResults, ChainMiddleware(s.SaveQuizResultHandler(), s.RequireAuth()))

	s.RegisterRouteFunc("/", s.NotFoundHandler())
}
