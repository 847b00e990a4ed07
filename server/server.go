package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/world-explorer/auth"
	"github.com/jrsteele09/world-explorer/favorites"
	"github.com/jrsteele09/world-explorer/internal/config"
	"github.com/jrsteele09/world-explorer/quiz"
)

// Services holds the domain services the handlers delegate to
type Services struct {
	Auth      *auth.AuthService
	Favorites *favorites.Service
	Quiz      *quiz.Service
}

type Server struct {
	env         string // Environment (e.g., "DEV", "production")
	production  bool
	mux         *http.ServeMux
	handler     http.HandlerFunc
	routes      []string
	config      config.Config
	services    Services
	log         zerolog.Logger
	healthCheck func(ctx context.Context) error
}

type Option func(*Server)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithHealthCheck makes /healthz report unavailable while check fails.
func WithHealthCheck(check func(ctx context.Context) error) Option {
	return func(s *Server) {
		s.healthCheck = check
	}
}

func New(config config.Config, services Services, options ...Option) (*Server, error) {
	if services.Auth == nil || services.Favorites == nil || services.Quiz == nil {
		return nil, errors.New("[Server New] auth, favorites and quiz services are required")
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   config,
		services: services,
		log:      zerolog.Nop(),
	}
	s.env = config.GetEnv()
	s.production = config.IsProduction()

	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	s.handler = ChainMiddleware(s.mux.ServeHTTP, s.LoggingMiddleware, s.RecoverMiddleware, s.CorsMiddleware)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes lists every registered pattern in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	s.log.Info().Msg(fmt.Sprintf("[%-19s] %s", colourMethod(method), path))
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
