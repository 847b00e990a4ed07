package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	apperrors "github.com/jrsteele09/world-explorer/internal/errors"
)

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler) // Call the middleware function
	}
	return chainedHandler
}

// statusRecorder remembers the status code written through it
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		evt := s.log.Info()
		if rec.status >= http.StatusInternalServerError {
			evt = s.log.Error()
		}
		path := r.URL.Path
		if s.env == "DEV" {
			path = colourMethod(r.Method) + " " + path
			if rec.status >= http.StatusBadRequest {
				path += " " + Red + http.StatusText(rec.status) + ResetColor
			}
		}
		evt.Str("method", r.Method).
			Int("status", rec.status).
			Int("bytes", rec.bytes).
			Dur("duration", time.Since(start)).
			Msg(path)
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				s.log.Error().Str("stack", string(debug.Stack())).Msgf("panic: %v", p)
				s.writeError(w, apperrors.Internal(fmt.Errorf("panic: %v", p), "recovered"))
			}
		}()
		next(w, r)
	}
}

func (s *Server) CorsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// No Origin header = same-origin request, no CORS headers needed
		if origin == "" {
			next(w, r)
			return
		}

		// Credentials are always allowed, so a wildcard origin is never echoed
		allowedOrigins := s.config.GetAllowedOrigins()
		isAllowed := allowedOrigins.IsAllowedOrigin(origin)
		if isAllowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}

		// Handle preflight (OPTIONS) requests
		if r.Method == http.MethodOptions {
			if isAllowed {
				w.Header().Set("Access-Control-Allow-Methods", s.config.GetAllowedMethods())
				w.Header().Set("Access-Control-Allow-Headers", s.config.GetAllowedHeaders())
				w.Header().Set("Access-Control-Max-Age", "86400")
			}
			// If not allowed, return 204 with no CORS headers and the browser blocks the request
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}
