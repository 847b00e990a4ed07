package server

import (
	"net/http"

	"github.com/jrsteele09/world-explorer/auth"
	apperrors "github.com/jrsteele09/world-explorer/internal/errors"
	"github.com/jrsteele09/world-explorer/quiz"
)

type countryCodeRequest struct {
	CountryCode string `json:"countryCode"`
}

type quizResultResponse struct {
	Success bool         `json:"success"`
	Data    *quiz.Result `json:"data"`
}

type quizResultsResponse struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Data    []quiz.Result `json:"data"`
}

func (s *Server) ListFavoritesHandler() http.HandlerFunc {
	return s.withUser(func(w http.ResponseWriter, r *http.Request, userID string) {
		codes, err := s.services.Favorites.List(r.Context(), userID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, codes)
	})
}

func (s *Server) AddFavoriteHandler() http.HandlerFunc {
	return s.withUser(func(w http.ResponseWriter, r *http.Request, userID string) {
		var req countryCodeRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, err)
			return
		}
		codes, err := s.services.Favorites.Add(r.Context(), userID, req.CountryCode)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, codes)
	})
}

func (s *Server) RemoveFavoriteHandler() http.HandlerFunc {
	return s.withUser(func(w http.ResponseWriter, r *http.Request, userID string) {
		codes, err := s.services.Favorites.Remove(r.Context(), userID, r.PathValue("countryCode"))
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, codes)
	})
}

func (s *Server) ToggleFavoriteHandler() http.HandlerFunc {
	return s.withUser(func(w http.ResponseWriter, r *http.Request, userID string) {
		var req countryCodeRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, err)
			return
		}
		codes, err := s.services.Favorites.Toggle(r.Context(), userID, req.CountryCode)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, codes)
	})
}

func (s *Server) SaveQuizResultHandler() http.HandlerFunc {
	return s.withUser(func(w http.ResponseWriter, r *http.Request, userID string) {
		var in quiz.Input
		if err := decodeJSON(w, r, &in); err != nil {
			s.writeError(w, err)
			return
		}
		result, err := s.services.Quiz.Save(r.Context(), userID, in)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, quizResultResponse{Success: true, Data: result})
	})
}

func (s *Server) ListQuizResultsHandler() http.HandlerFunc {
	return s.withUser(func(w http.ResponseWriter, r *http.Request, userID string) {
		results, err := s.services.Quiz.List(r.Context(), userID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, quizResultsResponse{Success: true, Count: len(results), Data: results})
	})
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.healthCheck != nil {
			if err := s.healthCheck(r.Context()); err != nil {
				s.log.Warn().Err(err).Msg("health check failed")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Route not found"})
	}
}

// withUser adapts a handler that needs the id RequireAuth put on the context
func (s *Server) withUser(h func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			s.writeError(w, apperrors.Auth(auth.NotAuthorizedMsg))
			return
		}
		h(w, r, userID)
	}
}
