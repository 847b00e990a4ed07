package server

import (
	"net/http"
	"time"

	"github.com/jrsteele09/world-explorer/auth"
	apperrors "github.com/jrsteele09/world-explorer/internal/errors"
	"github.com/jrsteele09/world-explorer/password"
	"github.com/jrsteele09/world-explorer/users"
)

type sessionResponse struct {
	AccessToken string           `json:"accessToken"`
	User        users.PublicUser `json:"user"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type statusResponse struct {
	User *users.PublicUser `json:"user"`
}

type validatePasswordRequest struct {
	Password *string `json:"password"`
}

type validatePasswordResponse struct {
	Valid        bool                   `json:"valid"`
	Message      string                 `json:"message"`
	Unmet        []password.Rule        `json:"unmet"`
	Requirements []password.Requirement `json:"requirements"`
	Percentage   int                    `json:"percentage"`
	Level        password.Level         `json:"level"`
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.RegisterRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		session, err := s.services.Auth.Register(r.Context(), req)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.setRefreshCookie(w, session.RefreshToken)
		writeJSON(w, http.StatusCreated, sessionResponse{AccessToken: session.AccessToken, User: session.User})
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		session, err := s.services.Auth.Login(r.Context(), req)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.setRefreshCookie(w, session.RefreshToken)
		writeJSON(w, http.StatusOK, sessionResponse{AccessToken: session.AccessToken, User: session.User})
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(RefreshCookieName); err == nil {
			_ = s.services.Auth.Logout(r.Context(), cookie.Value)
		}
		s.clearRefreshCookie(w)
		writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
	}
}

func (s *Server) RefreshTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var refreshToken string
		if cookie, err := r.Cookie(RefreshCookieName); err == nil {
			refreshToken = cookie.Value
		}

		accessToken, err := s.services.Auth.Refresh(r.Context(), refreshToken)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, accessTokenResponse{AccessToken: accessToken})
	}
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.currentUser(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.currentUser(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{User: user})
	}
}

// ValidatePasswordHandler validates password strength via API
func (s *Server) ValidatePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validatePasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, err)
			return
		}
		if req.Password == nil {
			s.writeError(w, apperrors.Validation("Password is required"))
			return
		}

		res := password.Validate(*req.Password)
		strength := password.Measure(*req.Password)
		unmet := res.Unmet
		if unmet == nil {
			unmet = []password.Rule{}
		}
		writeJSON(w, http.StatusOK, validatePasswordResponse{
			Valid:        res.Valid,
			Message:      res.Message,
			Unmet:        unmet,
			Requirements: strength.Requirements,
			Percentage:   strength.Percentage,
			Level:        strength.Level,
		})
	}
}

func (s *Server) currentUser(r *http.Request) (*users.PublicUser, error) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		return nil, apperrors.Auth(auth.NotAuthorizedMsg)
	}
	return s.services.Auth.WhoAmI(r.Context(), userID)
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.services.Auth.RefreshTokenExpiry() / time.Second),
		HttpOnly: true,
		Secure:   s.production,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.production,
		SameSite: http.SameSiteLaxMode,
	})
}
