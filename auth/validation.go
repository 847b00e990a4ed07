package auth

import (
	"strings"

	apperrors "github.com/jrsteele09/world-explorer/internal/errors"
	"github.com/jrsteele09/world-explorer/password"
	"github.com/jrsteele09/world-explorer/users"
)

// RegisterRequest is the body of a registration call.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of a login call.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validator provides the input checks for the auth flows
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRegistration normalizes req in place and returns the first failed check.
// Password failures name every unmet rule.
func (v *Validator) ValidateRegistration(req *RegisterRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = users.NormalizeEmail(req.Email)

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return apperrors.Validation(MissingRegisterFieldsMsg)
	}
	if !users.IsValidEmail(req.Email) {
		return apperrors.Validation(InvalidEmailMsg)
	}
	return password.Check(req.Password)
}

// ValidateUserCredentials validates login credentials
func (v *Validator) ValidateUserCredentials(req *LoginRequest) error {
	req.Email = users.NormalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return apperrors.Validation(MissingLoginFieldsMsg)
	}
	return nil
}

// ValidateBearerHeader extracts the token from an Authorization header value
func (v *Validator) ValidateBearerHeader(header string) (string, error) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", apperrors.Auth(NotAuthorizedMsg)
	}
	tok := strings.TrimSpace(header[len(prefix):])
	if tok == "" {
		return "", apperrors.Auth(NotAuthorizedMsg)
	}
	return tok, nil
}
