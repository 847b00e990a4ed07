package users

import (
	"crypto/sha256"
	"encoding/base64"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultAvatar is given to every new explorer.
const DefaultAvatar = "lion"

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never serialize
	Avatar       string    `json:"avatar"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the only shape of a user the API ever returns.
type PublicUser struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	Avatar            string    `json:"avatar"`
	FavoriteCountries []string  `json:"favoriteCountries"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Public projects the stored record onto PublicUser. favorites may be nil.
func (u *User) Public(favorites []string) PublicUser {
	if favorites == nil {
		favorites = []string{}
	}
	return PublicUser{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		Avatar:            u.Avatar,
		FavoriteCountries: favorites,
		CreatedAt:         u.CreatedAt,
	}
}

// NormalizeEmail lower-cases and trims, matching how emails are stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// HashPassword bcrypts a SHA-256 digest of password, so passwords longer than
// bcrypt's 72 byte input limit are accepted and every byte of them counts.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword(prehash(password), cost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), prehash(password))
	return err == nil
}

// prehash is base64 so the digest never contains a NUL byte.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// CheckPassword compares password against the user's stored hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}
