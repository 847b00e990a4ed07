package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/world-explorer/password"
	"github.com/jrsteele09/world-explorer/quiz"
	"github.com/jrsteele09/world-explorer/users"
)

type sessionResponse struct {
	AccessToken string           `json:"accessToken"`
	User        users.PublicUser `json:"user"`
}

// PasswordCheck is the server's verdict on a candidate password.
type PasswordCheck struct {
	Valid        bool                   `json:"valid"`
	Message      string                 `json:"message"`
	Unmet        []password.Rule        `json:"unmet"`
	Requirements []password.Requirement `json:"requirements"`
	Percentage   int                    `json:"percentage"`
	Level        password.Level         `json:"level"`
}

func (c *Client) Register(ctx context.Context, username, email, pw string) (*users.PublicUser, error) {
	return c.startSession(ctx, pathRegister, map[string]string{
		"username": username,
		"email":    email,
		"password": pw,
	})
}

func (c *Client) Login(ctx context.Context, email, pw string) (*users.PublicUser, error) {
	return c.startSession(ctx, pathLogin, map[string]string{
		"email":    email,
		"password": pw,
	})
}

func (c *Client) startSession(ctx context.Context, path string, body map[string]string) (*users.PublicUser, error) {
	var out sessionResponse
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Out: &out}); err != nil {
		return nil, err
	}
	if err := c.store.Set(out.AccessToken); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Logout ends the server session and always forgets the local access token.
func (c *Client) Logout(ctx context.Context) error {
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: pathLogout, NoRefresh: true})
	if clearErr := c.store.Clear(); clearErr != nil && err == nil {
		err = clearErr
	}
	return err
}

func (c *Client) Me(ctx context.Context) (*users.PublicUser, error) {
	var out users.PublicUser
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/auth/me", Out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// MeOnce is Me without the automatic refresh.
func (c *Client) MeOnce(ctx context.Context) (*users.PublicUser, error) {
	var out users.PublicUser
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/auth/me", Out: &out, NoRefresh: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Status(ctx context.Context) (*users.PublicUser, error) {
	var out struct {
		User users.PublicUser `json:"user"`
	}
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/auth/status", Out: &out}); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) ValidatePassword(ctx context.Context, pw string) (*PasswordCheck, error) {
	var out PasswordCheck
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/auth/validate-password",
		Body: map[string]string{"password": pw}, Out: &out})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Favorites(ctx context.Context) ([]string, error) {
	return c.favorites(ctx, http.MethodGet, "/api/favorites", nil)
}

func (c *Client) AddFavorite(ctx context.Context, countryCode string) ([]string, error) {
	return c.favorites(ctx, http.MethodPost, "/api/favorites", map[string]string{"countryCode": countryCode})
}

func (c *Client) RemoveFavorite(ctx context.Context, countryCode string) ([]string, error) {
	return c.favorites(ctx, http.MethodDelete, "/api/favorites/"+url.PathEscape(countryCode), nil)
}

func (c *Client) ToggleFavorite(ctx context.Context, countryCode string) ([]string, error) {
	return c.favorites(ctx, http.MethodPost, "/api/favorites/toggle", map[string]string{"countryCode": countryCode})
}

func (c *Client) favorites(ctx context.Context, method, path string, body any) ([]string, error) {
	codes := []string{}
	if err := c.Do(ctx, Request{Method: method, Path: path, Body: body, Out: &codes}); err != nil {
		return nil, err
	}
	return codes, nil
}

func (c *Client) SaveQuizResult(ctx context.Context, in quiz.Input) (*quiz.Result, error) {
	var out struct {
		Data quiz.Result `json:"data"`
	}
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/quiz/results", Body: in, Out: &out}); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) QuizResults(ctx context.Context) ([]quiz.Result, error) {
	var out struct {
		Data []quiz.Result `json:"data"`
	}
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/quiz/results", Out: &out}); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: "/healthz", NoRefresh: true})
}
