package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/jrsteele09/world-explorer/internal/errors"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	maxBodyBytes    = 1 << 20
)

// errorResponse is the body of every failed request. Detail is only filled outside production.
type errorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	resp := errorResponse{Message: apperrors.PublicMessage(err)}
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
		if !s.production {
			resp.Detail = err.Error()
		}
	}
	writeJSON(w, status, resp)
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched so the
// service can report the missing fields itself.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.Validation("Invalid request body")
	}
	return nil
}
