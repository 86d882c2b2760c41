package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ServerError carries the HTTP status and the human-readable message the
// server attached to a rejection. It is always joined onto one of the
// package sentinels, so callers match the kind with errors.Is and pull the
// message out with errors.As.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Message)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Token string `json:"token"`
}

// tokenResponse is the payload of both the login and refresh endpoints.
// ExpiresAt is optional and covers deployments issuing opaque tokens whose
// expiry cannot be read client-side; User is optional on refresh.
type tokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresAt    *time.Time   `json:"expiresAt,omitempty"`
	User         *UserProfile `json:"user,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// decodeTokenResponse validates the token payload at the boundary: both
// tokens must be present, everything else is optional.
func decodeTokenResponse(body []byte) (*tokenResponse, error) {
	var payload tokenResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Join(ErrNetwork, err)
	}
	if payload.AccessToken == "" || payload.RefreshToken == "" {
		return nil, errors.Join(ErrNetwork, errors.New("token response missing required fields"))
	}
	return &payload, nil
}

// serverError extracts the status and optional message from a rejection body
func serverError(resp *Response) *ServerError {
	e := &ServerError{Status: resp.StatusCode}
	var payload errorResponse
	if json.Unmarshal(resp.Body, &payload) == nil {
		e.Message = payload.Message
	}
	return e
}
