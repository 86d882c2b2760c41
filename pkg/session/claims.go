package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// tokenExpiry extracts the exp claim from a JWT access token without
// verifying the signature. The client never holds the signing key; the claim
// is only used to schedule refreshes ahead of server-side rejection, so a
// forged expiry gains an attacker nothing.
func tokenExpiry(token string) (time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, ErrMalformedToken
	}

	payload, err := base64URLDecode(parts[1])
	if err != nil {
		return time.Time{}, errors.Join(ErrMalformedToken, err)
	}

	var claims struct {
		ExpiresAt int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, errors.Join(ErrMalformedToken, err)
	}
	if claims.ExpiresAt <= 0 {
		return time.Time{}, ErrMalformedToken
	}

	return time.Unix(claims.ExpiresAt, 0), nil
}

// base64URLDecode decodes base64url data, restoring padding as needed.
// JWT segments omit padding per RFC 7515, but Go's decoder requires it.
func base64URLDecode(s string) ([]byte, error) {
	switch len(s) % 4 {
	case 2:
		s += "=="
	case 3:
		s += "="
	}
	return base64.URLEncoding.DecodeString(s)
}
