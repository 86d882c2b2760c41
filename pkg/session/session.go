package session

// UserProfile carries the denormalized user attributes cached alongside the
// tokens. It is never authoritative: the server's copy wins, and the cached
// value is refreshed opportunistically from login and refresh responses.
// Optional fields stay zero when the server omits them.
type UserProfile struct {
	ID             string `json:"id"`
	Email          string `json:"email,omitempty"`
	Name           string `json:"name,omitempty"`
	Role           string `json:"role,omitempty"`
	OrganizationID string `json:"organizationId,omitempty"`
	EmailVerified  bool   `json:"emailVerified,omitempty"`
	PhoneVerified  bool   `json:"phoneVerified,omitempty"`
}

// Session is the in-memory authentication state. The zero value is the
// logged-out state.
type Session struct {
	// AccessToken is the short-lived bearer credential attached to requests
	AccessToken string

	// RefreshToken is the long-lived credential used only to mint new access tokens
	RefreshToken string

	// Profile is the cached user profile from the last login or refresh
	Profile UserProfile
}

// Authenticated reports whether both tokens are present
func (s Session) Authenticated() bool {
	return s.AccessToken != "" && s.RefreshToken != ""
}
