package session

import "errors"

var (
	// ErrInvalidCredentials indicates the login was rejected by the server.
	// Recoverable by user retry; never tears down an existing session.
	ErrInvalidCredentials = errors.New("session.invalid_credentials")

	// ErrNetwork indicates a transport-level failure: timeout, unreachable
	// host or a malformed response body
	ErrNetwork = errors.New("session.network")

	// ErrAuthExpired indicates the refresh token was rejected or the refresh
	// cycle failed. Always accompanied by a full logout side effect.
	ErrAuthExpired = errors.New("session.auth_expired")

	// ErrMalformedToken indicates an access token whose expiry claim could
	// not be decoded
	ErrMalformedToken = errors.New("session.malformed_token")

	// ErrMissingBaseURL indicates the manager was created without a base URL
	ErrMissingBaseURL = errors.New("session.missing_base_url")

	// ErrMissingStore indicates the manager was created without a credential store
	ErrMissingStore = errors.New("session.missing_store")
)
