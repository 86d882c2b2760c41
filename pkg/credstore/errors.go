package credstore

import "errors"

var (
	// ErrUnavailable indicates the underlying secure storage cannot be reached.
	// It is never returned for an absent key.
	ErrUnavailable = errors.New("credstore.unavailable")

	// ErrInvalidSecret indicates the file store secret has the wrong length
	ErrInvalidSecret = errors.New("credstore.invalid_secret")

	// ErrFailedToParseRedisConnString indicates a malformed Redis connection URL
	ErrFailedToParseRedisConnString = errors.New("credstore.invalid_redis_conn_string")

	// ErrRedisNotReady indicates the Redis server could not be reached after all retries
	ErrRedisNotReady = errors.New("credstore.redis_not_ready")
)
