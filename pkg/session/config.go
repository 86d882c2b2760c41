package session

import "time"

// Config holds the session manager configuration
type Config struct {
	// BaseURL is the API origin all requests are resolved against (required)
	BaseURL string `env:"AUTH_BASE_URL,required"`

	// LoginPath is the credentials endpoint
	LoginPath string `env:"AUTH_LOGIN_PATH" envDefault:"/auth"`

	// RefreshPath is the token refresh endpoint
	RefreshPath string `env:"AUTH_REFRESH_PATH" envDefault:"/auth/refresh"`

	// RequestTimeout bounds every outbound HTTP call. A hung call must never
	// hold the refresh cycle open indefinitely.
	RequestTimeout time.Duration `env:"AUTH_REQUEST_TIMEOUT" envDefault:"10s"`

	// ExpiryBuffer is how long before claimed expiry a token is treated as stale
	ExpiryBuffer time.Duration `env:"AUTH_EXPIRY_BUFFER" envDefault:"60s"`

	// Credential store key names. Fixed at startup; changing them between
	// releases orphans previously stored credentials.
	AccessTokenKey  string `env:"AUTH_ACCESS_TOKEN_KEY" envDefault:"auth.access_token"`
	RefreshTokenKey string `env:"AUTH_REFRESH_TOKEN_KEY" envDefault:"auth.refresh_token"`
	ProfileKey      string `env:"AUTH_USER_DATA_KEY" envDefault:"auth.user_data"`
}

// DefaultConfig returns the default configuration; BaseURL must still be set
func DefaultConfig() Config {
	return Config{
		LoginPath:       "/auth",
		RefreshPath:     "/auth/refresh",
		RequestTimeout:  10 * time.Second,
		ExpiryBuffer:    60 * time.Second,
		AccessTokenKey:  "auth.access_token",
		RefreshTokenKey: "auth.refresh_token",
		ProfileKey:      "auth.user_data",
	}
}

// withDefaults fills zero-valued fields from DefaultConfig
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.LoginPath == "" {
		c.LoginPath = def.LoginPath
	}
	if c.RefreshPath == "" {
		c.RefreshPath = def.RefreshPath
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	if c.ExpiryBuffer <= 0 {
		c.ExpiryBuffer = def.ExpiryBuffer
	}
	if c.AccessTokenKey == "" {
		c.AccessTokenKey = def.AccessTokenKey
	}
	if c.RefreshTokenKey == "" {
		c.RefreshTokenKey = def.RefreshTokenKey
	}
	if c.ProfileKey == "" {
		c.ProfileKey = def.ProfileKey
	}
	return c
}
