package session

import (
	"log/slog"
	"net/http"
)

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithHTTPClient sets a custom HTTP client. Each dispatch is still bounded
// by the configured request timeout through its context.
func WithHTTPClient(client *http.Client) Option {
	return func(m *Manager) {
		if client != nil {
			m.client = client
		}
	}
}

// WithLogger sets the logger used for best-effort paths
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithOnChange registers a callback invoked with a session snapshot after
// every state transition: login, restore, refresh and logout. Called
// synchronously outside the manager's lock; long-running observers should
// hand off to their own goroutine.
func WithOnChange(fn func(Session)) Option {
	return func(m *Manager) {
		m.onChange = fn
	}
}
