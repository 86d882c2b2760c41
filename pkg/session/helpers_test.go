package session_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/copratrack/sessionkit/pkg/credstore"
	"github.com/copratrack/sessionkit/pkg/session"
)

// testJWT builds an unsigned JWT with the given expiry. The manager never
// verifies signatures, so a placeholder segment is enough.
func testJWT(t *testing.T, exp time.Time) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(map[string]int64{"exp": exp.Unix()})
	require.NoError(t, err)

	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newManager(t *testing.T, baseURL string, opts ...session.Option) (*session.Manager, *credstore.MemoryStore) {
	t.Helper()

	store := credstore.NewMemoryStore()
	opts = append([]session.Option{session.WithLogger(quietLogger())}, opts...)

	manager, err := session.New(session.Config{BaseURL: baseURL}, store, opts...)
	require.NoError(t, err)

	return manager, store
}

// failStore wraps a Store and fails selected operations with ErrUnavailable
type failStore struct {
	credstore.Store
	failGet bool
	failSet bool
}

func (s *failStore) Get(ctx context.Context, key string) (string, error) {
	if s.failGet {
		return "", credstore.ErrUnavailable
	}
	return s.Store.Get(ctx, key)
}

func (s *failStore) Set(ctx context.Context, key, value string) error {
	if s.failSet {
		return credstore.ErrUnavailable
	}
	return s.Store.Set(ctx, key, value)
}
