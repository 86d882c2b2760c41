package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copratrack/sessionkit/pkg/credstore"
	"github.com/copratrack/sessionkit/pkg/session"
)

// seedStore persists a credential triple the way a previous run would have
func seedStore(t *testing.T, store credstore.Store, access, refresh string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "auth.access_token", access))
	require.NoError(t, store.Set(ctx, "auth.refresh_token", refresh))
	require.NoError(t, store.Set(ctx, "auth.user_data", `{"id":"u1","role":"COPRA_BUYER"}`))
}

func TestManager_Restore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("adopts a fresh token without refreshing", func(t *testing.T) {
		t.Parallel()
		var refreshCalls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			refreshCalls.Add(1)
			json.NewEncoder(w).Encode(map[string]string{"accessToken": "T2", "refreshToken": "R2"})
		}))
		defer server.Close()

		manager, store := newManager(t, server.URL)
		access := testJWT(t, time.Now().Add(120*time.Second))
		seedStore(t, store, access, "R1")

		require.NoError(t, manager.Restore(ctx))

		current := manager.Current()
		assert.True(t, current.Authenticated())
		assert.Equal(t, access, current.AccessToken)
		assert.Equal(t, "COPRA_BUYER", current.Profile.Role)
		assert.EqualValues(t, 0, refreshCalls.Load())
	})

	t.Run("refreshes a token expiring inside the buffer", func(t *testing.T) {
		t.Parallel()
		var refreshCalls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/refresh", r.URL.Path)
			refreshCalls.Add(1)

			var body struct {
				Token string `json:"token"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "R1", body.Token)

			json.NewEncoder(w).Encode(map[string]string{"accessToken": "T2", "refreshToken": "R2"})
		}))
		defer server.Close()

		manager, store := newManager(t, server.URL)
		seedStore(t, store, testJWT(t, time.Now().Add(30*time.Second)), "R1")

		require.NoError(t, manager.Restore(ctx))

		current := manager.Current()
		assert.True(t, current.Authenticated())
		assert.Equal(t, "T2", current.AccessToken)
		assert.Equal(t, "R2", current.RefreshToken)
		assert.EqualValues(t, 1, refreshCalls.Load())

		stored, err := store.Get(ctx, "auth.access_token")
		require.NoError(t, err)
		assert.Equal(t, "T2", stored)
	})

	t.Run("treats a malformed token as expired", func(t *testing.T) {
		t.Parallel()
		var refreshCalls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			refreshCalls.Add(1)
			json.NewEncoder(w).Encode(map[string]string{"accessToken": "T2", "refreshToken": "R2"})
		}))
		defer server.Close()

		manager, store := newManager(t, server.URL)
		seedStore(t, store, "not-a-jwt", "R1")

		require.NoError(t, manager.Restore(ctx))

		assert.EqualValues(t, 1, refreshCalls.Load())
		assert.Equal(t, "T2", manager.Current().AccessToken)
	})

	t.Run("missing token means logged out", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		}))
		defer server.Close()

		manager, store := newManager(t, server.URL)
		require.NoError(t, store.Set(ctx, "auth.access_token", "T1")) // refresh token absent

		require.NoError(t, manager.Restore(ctx))
		assert.False(t, manager.Current().Authenticated())
	})

	t.Run("refresh rejection resolves to unauthenticated without error", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "refresh token revoked"})
		}))
		defer server.Close()

		manager, store := newManager(t, server.URL)
		seedStore(t, store, testJWT(t, time.Now().Add(-time.Minute)), "R1")

		require.NoError(t, manager.Restore(ctx))

		assert.False(t, manager.Current().Authenticated())
		for _, key := range []string{"auth.access_token", "auth.refresh_token", "auth.user_data"} {
			value, err := store.Get(ctx, key)
			require.NoError(t, err)
			assert.Empty(t, value)
		}
	})

	t.Run("malformed profile is dropped, tokens survive", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		}))
		defer server.Close()

		manager, store := newManager(t, server.URL)
		access := testJWT(t, time.Now().Add(time.Hour))
		require.NoError(t, store.Set(ctx, "auth.access_token", access))
		require.NoError(t, store.Set(ctx, "auth.refresh_token", "R1"))
		require.NoError(t, store.Set(ctx, "auth.user_data", "{not json"))

		require.NoError(t, manager.Restore(ctx))

		current := manager.Current()
		assert.True(t, current.Authenticated())
		assert.Empty(t, current.Profile.ID)
	})

	t.Run("storage unavailable is surfaced", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		store := &failStore{Store: credstore.NewMemoryStore(), failGet: true}
		manager, err := session.New(session.Config{BaseURL: server.URL}, store, session.WithLogger(quietLogger()))
		require.NoError(t, err)

		err = manager.Restore(ctx)
		assert.ErrorIs(t, err, credstore.ErrUnavailable)
		assert.False(t, manager.Current().Authenticated())
	})
}
