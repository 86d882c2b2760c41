package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/copratrack/sessionkit/pkg/credstore"
)

// Manager owns the in-memory session state, decides when the access token is
// stale, performs the refresh exchange and wraps outbound requests with
// automatic one-time retry after a refresh.
//
// All methods are safe for concurrent use. Exactly one refresh cycle runs at
// a time process-wide; every call site that discovers token expiry joins the
// in-flight cycle instead of starting its own.
type Manager struct {
	cfg      Config
	store    credstore.Store
	client   *http.Client
	log      *slog.Logger
	onChange func(Session)

	mu        sync.RWMutex
	session   Session
	expiresAt time.Time // zero when unknown
	// generation increments on every wholesale session replacement (login,
	// logout). A refresh cycle records it at start and discards its result
	// if it changed, so a late refresh can never resurrect a session the
	// user logged out of.
	generation uint64

	refresh singleflight.Group
}

// New creates a session manager backed by the given credential store.
// Zero-valued config fields fall back to DefaultConfig.
func New(cfg Config, store credstore.Store, opts ...Option) (*Manager, error) {
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if store == nil {
		return nil, ErrMissingStore
	}

	cfg = cfg.withDefaults()
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	m := &Manager{
		cfg:   cfg,
		store: store,
		log:   slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.client == nil {
		m.client = &http.Client{Timeout: cfg.RequestTimeout}
	}

	return m, nil
}

// Current returns a snapshot of the session state
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Restore loads persisted credentials at startup. A session with a fresh
// access token is adopted as-is; an expired, near-expiry or undecodable one
// goes through the shared refresh cycle. Either token missing means logged
// out. A refresh rejection resolves to a clean unauthenticated state and is
// not surfaced; only storage unavailability returns an error.
func (m *Manager) Restore(ctx context.Context) error {
	access, err := m.store.Get(ctx, m.cfg.AccessTokenKey)
	if err != nil {
		return err
	}
	refreshToken, err := m.store.Get(ctx, m.cfg.RefreshTokenKey)
	if err != nil {
		return err
	}
	if access == "" || refreshToken == "" {
		return nil
	}

	var profile UserProfile
	profileRaw, err := m.store.Get(ctx, m.cfg.ProfileKey)
	if err != nil {
		m.log.Warn("stored profile unavailable, continuing without it", "error", err)
	} else if profileRaw != "" {
		if err := json.Unmarshal([]byte(profileRaw), &profile); err != nil {
			m.log.Warn("stored profile is malformed, continuing without it", "error", err)
			profile = UserProfile{}
		}
	}

	expiry, expErr := tokenExpiry(access)

	m.mu.Lock()
	m.session = Session{
		AccessToken:  access,
		RefreshToken: refreshToken,
		Profile:      profile,
	}
	if expErr == nil {
		m.expiresAt = expiry
	} else {
		m.expiresAt = time.Time{}
	}
	m.mu.Unlock()

	// A malformed token is treated as expired, never as a restore failure.
	if expErr != nil || time.Until(expiry) < m.cfg.ExpiryBuffer {
		if err := m.Refresh(ctx); err != nil {
			m.log.Info("stored session could not be refreshed, starting unauthenticated", "error", err)
		}
		return nil
	}

	m.notify()
	return nil
}

// Login exchanges credentials for a token pair. On success the session is
// persisted before it becomes visible and the adopted state is returned.
// A rejection surfaces ErrInvalidCredentials with the server's message, a
// transport failure ErrNetwork; in both cases the session is untouched.
//
// If the credential store is unreachable the session is still adopted for
// the current process lifetime and the storage error is returned alongside
// it: the user is logged in, but will have to sign in again after a restart.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	payload, err := m.postLogin(ctx, email, password)
	if err != nil {
		return Session{}, err
	}

	next := Session{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
	}
	if payload.User != nil {
		next.Profile = *payload.User
	}

	m.mu.Lock()
	persistErr := m.persist(ctx, next)
	m.generation++
	m.session = next
	m.expiresAt = payloadExpiry(payload)
	m.mu.Unlock()

	if persistErr != nil {
		m.log.Warn("login succeeded but credentials could not be persisted", "error", persistErr)
	}

	m.notify()
	return next, persistErr
}

// Logout clears stored credentials and resets the session. It never fails:
// store cleanup is best-effort and only logged, so the caller's navigation
// away from the signed-in area always proceeds. Idempotent.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.generation++
	m.session = Session{}
	m.expiresAt = time.Time{}
	m.mu.Unlock()

	for _, key := range []string{m.cfg.AccessTokenKey, m.cfg.RefreshTokenKey, m.cfg.ProfileKey} {
		if err := m.store.Delete(ctx, key); err != nil {
			m.log.Warn("failed to clear stored credential", "key", key, "error", err)
		}
	}

	m.notify()
}

// Refresh exchanges the current refresh token for a new token pair. At most
// one cycle runs at a time: concurrent callers suspend and share the
// in-flight cycle's outcome. Any failure, including a persistence failure
// after a successful exchange, resolves to a full logout and ErrAuthExpired.
func (m *Manager) Refresh(ctx context.Context) error {
	_, err, _ := m.refresh.Do("refresh", func() (any, error) {
		// Detached from the triggering caller's context: joiners outlive it,
		// and the cycle runs to completion once started.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.RequestTimeout)
		defer cancel()
		return nil, m.doRefresh(rctx)
	})
	return err
}

func (m *Manager) doRefresh(ctx context.Context) error {
	// Read from the session, not from storage, to avoid racing a concurrent
	// logout that already cleared the store.
	m.mu.RLock()
	refreshToken := m.session.RefreshToken
	generation := m.generation
	m.mu.RUnlock()

	if refreshToken == "" {
		return ErrAuthExpired
	}

	payload, err := m.postRefresh(ctx, refreshToken)
	if err != nil {
		m.log.Warn("token refresh failed", "error", err)
		m.Logout(context.WithoutCancel(ctx))
		return errors.Join(ErrAuthExpired, err)
	}

	m.mu.Lock()
	if m.generation != generation {
		// Logout (or a new login) raced the exchange; its result wins.
		m.mu.Unlock()
		return ErrAuthExpired
	}

	next := m.session
	next.AccessToken = payload.AccessToken
	next.RefreshToken = payload.RefreshToken
	if payload.User != nil {
		next.Profile = *payload.User
	}

	// New tokens must be durable before any request uses them; otherwise a
	// crash right here would strand the server-side rotation.
	if err := m.persist(ctx, next); err != nil {
		m.mu.Unlock()
		m.log.Warn("persisting refreshed tokens failed", "error", err)
		m.Logout(context.WithoutCancel(ctx))
		return errors.Join(ErrAuthExpired, err)
	}

	m.session = next
	m.expiresAt = payloadExpiry(payload)
	m.mu.Unlock()

	m.notify()
	return nil
}

// Do dispatches the request with the current access token attached. A 401
// triggers (or joins) one refresh followed by exactly one retry with the new
// token; a second 401 resolves to logout and ErrAuthExpired. A token already
// inside the expiry buffer is refreshed before the first attempt. Every
// other outcome, success or failure, passes through unchanged.
func (m *Manager) Do(ctx context.Context, req Request) (*Response, error) {
	m.mu.RLock()
	token := m.session.AccessToken
	canRefresh := m.session.RefreshToken != ""
	expiresAt := m.expiresAt
	m.mu.RUnlock()

	if canRefresh && !expiresAt.IsZero() && time.Until(expiresAt) < m.cfg.ExpiryBuffer {
		if err := m.Refresh(ctx); err != nil {
			return nil, err
		}
		token = m.Current().AccessToken
	}

	resp, err := m.dispatch(ctx, req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	if err := m.Refresh(ctx); err != nil {
		return nil, err
	}

	resp, err = m.dispatch(ctx, req, m.Current().AccessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		m.Logout(ctx)
		return nil, errors.Join(ErrAuthExpired, serverError(resp))
	}

	return resp, nil
}

// dispatch executes one HTTP attempt. The Authorization header is always
// owned by the manager: set to the given token, or removed when empty.
func (m *Manager) dispatch(ctx context.Context, req Request, token string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.RequestTimeout)
	defer cancel()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, m.cfg.BaseURL+req.Path, body)
	if err != nil {
		return nil, errors.Join(ErrNetwork, err)
	}

	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if len(req.Body) > 0 && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	} else {
		httpReq.Header.Del("Authorization")
	}

	httpResp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, errors.Join(ErrNetwork, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errors.Join(ErrNetwork, err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

func (m *Manager) postLogin(ctx context.Context, email, password string) (*tokenResponse, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, errors.Join(ErrNetwork, err)
	}

	resp, err := m.dispatch(ctx, Request{Method: http.MethodPost, Path: m.cfg.LoginPath, Body: body}, "")
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, errors.Join(ErrNetwork, serverError(resp))
	case resp.StatusCode >= 400:
		return nil, errors.Join(ErrInvalidCredentials, serverError(resp))
	}

	return decodeTokenResponse(resp.Body)
}

func (m *Manager) postRefresh(ctx context.Context, refreshToken string) (*tokenResponse, error) {
	body, err := json.Marshal(refreshRequest{Token: refreshToken})
	if err != nil {
		return nil, errors.Join(ErrNetwork, err)
	}

	// Token empty: the refresh exchange must never carry the stale access
	// token it exists to replace.
	resp, err := m.dispatch(ctx, Request{Method: http.MethodPost, Path: m.cfg.RefreshPath, Body: body}, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, serverError(resp)
	}

	return decodeTokenResponse(resp.Body)
}

// persist writes the session to the credential store, tokens before profile,
// so a partial write is read back as "logged out" rather than as a session
// with a stale profile. Callers hold m.mu.
func (m *Manager) persist(ctx context.Context, s Session) error {
	if err := m.store.Set(ctx, m.cfg.AccessTokenKey, s.AccessToken); err != nil {
		return err
	}
	if err := m.store.Set(ctx, m.cfg.RefreshTokenKey, s.RefreshToken); err != nil {
		return err
	}

	profile, err := json.Marshal(s.Profile)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, m.cfg.ProfileKey, string(profile))
}

// payloadExpiry resolves the new token's expiry: an explicit server-provided
// timestamp wins over client-side claim decoding, covering deployments that
// issue opaque tokens.
func payloadExpiry(payload *tokenResponse) time.Time {
	if payload.ExpiresAt != nil {
		return *payload.ExpiresAt
	}
	if expiry, err := tokenExpiry(payload.AccessToken); err == nil {
		return expiry
	}
	return time.Time{}
}

func (m *Manager) notify() {
	if m.onChange == nil {
		return
	}
	m.onChange(m.Current())
}
