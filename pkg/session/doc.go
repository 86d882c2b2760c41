// Package session implements the authenticated HTTP session core of the
// client applications: it stores tokens through a pluggable credential
// store, attaches them to outgoing requests, detects expiry, refreshes the
// token pair transactionally and serializes concurrent refresh attempts so
// that any number of in-flight requests failing with a 401 trigger exactly
// one refresh cycle.
//
// # Architecture
//
// A Manager owns the in-memory Session and a credstore.Store for the
// durable projection of its tokens. Consumers call Login, Logout, Restore
// and Do; everything else is internal.
//
//	┌──────────┐  Do / Login / Logout  ┌─────────────┐  POST /auth, /auth/refresh
//	│ Consumer │ ────────────────────► │   Manager   │ ──────────────────────────► API
//	└──────────┘                       └─────────────┘
//	                                         │ persist / restore
//	                                         ▼
//	                                  ┌────────────┐
//	                                  │ credstore  │ (file, redis, memory)
//	                                  └────────────┘
//
// The session moves between two resting states, authenticated and
// unauthenticated, through two transient ones: restoring (startup) and
// refreshing. The refresh cycle is the correctness-critical piece: it is
// guarded by a singleflight group so at most one executes at a time, and a
// generation counter discards a cycle whose session was replaced (logout or
// re-login) while its network exchange was in flight.
//
// # Usage
//
//	store, _ := credstore.NewFileStore(path, secret)
//	manager, err := session.New(session.Config{BaseURL: "https://api.example.com"}, store)
//	if err != nil {
//	    // handle error
//	}
//
//	// Once at startup: adopt or refresh persisted credentials.
//	_ = manager.Restore(ctx)
//
//	sess, err := manager.Login(ctx, email, password)
//	if errors.Is(err, session.ErrInvalidCredentials) {
//	    // wrong email or password; show the server's message
//	}
//
//	resp, err := manager.Do(ctx, session.Request{
//	    Method: http.MethodGet,
//	    Path:   "/trades/open",
//	})
//
// Callers that prefer a standard *http.Client plug in the RoundTripper:
//
//	client := session.NewTransport(manager, nil).Client()
//
// # Error Handling
//
// Four kinds cover every failure the UI layer distinguishes:
//
//   - ErrInvalidCredentials – login rejected; carries the server message
//     via an attached *ServerError
//   - ErrNetwork            – transport failure or malformed response
//   - ErrAuthExpired        – refresh rejected or exhausted the single
//     retry; the session has been fully logged out
//   - credstore.ErrUnavailable – secure storage unreachable; the session
//     continues in memory for this process
//
// Match kinds with errors.Is and extract the server message with errors.As
// against *ServerError.
package session
