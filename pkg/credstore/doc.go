// Package credstore provides durable, encrypted key-value storage for
// authentication credentials: access token, refresh token and the cached
// user profile blob. It is the leaf dependency of the session manager and
// contains no session logic of its own.
//
// The Store interface deliberately distinguishes "key absent" (a normal
// outcome, returned as an empty string) from "storage unreachable"
// (ErrUnavailable). Callers rely on this split: a missing token means the
// user is logged out, an unreachable store means the session can only live
// in memory for the current process.
//
// # Implementations
//
//   - MemoryStore — mutex-guarded map; tests and explicitly ephemeral runs.
//   - FileStore   — a single JSON object sealed with AES-256-GCM under a
//     key derived from a 32-byte secret via HKDF-SHA256, written atomically
//     through a temp file and rename.
//   - RedisStore  — go-redis backed storage for headless deployments, with
//     a retrying Connect helper.
//
// # Usage
//
//	secret, _ := credstore.GenerateSecret()
//	store, err := credstore.NewFileStore("/data/credentials.bin", secret)
//	if err != nil {
//	    // handle error
//	}
//
//	if err := store.Set(ctx, "auth.access_token", token); err != nil {
//	    // storage unreachable
//	}
//
// # Error Handling
//
// All infrastructure failures wrap the ErrUnavailable sentinel; use
// errors.Is to match it. Absent keys never produce an error.
package credstore
