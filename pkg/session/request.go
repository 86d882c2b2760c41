package session

import "net/http"

// Request describes an HTTP call the manager can dispatch and, after a token
// refresh, retry verbatim. The manager never inspects the body; the only
// header it touches is Authorization, which it always overwrites.
type Request struct {
	// Method is the HTTP method, e.g. http.MethodGet
	Method string

	// Path is appended to the manager's base URL
	Path string

	// Header holds additional request headers. May be nil.
	Header http.Header

	// Body is the raw request body. May be nil. Kept as bytes so a retry
	// replays exactly what the first attempt sent.
	Body []byte
}

// Response is the fully materialized result of a dispatched Request
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}
