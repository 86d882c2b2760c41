package session

import (
	"io"
	"net/http"
)

// Transport is an http.RoundTripper that injects the manager's current
// access token into every request, so callers can keep using a standard
// *http.Client. On a 401 it joins the shared refresh cycle and retries the
// request once with the new token, provided the body is replayable
// (GetBody set, or no body at all).
//
// Token injection happens per request; the underlying client's defaults are
// never mutated, so requests in flight during a token rotation each carry
// the token that was current when they were dispatched.
//
// A second 401 after a successful refresh resolves the session to logged
// out and the response is returned as-is, honoring the RoundTripper
// contract of reporting HTTP-level failures via the response.
type Transport struct {
	manager *Manager
	base    http.RoundTripper
}

// NewTransport wraps base with bearer injection and one-time 401 retry.
// A nil base falls back to http.DefaultTransport.
func NewTransport(manager *Manager, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		manager: manager,
		base:    base,
	}
}

// Client returns an *http.Client dispatching through the transport
func (t *Transport) Client() *http.Client {
	return &http.Client{
		Transport: t,
		Timeout:   t.manager.cfg.RequestTimeout,
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(t.authorize(req, req.Body))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		// Body already consumed and not replayable; the caller sees the 401.
		return resp, nil
	}

	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	resp.Body.Close()

	if err := t.manager.Refresh(req.Context()); err != nil {
		return nil, err
	}

	var body io.ReadCloser
	if req.GetBody != nil {
		body, err = req.GetBody()
		if err != nil {
			return nil, err
		}
	}

	resp, err = t.base.RoundTrip(t.authorize(req, body))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		t.manager.Logout(req.Context())
	}
	return resp, nil
}

// authorize clones the request with the given body and the current access
// token. RoundTrippers must not mutate the caller's request.
func (t *Transport) authorize(req *http.Request, body io.ReadCloser) *http.Request {
	clone := req.Clone(req.Context())
	clone.Body = body

	token := t.manager.Current().AccessToken
	if token != "" {
		clone.Header.Set("Authorization", "Bearer "+token)
	} else {
		clone.Header.Del("Authorization")
	}
	return clone
}
