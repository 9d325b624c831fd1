package apiclient

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// AuthTransport attaches the session token to outgoing requests and logs the
// session out when the backend answers 401. Requests to excluded origins, such
// as the forecast service, are passed through untouched in both directions.
type AuthTransport struct {
	session  *Session
	base     http.RoundTripper
	excluded map[string]bool
}

// NewAuthTransport wraps base, or http.DefaultTransport when base is nil.
// excludedURLs are reduced to their origin (scheme and host).
func NewAuthTransport(session *Session, base http.RoundTripper, excludedURLs ...string) (*AuthTransport, error) {
	if base == nil {
		base = http.DefaultTransport
	}

	excluded := make(map[string]bool, len(excludedURLs))
	for _, raw := range excludedURLs {
		parsed, err := url.Parse(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "parse excluded url %q", raw)
		}
		if parsed.Host == "" {
			return nil, errors.Errorf("excluded url %q has no host", raw)
		}
		excluded[origin(parsed)] = true
	}

	return &AuthTransport{
		session:  session,
		base:     base,
		excluded: excluded,
	}, nil
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.excluded[origin(req.URL)] {
		return t.base.RoundTrip(req)
	}

	if token, ok := t.session.Token(); ok {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		t.session.Logout()
	}

	return resp, nil
}

func origin(u *url.URL) string {
	return strings.ToLower(u.Scheme + "://" + u.Host)
}
