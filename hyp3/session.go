package hyp3

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// Authenticator applies authentication information to a request.
type Authenticator interface {
	Authenticate(req *http.Request) error
}

// AuthenticatorFunc converts a function into an Authenticator.
type AuthenticatorFunc func(*http.Request) error

// Authenticate applies the function to the request.
func (f AuthenticatorFunc) Authenticate(req *http.Request) error {
	return f(req)
}

// BearerToken authenticates with a bearer token header.
type BearerToken string

// Authenticate applies the bearer token header.
func (b BearerToken) Authenticate(req *http.Request) error {
	if string(b) == "" {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+string(b))
	return nil
}

// BasicAuth uses HTTP Basic authentication with Earthdata URS credentials.
type BasicAuth struct {
	Username string
	Password string
}

// Authenticate applies the basic auth header.
func (b BasicAuth) Authenticate(req *http.Request) error {
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

// HeaderAuth sets arbitrary headers.
type HeaderAuth map[string]string

// Authenticate applies stored headers to the request.
func (h HeaderAuth) Authenticate(req *http.Request) error {
	for key, value := range h {
		req.Header.Set(key, value)
	}
	return nil
}

// Session mediates authenticated HTTP traffic for HyP3 requests. The cookie
// jar matters: URS login redirects hand back session cookies that later
// catalog and download requests must present.
type Session struct {
	client        *http.Client
	authenticator Authenticator
}

// SessionOption configures a session.
type SessionOption func(*Session)

// WithSessionHTTPClient overrides the HTTP client used by the session.
func WithSessionHTTPClient(hc *http.Client) SessionOption {
	return func(s *Session) {
		s.client = hc
	}
}

// WithSessionAuthenticator sets the session authenticator.
func WithSessionAuthenticator(auth Authenticator) SessionOption {
	return func(s *Session) {
		s.authenticator = auth
	}
}

// NewSession constructs a session with cookie jar and timeout defaults.
func NewSession(opts ...SessionOption) *Session {
	jar, _ := cookiejar.New(nil)
	httpClient := &http.Client{Timeout: 30 * time.Second, Jar: jar}
	session := &Session{client: httpClient}
	for _, opt := range opts {
		opt(session)
	}
	if session.client == nil {
		session.client = http.DefaultClient
	}
	return session
}

// Do issues an HTTP request with authentication applied.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	if s == nil {
		return nil, fmt.Errorf("hyp3: nil session")
	}
	if s.authenticator != nil {
		if err := s.authenticator.Authenticate(req); err != nil {
			return nil, fmt.Errorf("hyp3: authenticate request: %w", err)
		}
	}
	return s.client.Do(req)
}
