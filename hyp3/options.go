package hyp3

import (
	"log/slog"
	"net/http"

	internalhttp "github.com/example/go-hyp3/hyp3/internal/http"
)

// Option mutates the client when constructing it.
type Option func(*Client)

// WithAPIURL overrides the default HyP3 API host.
func WithAPIURL(u string) Option {
	return func(c *Client) {
		c.apiURL = u
	}
}

// WithSearchURL overrides the default ASF search API host.
func WithSearchURL(u string) Option {
	return func(c *Client) {
		c.searchURL = u
	}
}

// WithHTTPClient configures a custom HTTP client instance.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if c.session == nil {
			c.session = NewSession()
		}
		c.session.client = hc
	}
}

// WithAuthToken configures the bearer token used for authenticated requests.
func WithAuthToken(token string) Option {
	return WithAuthenticator(BearerToken(token))
}

// WithAuthenticator sets a custom authenticator for the client's session.
func WithAuthenticator(auth Authenticator) Option {
	return func(c *Client) {
		if c.session == nil {
			c.session = NewSession()
		}
		c.session.authenticator = auth
	}
}

// WithSession allows callers to provide a preconfigured session.
func WithSession(session *Session) Option {
	return func(c *Client) {
		c.session = session
	}
}

// WithRetryPolicy sets a custom retry policy for API requests.
func WithRetryPolicy(policy internalhttp.RetryPolicy) Option {
	return func(c *Client) {
		c.retry = policy
	}
}

// WithLogger attaches a structured logger to the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}
