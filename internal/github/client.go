// Package github is the source side of an import: it locates the repository to
// mirror and checks the credentials used to fetch it.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v81/github"
	"golang.org/x/oauth2"
)

const (
	// DefaultAPIURL is the REST endpoint of github.com
	DefaultAPIURL = "https://api.github.com/"
	userAgent     = "go-gitimport/1.0"
)

// Client wraps the go-github client together with the http.Client it uses.
type Client struct {
	*github.Client
	HTTP *http.Client
}

type options struct {
	baseURL   string
	transport http.RoundTripper
	timeout   time.Duration
}

// Option customises NewClient
type Option func(*options)

// WithBaseURL points the client at a GitHub Enterprise or test API root.
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// WithTransport replaces the base transport (the oauth2 layer wraps it).
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// WithTimeout bounds each API request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// NewClient creates a REST client. An empty token gives an anonymous client.
func NewClient(ctx context.Context, token string, opts ...Option) (*Client, error) {
	if ctx == nil {
		return nil, fmt.Errorf("github client: ctx is nil")
	}

	o := &options{baseURL: DefaultAPIURL, transport: http.DefaultTransport, timeout: 30 * time.Second}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}

	transport := o.transport
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		transport = &oauth2.Transport{Source: ts, Base: transport}
	}
	hc := &http.Client{Transport: transport, Timeout: o.timeout}

	gh := github.NewClient(hc)
	gh.UserAgent = userAgent
	if o.baseURL != "" && o.baseURL != DefaultAPIURL {
		if !strings.HasSuffix(o.baseURL, "/") {
			o.baseURL += "/"
		}
		base, err := url.Parse(o.baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url %q: %w", o.baseURL, err)
		}
		gh.BaseURL = base
	}

	return &Client{Client: gh, HTTP: hc}, nil
}
