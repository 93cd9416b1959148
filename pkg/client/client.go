// Package client talks to a vertrag connector over its HTTP API.
//
// Errors returned by the server are reported as APIError, which unwraps to the
// matching sentinel of the core package so callers can use errors.Is on both sides.
package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client, e.g. to use an httptest server's client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url '%s' must include scheme and host", baseURL)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type urlBuilder struct {
	base  url.URL
	path  string
	query url.Values
}

func (c *Client) url() *urlBuilder {
	return &urlBuilder{
		base:  *c.baseURL,
		query: url.Values{},
	}
}

func (b *urlBuilder) setPath(route string) *urlBuilder {
	b.path = route
	return b
}

// setPathParam fills the {name} placeholder of the route.
func (b *urlBuilder) setPathParam(name, value string) *urlBuilder {
	b.path = strings.Replace(b.path, "{"+name+"}", url.PathEscape(value), 1)
	return b
}

func (b *urlBuilder) addQueryParam(key string, value any) *urlBuilder {
	b.query.Add(key, fmt.Sprint(value))
	return b
}

// build joins the base url with the already escaped path.
func (b *urlBuilder) build() string {
	s := strings.TrimSuffix(b.base.String(), "/") + b.path
	if len(b.query) > 0 {
		s += "?" + b.query.Encode()
	}
	return s
}
