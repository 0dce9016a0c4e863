// Package api provides a client for the streamer459 platform REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/viper"
	"github.com/streamer459/streamingdev-sub000/auth"
	"github.com/streamer459/streamingdev-sub000/constant"
	"github.com/streamer459/streamingdev-sub000/key"
	"github.com/streamer459/streamingdev-sub000/network"
	"github.com/streamer459/streamingdev-sub000/util"
)

// Client talks to the platform REST API. The zero value is not usable; construct it
// with New for the configured backend or NewWith for an explicit one.
type Client struct {
	base  string
	http  *http.Client
	token func() (string, error)
}

// New returns a client bound to the configured API base URL, the shared HTTP client
// and the keyring-backed session token.
func New() *Client {
	return &Client{
		base:  viper.GetString(key.APIBase),
		http:  network.Client,
		token: auth.GetToken,
	}
}

// NewWith returns a client bound to an explicit base URL and HTTP client. Requests are
// unauthenticated unless a token source is attached with WithToken.
func NewWith(base string, httpClient *http.Client) *Client {
	return &Client{base: strings.TrimSuffix(base, "/"), http: httpClient}
}

// WithToken attaches a session token source and returns the client for chaining.
func (c *Client) WithToken(token func() (string, error)) *Client {
	c.token = token
	return c
}

// request performs an HTTP exchange against the platform API. A non-nil in is encoded
// as the JSON request body; a non-nil out receives the decoded JSON response body.
func (c *Client) request(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", constant.UserAgent)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		// A missing token is fine here; endpoints that require one answer 401.
		if tok, err := c.token(); err == nil && tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("platform api: %w", err)
	}
	defer util.Ignore(resp.Body.Close)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= 400:
		return newStatusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
