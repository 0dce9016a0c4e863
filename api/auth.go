package api

import "context"

// Credentials carries a username/password pair for session creation.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session is the server's response to a successful login.
type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Login exchanges credentials for a session token. Wrong credentials yield
// ErrUnauthorized.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var session Session
	creds := Credentials{Username: username, Password: password}
	if err := c.request(ctx, "POST", "/auth/login", creds, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Logout revokes the current session token server-side. Local state is the caller's
// responsibility; revocation failures are safe to ignore.
func (c *Client) Logout(ctx context.Context) error {
	return c.request(ctx, "POST", "/auth/logout", nil, nil)
}
