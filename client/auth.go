package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Session endpoints.
const (
	LoginEndpoint  = "/auth/login"
	LogoutEndpoint = "/auth/logout"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type logoutRequest struct {
	AuthToken string `json:"authToken,omitempty"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login posts username and the digest of password to LoginEndpoint. On a
// 2xx response the body is read as the new auth token according to
// Config.TokenFormat, then restored so the caller can read it again.
// Other responses are returned untouched with the token unchanged.
func (c *Client) Login(ctx context.Context, username, password string) (*http.Response, error) {
	digest, err := c.EncryptPassword(ctx, password)
	if err != nil {
		return nil, err
	}

	resp, err := c.Post(ctx, LoginEndpoint, loginRequest{Username: username, Password: digest})
	if err != nil {
		return nil, err
	}

	if !isSuccess(resp.StatusCode) {
		c.logger.WarnContext(ctx, "login rejected", "username", username, "status", resp.StatusCode)
		return resp, nil
	}

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read login response: %w", err)
	}

	resp.Body = io.NopCloser(bytes.NewReader(raw))

	token, err := c.parseToken(raw)
	if err != nil {
		c.logger.WarnContext(ctx, "login response without token", "username", username, "error", err)
		return resp, err
	}

	c.SetAuthToken(token)
	c.logger.InfoContext(ctx, "logged in", "username", username)

	return resp, nil
}

// Logout posts the current auth token to LogoutEndpoint. The local token
// is cleared whatever the outcome of the call.
func (c *Client) Logout(ctx context.Context) (*http.Response, error) {
	defer c.SetAuthToken("")

	resp, err := c.Post(ctx, LogoutEndpoint, logoutRequest{AuthToken: c.AuthToken()})
	if err != nil {
		c.logger.WarnContext(ctx, "logout failed", "error", err)
		return nil, err
	}

	if !isSuccess(resp.StatusCode) {
		c.logger.WarnContext(ctx, "logout rejected", "status", resp.StatusCode)
	}

	return resp, nil
}

func (c *Client) parseToken(raw []byte) (string, error) {
	var token string

	switch c.cfg.TokenFormat {
	case TokenFormatJSON:
		var tr tokenResponse
		if err := json.Unmarshal(raw, &tr); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}

		token = strings.TrimSpace(tr.Token)
	default:
		token = strings.TrimSpace(string(raw))
	}

	if token == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	if !httpguts.ValidHeaderFieldValue(token) {
		return "", fmt.Errorf("%w: not a header value", ErrInvalidToken)
	}

	return token, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
