package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/rentdynamics/rdsig"
)

func TestClientEncryptPassword(t *testing.T) {
	c, err := New(Config{})
	require.NoError(t, err)

	got, err := c.EncryptPassword(context.Background(), "#iL0v3Kitties")
	require.NoError(t, err)
	assert.Equal(t, "5edd56f2a05a89617f12550ef524370a229f93de", got)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("text token", func(t *testing.T) {
		stub := newAPIStub(t, true, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "tok-123\n")
		})
		c := newTestClient(t, Config{}, stub)

		resp, err := c.Login(ctx, "bob", "#iL0v3Kitties")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "tok-123", c.AuthToken())

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "tok-123\n", string(body))

		got := stub.last(t)
		assert.Equal(t, http.MethodPost, got.Method)
		assert.Equal(t, LoginEndpoint, got.RequestURI)
		assert.Equal(t, `{"username":"bob","password":"5edd56f2a05a89617f12550ef524370a229f93de"}`, got.Body)
		assert.Empty(t, got.Header.Get(rdsig.HeaderAuthorization))
	})

	t.Run("json token", func(t *testing.T) {
		stub := newAPIStub(t, true, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-json"})
		})
		c := newTestClient(t, Config{TokenFormat: TokenFormatJSON}, stub)

		resp, err := c.Login(ctx, "bob", "pw")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "tok-json", c.AuthToken())
	})

	t.Run("token used by later calls", func(t *testing.T) {
		stub := newAPIStub(t, true, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == LoginEndpoint {
				_, _ = io.WriteString(w, "tok-123")
				return
			}

			_, _ = io.WriteString(w, rdsig.AuthToken(r))
		})
		c := newTestClient(t, Config{}, stub)

		resp, err := c.Login(ctx, "bob", "pw")
		require.NoError(t, err)
		resp.Body.Close()

		resp, err = c.Delete(ctx, "/units/1")
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "tok-123", string(body))
	})

	t.Run("rejected login keeps token", func(t *testing.T) {
		stub := newAPIStub(t, true, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
		})
		c := newTestClient(t, Config{AuthToken: "old"}, stub)

		resp, err := c.Login(ctx, "bob", "wrong")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "old", c.AuthToken())

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "bad credentials\n", string(body))
	})

	t.Run("unusable token", func(t *testing.T) {
		tests := []struct {
			name   string
			format TokenFormat
			body   string
		}{
			{"empty text", TokenFormatText, "  \n"},
			{"json without token", TokenFormatJSON, `{"id":1}`},
			{"json malformed", TokenFormatJSON, `tok-123`},
			{"control characters", TokenFormatText, "tok\x00123"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				stub := newAPIStub(t, true, func(w http.ResponseWriter, _ *http.Request) {
					_, _ = io.WriteString(w, tt.body)
				})
				c := newTestClient(t, Config{AuthToken: "old", TokenFormat: tt.format}, stub)

				resp, err := c.Login(ctx, "bob", "pw")
				assert.ErrorIs(t, err, ErrInvalidToken)
				require.NotNil(t, resp)
				resp.Body.Close()

				assert.Equal(t, "old", c.AuthToken())
			})
		}
	})

	t.Run("logs without password", func(t *testing.T) {
		var buf bytes.Buffer

		stub := newAPIStub(t, true, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "tok-123")
		})
		c := newTestClient(t, Config{}, stub, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

		resp, err := c.Login(ctx, "bob", "#iL0v3Kitties")
		require.NoError(t, err)
		resp.Body.Close()

		assert.Contains(t, buf.String(), `msg="logged in" username=bob`)
		assert.NotContains(t, buf.String(), "iL0v3Kitties")
		assert.NotContains(t, buf.String(), "5edd56f2a05a89617f12550ef524370a229f93de")
		assert.NotContains(t, buf.String(), "tok-123")
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("sends token and clears it", func(t *testing.T) {
		stub := newAPIStub(t, true, nil)
		c := newTestClient(t, Config{AuthToken: "tok-123"}, stub)

		resp, err := c.Logout(ctx)
		require.NoError(t, err)
		defer resp.Body.Close()

		got := stub.last(t)
		assert.Equal(t, LogoutEndpoint, got.RequestURI)
		assert.Equal(t, `{"authToken":"tok-123"}`, got.Body)
		assert.Equal(t, "TOKEN tok-123", got.Header.Get(rdsig.HeaderAuthorization))
		assert.Equal(t, "", c.AuthToken())
	})

	t.Run("without token", func(t *testing.T) {
		stub := newAPIStub(t, true, nil)
		c := newTestClient(t, Config{}, stub)

		resp, err := c.Logout(ctx)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, `{}`, stub.last(t).Body)
	})

	t.Run("rejected logout still clears token", func(t *testing.T) {
		stub := newAPIStub(t, true, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
		c := newTestClient(t, Config{AuthToken: "tok-123"}, stub)

		resp, err := c.Logout(ctx)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "", c.AuthToken())
	})

	t.Run("failed call still clears token", func(t *testing.T) {
		stub := newAPIStub(t, true, nil)
		c := newTestClient(t, Config{AuthToken: "tok-123"}, stub)
		stub.server.Close()

		_, err := c.Logout(ctx)
		assert.Error(t, err)
		assert.Equal(t, "", c.AuthToken())
	})
}
