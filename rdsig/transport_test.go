package rdsig

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticResolver(key, secret string) KeyResolver {
	return func(_ *http.Request, apiKey string) (string, error) {
		if apiKey == key {
			return secret, nil
		}
		return "", ErrInvalidKey
	}
}

func TestNewTransport(t *testing.T) {
	signer := newTestSigner(t, Credentials{APIKey: testAPIKey, APISecretKey: testSecret})

	t.Run("nil base clones default transport", func(t *testing.T) {
		transport := NewTransport(nil, signer)
		assert.NotNil(t, transport.base)
		assert.NotSame(t, http.DefaultTransport, transport.base)
	})

	t.Run("custom base is used", func(t *testing.T) {
		base := &http.Transport{IdleConnTimeout: 42 * time.Second}

		transport := NewTransport(base, signer)
		assert.Same(t, base, transport.base)
	})
}

func TestTransportRoundTrip(t *testing.T) {
	signer, err := NewSigner(SignerConfig{
		Credentials: StaticCredentials{APIKey: testAPIKey, APISecretKey: testSecret, AuthToken: "tok"},
	})
	require.NoError(t, err)

	verify := VerifyConfig{
		Resolver: staticResolver(testAPIKey, testSecret),
		MaxAge:   time.Minute,
	}

	t.Run("signs get with pipe filters", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "TOKEN tok", r.Header.Get(HeaderAuthorization))
			assert.Equal(t, ContentTypeJSON, r.Header.Get(HeaderContentType))

			if err := VerifyRequest(r, verify); err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := &http.Client{Transport: NewTransport(nil, signer)}

		resp, err := client.Get(server.URL + EncodeURI("/units?filters=age__in=20,21|name=bob"))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("signs post body and leaves it intact", func(t *testing.T) {
		raw := `{"orange": 5, "blue": [1, 5, 2]}`

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := VerifyRequest(r, verify); err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.Equal(t, raw, string(body))

			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := &http.Client{Transport: NewTransport(nil, signer)}

		resp, err := client.Post(server.URL+"/someUrlolz", ContentTypeJSON, strings.NewReader(raw))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("caller request is not mutated", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		req, err := http.NewRequest(http.MethodPut, server.URL+"/units/1", strings.NewReader(`{"a":1}`))
		require.NoError(t, err)

		resp, err := NewTransport(nil, signer).RoundTrip(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Empty(t, req.Header.Get(HeaderAPINonce))
		assert.Empty(t, req.Header.Get(HeaderAuthorization))
	})

	t.Run("nil signer returns error", func(t *testing.T) {
		client := &http.Client{Transport: NewTransport(nil, nil)}

		_, err := client.Get("http://127.0.0.1:1/units")
		assert.ErrorIs(t, err, ErrNoCredentials)
	})

	t.Run("malformed body is rejected before sending", func(t *testing.T) {
		var called bool

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := &http.Client{Transport: NewTransport(nil, signer)}

		_, err := client.Post(server.URL+"/units", ContentTypeJSON, strings.NewReader("{oops"))
		assert.ErrorIs(t, err, ErrMalformedBody)
		assert.False(t, called)
	})
}
