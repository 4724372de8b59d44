package rdsig

import "net/http"

// MiddlewareConfig configures Middleware.
type MiddlewareConfig struct {
	// Verify is passed to VerifyRequest for every request.
	Verify VerifyConfig

	// OnError writes the rejection. Defaults to an empty 401 response.
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

// Middleware returns a handler wrapper that recomputes x-rd-api-nonce
// for each request and only calls the next handler when it matches. The
// request body is restored after verification, so handlers can read it.
//
// It returns ErrNoResolver when no KeyResolver is configured.
func Middleware(cfg MiddlewareConfig) (func(http.Handler) http.Handler, error) {
	if cfg.Verify.Resolver == nil {
		return nil, ErrNoResolver
	}

	if cfg.OnError == nil {
		cfg.OnError = rejectUnauthorized
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := VerifyRequest(r, cfg.Verify)
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}

			cfg.OnError(w, r, err)
		})
	}, nil
}

func rejectUnauthorized(w http.ResponseWriter, _ *http.Request, _ error) {
	w.WriteHeader(http.StatusUnauthorized)
}
