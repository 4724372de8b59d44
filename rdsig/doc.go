// Package rdsig implements the x-rd request signature scheme used by the
// Rent Dynamics API.
//
// Every signed request carries four headers:
//
//	x-rd-api-key:    the caller's API key
//	x-rd-timestamp:  milliseconds since the Unix epoch
//	x-rd-api-nonce:  hex HMAC-SHA1 over timestamp + URL + payload JSON
//	Content-Type:    application/json
//
// plus "Authorization: TOKEN <token>" once a session token is known.
//
// # Nonce
//
// The nonce is keyed with the API secret. Its message is the decimal
// timestamp, the endpoint with query string encoded by encodeURI rules
// (the '|' filter separator stays literal), and, when the request has a
// body, the canonical JSON of that body (see package payload):
//
//	1744825113438/units?filters=age__in=20,21|name=bob{"blue":[1,5,2],"orange":5}
//
// With no secret configured the nonce is the empty string and Headers
// returns an empty set instead of an error.
//
// # Signing Requests
//
// Use a Signer to compute headers for a call:
//
//	signer, err := rdsig.NewSigner(rdsig.SignerConfig{
//	    Credentials: rdsig.StaticCredentials{APIKey: key, APISecretKey: secret},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	headers, err := signer.Headers(ctx, "/units/42", map[string]any{"floor": 2})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	headers.Apply(req.Header)
//
// # Client Transport
//
// NewTransport creates an http.RoundTripper that signs all outgoing
// requests from the request URI and body:
//
//	client := &http.Client{
//	    Transport: rdsig.NewTransport(nil, signer),
//	}
//
// # Server Middleware
//
// Middleware verifies incoming signatures, for API stubs and test
// servers:
//
//	mw, err := rdsig.Middleware(rdsig.MiddlewareConfig{
//	    Verify: rdsig.VerifyConfig{
//	        Resolver: func(_ *http.Request, apiKey string) (string, error) {
//	            return secrets[apiKey], nil
//	        },
//	        MaxAge: 5 * time.Minute,
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	handler = mw(handler)
//
// # Crypto
//
// Hashing is done through the Crypto interface so that tests and other
// providers can be injected. SHA1 is the default and the only scheme the
// API accepts.
package rdsig
