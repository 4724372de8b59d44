package rdsig

import "net/http"

// Transport is an http.RoundTripper that stamps every outgoing request
// with x-rd-api-key, x-rd-timestamp and x-rd-api-nonce before sending it.
// The nonce covers the escaped path, the raw query with %7C read as '|'
// and the canonical JSON of a non-empty body.
type Transport struct {
	base   http.RoundTripper
	signer *Signer
}

// NewTransport wraps base with a signer. A nil base sends through a clone
// of http.DefaultTransport.
//
//	signer, _ := rdsig.NewSigner(rdsig.SignerConfig{Credentials: creds})
//	hc := &http.Client{Transport: rdsig.NewTransport(nil, signer)}
//	resp, err := hc.Get("https://api.rentdynamics.com/units?filters=floor=2")
func NewTransport(base *http.Transport, signer *Signer) *Transport {
	t := &Transport{signer: signer}

	if base == nil {
		t.base = http.DefaultTransport.(*http.Transport).Clone()
	} else {
		t.base = base
	}

	return t
}

// RoundTrip signs a copy of req and hands it to the base transport. The
// body is canonicalized from a fresh GetBody reader when one exists, so
// req itself is never read or modified. Signing fails with
// ErrMalformedBody when the body is not JSON.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.signer == nil {
		return nil, ErrNoCredentials
	}

	out := req.Clone(req.Context())

	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}

		out.Body = body
	}

	if err := t.signer.SignRequest(out); err != nil {
		return nil, err
	}

	return t.base.RoundTrip(out)
}
