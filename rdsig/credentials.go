package rdsig

// Credentials are the values a request is signed with. An empty field
// means the value is not configured.
type Credentials struct {
	// APIKey identifies the caller in the x-rd-api-key header.
	APIKey string `json:"api_key" yaml:"api_key"`

	// APISecretKey is the HMAC key. It is never sent.
	APISecretKey string `json:"api_secret_key" yaml:"api_secret_key"`

	// AuthToken is the session token obtained by logging in. It is sent
	// as "Authorization: TOKEN <value>".
	AuthToken string `json:"auth_token,omitempty" yaml:"auth_token,omitempty"`
}

// CanSign reports whether both the API key and secret are set, the
// condition for any signing headers to be produced.
func (c Credentials) CanSign() bool {
	return c.APIKey != "" && c.APISecretKey != ""
}

// CredentialSource returns the credentials in effect at call time. The
// signer reads it once per operation and uses that snapshot throughout,
// so sources may change between calls (for example after a login).
type CredentialSource interface {
	Credentials() Credentials
}

// StaticCredentials is a CredentialSource that never changes.
type StaticCredentials Credentials

// Credentials returns c.
func (c StaticCredentials) Credentials() Credentials {
	return Credentials(c)
}
