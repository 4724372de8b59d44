package client

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/vitalvas/rentdynamics/rdsig"
	"gopkg.in/yaml.v3"
)

// Base URLs used when the configuration does not name one.
const (
	DefaultBaseURL     = "https://api.rentdynamics.com"
	DevelopmentBaseURL = "https://api-dev.rentdynamics.com"
)

// DefaultTimeout bounds each HTTP call when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// TokenFormat selects how Login reads the auth token from a successful
// response body.
type TokenFormat string

const (
	// TokenFormatText uses the whole body, trimmed of surrounding
	// whitespace, as the token.
	TokenFormatText TokenFormat = "text"

	// TokenFormatJSON reads the "token" member of a JSON object body.
	TokenFormatJSON TokenFormat = "json"
)

// Validate reports whether f is a known format. The empty value is valid
// and means TokenFormatText.
func (f TokenFormat) Validate() error {
	switch f {
	case "", TokenFormatText, TokenFormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTokenFormat, string(f))
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *TokenFormat) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	parsed := TokenFormat(strings.ToLower(strings.TrimSpace(s)))
	if err := parsed.Validate(); err != nil {
		return err
	}

	*f = parsed

	return nil
}

// Config holds the client settings. The zero value talks to the
// production API without credentials.
type Config struct {
	APIKey       string `yaml:"api_key"`
	APISecretKey string `yaml:"api_secret_key"`
	AuthToken    string `yaml:"auth_token"`

	// Development selects the development API unless BaseURL is
	// overridden with WithBaseURL.
	Development    bool   `yaml:"development"`
	DevelopmentURL string `yaml:"development_url"`
	BaseURL        string `yaml:"base_url"`

	TokenFormat TokenFormat `yaml:"token_format"`

	// Timeout bounds each HTTP call. Defaults to DefaultTimeout.
	Timeout time.Duration `yaml:"timeout"`

	// RateLimit is the number of calls per second allowed before calls
	// block. Zero disables client-side throttling.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// envRef matches the braced ${VAR} form. A bare '$' is kept literally.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${VAR} references with environment values. Unset
// variables expand to "".
func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

// LoadConfig reads a YAML configuration file. ${VAR} references are
// expanded from the environment before parsing, so secrets can stay out
// of the file. Other '$' characters are kept as written.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration for values New would reject.
func (c Config) Validate() error {
	if err := c.TokenFormat.Validate(); err != nil {
		return err
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}

	if c.RateLimit < 0 || c.RateBurst < 0 {
		return fmt.Errorf("%w: negative rate limit", ErrInvalidConfig)
	}

	return nil
}

// ResolveBaseURL returns the API root for c. A development URL wins over
// the development default, which wins over BaseURL. Trailing slashes are
// removed so endpoints can be appended directly.
func (c Config) ResolveBaseURL() string {
	var base string

	switch {
	case c.Development && c.DevelopmentURL != "":
		base = c.DevelopmentURL
	case c.Development:
		base = DevelopmentBaseURL
	case c.BaseURL != "":
		base = c.BaseURL
	default:
		base = DefaultBaseURL
	}

	return strings.TrimRight(base, "/")
}

// Credentials returns the signing credentials held by c.
func (c Config) Credentials() rdsig.Credentials {
	return rdsig.Credentials{
		APIKey:       c.APIKey,
		APISecretKey: c.APISecretKey,
		AuthToken:    c.AuthToken,
	}
}
