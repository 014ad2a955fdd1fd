// Package config loads the service configuration from the environment and an
// optional .env file.
package config

import (
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"

	"github.com/opteama/wifi-aps/api/meraki"
)

// Environment variables.
const (
	EnvAPIKey        = "MERAKI_API_KEY"
	EnvOrganization  = "MERAKI_ORGANIZATION"
	EnvAPIURL        = "MERAKI_API_URL"
	EnvRateLimit     = "MERAKI_RATE_LIMIT"
	EnvTimeout       = "MERAKI_TIMEOUT"
	EnvProxyURL      = "PROXY_URL"
	EnvProxyUser     = "PROXY_USER"
	EnvProxyPassword = "PROXY_PASSWORD"
	EnvListenAddr    = "LISTEN_ADDR"
	EnvLogLevel      = "LOG_LEVEL"
	EnvOpenAPISpec   = "OPENAPI_SPEC"
)

// Defaults.
const (
	DefaultListenAddr = "127.0.0.1:8080"
	DefaultLogLevel   = "info"
	DefaultEnvFile    = ".env"
)

// ErrMissing marks required variables that are unset or empty.
var ErrMissing = errors.New("missing required setting")

// Config holds the service settings.
type Config struct {
	// Meraki Dashboard API
	APIKey       string
	Organization string
	APIURL       string
	RateLimit    int
	Timeout      time.Duration

	// Outgoing proxy, host[:port] with or without scheme
	ProxyURL      string
	ProxyUser     string
	ProxyPassword string

	// HTTP surface
	ListenAddr  string
	LogLevel    string
	OpenAPISpec string
}

// Lookup reads one variable, reporting whether it is set.
type Lookup func(key string) (string, bool)

// Load reads the configuration from the process environment, falling back to
// the variables of envFile. A missing envFile is not an error; variables set
// in the environment win over the file.
func Load(envFile string) (*Config, error) {
	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVars = vars
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, errors.Wrapf(err, "failed to read %s", envFile)
		}
	}

	return FromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	})
}

// FromLookup builds and validates a Config from lookup.
func FromLookup(lookup Lookup) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := &Config{
		APIKey:        get(EnvAPIKey, ""),
		Organization:  get(EnvOrganization, ""),
		APIURL:        get(EnvAPIURL, meraki.DefaultBaseURL),
		ProxyURL:      get(EnvProxyURL, ""),
		ProxyUser:     get(EnvProxyUser, ""),
		ProxyPassword: get(EnvProxyPassword, ""),
		ListenAddr:    get(EnvListenAddr, DefaultListenAddr),
		LogLevel:      get(EnvLogLevel, DefaultLogLevel),
		OpenAPISpec:   get(EnvOpenAPISpec, ""),
	}

	rate, err := strconv.Atoi(get(EnvRateLimit, strconv.Itoa(meraki.DefaultRateLimit)))
	if err != nil || rate < 1 {
		return nil, errors.Newf("%s must be a positive integer", EnvRateLimit)
	}
	cfg.RateLimit = rate

	timeout, err := time.ParseDuration(get(EnvTimeout, meraki.DefaultTimeout.String()))
	if err != nil || timeout <= 0 {
		return nil, errors.Newf("%s must be a positive duration such as 30s", EnvTimeout)
	}
	cfg.Timeout = timeout

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the required settings are present.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.Wrap(ErrMissing, EnvAPIKey)
	}
	if c.Organization == "" {
		return errors.Wrap(ErrMissing, EnvOrganization)
	}
	return nil
}

// Proxy returns the proxy URL, or nil when no proxy is configured. Any scheme
// on ProxyURL is dropped and http is used. Credentials are added only when
// both user and password are set.
func (c *Config) Proxy() (*url.URL, error) {
	host := c.ProxyURL
	if i := strings.LastIndex(host, "://"); i >= 0 {
		host = host[i+len("://"):]
	}
	host = strings.TrimSuffix(host, "/")
	if host == "" {
		//nolint:nilnil // No proxy configured
		return nil, nil
	}

	proxyURL, err := url.Parse("http://" + host)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", EnvProxyURL)
	}
	if proxyURL.Host == "" {
		return nil, errors.Newf("invalid %s %q", EnvProxyURL, c.ProxyURL)
	}

	if c.ProxyUser != "" && c.ProxyPassword != "" {
		proxyURL.User = url.UserPassword(c.ProxyUser, c.ProxyPassword)
	}
	return proxyURL, nil
}
