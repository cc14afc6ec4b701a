package provider

import (
	"fmt"
	"net/http"
)

// clientConfig is the option target shared by both provider clients.
type clientConfig struct {
	httpc  **http.Client
	apiKey *string
}

// Option configures a provider client during construction.
type Option func(*clientConfig) error

// WithHTTPClient injects a custom *http.Client (timeouts, tracing, TLS).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) error {
		if hc == nil {
			return fmt.Errorf("nil http client")
		}
		*c.httpc = hc
		return nil
	}
}

// WithAPIKey sets the bearer token sent on every request.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) error {
		*c.apiKey = key
		return nil
	}
}

// WithDebugLogging wraps the transport so every request/response is dumped
// to the debug log when enabled is true.
func WithDebugLogging(enabled bool) Option {
	return func(c *clientConfig) error {
		if enabled {
			transport := (*c.httpc).Transport
			if transport == nil {
				transport = http.DefaultTransport
			}
			(*c.httpc).Transport = &debugTransport{base: transport}
		}
		return nil
	}
}
