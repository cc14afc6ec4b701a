// Package provider contains the HTTP adapters for the two upstream knowledge
// sources: the conversational LLM endpoint (primary) and the restaurant-facts
// endpoint (secondary). Loosely-typed upstream JSON is decoded at this
// boundary into plain values or a typed *Error; nothing untyped escapes.
package provider

import (
	"context"
	"net/http"
	"net/http/httputil"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

const defaultTimeout = 30 * time.Second

// networkRetries is the number of extra attempts made after a transport-level
// failure. Status-code failures are never retried here.
const networkRetries = 2

func debugEnabled() bool {
	return os.Getenv("TABLETALK_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}

// debugTransport logs full request/response dumps when debug is enabled.
type debugTransport struct{ base http.RoundTripper }

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if debugEnabled() {
		if dump, err := httputil.DumpRequestOut(req, true); err == nil {
			log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", string(dump)).Msg("HTTP request")
		}
	}

	resp, err := dt.base.RoundTrip(req)
	if err != nil {
		if debugEnabled() {
			log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		}
		return nil, err
	}

	if debugEnabled() {
		if dump, err := httputil.DumpResponse(resp, true); err == nil {
			log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Str("response_dump", string(dump)).Msg("HTTP response")
		}
	}
	return resp, nil
}

// withNetworkRetry runs fn, retrying with short exponential backoff only when
// the failure is transport-level. The adapter owns transport reliability;
// everything above it sees a single bounded call. A cancelled context
// short-circuits the retries: cancellation also surfaces as a transport
// failure, and sleeping through it would stall the caller for nothing.
func withNetworkRetry(ctx context.Context, fn func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 2 * time.Second

	return backoff.Retry(func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if pe, ok := err.(*Error); ok && pe.Kind == KindNetwork {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(bo, networkRetries), ctx))
}
