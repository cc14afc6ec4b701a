package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per failure kind in the upstream taxonomy. Callers
// branch with errors.Is; the concrete *Error carries diagnostics.
var (
	ErrAuth        = errors.New("provider auth failure")
	ErrRateLimited = errors.New("provider rate limited")
	ErrServer      = errors.New("provider server error")
	ErrNetwork     = errors.New("provider network error")
	ErrMalformed   = errors.New("provider malformed response")
)

// ErrorKind classifies a provider failure.
type ErrorKind int

const (
	KindAuth ErrorKind = iota
	KindRateLimited
	KindServer
	KindNetwork
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	default:
		return "malformed"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindAuth:
		return ErrAuth
	case KindRateLimited:
		return ErrRateLimited
	case KindServer:
		return ErrServer
	case KindNetwork:
		return ErrNetwork
	default:
		return ErrMalformed
	}
}

// Error is the typed failure returned by both provider clients. It satisfies
// errors.Is against the matching sentinel.
type Error struct {
	Kind   ErrorKind
	Status int // HTTP status when one was received, else 0
	Detail string
	cause  error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Is(target error) bool { return target == e.Kind.sentinel() }

func (e *Error) Unwrap() error { return e.cause }

func kindForStatus(status int) ErrorKind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 429:
		return KindRateLimited
	case status >= 500:
		return KindServer
	default:
		return KindMalformed
	}
}
