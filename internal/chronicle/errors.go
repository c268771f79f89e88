package chronicle

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can branch without inspecting messages.
type Kind int

const (
	// KindConfig is a local configuration problem (bad URL, unreadable records).
	KindConfig Kind = iota + 1
	// KindAuth means no bearer token could be obtained.
	KindAuth
	// KindTransport is a network-level failure: no HTTP response was received.
	KindTransport
	// KindAPI is a non-2xx HTTP response.
	KindAPI
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindAuth:
		return "auth"
	case KindTransport:
		return "transport"
	case KindAPI:
		return "api"
	default:
		return "unknown"
	}
}

// Sentinel errors matching each Kind, usable with errors.Is.
var (
	ErrConfig    = errors.New("configuration error")
	ErrAuth      = errors.New("authentication failed")
	ErrTransport = errors.New("transport error")
	ErrAPI       = errors.New("api returned non-success status")
)

// Error is returned by every Client operation.
type Error struct {
	Kind Kind
	Op   string // "get feed", "import logs", ...
	// StatusCode and Message are set for KindAPI only.
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindAPI && e.Message != "":
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
	case e.Kind == KindAPI:
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the Kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfig:
		return e.Kind == KindConfig
	case ErrAuth:
		return e.Kind == KindAuth
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrAPI:
		return e.Kind == KindAPI
	}
	return false
}

// KindOf returns the Kind of err, or 0 if err is not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
