package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/katchitechstudio/nouvs-backend/internal/infrastructure/httpx"
)

// FailureKind classifies a fetch failure. The orchestrator treats any kind as
// "this asset class's cycle failed"; the kind only drives logging and tests.
type FailureKind string

const (
	FailureNetwork          FailureKind = "network"
	FailureTimeout          FailureKind = "timeout"
	FailureHTTPStatus       FailureKind = "http-status"
	FailureProviderRejected FailureKind = "provider-rejected"
	FailureMalformedBody    FailureKind = "malformed-body"
)

type Error struct {
	Kind     FailureKind
	Endpoint string
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("provider %s: %s", e.Endpoint, e.Kind)
	}
	return fmt.Sprintf("provider %s: %s: %v", e.Endpoint, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from an error chain.
func KindOf(err error) (FailureKind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

// classify wraps a transport-level error with its taxonomy kind.
func classify(endpoint string, err error) *Error {
	var se *httpx.StatusError
	if errors.As(err, &se) {
		return &Error{Kind: FailureHTTPStatus, Endpoint: endpoint, Err: err}
	}
	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	if errors.As(err, &syn) || errors.As(err, &typ) {
		return &Error{Kind: FailureMalformedBody, Endpoint: endpoint, Err: err}
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &Error{Kind: FailureTimeout, Endpoint: endpoint, Err: err}
	}
	return &Error{Kind: FailureNetwork, Endpoint: endpoint, Err: err}
}

func rejected(endpoint, message string) *Error {
	if message == "" {
		message = "unsuccessful response"
	}
	return &Error{Kind: FailureProviderRejected, Endpoint: endpoint, Err: errors.New(message)}
}

func malformed(endpoint string, err error) *Error {
	return &Error{Kind: FailureMalformedBody, Endpoint: endpoint, Err: err}
}
