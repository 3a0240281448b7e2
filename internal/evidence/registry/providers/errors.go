package providers

import (
	"errors"
	"fmt"
)

// ErrorKind is the normalized failure taxonomy every harvest error maps to.
// Callers use it to decide between "not found", "retry later" and
// "internal error" responses.
type ErrorKind string

const (
	// ErrorOrganizationNotFound means the organization, its parent chain, or
	// its record in a dataset registry does not exist. Permanent.
	ErrorOrganizationNotFound ErrorKind = "organization_not_found"

	// ErrorUpstreamClient means the upstream rejected the request (4xx other
	// than 404). Permanent.
	ErrorUpstreamClient ErrorKind = "upstream_client_error"

	// ErrorUpstreamServer means the upstream failed (5xx). Transient.
	ErrorUpstreamServer ErrorKind = "upstream_server_error"

	// ErrorNetwork means the call never produced a response: refused
	// connection, timeout, TLS failure, cancellation or an open circuit. Transient.
	ErrorNetwork ErrorKind = "network_failure"

	// ErrorDecode means the upstream answered with a payload that does not
	// match the expected schema. Permanent server-side defect.
	ErrorDecode ErrorKind = "decode_failure"

	// ErrorInternal indicates a defect in the harvester itself.
	ErrorInternal ErrorKind = "internal"
)

// HarvestError wraps a harvest failure with its normalized kind.
type HarvestError struct {
	Kind       ErrorKind
	Source     string // upstream URL or organization number the failure concerns
	Message    string
	Status     int // upstream HTTP status, when there was one
	Underlying error
	Retryable  bool
}

// Error implements the error interface
func (e *HarvestError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Source != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Source)
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.Status)
	}
	if e.Underlying != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Underlying)
	}
	return msg
}

// Unwrap supports error unwrapping
func (e *HarvestError) Unwrap() error {
	return e.Underlying
}

// NewHarvestError creates a normalized error; retryability follows the kind.
func NewHarvestError(kind ErrorKind, source, message string, underlying error) *HarvestError {
	return &HarvestError{
		Kind:       kind,
		Source:     source,
		Message:    message,
		Underlying: underlying,
		Retryable:  kind == ErrorUpstreamServer || kind == ErrorNetwork,
	}
}

// WithStatus records the upstream HTTP status.
func (e *HarvestError) WithStatus(status int) *HarvestError {
	e.Status = status
	return e
}

// NotFound builds an ErrorOrganizationNotFound error for orgnr.
func NotFound(orgnr, message string) *HarvestError {
	return NewHarvestError(ErrorOrganizationNotFound, orgnr, message, nil)
}

// IsRetryable checks if an error is worth retrying
func IsRetryable(err error) bool {
	var he *HarvestError
	if errors.As(err, &he) {
		return he.Retryable
	}
	return false
}

// KindOf extracts the error kind; unclassified errors are ErrorInternal.
func KindOf(err error) ErrorKind {
	var he *HarvestError
	if errors.As(err, &he) {
		return he.Kind
	}
	return ErrorInternal
}

// IsNotFound reports whether err is an ErrorOrganizationNotFound.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == ErrorOrganizationNotFound
}

// Sentinel errors for dispatch
var (
	ErrProviderNotFound   = errors.New("dataset not found")
	ErrProviderRegistered = errors.New("dataset already registered")
)
