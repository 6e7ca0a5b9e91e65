package types

import (
	"errors"
	"fmt"
)

// Domain specific errors surfaced by the country services.
var (
	ErrNotFound    = errors.New("requested item not found")
	ErrUpstream    = errors.New("upstream source failed")
	ErrEmptyResult = errors.New("query produced no result")
	ErrBadRequest  = errors.New("bad request")
)

// UpstreamError describes a failed call to a third-party data source.
// StatusCode is zero when the failure happened before a response arrived
// or while decoding the body.
type UpstreamError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream returned status %d", e.Source, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Source, e.Err)
	}
	return e.Source + ": upstream failure"
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrUpstream) match any *UpstreamError.
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }
