package oracle

import (
	"errors"
	"fmt"
)

// ErrInvalidQuery matches every *InvalidQueryError via errors.Is.
var ErrInvalidQuery = errors.New("invalid query")

// InvalidQueryError reports a local precondition failure. No request was sent.
type InvalidQueryError struct {
	From   string
	To     string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	if e.From == "" && e.To == "" {
		return fmt.Sprintf("invalid query: %s", e.Reason)
	}
	return fmt.Sprintf("invalid query (from %q, to %q): %s", e.From, e.To, e.Reason)
}

func (e *InvalidQueryError) Is(target error) bool {
	return target == ErrInvalidQuery
}

// NetworkError wraps any transport failure for a lookup request.
type NetworkError struct {
	URI string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("oracle request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
