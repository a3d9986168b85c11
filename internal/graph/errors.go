package graph

import (
	"errors"
	"fmt"
)

// Store errors callers are expected to branch on.
var (
	// ErrItemNotFound indicates the drive item does not exist or the
	// stored item id has gone stale.
	ErrItemNotFound = errors.New("graph: item not found")

	// ErrUnauthorized indicates the forwarded access token was rejected.
	ErrUnauthorized = errors.New("graph: unauthorised (invalid or expired token)")
)

// TransientError marks a failure worth retrying: network trouble,
// throttling, or a 5xx from the store.
type TransientError struct {
	StatusCode int
	Message    string
}

func (e *TransientError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("graph: transient failure: %s", e.Message)
	}
	return fmt.Sprintf("graph: transient failure (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound returns true if the error indicates a missing item.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}

// IsUnauthorized returns true if the error indicates a rejected token.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsTransient returns true if the error is worth retrying.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
