// Package onboarding orchestrates a partner's save chain: image assets,
// profile upsert, catalog reconciliation, and the submission flag, in that
// order.
package onboarding

import "fmt"

// ValidationError identifies the first field that failed validation. It is
// always raised before any mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
