// ABOUTME: Error taxonomy returned by the workout repository.
// ABOUTME: Callers match with errors.As and render through Notify.
package workouts

import "fmt"

// ValidationError reports malformed input. Nothing was written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a record that does not exist or is not visible to the caller.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// AuthorizationError reports a caller acting on records it does not own.
type AuthorizationError struct {
	Op     string
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not authorized to %s: %s", e.Op, e.Reason)
}

// StoreError wraps a record store failure. Incomplete is set when part of a
// logical operation may already have been applied, such as a workout whose
// exercises failed to save.
type StoreError struct {
	Op         string
	Err        error
	Incomplete bool
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
