// Package notify carries write and subscription failures from the code that
// issued them to the user. Failures are published on a Bus (the Notifier
// port handed to every write-issuing component); an ErrorListener turns each
// event into exactly one user-visible Notification.
package notify

import (
	"encoding/json"
	"fmt"

	"github.com/tbourn/go-party-backend/internal/docstore"
)

// PermissionError describes a rejected document write: where it was aimed,
// what was attempted, and the payload that was sent.
type PermissionError struct {
	Path                string
	Operation           docstore.Operation
	RequestResourceData any
	Err                 error
}

// NewPermissionError builds the error for a failed write of data at loc.
func NewPermissionError(loc docstore.Location, op docstore.Operation, data any, cause error) *PermissionError {
	return &PermissionError{Path: loc.Path(), Operation: op, RequestResourceData: data, Err: cause}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("Missing or insufficient permissions at %s during %s", e.Path, e.Operation)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// MarshalJSON renders {name, message, context} for logs and stream clients.
func (e *PermissionError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name    string         `json:"name"`
		Message string         `json:"message"`
		Context map[string]any `json:"context"`
	}{
		Name:    "PermissionError",
		Message: e.Error(),
		Context: map[string]any{
			"path":                e.Path,
			"operation":           e.Operation,
			"requestResourceData": e.RequestResourceData,
		},
	})
}

// SubscriptionError describes a live query that failed to refresh.
type SubscriptionError struct {
	Query docstore.Query
	Err   error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("live query %s failed: %v", e.Query, e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }

// Path returns the collection the failing query reads.
func (e *SubscriptionError) Path() string { return e.Query.Collection }

// Operation is always list.
func (e *SubscriptionError) Operation() docstore.Operation { return docstore.OpList }
