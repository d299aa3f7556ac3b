// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable: clients branch on them, while the
// accompanying message is for display. Every error response carries one of
// these codes together with the HTTP status (see fail in response.go). The
// same codes are used in "error" frames on the party stream.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "not_found",
//	  "message": "party not found"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeInvalidParty          = "invalid_party"
	ErrCodeCreateFailed          = "create_failed"
	ErrCodeListFailed            = "list_failed"
	ErrCodeBrainstormUnavailable = "brainstorm_unavailable"
	ErrCodeBadFrame              = "bad_frame"
)

// brainstormUnavailableMessage is shown whenever ideas cannot be generated.
const brainstormUnavailableMessage = "Our AI is currently taking a nap. Please try again later."
