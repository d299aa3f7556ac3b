// Package services defines the business logic for parties, RSVPs, guest
// chat, and idea brainstorming. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrPartyNotFound indicates that the requested party does not exist.
	ErrPartyNotFound = errors.New("party not found")

	// ErrInvalidParty is returned when a new party is missing required
	// details or a field is too long.
	ErrInvalidParty = errors.New("invalid party details")

	// ErrEmptyName is returned when an RSVP has no guest name.
	ErrEmptyName = errors.New("name is empty")

	// ErrEmptyText is returned when a chat message has no text.
	ErrEmptyText = errors.New("message text is empty")

	// ErrTooLong is returned when a field exceeds its maximum rune length.
	ErrTooLong = errors.New("text too long")
)
