// Package brainstorm generates party ideas (themes, activities, and menu
// suggestions) from a few details about a party.
//
// Two providers are available: HTTPProvider calls an OpenAI-compatible
// chat-completion endpoint, CatalogProvider ranks entries from the offline
// idea catalogue. Every provider failure surfaces as ErrUnavailable so
// callers can show a single generic "try again later" message.
package brainstorm

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable is returned (wrapped) whenever ideas could not be produced.
var ErrUnavailable = errors.New("brainstorm: idea generation unavailable")

// Input describes the party to brainstorm for. Only PartyName is required.
type Input struct {
	PartyName       string `json:"party_name"                 binding:"required,max=200"`
	PartyType       string `json:"party_type,omitempty"       binding:"max=100"`
	PartyDate       string `json:"party_date,omitempty"       binding:"max=32"`
	NumberOfGuests  int    `json:"number_of_guests,omitempty" binding:"gte=0,lte=100000"`
	Budget          string `json:"budget,omitempty"           binding:"max=100"`
	SpecialRequests string `json:"special_requests,omitempty" binding:"max=2000"`
}

// Normalize trims every free-text field.
func (in Input) Normalize() Input {
	in.PartyName = strings.TrimSpace(in.PartyName)
	in.PartyType = strings.TrimSpace(in.PartyType)
	in.PartyDate = strings.TrimSpace(in.PartyDate)
	in.Budget = strings.TrimSpace(in.Budget)
	in.SpecialRequests = strings.TrimSpace(in.SpecialRequests)
	if in.NumberOfGuests < 0 {
		in.NumberOfGuests = 0
	}
	return in
}

// Idea is a named theme or activity.
type Idea struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MenuItem is a food or drink suggestion with the reason it fits.
type MenuItem struct {
	Item   string `json:"item"`
	Reason string `json:"reason"`
}

// Ideas is the result of a brainstorm.
type Ideas struct {
	Themes          []Idea     `json:"themes"`
	Activities      []Idea     `json:"activities"`
	MenuSuggestions []MenuItem `json:"menu_suggestions"`
}

// Empty reports whether no suggestion of any kind is present.
func (i Ideas) Empty() bool {
	return len(i.Themes) == 0 && len(i.Activities) == 0 && len(i.MenuSuggestions) == 0
}

// Provider produces ideas for a party.
type Provider interface {
	Brainstorm(ctx context.Context, in Input) (Ideas, error)
}
