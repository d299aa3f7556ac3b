package brainstorm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tbourn/go-party-backend/internal/ideas"
)

// CatalogProvider answers from the offline idea catalogue. It never calls
// out of process and is used when no text-generation endpoint is
// configured.
type CatalogProvider struct {
	cat *ideas.Catalog
	k   int
}

// NewCatalogProvider returns a provider suggesting up to k entries of each
// kind (3 when k <= 0).
func NewCatalogProvider(cat *ideas.Catalog, k int) *CatalogProvider {
	if k <= 0 {
		k = 3
	}
	return &CatalogProvider{cat: cat, k: k}
}

// Brainstorm ranks catalogue entries against the party details.
func (p *CatalogProvider) Brainstorm(ctx context.Context, in Input) (Ideas, error) {
	if err := ctx.Err(); err != nil {
		return Ideas{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	in = in.Normalize()
	q := strings.Join([]string{in.PartyName, in.PartyType, in.Budget, in.SpecialRequests}, " ")

	out := Ideas{Themes: []Idea{}, Activities: []Idea{}, MenuSuggestions: []MenuItem{}}
	for _, e := range p.cat.Suggest(ideas.KindTheme, q, p.k) {
		out.Themes = append(out.Themes, Idea{Name: e.Name, Description: e.Description})
	}
	for _, e := range p.cat.Suggest(ideas.KindActivity, q, p.k) {
		out.Activities = append(out.Activities, Idea{Name: e.Name, Description: e.Description})
	}
	for _, e := range p.cat.Suggest(ideas.KindMenu, q, p.k) {
		out.MenuSuggestions = append(out.MenuSuggestions, MenuItem{Item: e.Name, Reason: e.Description})
	}
	if out.Empty() {
		return Ideas{}, fmt.Errorf("%w: idea catalogue is empty", ErrUnavailable)
	}
	return out, nil
}
