package ideas

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

type entry struct {
	Entry
	tokens map[string]struct{}
}

// Catalog is an immutable, concurrency-safe set of ranked idea entries.
type Catalog struct {
	cfg    config
	byKind map[Kind][]entry
}

// Len returns the number of entries of kind.
func (c *Catalog) Len(kind Kind) int {
	if c == nil {
		return 0
	}
	return len(c.byKind[kind])
}

// Entries returns the entries of kind in catalogue order.
func (c *Catalog) Entries(kind Kind) []Entry {
	if c == nil {
		return nil
	}
	src := c.byKind[kind]
	out := make([]Entry, len(src))
	for i, e := range src {
		out[i] = e.Entry
	}
	return out
}

// TopK returns up to k entries of kind that best match q by Jaccard
// similarity. Entries sharing no token with q are omitted. Ties are broken
// by shorter description, then by name, so results are deterministic.
func (c *Catalog) TopK(kind Kind, q string, k int) []Result {
	if c == nil || len(c.byKind[kind]) == 0 {
		return nil
	}
	if strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = 3
	}
	qTokens := tokenize(q, c.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}
	qLen := len(qTokens)

	type scored struct {
		e        Entry
		score    float64
		lenRunes int
	}

	entries := c.byKind[kind]
	buf := make([]scored, 0, min(k*4, len(entries)))
	for _, e := range entries {
		over := overlap(qTokens, e.tokens)
		if over == 0 {
			continue
		}
		union := float64(qLen + len(e.tokens) - over)
		buf = append(buf, scored{
			e:        e.Entry,
			score:    float64(over) / union,
			lenRunes: utf8.RuneCountInString(e.Description),
		})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		if buf[a].lenRunes != buf[b].lenRunes {
			return buf[a].lenRunes < buf[b].lenRunes
		}
		return buf[a].e.Name < buf[b].e.Name
	})

	if k > len(buf) {
		k = len(buf)
	}
	out := make([]Result, k)
	for i := 0; i < k; i++ {
		out[i] = Result{Entry: buf[i].e, Score: buf[i].score}
	}
	return out
}

// Suggest is TopK padded with catalogue-order entries so that exactly
// min(k, Len(kind)) distinct entries are returned even for queries that
// match nothing.
func (c *Catalog) Suggest(kind Kind, q string, k int) []Entry {
	if k <= 0 {
		k = 3
	}
	out := make([]Entry, 0, k)
	seen := map[string]struct{}{}
	for _, r := range c.TopK(kind, q, k) {
		out = append(out, r.Entry)
		seen[r.Name] = struct{}{}
	}
	for _, e := range c.Entries(kind) {
		if len(out) >= k {
			break
		}
		if _, dup := seen[e.Name]; dup {
			continue
		}
		out = append(out, e)
		seen[e.Name] = struct{}{}
	}
	return out
}

// ----------------------------------------------------------------------------
// Helpers

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(strings.ToLower(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, skip := stop[w]; skip {
			continue
		}
		out[w] = struct{}{}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
