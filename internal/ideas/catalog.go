// Package ideas provides an offline, deterministic catalogue of party
// themes, activities, and menu items, ranked against free-text party
// details. It backs the brainstorm feature when no hosted text-generation
// service is configured.
//
// The catalogue is Markdown: "## Themes", "## Activities", and "## Menu"
// sections whose list items (or table rows) read "Name: description".
// Scoring uses Jaccard similarity between the query token set and each
// entry's token set: score = |Q ∩ E| / |Q ∪ E|.
package ideas

import (
	"bufio"
	"bytes"
	_ "embed"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed catalog.md
var defaultCatalog []byte

// Kind is a catalogue section.
type Kind string

const (
	KindTheme    Kind = "theme"
	KindActivity Kind = "activity"
	KindMenu     Kind = "menu"
)

// Entry is one catalogue item.
type Entry struct {
	Kind        Kind
	Name        string
	Description string
}

// Result is an entry with its similarity score.
type Result struct {
	Entry
	Score float64
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	stopwords  map[string]struct{}
	maxEntries int
}

func defaultConfig() config {
	return config{stopwords: defaultStopwords()}
}

// WithStopwords replaces the default stop-word list.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		c.stopwords = m
	}
}

// WithMaxEntries caps the number of entries kept per kind.
func WithMaxEntries(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

func defaultStopwords() map[string]struct{} {
	m := map[string]struct{}{}
	for _, w := range strings.Fields("a an and the for of or to with in on at by is are be party") {
		m[w] = struct{}{}
	}
	return m
}

// ----------------------------------------------------------------------------
// Loading

// Default returns the embedded catalogue.
func Default(opts ...Option) *Catalog {
	c, _ := Parse(bytes.NewReader(defaultCatalog), opts...)
	return c
}

// Load parses the catalogue file at path.
func Load(path string, opts ...Option) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(b), opts...)
}

var sectionKinds = map[string]Kind{
	"themes":     KindTheme,
	"theme":      KindTheme,
	"activities": KindActivity,
	"activity":   KindActivity,
	"menu":       KindMenu,
	"food":       KindMenu,
}

// Parse reads a catalogue from r. Lines outside a known section are ignored.
func Parse(r io.Reader, opts ...Option) (*Catalog, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	title := cases.Title(language.English)
	c := &Catalog{cfg: cfg, byKind: map[Kind][]entry{}}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var kind Kind
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			heading := strings.ToLower(strings.TrimSpace(strings.TrimLeft(line, "#")))
			kind = sectionKinds[heading]
			continue
		}
		if kind == "" {
			continue
		}

		name, desc, ok := parseItem(line)
		if !ok {
			continue
		}
		if cfg.maxEntries > 0 && len(c.byKind[kind]) >= cfg.maxEntries {
			continue
		}
		e := Entry{Kind: kind, Name: title.String(normalizeWhitespace(name)), Description: normalizeWhitespace(desc)}
		toks := tokenize(name+" "+desc, cfg.stopwords)
		if len(toks) == 0 {
			continue
		}
		c.byKind[kind] = append(c.byKind[kind], entry{Entry: e, tokens: toks})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// parseItem accepts "- Name: description", "* Name: description", and
// table rows "| Name | description |". Separator rows and header rows
// naming the columns are skipped.
func parseItem(line string) (name, desc string, ok bool) {
	if strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|") {
		cols := strings.Split(strings.Trim(line, "|"), "|")
		cleaned := make([]string, 0, len(cols))
		allSep := true
		for _, col := range cols {
			cell := strings.TrimSpace(col)
			if cell != "" {
				cleaned = append(cleaned, cell)
			}
			if strings.Trim(cell, ":- ") != "" {
				allSep = false
			}
		}
		if allSep || len(cleaned) == 0 || strings.EqualFold(cleaned[0], "name") {
			return "", "", false
		}
		name = cleaned[0]
		if len(cleaned) > 1 {
			desc = strings.Join(cleaned[1:], " ")
		}
		return name, desc, true
	}

	switch {
	case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
		line = strings.TrimSpace(line[2:])
	default:
		return "", "", false
	}
	name, desc, _ = strings.Cut(line, ":")
	name, desc = strings.TrimSpace(name), strings.TrimSpace(desc)
	return name, desc, name != ""
}
