package brainstorm

import (
	"strings"
	"text/template"
)

const systemPrompt = `You are a professional party planner with a creative and energetic personality. ` +
	`Reply with a single JSON object with the keys "themes" and "activities" ` +
	`(arrays of {"name","description"}) and "menuSuggestions" (array of {"item","reason"}).`

var userPrompt = template.Must(template.New("brainstorm").Parse(
	`Help a host brainstorm amazing ideas for their party: "{{.PartyName}}".

Use the following details to tailor your suggestions:
- Party Type: {{or .PartyType "not specified"}}
- Date: {{or .PartyDate "not specified"}}
- Number of Guests: {{if gt .NumberOfGuests 0}}{{.NumberOfGuests}}{{else}}not specified{{end}}
- Budget: {{or .Budget "not specified"}}
- Special Requests: {{or .SpecialRequests "none"}}

Provide a variety of creative themes, fun activities, and delicious menu suggestions that fit the vibe.`))

// renderPrompt builds the user message for in.
func renderPrompt(in Input) (string, error) {
	var b strings.Builder
	if err := userPrompt.Execute(&b, in); err != nil {
		return "", err
	}
	return b.String(), nil
}
