package label

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"surfmate/survey"
)

// promptDescriptorCap bounds how much of the survey goes into the prompt.
// Low-ranked tail candidates rarely change what the model picks.
const promptDescriptorCap = 250

const systemPrompt = `You label web pages for a keyboard navigation overlay. Given a list of
surveyed page elements, you pick the page's meaningful regions ("containers")
and its important free-standing interactive elements ("standalone").

Rules:
- Reply with exactly one JSON object, no prose, no markdown fences.
- Schema: {"containers": [{"selector": string, "occurrence": int, "label": string, "kind": string}], "standalone": [...same fields...]}
- selector and occurrence must be copied verbatim from the survey lines; never invent selectors.
- containers: at most 9, ordered most useful first, chosen from lines marked [container]. kind is one of: navigation, content, form, actions, other.
- standalone: interactive elements NOT inside any container you chose. kind is one of: link, button, input, toggle, menu.
- label: short human name, one to four words, in the page's language.`

// buildPrompt renders the survey as one line per descriptor. The model sees
// index, category, selector, occurrence and trimmed text.
func buildPrompt(url, title string, ds []survey.Descriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Page: %s\nTitle: %s\n\nSurvey (%d candidates):\n", url, title, len(ds))
	n := len(ds)
	if n > promptDescriptorCap {
		n = promptDescriptorCap
	}
	for i := 0; i < n; i++ {
		d := ds[i]
		text := d.Text
		if runes := []rune(text); len(runes) > 60 {
			text = string(runes[:60])
		}
		fmt.Fprintf(&b, "%3d. [%s] selector=%q occurrence=%d text=%q\n",
			i+1, d.Category, d.Selector, d.Occurrence, text)
	}
	b.WriteString("\nLabel this page now.")
	return b.String()
}

// parsePage extracts the JSON object from a model reply that may be wrapped
// in markdown fences or surrounded by stray prose.
func parsePage(raw string) (*Page, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, errors.New("empty reply")
	}

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return nil, errors.New("no JSON object in reply")
	}

	var page Page
	if err := json.Unmarshal([]byte(s[start:end+1]), &page); err != nil {
		return nil, fmt.Errorf("decoding reply: %w", err)
	}
	return &page, nil
}
