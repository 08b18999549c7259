package selector

import (
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
)

// Sanitizer is one stage of the resolution cascade: a pure string rewrite
// that weakens a selector in a predictable way. Stages are tried in order;
// the first one whose output matches anything wins.
type Sanitizer struct {
	Name  string
	Apply func(string) string
}

// Pipeline returns the resolution stages, strongest first. Each stage is a
// strictly weaker form of the one before it: the trailing truncations apply
// to the position-stripped selector, not the original.
func Pipeline() []Sanitizer {
	return []Sanitizer{
		{Name: "verbatim", Apply: func(s string) string { return s }},
		{Name: "strip-positional", Apply: StripPositional},
		{Name: "trailing-two", Apply: func(s string) string { return TrailingSegments(StripPositional(s), 2) }},
		{Name: "trailing-one", Apply: func(s string) string { return TrailingSegments(StripPositional(s), 1) }},
	}
}

var positionalRe = regexp.MustCompile(
	`:(?:nth-child|nth-of-type|nth-last-child|nth-last-of-type)\([^)]*\)` +
		`|:(?:first-child|last-child|first-of-type|last-of-type)`)

// StripPositional removes position-dependent pseudo-classes. Structural
// shifts (an inserted sibling, a reordered list) invalidate positions long
// before they invalidate tags and classes.
func StripPositional(sel string) string {
	out := positionalRe.ReplaceAllString(sel, "")
	segs := splitSegments(out)
	if len(segs) == 0 {
		return ""
	}
	return strings.Join(segs, " > ")
}

// TrailingSegments keeps only the last n segments of a compound selector.
func TrailingSegments(sel string, n int) string {
	segs := splitSegments(sel)
	if len(segs) == 0 {
		return ""
	}
	if len(segs) > n {
		segs = segs[len(segs)-n:]
	}
	return strings.Join(segs, " > ")
}

// Valid reports whether the selector parses. Sanitized forms are checked
// before they are handed to a host.
func Valid(sel string) bool {
	if strings.TrimSpace(sel) == "" {
		return false
	}
	_, err := cascadia.Parse(sel)
	return err == nil
}

// splitSegments splits a selector on top-level combinators (whitespace, >,
// +, ~), ignoring anything inside brackets, parens or quotes. Empty segments
// left behind by earlier rewrites are dropped.
func splitSegments(sel string) []string {
	var segs []string
	var cur strings.Builder
	depth := 0
	var quote rune

	flush := func() {
		s := strings.TrimSpace(cur.String())
		cur.Reset()
		if s != "" {
			segs = append(segs, s)
		}
	}

	for _, r := range sel {
		if quote != 0 {
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
			continue
		}
		switch r {
		case '"', '\'':
			quote = r
			cur.WriteRune(r)
		case '[', '(':
			depth++
			cur.WriteRune(r)
		case ']', ')':
			if depth > 0 {
				depth--
			}
			cur.WriteRune(r)
		case ' ', '\t', '>', '+', '~':
			if depth == 0 {
				flush()
			} else {
				cur.WriteRune(r)
			}
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return segs
}
