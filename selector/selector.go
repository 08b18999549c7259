// Package selector generates durable CSS selectors for surveyed elements and
// resolves them back to live elements, degrading gracefully as the page
// mutates underneath.
package selector

import (
	"fmt"
	"regexp"
	"strings"

	"surfmate/host"
)

// MaxSegments bounds generated ancestor chains. Deep chains are brittle;
// past this depth a shorter selector plus occurrence disambiguation wins.
const MaxSegments = 5

var identRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Generate builds a selector for the element at the end of path. It prefers
// the element's id; otherwise it emits a child chain of
// tag[.class][:nth-child(n)] segments, anchored at the nearest ancestor with
// a usable id and capped at MaxSegments.
func Generate(path []host.PathStep) string {
	if len(path) == 0 {
		return ""
	}
	leaf := path[len(path)-1]
	if id := stableID(leaf.ID); id != "" {
		return "#" + id
	}

	var segs []string
	for i := len(path) - 1; i >= 0 && len(segs) < MaxSegments; i-- {
		step := path[i]
		if i < len(path)-1 {
			if id := stableID(step.ID); id != "" {
				segs = append([]string{"#" + id}, segs...)
				break
			}
		}
		segs = append([]string{segment(step)}, segs...)
	}
	return strings.Join(segs, " > ")
}

func segment(step host.PathStep) string {
	var b strings.Builder
	b.WriteString(step.Tag)
	for i, cls := range stableClasses(step.Classes) {
		if i >= 2 {
			break
		}
		b.WriteString(".")
		b.WriteString(cls)
	}
	if step.TagCount > 1 && step.Nth > 0 {
		fmt.Fprintf(&b, ":nth-child(%d)", step.Nth)
	}
	return b.String()
}

// stableID accepts ids that look hand-written. Long ids full of digits are
// usually minted per page load and resolve to nothing next time.
func stableID(id string) string {
	if id == "" || !identRe.MatchString(id) {
		return ""
	}
	if len(id) > 10 && strings.ContainsAny(id, "0123456789") {
		return ""
	}
	return id
}

// stableClasses filters out CSS-in-JS hash churn: long single-token names
// with no hyphen, digit-heavy names, or anything that would need escaping.
func stableClasses(classes []string) []string {
	var out []string
	for _, cls := range classes {
		if !identRe.MatchString(cls) {
			continue
		}
		if len(cls) > 20 && !strings.Contains(cls, "-") {
			continue
		}
		if len(cls) > 10 && digitCount(cls) >= 3 {
			continue
		}
		out = append(out, cls)
	}
	return out
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
