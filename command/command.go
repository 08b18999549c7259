// Package command parses colon-command input into tagged actions.
package command

import "strings"

// Kind discriminates parsed command lines.
type Kind int

const (
	KindNone Kind = iota
	KindHelp
	KindQuit
	KindSave
	KindLoad
	KindDelete
	KindSessions
	KindRelabel
	KindLabels
	KindNavigate
	KindUnknown
)

// Result represents one parsed command line. Parse never fails; input that
// matches nothing comes back as KindUnknown with Raw set.
type Result struct {
	Kind   Kind
	Name   string // session name for save/load/delete
	URL    string // target for navigate
	On     bool   // labels on/off
	Toggle bool   // bare "labels" flips the current setting
	Raw    string
}

// Parse interprets one command line.
func Parse(input string) Result {
	input = strings.TrimSpace(input)
	if input == "" {
		return Result{Kind: KindNone}
	}

	// Full URLs navigate directly, no command word needed.
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return Result{Kind: KindNavigate, URL: input}
	}

	word := input
	rest := ""
	if idx := strings.IndexByte(input, ' '); idx > 0 {
		word = input[:idx]
		rest = strings.TrimSpace(input[idx+1:])
	}

	switch strings.ToLower(word) {
	case "help", "h", "?":
		return Result{Kind: KindHelp}
	case "quit", "q", "exit":
		return Result{Kind: KindQuit}
	case "save":
		return Result{Kind: KindSave, Name: rest}
	case "load":
		return Result{Kind: KindLoad, Name: rest}
	case "delete", "rm":
		if rest == "" {
			return Result{Kind: KindUnknown, Raw: input}
		}
		return Result{Kind: KindDelete, Name: rest}
	case "sessions", "ls":
		return Result{Kind: KindSessions}
	case "relabel":
		return Result{Kind: KindRelabel}
	case "labels":
		switch strings.ToLower(rest) {
		case "on":
			return Result{Kind: KindLabels, On: true}
		case "off":
			return Result{Kind: KindLabels, On: false}
		case "":
			return Result{Kind: KindLabels, Toggle: true}
		}
		return Result{Kind: KindUnknown, Raw: input}
	case "open", "go":
		if rest == "" {
			return Result{Kind: KindUnknown, Raw: input}
		}
		return Result{Kind: KindNavigate, URL: normalizeURL(rest)}
	}

	// Bare domain.tld input navigates, matching address-bar habits.
	if looksLikeURL(input) {
		return Result{Kind: KindNavigate, URL: normalizeURL(input)}
	}

	return Result{Kind: KindUnknown, Raw: input}
}

func normalizeURL(input string) string {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return input
	}
	return "https://" + input
}

// looksLikeURL checks if input looks like a URL (has domain.tld pattern).
func looksLikeURL(input string) bool {
	// No spaces allowed in URLs
	if strings.Contains(input, " ") {
		return false
	}

	// Check for common TLDs
	tlds := []string{
		".com", ".org", ".net", ".io", ".dev", ".co", ".me", ".app",
		".edu", ".gov", ".uk", ".de", ".fr", ".jp", ".au", ".ca",
		".info", ".biz", ".tv", ".cc", ".xyz", ".tech", ".ai",
	}
	lower := strings.ToLower(input)
	for _, tld := range tlds {
		if strings.Contains(lower, tld) {
			return true
		}
	}

	// Check for localhost or IP addresses
	if strings.HasPrefix(lower, "localhost") || strings.HasPrefix(lower, "127.") {
		return true
	}

	return false
}
