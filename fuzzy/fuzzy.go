// Package fuzzy scores candidate strings against a typed query for the
// follow-mode filter. Matching is case-insensitive and tiered: exact beats
// prefix beats substring beats scattered subsequence, and within a tier
// tighter matches score higher. Scores from different tiers never overlap,
// so ranking stays predictable while the user types.
package fuzzy

import (
	"sort"
	"strings"
)

// Score bands. Each tier owns a closed range below the tier above it.
const (
	scoreExact       = 1000
	prefixBase       = 800
	prefixFloor      = 601
	substringBase    = 600
	substringFloor   = 300
	subsequenceBase  = 200
	subsequenceCeil  = 299
	subsequenceFloor = 201
)

// Score rates candidate against query. ok is false when the query is not a
// subsequence of the candidate at all. An empty query matches everything
// with score zero.
func Score(query, candidate string) (int, bool) {
	if query == "" {
		return 0, true
	}
	q := []rune(strings.ToLower(query))
	c := []rune(strings.ToLower(candidate))
	if len(q) > len(c) {
		return 0, false
	}

	if string(q) == string(c) {
		return scoreExact, true
	}

	if hasPrefix(c, q) {
		s := prefixBase - (len(c) - len(q))
		if s < prefixFloor {
			s = prefixFloor
		}
		return s, true
	}

	if pos := indexOf(c, q); pos >= 0 {
		s := substringBase - pos
		if s < substringFloor {
			s = substringFloor
		}
		return s, true
	}

	return subsequence(c, q)
}

func hasPrefix(c, q []rune) bool {
	for i, r := range q {
		if c[i] != r {
			return false
		}
	}
	return true
}

func indexOf(c, q []rune) int {
	for i := 0; i+len(q) <= len(c); i++ {
		if hasPrefix(c[i:], q) {
			return i
		}
	}
	return -1
}

// subsequence greedily matches query runes in order, rewarding adjacency
// and penalizing gaps. The result stays inside the subsequence band.
func subsequence(c, q []rune) (int, bool) {
	consec, skips := 0, 0
	last := -2
	ci := 0
	for _, r := range q {
		found := false
		for ; ci < len(c); ci++ {
			if c[ci] == r {
				if ci == last+1 {
					consec++
				} else if last >= 0 {
					skips += ci - last - 1
				}
				last = ci
				ci++
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	s := subsequenceBase + 8*consec - skips
	if s > subsequenceCeil {
		s = subsequenceCeil
	}
	if s < subsequenceFloor {
		s = subsequenceFloor
	}
	return s, true
}

// Match is one ranked candidate.
type Match struct {
	Index int // position in the input slice
	Score int
}

// Rank scores every candidate and returns the matches ordered best first,
// ties broken by input order. Non-matching candidates are dropped.
func Rank(query string, candidates []string) []Match {
	var out []Match
	for i, cand := range candidates {
		if s, ok := Score(query, cand); ok {
			out = append(out, Match{Index: i, Score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
