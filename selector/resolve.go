package selector

import (
	"context"

	"surfmate/host"
)

// Resolve maps a stored selector back to a live element. It walks the
// sanitizer pipeline until a query matches, picks the occurrence-th match
// (clamped to the last), and finally falls back to the held ref if the
// element is still attached. A miss is (zero, false), never an error: a
// selector that no longer matches is an expected page mutation, and the
// caller drops the hint for this render pass.
func Resolve(ctx context.Context, h host.Host, scope host.NodeRef, sel string, occurrence int, held host.NodeRef) (host.NodeInfo, bool) {
	if sel != "" {
		seen := make(map[string]bool, MaxSegments)
		for _, stage := range Pipeline() {
			cand := stage.Apply(sel)
			if cand == "" || seen[cand] || !Valid(cand) {
				continue
			}
			seen[cand] = true

			matches, err := h.Query(ctx, scope, cand)
			if err != nil || len(matches) == 0 {
				continue
			}
			idx := occurrence
			if idx < 0 {
				idx = 0
			}
			if idx >= len(matches) {
				idx = len(matches) - 1
			}
			return matches[idx], true
		}
	}

	if held != 0 {
		if info, ok := h.Describe(ctx, held); ok {
			return info, true
		}
	}
	return host.NodeInfo{}, false
}
