package nav

import (
	"context"
	"strconv"

	"surfmate/fuzzy"
	"surfmate/hint"
)

// Follow mode: a fuzzy query over the current level's targets. The level's
// key map is suspended while the overlay is open; digits 1-9 pick from the
// ranked matches, Enter takes the cursor, Escape restores the level.

func (m *Machine) enterFollow(ctx context.Context) {
	if len(m.state.bindings) == 0 {
		m.message(ctx, "nothing to search")
		return
	}
	src := make([]followCandidate, 0, len(m.state.order))
	for _, key := range m.state.order {
		t, ok := m.state.bindings[key]
		if !ok {
			continue
		}
		src = append(src, followCandidate{text: t.text(), tgt: t, key: key})
	}
	m.state.Mode = ModeFollow
	m.state.follow = followState{source: src}
	m.refilter()
	m.renderFollow(ctx)
}

func (m *Machine) followKey(ctx context.Context, k string) {
	f := &m.state.follow
	switch k {
	case "Escape":
		m.exitFollow(ctx)
		return
	case "Enter":
		if len(f.matches) == 0 {
			m.exitFollow(ctx)
			return
		}
		m.activateMatch(ctx, f.matches[f.cursor])
		return
	case "ArrowDown", "ArrowRight":
		if n := len(f.matches); n > 0 {
			f.cursor = (f.cursor + 1) % n
		}
		m.renderFollow(ctx)
		return
	case "ArrowUp", "ArrowLeft":
		if n := len(f.matches); n > 0 {
			f.cursor = (f.cursor - 1 + n) % n
		}
		m.renderFollow(ctx)
		return
	case "Backspace":
		if q := []rune(f.query); len(q) > 0 {
			f.query = string(q[:len(q)-1])
		}
		m.refilter()
		m.renderFollow(ctx)
		return
	}
	// Digits jump straight to a ranked match, so they are checked before
	// the typable fallthrough.
	if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
		i, _ := strconv.Atoi(k)
		if i <= len(f.matches) {
			m.activateMatch(ctx, f.matches[i-1])
			return
		}
	}
	if isTypable(k) {
		f.query += k
		m.refilter()
		m.renderFollow(ctx)
	}
}

// refilter re-ranks the source set against the query. An empty query keeps
// every candidate in level order.
func (m *Machine) refilter() {
	f := &m.state.follow
	texts := make([]string, len(f.source))
	for i, c := range f.source {
		texts[i] = c.text
	}
	ranked := fuzzy.Rank(f.query, texts)
	f.matches = f.matches[:0]
	for _, r := range ranked {
		f.matches = append(f.matches, f.source[r.Index])
	}
	f.cursor = 0
}

// renderFollow shows the top matches as numbered hints, with the cursor's
// badge enlarged.
func (m *Machine) renderFollow(ctx context.Context) {
	f := &m.state.follow
	var placed []hint.Target
	cursorSpec := -1
	for i, c := range f.matches {
		if i >= len(digitKeys) {
			break
		}
		info, ok := m.resolveTarget(ctx, c.tgt)
		if !ok {
			continue
		}
		if i == f.cursor {
			cursorSpec = len(placed)
		}
		placed = append(placed, hint.Target{Key: digitKeys[i], Label: c.text, Box: info.Rect})
	}
	vp, err := m.host.Viewport(ctx)
	if err != nil {
		m.log.Error("nav: viewport", "error", err)
		return
	}
	specs := hint.Place(placed, vp, m.opts.HintConfig)
	if cursorSpec >= 0 && cursorSpec < len(specs) {
		specs[cursorSpec].Scale *= 1.15
	}
	if err := m.host.ShowHints(ctx, specs); err != nil {
		m.log.Error("nav: painting hints", "error", err)
	}
	if len(f.matches) == 0 {
		m.message(ctx, "/"+f.query+"  (no matches)")
	} else {
		m.message(ctx, "/"+f.query+"  ▸ "+f.matches[f.cursor].text)
	}
}

// activateMatch closes the overlay and presses the match's original binding,
// so region matches descend and element matches click.
func (m *Machine) activateMatch(ctx context.Context, c followCandidate) {
	m.state.Mode = ModeNormal
	m.state.follow = followState{}
	switch {
	case c.tgt.Region != nil:
		m.enterRegion(ctx, c.tgt.Region)
	case c.tgt.Item != nil:
		m.activateItem(ctx, c.tgt.Item, c.key)
	}
}

func (m *Machine) exitFollow(ctx context.Context) {
	m.state.Mode = ModeNormal
	m.state.follow = followState{}
	m.afterOverlay(ctx)
}
