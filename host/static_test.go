package host

import (
	"context"
	"testing"
)

const menuHTML = `<html><head><title>Static fixture</title></head><body>
<nav id="menu">
  <a href="/a">Alpha</a>
  <a href="/b">Beta</a>
</nav>
<p><a href="/c">Gamma</a></p>
</body></html>`

func newMenu(t *testing.T) *Static {
	t.Helper()
	h, err := NewStatic(menuHTML, "https://static.test/")
	if err != nil {
		t.Fatalf("NewStatic: %v", err)
	}
	return h
}

func TestSyntheticLayoutFlows(t *testing.T) {
	h := newMenu(t)
	ctx := context.Background()

	links, err := h.Query(ctx, DocumentRef, "a")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(links) != 3 {
		t.Fatalf("links = %#v, want 3", links)
	}
	alpha, beta, gamma := links[0], links[1], links[2]
	if alpha.Text != "Alpha" || beta.Text != "Beta" || gamma.Text != "Gamma" {
		t.Fatalf("results not in document order: %q %q %q", alpha.Text, beta.Text, gamma.Text)
	}
	if !(alpha.Order < beta.Order && beta.Order < gamma.Order) {
		t.Errorf("orders not increasing: %d %d %d", alpha.Order, beta.Order, gamma.Order)
	}

	// Leaves flow down one line at a time, indented by depth.
	if alpha.Rect.Y != 8 {
		t.Errorf("first leaf Y = %v, want 8", alpha.Rect.Y)
	}
	if beta.Rect.Y != alpha.Rect.Y+18 || gamma.Rect.Y != beta.Rect.Y+18 {
		t.Errorf("leaf rows: %v %v %v, want 18px steps", alpha.Rect.Y, beta.Rect.Y, gamma.Rect.Y)
	}
	if alpha.Rect.X != beta.Rect.X || alpha.Rect.X != gamma.Rect.X {
		t.Errorf("same-depth leaves at different X: %v %v %v", alpha.Rect.X, beta.Rect.X, gamma.Rect.X)
	}

	// The container spans its children.
	navs, err := h.Query(ctx, DocumentRef, "#menu")
	if err != nil || len(navs) != 1 {
		t.Fatalf("locating nav: %v %#v", err, navs)
	}
	nav := navs[0]
	for _, l := range []NodeInfo{alpha, beta} {
		if nav.Rect.Intersect(l.Rect) != l.Rect {
			t.Errorf("nav %+v does not cover %q %+v", nav.Rect, l.Text, l.Rect)
		}
	}
	if nav.Rect.Overlaps(gamma.Rect) {
		t.Errorf("nav %+v spills over unrelated %+v", nav.Rect, gamma.Rect)
	}

	// Paths are scope-relative: against the document they reach up to body,
	// against the nav they hold just the element itself.
	if len(alpha.Path) != 2 || alpha.Path[0].Tag != "nav" || alpha.Path[1].Tag != "a" {
		t.Fatalf("document-scoped path: %#v", alpha.Path)
	}
	if alpha.Path[1].TagCount != 2 || alpha.Path[1].NthOfTag != 1 {
		t.Errorf("alpha sibling counts: %#v", alpha.Path[1])
	}
	scoped, err := h.Query(ctx, nav.Ref, "a")
	if err != nil || len(scoped) != 2 {
		t.Fatalf("scoped query: %v %#v", err, scoped)
	}
	if len(scoped[0].Path) != 1 || scoped[0].Path[0].Tag != "a" {
		t.Errorf("scope-relative path: %#v", scoped[0].Path)
	}

	// Refs are stable across queries.
	again, err := h.Query(ctx, DocumentRef, "a")
	if err != nil || len(again) != 3 {
		t.Fatalf("re-query: %v %#v", err, again)
	}
	for i := range links {
		if again[i].Ref != links[i].Ref {
			t.Errorf("ref churn at %d: %d vs %d", i, links[i].Ref, again[i].Ref)
		}
	}

	// Malformed selectors come back empty, never as an error.
	if got, err := h.Query(ctx, DocumentRef, "a["); err != nil || len(got) != 0 {
		t.Errorf("malformed selector: %v %#v", err, got)
	}
}

func TestHiddenSubtreesHaveNoGeometry(t *testing.T) {
	page := `<html><body>
<a href="/live">Live</a>
<a href="/ghost" hidden>Ghost</a>
<div style="display: none"><a href="/buried">Buried</a></div>
<input type="hidden" name="tok">
</body></html>`
	h, err := NewStatic(page, "https://hidden.test/")
	if err != nil {
		t.Fatalf("NewStatic: %v", err)
	}

	links, err := h.Query(context.Background(), DocumentRef, "a")
	if err != nil || len(links) != 3 {
		t.Fatalf("hidden elements should still match queries: %v %#v", err, links)
	}
	for _, l := range links {
		switch l.Text {
		case "Live":
			if !l.Visible || l.Rect.Area() == 0 {
				t.Errorf("live link: %#v", l)
			}
		case "Ghost", "Buried":
			if l.Visible || l.Rect.Area() != 0 {
				t.Errorf("%s should be hidden with zero rect: %#v", l.Text, l)
			}
		}
	}

	inputs, err := h.Query(context.Background(), DocumentRef, "input")
	if err != nil || len(inputs) != 1 {
		t.Fatalf("input query: %v %#v", err, inputs)
	}
	if inputs[0].Visible {
		t.Errorf("type=hidden input marked visible")
	}
}

func TestDetachAndReplaceInvalidateRefs(t *testing.T) {
	h := newMenu(t)
	ctx := context.Background()

	navs, _ := h.Query(ctx, DocumentRef, "#menu")
	links, _ := h.Query(ctx, DocumentRef, "a")
	if len(navs) != 1 || len(links) != 3 {
		t.Fatalf("fixture queries: %#v %#v", navs, links)
	}
	navRef, alphaRef := navs[0].Ref, links[0].Ref

	h.Detach(navRef)
	if _, ok := h.Describe(ctx, navRef); ok {
		t.Errorf("detached ref still describable")
	}
	if got, err := h.Query(ctx, navRef, "a"); err != nil || len(got) != 0 {
		t.Errorf("query under detached scope: %v %#v", err, got)
	}
	if err := h.Click(ctx, navRef); err == nil {
		t.Errorf("click on detached ref succeeded")
	}
	// Only the single handle dies; siblings stay resolvable.
	if _, ok := h.Describe(ctx, alphaRef); !ok {
		t.Errorf("unrelated ref invalidated by Detach")
	}

	if err := h.Replace(`<html><body><a href="/n">New</a></body></html>`); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if _, ok := h.Describe(ctx, alphaRef); ok {
		t.Errorf("pre-replace ref survived Replace")
	}
	if err := h.Focus(ctx, alphaRef); err == nil {
		t.Errorf("focus on stale ref succeeded")
	}
	fresh, err := h.Query(ctx, DocumentRef, "a")
	if err != nil || len(fresh) != 1 || fresh[0].Text != "New" {
		t.Fatalf("post-replace query: %v %#v", err, fresh)
	}
}

func TestRecorders(t *testing.T) {
	h := newMenu(t)
	ctx := context.Background()

	links, _ := h.Query(ctx, DocumentRef, "a")
	if err := h.Click(ctx, links[0].Ref); err != nil {
		t.Fatalf("Click: %v", err)
	}
	if err := h.Focus(ctx, links[1].Ref); err != nil {
		t.Fatalf("Focus: %v", err)
	}
	if err := h.ScrollIntoView(ctx, links[2].Ref); err != nil {
		t.Fatalf("ScrollIntoView: %v", err)
	}
	if got := h.Clicks(); len(got) != 1 || got[0] != links[0].Ref {
		t.Errorf("Clicks = %v", got)
	}
	if got := h.Focused(); len(got) != 1 || got[0] != links[1].Ref {
		t.Errorf("Focused = %v", got)
	}
	if got := h.ScrolledInto(); len(got) != 1 || got[0] != links[2].Ref {
		t.Errorf("ScrolledInto = %v", got)
	}

	// Each paint replaces the previous one; clearing empties the overlay.
	h.ShowHints(ctx, []HintSpec{{Key: "1", Label: "Menu"}, {Key: "a", Label: "Alpha"}})
	h.ShowHints(ctx, []HintSpec{{Key: "a", Label: "Alpha"}})
	if got := h.Hints(); len(got) != 1 || got[0].Key != "a" {
		t.Errorf("Hints after repaint = %#v", got)
	}
	h.ClearHints(ctx)
	if got := h.Hints(); len(got) != 0 {
		t.Errorf("Hints after clear = %#v", got)
	}

	h.ShowMessage(ctx, "labeling page…")
	h.ShowMessage(ctx, "saved docs")
	if got := h.Messages(); len(got) != 2 || got[1] != "saved docs" {
		t.Errorf("Messages = %v", got)
	}
}

func TestEventFeedAndLocation(t *testing.T) {
	h := newMenu(t)
	ctx := context.Background()

	url, title, err := h.Location(ctx)
	if err != nil || url != "https://static.test/" || title != "Static fixture" {
		t.Fatalf("Location = %q %q %v", url, title, err)
	}

	h.SetViewport(900, 500)
	vp, err := h.Viewport(ctx)
	if err != nil || vp.W != 900 || vp.H != 500 {
		t.Fatalf("Viewport = %+v %v", vp, err)
	}

	events, err := h.Events(ctx)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	h.Press("f")
	h.Navigate("https://moved.test/next")
	h.EmitViewport()

	if ke, ok := (<-events).(KeyEvent); !ok || ke.Key != "f" {
		t.Fatalf("first event = %#v, want KeyEvent f", ke)
	}
	if ne, ok := (<-events).(NavigateEvent); !ok || ne.URL != "https://moved.test/next" {
		t.Fatalf("second event = %#v, want NavigateEvent", ne)
	}
	if _, ok := (<-events).(ViewportEvent); !ok {
		t.Fatalf("third event not a ViewportEvent")
	}

	if url, _, _ := h.Location(ctx); url != "https://moved.test/next" {
		t.Errorf("Location after Navigate = %q", url)
	}
}
