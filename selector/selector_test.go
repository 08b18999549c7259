package selector

import (
	"context"
	"testing"

	"surfmate/host"
)

const fixtureHTML = `<html><head><title>Fixture</title></head><body>
<nav id="mainnav">
  <a href="/home" class="nav-link">Home</a>
  <a href="/docs" class="nav-link">Docs</a>
  <a href="/about" class="nav-link">About</a>
</nav>
<main>
  <section class="cards">
    <div class="card"><a href="/1">First story</a></div>
    <div class="card"><a href="/2">Second story</a></div>
    <div class="card"><a href="/3">Third story</a></div>
  </section>
  <form id="search"><input type="text" name="q" placeholder="Search"><button type="submit">Go</button></form>
</main>
</body></html>`

func newFixture(t *testing.T) *host.Static {
	t.Helper()
	h, err := host.NewStatic(fixtureHTML, "https://example.com/")
	if err != nil {
		t.Fatalf("NewStatic: %v", err)
	}
	return h
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name string
		path []host.PathStep
		want string
	}{
		{
			name: "id wins",
			path: []host.PathStep{
				{Tag: "div", Classes: []string{"wrap"}, Nth: 1, TagCount: 1},
				{Tag: "button", ID: "save", Nth: 2, TagCount: 3},
			},
			want: "#save",
		},
		{
			name: "unstable id falls back to chain",
			path: []host.PathStep{
				{Tag: "button", ID: "btn-1729381", Nth: 1, TagCount: 1},
			},
			want: "button",
		},
		{
			name: "nth-child only among same-tag siblings",
			path: []host.PathStep{
				{Tag: "ul", Classes: []string{"menu"}, Nth: 1, TagCount: 1},
				{Tag: "li", Nth: 3, NthOfTag: 3, TagCount: 5},
			},
			want: "ul.menu > li:nth-child(3)",
		},
		{
			name: "generated class names skipped",
			path: []host.PathStep{
				{Tag: "a", Classes: []string{"css1xk2j38qhxkde0", "primary"}, Nth: 1, TagCount: 1},
			},
			want: "a.primary",
		},
		{
			name: "ancestor id anchors the chain",
			path: []host.PathStep{
				{Tag: "form", ID: "search", Nth: 2, TagCount: 1},
				{Tag: "input", Nth: 1, TagCount: 1},
			},
			want: "#search > input",
		},
		{
			name: "chain capped",
			path: []host.PathStep{
				{Tag: "div", Nth: 1, TagCount: 1},
				{Tag: "div", Nth: 1, TagCount: 1},
				{Tag: "div", Nth: 1, TagCount: 1},
				{Tag: "ul", Nth: 1, TagCount: 1},
				{Tag: "li", Nth: 2, TagCount: 4},
				{Tag: "a", Nth: 1, TagCount: 1},
			},
			want: "div > div > ul > li:nth-child(2) > a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.path); got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripPositional(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ul.menu > li:nth-child(3)", "ul.menu > li"},
		{"div:first-child > a:last-child", "div > a"},
		{"section:nth-of-type(2) > p", "section > p"},
		{"a.plain", "a.plain"},
		{":nth-child(2)", ""},
	}
	for _, tt := range tests {
		if got := StripPositional(tt.in); got != tt.want {
			t.Errorf("StripPositional(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTrailingSegments(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"#main > div.card > a", 2, "div.card > a"},
		{"#main > div.card > a", 1, "a"},
		{"a", 2, "a"},
		{`div[data-x="a b"] > span`, 1, "span"},
		{"nav a.link", 2, "nav > a.link"},
	}
	for _, tt := range tests {
		if got := TrailingSegments(tt.in, tt.n); got != tt.want {
			t.Errorf("TrailingSegments(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid("#main > a.nav-link:nth-child(2)") {
		t.Errorf("expected valid selector to pass")
	}
	for _, bad := range []string{"", "   ", "div[unclosed", "a >"} {
		if Valid(bad) {
			t.Errorf("Valid(%q) = true, want false", bad)
		}
	}
}

func TestGenerateRoundTrip(t *testing.T) {
	h := newFixture(t)
	ctx := context.Background()

	infos, err := h.Query(ctx, host.DocumentRef, "a, button, input")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(infos) < 5 {
		t.Fatalf("expected at least 5 interactive elements, got %d", len(infos))
	}

	occ := make(map[string]int)
	for _, info := range infos {
		sel := Generate(info.Path)
		if sel == "" {
			t.Errorf("empty selector for %s %q", info.Tag, info.Text)
			continue
		}
		n := occ[sel]
		occ[sel]++

		got, ok := Resolve(ctx, h, host.DocumentRef, sel, n, 0)
		if !ok {
			t.Errorf("Resolve(%q) missed", sel)
			continue
		}
		if got.Ref != info.Ref {
			t.Errorf("Resolve(%q) = ref %d (%q), want ref %d (%q)", sel, got.Ref, got.Text, info.Ref, info.Text)
		}
	}
}

func TestResolveOccurrence(t *testing.T) {
	h := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		occ      int
		wantText string
	}{
		{0, "First story"},
		{1, "Second story"},
		{99, "Third story"}, // clamped to last match
		{-1, "First story"},
	}
	for _, tt := range tests {
		got, ok := Resolve(ctx, h, host.DocumentRef, "div.card", tt.occ, 0)
		if !ok {
			t.Fatalf("Resolve occurrence %d missed", tt.occ)
		}
		if got.Text != tt.wantText {
			t.Errorf("occurrence %d resolved to %q, want %q", tt.occ, got.Text, tt.wantText)
		}
	}
}

func TestResolveCascadeRecovery(t *testing.T) {
	h := newFixture(t)
	ctx := context.Background()

	infos, err := h.Query(ctx, host.DocumentRef, "#mainnav a")
	if err != nil || len(infos) != 3 {
		t.Fatalf("nav links: %v (%d)", err, len(infos))
	}
	sel := Generate(infos[1].Path)
	if sel != "#mainnav > a.nav-link:nth-child(2)" {
		t.Fatalf("unexpected generated selector %q", sel)
	}

	// Structure shift: links wrapped in divs, so both the child combinator
	// and the positions rot. Only the trailing-segment stage survives.
	mutated := `<html><body>
<nav id="mainnav">
  <div><a href="/home" class="nav-link">Home</a></div>
  <div><a href="/docs" class="nav-link">Docs</a></div>
  <div><a href="/about" class="nav-link">About</a></div>
</nav>
</body></html>`
	if err := h.Replace(mutated); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, ok := Resolve(ctx, h, host.DocumentRef, sel, 1, 0)
	if !ok {
		t.Fatalf("Resolve after mutation missed")
	}
	if got.Text != "Docs" {
		t.Errorf("resolved to %q, want %q", got.Text, "Docs")
	}
}

func TestResolveHeldRefFallback(t *testing.T) {
	h := newFixture(t)
	ctx := context.Background()

	infos, err := h.Query(ctx, host.DocumentRef, "#search input")
	if err != nil || len(infos) != 1 {
		t.Fatalf("input: %v (%d)", err, len(infos))
	}
	held := infos[0].Ref

	got, ok := Resolve(ctx, h, host.DocumentRef, ".completely-gone", 0, held)
	if !ok {
		t.Fatalf("expected held ref to rescue a rotten selector")
	}
	if got.Ref != held {
		t.Errorf("resolved ref %d, want held %d", got.Ref, held)
	}

	h.Detach(held)
	if _, ok := Resolve(ctx, h, host.DocumentRef, ".completely-gone", 0, held); ok {
		t.Errorf("expected miss once the held ref detached")
	}
}

func TestSanitizeWidensMatches(t *testing.T) {
	h := newFixture(t)
	ctx := context.Background()

	narrow := "section.cards > div.card:nth-child(2)"
	wide := StripPositional(narrow)

	nm, err := h.Query(ctx, host.DocumentRef, narrow)
	if err != nil {
		t.Fatalf("Query narrow: %v", err)
	}
	wm, err := h.Query(ctx, host.DocumentRef, wide)
	if err != nil {
		t.Fatalf("Query wide: %v", err)
	}
	if len(nm) != 1 || len(wm) != 3 {
		t.Fatalf("match counts: narrow %d, wide %d", len(nm), len(wm))
	}
	found := false
	for _, w := range wm {
		if w.Ref == nm[0].Ref {
			found = true
		}
	}
	if !found {
		t.Errorf("sanitized match set does not contain the verbatim match")
	}
}
