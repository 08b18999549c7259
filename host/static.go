package host

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Static is a Host over a parsed HTML document. There is no real layout
// engine behind it, so geometry is synthesized from document order: elements
// flow top to bottom at a fixed line height, indented by depth, and
// containers span their descendants. That is enough for survey ordering,
// hint layout and tests to behave the way they do against a live page.
//
// Activation is recorded, not performed; tests and the offline print mode
// read the recorders back.
type Static struct {
	mu sync.Mutex

	doc   *goquery.Document
	url   string
	title string
	vp    Rect

	refs  map[*html.Node]NodeRef
	nodes map[NodeRef]*html.Node
	order map[*html.Node]int
	rects map[*html.Node]Rect
	shown map[*html.Node]bool
	next  NodeRef

	events chan Event

	clicks   []NodeRef
	focused  []NodeRef
	scrolled []NodeRef
	hints    []HintSpec
	messages []string
}

const (
	staticLineH   = 18.0
	staticIndent  = 16.0
	staticCharW   = 8.0
	staticMaxText = 200
)

// NewStatic parses htmlContent and builds a static host for it.
func NewStatic(htmlContent, url string) (*Static, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	s := &Static{
		doc:    doc,
		url:    url,
		vp:     Rect{W: 1280, H: 800},
		refs:   make(map[*html.Node]NodeRef),
		nodes:  make(map[NodeRef]*html.Node),
		order:  make(map[*html.Node]int),
		rects:  make(map[*html.Node]Rect),
		shown:  make(map[*html.Node]bool),
		next:   1,
		events: make(chan Event, 64),
	}
	s.title = strings.TrimSpace(doc.Find("title").First().Text())
	s.layout()
	return s, nil
}

// SetViewport overrides the default 1280x800 viewport.
func (s *Static) SetViewport(w, h float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vp = Rect{W: w, H: h}
}

// Replace swaps in a new document, as if the page mutated in place. All
// previously handed-out refs become stale.
func (s *Static) Replace(htmlContent string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return fmt.Errorf("parsing html: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.refs = make(map[*html.Node]NodeRef)
	s.nodes = make(map[NodeRef]*html.Node)
	s.order = make(map[*html.Node]int)
	s.rects = make(map[*html.Node]Rect)
	s.shown = make(map[*html.Node]bool)
	s.layout()
	return nil
}

// Detach invalidates a single ref, simulating element removal.
func (s *Static) Detach(ref NodeRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[ref]; ok {
		delete(s.nodes, ref)
		delete(s.refs, n)
	}
}

// layout walks the body assigning document order and synthetic rects.
// Caller holds the lock or is the constructor.
func (s *Static) layout() {
	body := s.bodyNode()
	if body == nil {
		return
	}
	idx := 0
	y := 8.0
	var walk func(n *html.Node, depth int, hidden bool) Rect
	walk = func(n *html.Node, depth int, hidden bool) Rect {
		s.order[n] = idx
		idx++
		hidden = hidden || nodeHidden(n)
		if hidden {
			s.shown[n] = false
			s.rects[n] = Rect{}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && !skipLayoutTag(c.Data) {
					walk(c, depth+1, true)
				}
			}
			return Rect{}
		}

		var children []Rect
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && !skipLayoutTag(c.Data) {
				if r := walk(c, depth+1, false); r.Area() > 0 {
					children = append(children, r)
				}
			}
		}

		var r Rect
		if len(children) == 0 {
			r = Rect{
				X: staticIndent*float64(depth) + 8,
				Y: y,
				W: estWidth(n),
				H: staticLineH - 2,
			}
			y += staticLineH
		} else {
			r = children[0]
			for _, c := range children[1:] {
				r = union(r, c)
			}
		}
		s.shown[n] = true
		s.rects[n] = r
		return r
	}
	walk(body, 0, false)
}

func union(a, b Rect) Rect {
	x1 := min(a.X, b.X)
	y1 := min(a.Y, b.Y)
	x2 := max(a.X+a.W, b.X+b.W)
	y2 := max(a.Y+a.H, b.Y+b.H)
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

func estWidth(n *html.Node) float64 {
	text := collapseText(n)
	w := staticCharW * float64(len([]rune(text)))
	switch n.Data {
	case "input", "textarea":
		return 220
	case "select":
		return 160
	case "button":
		return max(90, min(w+24, 300))
	}
	return max(24, min(w, 420))
}

func skipLayoutTag(tag string) bool {
	switch tag {
	case "script", "style", "link", "meta", "noscript", "template", "head", "title":
		return true
	}
	return false
}

func nodeHidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if a.Val == "true" {
				return true
			}
		case "type":
			if n.Data == "input" && a.Val == "hidden" {
				return true
			}
		case "style":
			v := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(v, "display:none") || strings.Contains(v, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

func (s *Static) bodyNode() *html.Node {
	sel := s.doc.Find("body")
	if sel.Length() == 0 {
		return nil
	}
	return sel.Get(0)
}

// Query implements Host. Invalid selectors and detached scopes return an
// empty result rather than an error.
func (s *Static) Query(ctx context.Context, scope NodeRef, selector string) ([]NodeInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := cascadia.Parse(selector); err != nil {
		return nil, nil
	}

	var root *goquery.Selection
	var scopeNode *html.Node
	if scope == DocumentRef {
		root = s.doc.Selection
	} else {
		n, ok := s.nodes[scope]
		if !ok {
			return nil, nil
		}
		scopeNode = n
		root = s.doc.FindNodes(n)
		if root.Length() == 0 {
			// Scope no longer reachable from the document root.
			return nil, nil
		}
	}

	var infos []NodeInfo
	root.Find(selector).Each(func(_ int, m *goquery.Selection) {
		n := m.Get(0)
		infos = append(infos, s.info(n, scopeNode))
	})
	return infos, nil
}

// Describe implements Host.
func (s *Static) Describe(ctx context.Context, ref NodeRef) (NodeInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[ref]
	if !ok {
		return NodeInfo{}, false
	}
	return s.info(n, nil), true
}

func (s *Static) info(n *html.Node, scope *html.Node) NodeInfo {
	ref := s.ensureRef(n)
	info := NodeInfo{
		Ref:         ref,
		Tag:         n.Data,
		ID:          attr(n, "id"),
		Classes:     strings.Fields(attr(n, "class")),
		Role:        attr(n, "role"),
		Name:        attr(n, "aria-label"),
		Placeholder: attr(n, "placeholder"),
		Href:        attr(n, "href"),
		Text:        collapseText(n),
		Rect:        s.rects[n],
		Visible:     s.shown[n],
		Order:       s.order[n],
		Path:        s.buildPath(n, scope),
	}
	return info
}

func (s *Static) ensureRef(n *html.Node) NodeRef {
	if ref, ok := s.refs[n]; ok {
		return ref
	}
	ref := s.next
	s.next++
	s.refs[n] = ref
	s.nodes[ref] = n
	return ref
}

// buildPath walks from the element up toward scope (or body), newest last.
// The chain is capped; selector generation never needs more than a handful
// of segments.
func (s *Static) buildPath(n, scope *html.Node) []PathStep {
	const maxSteps = 6
	var rev []PathStep
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		if cur == scope || cur.Data == "body" || cur.Data == "html" {
			break
		}
		rev = append(rev, pathStep(cur))
		if len(rev) >= maxSteps {
			break
		}
	}
	steps := make([]PathStep, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		steps = append(steps, rev[i])
	}
	return steps
}

func pathStep(n *html.Node) PathStep {
	step := PathStep{
		Tag:     n.Data,
		ID:      attr(n, "id"),
		Classes: strings.Fields(attr(n, "class")),
	}
	nth, tagCount := 0, 0
	if n.Parent != nil {
		for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			nth++
			if c.Data == n.Data {
				tagCount++
			}
			if c == n {
				step.Nth = nth
				step.NthOfTag = tagCount
			}
		}
	}
	step.TagCount = tagCount
	return step
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapseText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteString(" ")
		}
		for k := c.FirstChild; k != nil; k = k.NextSibling {
			if k.Type == html.ElementNode && skipLayoutTag(k.Data) {
				continue
			}
			walk(k)
		}
	}
	walk(n)
	text := strings.Join(strings.Fields(b.String()), " ")
	if len(text) > staticMaxText {
		text = text[:staticMaxText]
	}
	return text
}

// Click implements Host by recording the activation.
func (s *Static) Click(ctx context.Context, ref NodeRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[ref]; !ok {
		return fmt.Errorf("click: node %d detached", ref)
	}
	s.clicks = append(s.clicks, ref)
	return nil
}

// Focus implements Host by recording the activation.
func (s *Static) Focus(ctx context.Context, ref NodeRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[ref]; !ok {
		return fmt.Errorf("focus: node %d detached", ref)
	}
	s.focused = append(s.focused, ref)
	return nil
}

// ScrollIntoView implements Host by recording the scroll.
func (s *Static) ScrollIntoView(ctx context.Context, ref NodeRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[ref]; !ok {
		return fmt.Errorf("scroll: node %d detached", ref)
	}
	s.scrolled = append(s.scrolled, ref)
	return nil
}

// Viewport implements Host.
func (s *Static) Viewport(ctx context.Context) (Rect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vp, nil
}

// Location implements Host.
func (s *Static) Location(ctx context.Context) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url, s.title, nil
}

// ShowHints implements Host by recording the painted set.
func (s *Static) ShowHints(ctx context.Context, hints []HintSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hints = append([]HintSpec(nil), hints...)
	return nil
}

// ClearHints implements Host.
func (s *Static) ClearHints(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hints = nil
	return nil
}

// ShowMessage implements Host by recording the message.
func (s *Static) ShowMessage(ctx context.Context, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

// Events implements Host. Feed it with Press, Navigate and EmitViewport.
func (s *Static) Events(ctx context.Context) (<-chan Event, error) {
	return s.events, nil
}

// Press injects a key event, as if the user typed on the page.
func (s *Static) Press(key string) {
	s.events <- KeyEvent{Key: key}
}

// Navigate injects a page-identity change.
func (s *Static) Navigate(url string) {
	s.mu.Lock()
	s.url = url
	s.mu.Unlock()
	s.events <- NavigateEvent{URL: url}
}

// EmitViewport injects a scroll/resize notification.
func (s *Static) EmitViewport() {
	s.events <- ViewportEvent{}
}

// Close shuts the event stream down.
func (s *Static) Close() {
	close(s.events)
}

// Recorders, mainly for tests and the offline print mode.

// Clicks returns refs clicked so far.
func (s *Static) Clicks() []NodeRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]NodeRef(nil), s.clicks...)
}

// Focused returns refs focused so far.
func (s *Static) Focused() []NodeRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]NodeRef(nil), s.focused...)
}

// ScrolledInto returns refs scrolled into view so far.
func (s *Static) ScrolledInto() []NodeRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]NodeRef(nil), s.scrolled...)
}

// Hints returns the currently painted hints, nil after ClearHints.
func (s *Static) Hints() []HintSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]HintSpec(nil), s.hints...)
}

// Messages returns every message shown so far.
func (s *Static) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}
