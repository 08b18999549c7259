// Package host defines the page primitives SurfMate needs from a browser:
// querying elements, measuring them, activating them, painting hint overlays
// and delivering input events. The navigation engine is written against this
// interface; chrome.go backs it with a live tab and static.go with parsed HTML.
package host

import (
	"context"
)

// NodeRef is a handle to a live element. Refs are only valid until the next
// navigation; a stale ref makes Describe report false.
type NodeRef int64

// DocumentRef is the scope for whole-document queries.
const DocumentRef NodeRef = 0

// Rect is a viewport-relative box in CSS pixels.
type Rect struct {
	X, Y, W, H float64
}

// Intersect returns the overlapping region of two rects. A rect with zero or
// negative width/height means no overlap.
func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.W, o.X+o.W)
	y2 := min(r.Y+r.H, o.Y+o.H)
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// Area returns the rect's area, or 0 for degenerate rects.
func (r Rect) Area() float64 {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

// Overlaps reports whether two rects share any area.
func (r Rect) Overlaps(o Rect) bool {
	return r.Intersect(o).Area() > 0
}

// CenterX returns the horizontal center of the rect.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical center of the rect.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// PathStep describes one element on the ancestor chain from a query scope
// down to a matched element. Selector generation consumes these.
type PathStep struct {
	Tag      string
	ID       string
	Classes  []string
	Nth      int // 1-based position among all element siblings
	NthOfTag int // 1-based position among same-tag siblings
	TagCount int // number of siblings sharing the tag, including this one
}

// NodeInfo is the engine's view of a live element.
type NodeInfo struct {
	Ref         NodeRef
	Tag         string
	ID          string
	Classes     []string
	Role        string
	Name        string // aria-label or accessible name
	Placeholder string
	Href        string
	Text        string // trimmed, whitespace-collapsed; hosts truncate long runs
	Rect        Rect
	Visible     bool
	Order       int        // document order index, for stable visual sorting
	Path        []PathStep // scope-to-element chain; last step is the element
}

// HintSpec is one painted hint: the key to press and where to draw it.
type HintSpec struct {
	Key   string
	Label string
	Box   Rect
	Scale float64 // 1.0 normal; reduced for mostly-offscreen targets
	Faded bool
}

// Event is an input delivered by the host. Exactly one concrete type applies.
type Event interface {
	isEvent()
}

// KeyEvent is a key press, using DOM KeyboardEvent.key values
// ("a", "1", "Escape", "Enter", "ArrowDown", "Backspace", ...).
type KeyEvent struct {
	Key string
}

// NavigateEvent fires when the page identity changes: full navigations and
// SPA history updates alike.
type NavigateEvent struct {
	URL string
}

// ViewportEvent fires on scroll or resize. It carries no payload; consumers
// re-measure whatever they care about.
type ViewportEvent struct{}

func (KeyEvent) isEvent()      {}
func (NavigateEvent) isEvent() {}
func (ViewportEvent) isEvent() {}

// Host is the set of page primitives the engine runs against.
//
// Query returns every element under scope matching the CSS selector, in
// document order. An invalid selector or a detached scope yields an empty
// slice, not an error; errors are reserved for transport failure.
type Host interface {
	Query(ctx context.Context, scope NodeRef, selector string) ([]NodeInfo, error)

	// Describe re-measures a held ref. ok is false when the element is
	// detached or the ref is stale.
	Describe(ctx context.Context, ref NodeRef) (NodeInfo, bool)

	Click(ctx context.Context, ref NodeRef) error
	Focus(ctx context.Context, ref NodeRef) error
	ScrollIntoView(ctx context.Context, ref NodeRef) error

	Viewport(ctx context.Context) (Rect, error)
	Location(ctx context.Context) (url, title string, err error)

	ShowHints(ctx context.Context, hints []HintSpec) error
	ClearHints(ctx context.Context) error

	// ShowMessage paints a transient status or error line. The next
	// ClearHints dismisses it.
	ShowMessage(ctx context.Context, msg string) error

	// Events returns the host's input stream. The channel is closed when
	// the host shuts down. All events arrive on one channel so consumers
	// observe a single global order.
	Events(ctx context.Context) (<-chan Event, error)
}
