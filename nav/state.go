// Package nav is the navigation engine: a two-level, keyboard-addressable
// model over the live page. Digits select labeled regions, letters select
// interactive elements inside them, follow mode filters targets by typed
// text and command mode runs colon commands. All session state lives in one
// State value owned by the Machine; every mutation happens inside a
// transition handler, one input event at a time.
package nav

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"surfmate/host"
	"surfmate/survey"
)

// Level is where the user sits in the two-level hierarchy.
type Level int

const (
	LevelInactive Level = iota
	LevelContainers
	LevelElements
)

// Mode is the input interpretation layered over the current level. Exactly
// one mode is active at a time; Follow and Command suspend the ordinary
// key map without tearing it down.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFollow
	ModeCommand
)

// Keys holds the engine's control keys. Follow and Command sit outside the
// bindable pool (digits and letters) so they can never collide with a hint;
// the pool builder skips them if someone configures a letter anyway.
type Keys struct {
	Activate string
	Follow   string
	Command  string
}

// DefaultKeys returns the stock control keys.
func DefaultKeys() Keys {
	return Keys{Activate: "f", Follow: "/", Command: ":"}
}

// Region is a digit-addressable page area named by the labeling round.
// Elements is populated lazily on first entry, never eagerly: container
// contents are often injected well after initial load.
type Region struct {
	Selector   string
	Occurrence int
	Label      string
	Kind       string
	Ref        host.NodeRef
	Elements   []*Item
}

// Item is a letter-addressable interactive element, either standalone at
// page level or discovered inside a region.
type Item struct {
	Selector   string
	Occurrence int
	Label      string
	Kind       string
	Category   survey.Category
	Text       string
	Ref        host.NodeRef
}

// Target is what one key activates. Exactly one field is non-nil.
type Target struct {
	Region *Region
	Item   *Item
}

// text is what follow mode matches against.
func (t Target) text() string {
	switch {
	case t.Region != nil:
		if t.Region.Label != "" {
			return t.Region.Label
		}
		return t.Region.Selector
	case t.Item != nil:
		if t.Item.Label != "" {
			return t.Item.Label
		}
		return t.Item.Text
	}
	return ""
}

// State is the single mutable navigation session.
type State struct {
	Level      Level
	Mode       Mode
	URL        string
	Regions    []*Region
	Standalone []*Item
	Current    *Region
	Breadcrumb []*Region

	bindings map[string]Target   // key -> target; rebuilt, never patched
	order    []string            // binding keys in assignment order
	token    uuid.UUID           // labeling round this session is waiting on
	pending  []survey.Descriptor // survey snapshot behind the pending round
	follow   followState
	command  commandState
	enabled  bool // re-activate automatically after a page change
}

type followState struct {
	query   string
	cursor  int
	source  []followCandidate // level candidates snapshotted at entry
	matches []followCandidate // current ranked matches
}

type followCandidate struct {
	text string
	tgt  Target
	key  string // the suspended normal-mode key
}

type commandState struct {
	buffer string
}

// digitKeys address regions at page level and overflow elements inside one.
var digitKeys = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}

// letterPool is the element key order: lowercase first, then uppercase.
var letterPool = buildLetterPool()

func buildLetterPool() []string {
	keys := make([]string, 0, 52)
	for r := 'a'; r <= 'z'; r++ {
		keys = append(keys, string(r))
	}
	for r := 'A'; r <= 'Z'; r++ {
		keys = append(keys, string(r))
	}
	return keys
}

// resolved pairs an item with its freshly measured geometry for one render
// pass.
type resolved struct {
	item *Item
	info host.NodeInfo
}

// rowQuantum forgives sub-row vertical wiggle when ordering elements
// visually: rects within the same 10px band count as one row.
const rowQuantum = 10.0

// sortResolved orders items top-to-bottom, left-to-right, with document
// order as the final tie-break.
func sortResolved(rs []resolved) {
	sort.SliceStable(rs, func(i, j int) bool {
		ri := math.Round(rs[i].info.Rect.Y / rowQuantum)
		rj := math.Round(rs[j].info.Rect.Y / rowQuantum)
		if ri != rj {
			return ri < rj
		}
		if rs[i].info.Rect.X != rs[j].info.Rect.X {
			return rs[i].info.Rect.X < rs[j].info.Rect.X
		}
		return rs[i].info.Order < rs[j].info.Order
	})
}
