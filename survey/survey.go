// Package survey extracts and ranks the interactive elements and semantic
// regions of a page through the host's query primitives. A survey is a pure
// read: it never touches navigation state, and its output descriptors are
// only valid until the next render pass re-resolves them.
package survey

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"surfmate/host"
	"surfmate/selector"
)

// Mode selects the survey scope semantics.
type Mode int

const (
	// ModePage surveys the whole page: interactive elements plus container
	// candidates for the labeling round.
	ModePage Mode = iota
	// ModeContainer surveys inside one container: interactive elements only.
	ModeContainer
)

// Category is the coarse role a descriptor plays on the page.
type Category string

const (
	CategoryLink      Category = "link"
	CategoryButton    Category = "button"
	CategoryInput     Category = "input"
	CategoryToggle    Category = "toggle"
	CategoryMenu      Category = "menu"
	CategoryContainer Category = "container"
)

// Interactive reports whether the category is a directly activatable element
// rather than a region.
func (c Category) Interactive() bool {
	return c != CategoryContainer
}

// Descriptor is one ranked survey result. Selector plus Occurrence identify
// the element durably; Ref is a fast-path handle that rots on navigation.
type Descriptor struct {
	Selector   string
	Occurrence int // index among survey descriptors sharing Selector, in document order
	Category   Category
	Text       string
	Rect       host.Rect
	Score      int
	Ref        host.NodeRef
	Order      int // document order, for visual sorting
}

// Config holds the survey thresholds. These are deliberately configuration,
// not constants: what counts as a "container" is a product decision.
type Config struct {
	PageCap                  int     // max descriptors in a page survey
	ContainerCap             int     // max descriptors in a container survey
	MinContainerChildren     int     // interactive descendants required of a container
	MaxContainerViewportFrac float64 // containers must be under this fraction of the viewport, both axes
	MaxTextLen               int     // descriptor text truncation
}

// DefaultConfig returns the thresholds used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		PageCap:                  500,
		ContainerCap:             200,
		MinContainerChildren:     2,
		MaxContainerViewportFrac: 0.95,
		MaxTextLen:               80,
	}
}

const (
	// containerCandidateCap bounds how many validated containers a page
	// survey returns; only nine are ever digit-bound, the rest give the
	// labeler room to choose well.
	containerCandidateCap = 24
	// containerScanCap bounds how many candidates are validated at all.
	// Validation costs a scoped query per candidate.
	containerScanCap = 150
)

type catalogEntry struct {
	sel string
	cat Category
}

// interactiveCatalog lists the element shapes worth binding a key to.
// Order matters: the first entry to claim an element sets its category.
var interactiveCatalog = []catalogEntry{
	{"a[href]", CategoryLink},
	{"button", CategoryButton},
	{"input", CategoryInput},
	{"select", CategoryInput},
	{"textarea", CategoryInput},
	{"summary", CategoryToggle},
	{"[role=button]", CategoryButton},
	{"[role=link]", CategoryLink},
	{"[role=tab]", CategoryToggle},
	{"[role=menuitem]", CategoryMenu},
	{"[role=menuitemcheckbox]", CategoryToggle},
	{"[role=checkbox]", CategoryToggle},
	{"[role=switch]", CategoryToggle},
	{"[role=combobox]", CategoryInput},
	{"[contenteditable=true]", CategoryInput},
	{"[tabindex]", CategoryButton},
	{"[onclick]", CategoryButton},
}

// containerCatalog lists region candidates: semantic landmarks first, then
// the class and id conventions sites actually use, then generic blocks as a
// catch-all. Order matters twice over: earlier entries claim shared nodes,
// and the scan cap means bare divs only spend whatever validation budget the
// conventional shapes left behind. The interactive-descendant and size rules
// filter the noise.
var containerCatalog = []string{
	"nav", "main", "header", "footer", "aside", "section", "article", "form",
	"[role=navigation]", "[role=main]", "[role=search]", "[role=form]",
	"[role=region]", "[role=toolbar]",
	"[class*=nav]", "[class*=menu]", "[class*=sidebar]", "[class*=toolbar]",
	"[class*=card]", "[id*=nav]", "[id*=menu]",
	"ul", "ol", "table", "div",
}

// interactiveUnion is the comma group of every interactive shape, used to
// count a container's interactive descendants in one query.
var interactiveUnion = buildUnion()

func buildUnion() string {
	sels := make([]string, len(interactiveCatalog))
	for i, e := range interactiveCatalog {
		sels[i] = e.sel
	}
	return strings.Join(sels, ", ")
}

// Surveyor runs surveys against one host.
type Surveyor struct {
	host host.Host
	cfg  Config
	log  *slog.Logger
}

// New creates a surveyor. A nil logger falls back to slog.Default.
func New(h host.Host, cfg Config, logger *slog.Logger) *Surveyor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PageCap <= 0 {
		cfg = DefaultConfig()
	}
	return &Surveyor{host: h, cfg: cfg, log: logger}
}

// Run surveys scope and returns descriptors ranked by score (ties in
// document order). A scope that has vanished yields an empty survey and no
// error; per-candidate extraction failures skip the candidate.
func (s *Surveyor) Run(ctx context.Context, scope host.NodeRef, mode Mode) ([]Descriptor, error) {
	if scope != host.DocumentRef {
		if _, ok := s.host.Describe(ctx, scope); !ok {
			s.log.Debug("survey: scope vanished")
			return nil, nil
		}
	}

	vp, err := s.host.Viewport(ctx)
	if err != nil {
		return nil, fmt.Errorf("survey: viewport: %w", err)
	}

	claimed := make(map[host.NodeRef]bool)
	var interactive []Descriptor
	for _, entry := range interactiveCatalog {
		infos, err := s.host.Query(ctx, scope, entry.sel)
		if err != nil {
			s.log.Debug("survey: query failed", "selector", entry.sel, "error", err)
			continue
		}
		for _, info := range infos {
			if !info.Visible || claimed[info.Ref] {
				continue
			}
			claimed[info.Ref] = true
			d, ok := s.describe(info, entry.cat, vp)
			if !ok {
				continue
			}
			interactive = append(interactive, d)
		}
	}

	var containers []Descriptor
	if mode == ModePage {
		containers = s.surveyContainers(ctx, scope, claimed, vp)
	}

	out := append(containers, interactive...)
	out = dedupe(out)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Order < out[j].Order
	})

	limit := s.cfg.PageCap
	if mode == ModeContainer {
		limit = s.cfg.ContainerCap
	}
	if len(out) > limit {
		out = out[:limit]
	}

	assignOccurrences(out)
	s.log.Debug("survey: done", "mode", int(mode), "descriptors", len(out))
	return out, nil
}

// describe turns a queried node into a descriptor. ok is false when the
// element yields nothing addressable (no selector).
func (s *Surveyor) describe(info host.NodeInfo, cat Category, vp host.Rect) (Descriptor, bool) {
	sel := selector.Generate(info.Path)
	if sel == "" {
		s.log.Debug("survey: no selector for element", "tag", info.Tag)
		return Descriptor{}, false
	}
	d := Descriptor{
		Selector: sel,
		Category: cat,
		Text:     s.text(info),
		Rect:     info.Rect,
		Ref:      info.Ref,
		Order:    info.Order,
	}
	if cat == CategoryContainer {
		d.Score = s.scoreContainer(info)
	} else {
		d.Score = s.scoreInteractive(info, d.Text, vp)
	}
	return d, true
}

func (s *Surveyor) text(info host.NodeInfo) string {
	text := info.Text
	if text == "" {
		text = info.Name
	}
	if text == "" {
		text = info.Placeholder
	}
	if text == "" && info.Href != "" {
		text = strings.TrimSuffix(strings.TrimPrefix(info.Href, "/"), "/")
	}
	runes := []rune(text)
	if len(runes) > s.cfg.MaxTextLen {
		text = string(runes[:s.cfg.MaxTextLen])
	}
	return text
}

func (s *Surveyor) scoreInteractive(info host.NodeInfo, text string, vp host.Rect) int {
	score := 100
	if n := len([]rune(text)); n > 0 && n <= 40 {
		score += 15
	}
	w, h := info.Rect.W, info.Rect.H
	switch {
	case w >= 12 && h >= 12 && w <= 0.8*vp.W && h <= 0.8*vp.H:
		score += 10
	case w < 4 || h < 4 || w > vp.W || h > vp.H:
		score -= 25
	}
	if info.Rect.Overlaps(vp) {
		score += 5
	}
	return score
}

func (s *Surveyor) scoreContainer(info host.NodeInfo) int {
	score := 60
	switch info.Tag {
	case "nav", "main", "header", "footer", "aside", "form":
		score += 10
	}
	if info.Role != "" {
		score += 5
	}
	return score
}

// surveyContainers finds and validates region candidates: visible, smaller
// than the viewport fraction in both axes, and holding at least the
// configured number of interactive descendants.
func (s *Surveyor) surveyContainers(ctx context.Context, scope host.NodeRef, claimed map[host.NodeRef]bool, vp host.Rect) []Descriptor {
	maxW := s.cfg.MaxContainerViewportFrac * vp.W
	maxH := s.cfg.MaxContainerViewportFrac * vp.H

	seen := make(map[host.NodeRef]bool)
	var out []Descriptor
	scanned := 0
	for _, sel := range containerCatalog {
		if scanned >= containerScanCap || len(out) >= containerCandidateCap {
			break
		}
		infos, err := s.host.Query(ctx, scope, sel)
		if err != nil {
			s.log.Debug("survey: container query failed", "selector", sel, "error", err)
			continue
		}
		for _, info := range infos {
			if scanned >= containerScanCap || len(out) >= containerCandidateCap {
				break
			}
			if seen[info.Ref] || claimed[info.Ref] {
				continue
			}
			seen[info.Ref] = true
			scanned++

			if !info.Visible {
				continue
			}
			if info.Rect.W >= maxW || info.Rect.H >= maxH {
				continue
			}
			kids, err := s.host.Query(ctx, info.Ref, interactiveUnion)
			if err != nil {
				continue
			}
			visible := 0
			for _, k := range kids {
				if k.Visible {
					visible++
				}
			}
			if visible < s.cfg.MinContainerChildren {
				continue
			}

			d, ok := s.describe(info, CategoryContainer, vp)
			if !ok {
				continue
			}
			d.Score += min(visible, 10)
			out = append(out, d)
		}
	}
	return out
}

// dedupe drops descriptors that share a selector and a (rounded) rect:
// different catalog entries matching visually identical elements.
func dedupe(ds []Descriptor) []Descriptor {
	seen := make(map[string]bool, len(ds))
	out := ds[:0]
	for _, d := range ds {
		key := fmt.Sprintf("%s|%.0f,%.0f,%.0f,%.0f", d.Selector, d.Rect.X, d.Rect.Y, d.Rect.W, d.Rect.H)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}

// assignOccurrences numbers descriptors sharing a selector by document
// order, so the Nth descriptor resolves to the Nth match later.
func assignOccurrences(ds []Descriptor) {
	bySel := make(map[string][]int)
	for i := range ds {
		bySel[ds[i].Selector] = append(bySel[ds[i].Selector], i)
	}
	for _, idxs := range bySel {
		sort.Slice(idxs, func(a, b int) bool {
			return ds[idxs[a]].Order < ds[idxs[b]].Order
		})
		for k, idx := range idxs {
			ds[idx].Occurrence = k
		}
	}
}
