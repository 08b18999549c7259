package nav

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"github.com/google/uuid"

	"surfmate/hint"
	"surfmate/host"
	"surfmate/label"
	"surfmate/selector"
	"surfmate/survey"
)

// Labeler is the external labeling collaborator: slow, fallible, cached
// elsewhere. *label.Client satisfies it.
type Labeler interface {
	Label(ctx context.Context, url, title string, ds []survey.Descriptor) (*label.Page, error)
}

// Options configure the machine.
type Options struct {
	Keys          Keys
	HintConfig    hint.Config
	ViewportDelay time.Duration // debounce window for scroll/resize re-layout
	SettleDelay   time.Duration // quiet period after navigation before re-activating
	LabelsEnabled bool          // false skips the model and uses heuristic labels
	Logger        *slog.Logger
}

type labelResult struct {
	token uuid.UUID
	page  *label.Page
	err   error
}

// Machine owns the navigation session. All methods below Run are transition
// handlers: they must only ever run on one goroutine at a time, which Run
// guarantees by funneling every input through its select loop.
type Machine struct {
	host     host.Host
	surveyor *survey.Surveyor
	labeler  Labeler
	opts     Options
	log      *slog.Logger

	runCmd func(ctx context.Context, line string) string

	state  State
	labels chan labelResult
}

// New wires a machine. labeler may be nil; activation then falls back to
// heuristic labels.
func New(h host.Host, s *survey.Surveyor, labeler Labeler, opts Options) *Machine {
	if opts.Keys == (Keys{}) {
		opts.Keys = DefaultKeys()
	}
	if opts.HintConfig.MaxIterations == 0 {
		opts.HintConfig = hint.DefaultConfig()
	}
	if opts.ViewportDelay <= 0 {
		opts.ViewportDelay = 150 * time.Millisecond
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = 600 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Machine{
		host:     h,
		surveyor: s,
		labeler:  labeler,
		opts:     opts,
		log:      opts.Logger,
		labels:   make(chan labelResult, 4),
	}
}

// SetCommandRunner installs the colon-command executor. The runner is called
// from the machine's goroutine and returns a status line to display.
func (m *Machine) SetCommandRunner(f func(ctx context.Context, line string) string) {
	m.runCmd = f
}

// Run drives the machine from the host's event stream until ctx ends or the
// stream closes. Scroll and resize bursts are coalesced before re-layout,
// and navigations wait out a settle period before re-activating.
func (m *Machine) Run(ctx context.Context) error {
	events, err := m.host.Events(ctx)
	if err != nil {
		return fmt.Errorf("nav: subscribing to events: %w", err)
	}
	relayout := newDebouncer(m.opts.ViewportDelay, 4*m.opts.ViewportDelay)
	settle := newDebouncer(m.opts.SettleDelay, 4*m.opts.SettleDelay)
	defer relayout.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch e := ev.(type) {
			case host.KeyEvent:
				m.key(ctx, e.Key)
			case host.NavigateEvent:
				if m.pageChanged(ctx, e.URL) {
					settle.Trigger()
				}
			case host.ViewportEvent:
				relayout.Trigger()
			}
		case <-relayout.C():
			relayout.Fired()
			m.viewportChanged(ctx)
		case <-settle.C():
			settle.Fired()
			m.reactivate(ctx)
		case res := <-m.labels:
			m.applyLabels(ctx, res)
		}
	}
}

// key dispatches one key press through the active mode, then the level.
func (m *Machine) key(ctx context.Context, k string) {
	switch m.state.Mode {
	case ModeCommand:
		m.commandKey(ctx, k)
		return
	case ModeFollow:
		m.followKey(ctx, k)
		return
	}

	switch m.state.Level {
	case LevelInactive:
		switch k {
		case m.opts.Keys.Activate:
			m.activate(ctx)
		case m.opts.Keys.Command:
			m.enterCommand(ctx)
		case "Escape":
			m.cancelPending(ctx)
		}
	case LevelContainers:
		switch k {
		case "Escape":
			m.deactivate(ctx)
		case m.opts.Keys.Follow:
			m.enterFollow(ctx)
		case m.opts.Keys.Command:
			m.enterCommand(ctx)
		default:
			m.press(ctx, k)
		}
	case LevelElements:
		switch k {
		case "Escape":
			m.leaveRegion(ctx)
		case m.opts.Keys.Follow:
			m.enterFollow(ctx)
		case m.opts.Keys.Command:
			m.enterCommand(ctx)
		default:
			m.press(ctx, k)
		}
	}
}

// activate surveys the page and kicks off the labeling round. The result
// lands back in the event loop tagged with this activation's token; anything
// that changes the session in between makes the result stale.
func (m *Machine) activate(ctx context.Context) {
	if m.state.Level != LevelInactive || m.state.token != uuid.Nil {
		return
	}
	ds, err := m.surveyor.Run(ctx, host.DocumentRef, survey.ModePage)
	if err != nil {
		m.log.Error("nav: page survey failed", "error", err)
		m.message(ctx, "survey failed: "+err.Error())
		return
	}
	if len(ds) == 0 {
		m.message(ctx, "no navigable elements")
		return
	}
	url, title, err := m.host.Location(ctx)
	if err != nil {
		m.log.Error("nav: location", "error", err)
		return
	}
	m.state.URL = url
	m.state.enabled = true
	m.state.pending = ds
	m.state.token = uuid.New()

	if !m.opts.LabelsEnabled || m.labeler == nil {
		m.labels <- labelResult{token: m.state.token, page: label.Fallback(ds)}
		return
	}

	m.message(ctx, "labeling page…")
	tok := m.state.token
	go func() {
		page, err := m.labeler.Label(ctx, url, title, ds)
		select {
		case m.labels <- labelResult{token: tok, page: page, err: err}:
		case <-ctx.Done():
		}
	}()
}

// applyLabels installs a labeling result, unless the session has moved on
// since the round was requested.
func (m *Machine) applyLabels(ctx context.Context, res labelResult) {
	if res.token == uuid.Nil || res.token != m.state.token || m.state.Level != LevelInactive {
		m.log.Debug("nav: discarding stale labeling result")
		return
	}
	ds := m.state.pending
	m.state.token = uuid.Nil
	m.state.pending = nil

	if res.err != nil {
		m.log.Warn("nav: labeling failed", "error", res.err)
		m.message(ctx, "labeling failed: "+res.err.Error())
		return
	}

	byKey := make(map[string]survey.Descriptor, len(ds))
	for _, d := range ds {
		byKey[bindKey(d.Selector, d.Occurrence)] = d
	}
	var regions []*Region
	for _, a := range res.page.Containers {
		d, ok := byKey[bindKey(a.Selector, a.Occurrence)]
		if !ok {
			continue
		}
		regions = append(regions, &Region{
			Selector:   a.Selector,
			Occurrence: a.Occurrence,
			Label:      a.Label,
			Kind:       a.Kind,
			Ref:        d.Ref,
		})
	}
	var standalone []*Item
	for _, a := range res.page.Standalone {
		d, ok := byKey[bindKey(a.Selector, a.Occurrence)]
		if !ok {
			continue
		}
		standalone = append(standalone, &Item{
			Selector:   a.Selector,
			Occurrence: a.Occurrence,
			Label:      a.Label,
			Kind:       a.Kind,
			Category:   d.Category,
			Text:       d.Text,
			Ref:        d.Ref,
		})
	}
	m.commitPage(ctx, regions, standalone)
}

// commitPage enters the containers level over the given annotation set. On
// any binding failure the session is left untouched.
func (m *Machine) commitPage(ctx context.Context, regions []*Region, standalone []*Item) {
	if len(regions) == 0 && len(standalone) == 0 {
		m.message(ctx, "no navigable elements")
		return
	}
	bindings, order, placed, err := m.buildPageBindings(ctx, regions, standalone)
	if err != nil {
		m.log.Error("nav: page bindings", "error", err)
		m.message(ctx, "render failed")
		return
	}
	m.state.Level = LevelContainers
	m.state.Mode = ModeNormal
	m.state.Regions = regions
	m.state.Standalone = standalone
	m.state.Current = nil
	m.state.Breadcrumb = nil
	m.state.bindings = bindings
	m.state.order = order
	m.paint(ctx, placed)
	m.message(ctx, fmt.Sprintf("%d regions, %d elements", len(regions), len(standalone)))
}

// buildPageBindings assigns digits to regions by position in the labeling
// order and letters to standalone elements in visual order. Regions keep
// their digit even while unresolvable, so "2" still means the same region
// when it comes back.
func (m *Machine) buildPageBindings(ctx context.Context, regions []*Region, standalone []*Item) (map[string]Target, []string, []hint.Target, error) {
	bindings := make(map[string]Target)
	var order []string
	var placed []hint.Target

	for i, r := range regions {
		if i >= len(digitKeys) {
			break
		}
		info, ok := selector.Resolve(ctx, m.host, host.DocumentRef, r.Selector, r.Occurrence, r.Ref)
		if !ok {
			m.log.Debug("nav: region unresolvable", "selector", r.Selector)
			continue
		}
		r.Ref = info.Ref
		key := digitKeys[i]
		if err := claim(bindings, key, Target{Region: r}); err != nil {
			return nil, nil, nil, err
		}
		order = append(order, key)
		placed = append(placed, hint.Target{Key: key, Label: r.Label, Box: info.Rect})
	}

	var rs []resolved
	for _, it := range standalone {
		info, ok := selector.Resolve(ctx, m.host, host.DocumentRef, it.Selector, it.Occurrence, it.Ref)
		if !ok {
			continue
		}
		it.Ref = info.Ref
		rs = append(rs, resolved{item: it, info: info})
	}
	sortResolved(rs)

	pool := m.elementPool(len(regions))
	for i, r := range rs {
		if i >= len(pool) {
			break
		}
		key := pool[i]
		if err := claim(bindings, key, Target{Item: r.item}); err != nil {
			return nil, nil, nil, err
		}
		order = append(order, key)
		placed = append(placed, hint.Target{Key: key, Label: r.item.Label, Box: r.info.Rect})
	}
	return bindings, order, placed, nil
}

// buildElementBindings assigns keys inside one region: letters in visual
// order, digits as overflow.
func (m *Machine) buildElementBindings(ctx context.Context, r *Region) (map[string]Target, []string, []hint.Target, error) {
	var rs []resolved
	for _, it := range r.Elements {
		info, ok := selector.Resolve(ctx, m.host, r.Ref, it.Selector, it.Occurrence, it.Ref)
		if !ok {
			continue
		}
		it.Ref = info.Ref
		rs = append(rs, resolved{item: it, info: info})
	}
	sortResolved(rs)

	pool := m.elementPool(0)
	bindings := make(map[string]Target, len(rs))
	var order []string
	var placed []hint.Target
	for i, re := range rs {
		if i >= len(pool) {
			break
		}
		key := pool[i]
		if err := claim(bindings, key, Target{Item: re.item}); err != nil {
			return nil, nil, nil, err
		}
		order = append(order, key)
		placed = append(placed, hint.Target{Key: key, Box: re.info.Rect})
	}
	return bindings, order, placed, nil
}

// elementPool is the letter pool plus whatever digits regions left unused,
// minus the control keys.
func (m *Machine) elementPool(reservedDigits int) []string {
	if reservedDigits > len(digitKeys) {
		reservedDigits = len(digitKeys)
	}
	pool := make([]string, 0, len(letterPool)+len(digitKeys)-reservedDigits)
	for _, k := range letterPool {
		if k == m.opts.Keys.Follow || k == m.opts.Keys.Command {
			continue
		}
		pool = append(pool, k)
	}
	pool = append(pool, digitKeys[reservedDigits:]...)
	return pool
}

// claim inserts a binding, refusing duplicates. A duplicate is a programming
// defect; the caller abandons the whole render pass rather than committing a
// corrupt map.
func claim(b map[string]Target, key string, t Target) error {
	if _, dup := b[key]; dup {
		return fmt.Errorf("duplicate key binding %q", key)
	}
	b[key] = t
	return nil
}

func bindKey(sel string, occ int) string {
	return fmt.Sprintf("%s\x00%d", sel, occ)
}

// press activates whatever the key is bound to. Unbound keys are ignored.
func (m *Machine) press(ctx context.Context, k string) {
	t, ok := m.state.bindings[k]
	if !ok {
		return
	}
	switch {
	case t.Region != nil:
		m.enterRegion(ctx, t.Region)
	case t.Item != nil:
		m.activateItem(ctx, t.Item, k)
	}
}

// enterRegion descends into a region, surveying its contents on first entry.
func (m *Machine) enterRegion(ctx context.Context, r *Region) {
	info, ok := selector.Resolve(ctx, m.host, host.DocumentRef, r.Selector, r.Occurrence, r.Ref)
	if !ok {
		m.message(ctx, r.Label+" is no longer on the page")
		return
	}
	r.Ref = info.Ref

	if r.Elements == nil {
		ds, err := m.surveyor.Run(ctx, r.Ref, survey.ModeContainer)
		if err != nil {
			m.log.Error("nav: region survey failed", "error", err)
			m.message(ctx, "survey failed: "+err.Error())
			return
		}
		r.Elements = make([]*Item, 0, len(ds))
		for _, d := range ds {
			r.Elements = append(r.Elements, &Item{
				Selector:   d.Selector,
				Occurrence: d.Occurrence,
				Category:   d.Category,
				Text:       d.Text,
				Ref:        d.Ref,
			})
		}
	}

	bindings, order, placed, err := m.buildElementBindings(ctx, r)
	if err != nil {
		m.log.Error("nav: element bindings", "error", err)
		m.message(ctx, "render failed")
		return
	}
	m.state.Level = LevelElements
	m.state.Current = r
	m.state.Breadcrumb = append(m.state.Breadcrumb, r)
	m.state.bindings = bindings
	m.state.order = order
	m.paint(ctx, placed)
	if len(r.Elements) == 0 {
		m.message(ctx, "nothing inside "+r.Label)
	} else {
		m.message(ctx, r.Label)
	}
}

// leaveRegion pops back to the containers level and rebuilds its bindings.
func (m *Machine) leaveRegion(ctx context.Context) {
	if n := len(m.state.Breadcrumb); n > 0 {
		m.state.Breadcrumb = m.state.Breadcrumb[:n-1]
	}
	m.state.Current = nil
	m.state.Level = LevelContainers
	bindings, order, placed, err := m.buildPageBindings(ctx, m.state.Regions, m.state.Standalone)
	if err != nil {
		m.log.Error("nav: page bindings", "error", err)
		m.deactivate(ctx)
		return
	}
	m.state.bindings = bindings
	m.state.order = order
	m.paint(ctx, placed)
	m.message(ctx, fmt.Sprintf("%d regions, %d elements", len(m.state.Regions), len(m.state.Standalone)))
}

// activateItem performs the element's side effect: focus for form controls,
// click for everything else, scrolling it into view first when offscreen.
// The used key is retired; the rest of the hint set persists.
func (m *Machine) activateItem(ctx context.Context, it *Item, key string) {
	info, ok := m.resolveTarget(ctx, Target{Item: it})
	if !ok {
		m.retire(ctx, key)
		m.message(ctx, "element no longer on the page")
		return
	}
	if vp, err := m.host.Viewport(ctx); err == nil && !info.Rect.Overlaps(vp) {
		if err := m.host.ScrollIntoView(ctx, info.Ref); err != nil {
			m.log.Debug("nav: scroll into view", "error", err)
		}
	}
	var actErr error
	if it.Category == survey.CategoryInput {
		actErr = m.host.Focus(ctx, info.Ref)
	} else {
		actErr = m.host.Click(ctx, info.Ref)
	}
	if actErr != nil {
		m.log.Warn("nav: activation failed", "error", actErr)
		m.message(ctx, "activation failed")
		return
	}
	m.retire(ctx, key)
}

// retire removes one used binding and repaints what is left.
func (m *Machine) retire(ctx context.Context, key string) {
	delete(m.state.bindings, key)
	m.repaint(ctx)
}

// resolveTarget re-locates a target for the current pass. Items resolve
// inside the current region when one is entered.
func (m *Machine) resolveTarget(ctx context.Context, t Target) (host.NodeInfo, bool) {
	switch {
	case t.Region != nil:
		info, ok := selector.Resolve(ctx, m.host, host.DocumentRef, t.Region.Selector, t.Region.Occurrence, t.Region.Ref)
		if ok {
			t.Region.Ref = info.Ref
		}
		return info, ok
	case t.Item != nil:
		scope := host.DocumentRef
		if m.state.Level == LevelElements && m.state.Current != nil {
			scope = m.state.Current.Ref
		}
		info, ok := selector.Resolve(ctx, m.host, scope, t.Item.Selector, t.Item.Occurrence, t.Item.Ref)
		if ok {
			t.Item.Ref = info.Ref
		}
		return info, ok
	}
	return host.NodeInfo{}, false
}

// repaint re-measures the current bindings and redraws hints without
// changing key assignments. Unresolvable targets drop their hint but keep
// their binding; they may resolve again on the next pass.
func (m *Machine) repaint(ctx context.Context) {
	var placed []hint.Target
	for _, key := range m.state.order {
		t, ok := m.state.bindings[key]
		if !ok {
			continue
		}
		info, ok := m.resolveTarget(ctx, t)
		if !ok {
			continue
		}
		placed = append(placed, hint.Target{Key: key, Label: m.hintLabel(t), Box: info.Rect})
	}
	m.paint(ctx, placed)
}

func (m *Machine) hintLabel(t Target) string {
	switch {
	case t.Region != nil:
		return t.Region.Label
	case t.Item != nil && m.state.Level == LevelContainers:
		return t.Item.Label
	}
	return ""
}

// paint lays out and draws one hint set.
func (m *Machine) paint(ctx context.Context, targets []hint.Target) {
	vp, err := m.host.Viewport(ctx)
	if err != nil {
		m.log.Error("nav: viewport", "error", err)
		return
	}
	specs := hint.Place(targets, vp, m.opts.HintConfig)
	if err := m.host.ShowHints(ctx, specs); err != nil {
		m.log.Error("nav: painting hints", "error", err)
	}
}

// deactivate ends the session explicitly; no automatic re-activation until
// the user activates again.
func (m *Machine) deactivate(ctx context.Context) {
	m.clearSession()
	m.state.enabled = false
	if err := m.host.ClearHints(ctx); err != nil {
		m.log.Debug("nav: clearing hints", "error", err)
	}
}

// cancelPending abandons an in-flight labeling round.
func (m *Machine) cancelPending(ctx context.Context) {
	if m.state.token == uuid.Nil {
		return
	}
	m.state.token = uuid.Nil
	m.state.pending = nil
	m.host.ClearHints(ctx)
}

func (m *Machine) clearSession() {
	m.state.Level = LevelInactive
	m.state.Mode = ModeNormal
	m.state.Regions = nil
	m.state.Standalone = nil
	m.state.Current = nil
	m.state.Breadcrumb = nil
	m.state.bindings = nil
	m.state.order = nil
	m.state.token = uuid.Nil
	m.state.pending = nil
	m.state.follow = followState{}
	m.state.command = commandState{}
}

// pageChanged resets the session on any page-identity change; every captured
// selector is presumed invalid. Reports whether re-activation should be
// scheduled once the page settles.
func (m *Machine) pageChanged(ctx context.Context, url string) bool {
	wasEnabled := m.state.enabled
	m.clearSession()
	m.state.URL = url
	m.state.enabled = wasEnabled
	if err := m.host.ClearHints(ctx); err != nil {
		m.log.Debug("nav: clearing hints", "error", err)
	}
	m.log.Debug("nav: page changed", "url", url)
	return wasEnabled
}

// reactivate re-runs activation after a navigation settle, if the session
// was active when the page changed.
func (m *Machine) reactivate(ctx context.Context) {
	if !m.state.enabled || m.state.Level != LevelInactive || m.state.token != uuid.Nil {
		return
	}
	m.activate(ctx)
}

// viewportChanged re-lays out whatever is showing.
func (m *Machine) viewportChanged(ctx context.Context) {
	switch {
	case m.state.Mode == ModeFollow:
		m.renderFollow(ctx)
	case m.state.Level == LevelContainers, m.state.Level == LevelElements:
		m.repaint(ctx)
	}
}

func (m *Machine) message(ctx context.Context, msg string) {
	if err := m.host.ShowMessage(ctx, msg); err != nil {
		m.log.Debug("nav: message", "error", err)
	}
}

// Command mode: an overlay that intercepts every key while open and never
// changes the level underneath.

func (m *Machine) enterCommand(ctx context.Context) {
	if m.runCmd == nil {
		m.message(ctx, "no command handler wired")
		return
	}
	m.state.Mode = ModeCommand
	m.state.command.buffer = ""
	if m.state.Level == LevelInactive {
		// No hints are up yet, so the page is not capturing keys. An empty
		// hint set arms capture for the prompt's lifetime.
		if err := m.host.ShowHints(ctx, nil); err != nil {
			m.log.Debug("nav: arming capture", "error", err)
		}
	}
	m.message(ctx, ":")
}

func (m *Machine) commandKey(ctx context.Context, k string) {
	switch k {
	case "Escape":
		m.state.Mode = ModeNormal
		m.state.command = commandState{}
		m.afterOverlay(ctx)
	case "Enter":
		line := m.state.command.buffer
		m.state.Mode = ModeNormal
		m.state.command = commandState{}
		out := m.runCmd(ctx, line)
		m.afterOverlay(ctx)
		if out != "" {
			m.message(ctx, out)
		}
	case "Backspace":
		if b := []rune(m.state.command.buffer); len(b) > 0 {
			m.state.command.buffer = string(b[:len(b)-1])
		}
		m.message(ctx, ":"+m.state.command.buffer)
	default:
		if isTypable(k) {
			m.state.command.buffer += k
			m.message(ctx, ":"+m.state.command.buffer)
		}
	}
}

// afterOverlay restores the level's hint display when an overlay closes.
func (m *Machine) afterOverlay(ctx context.Context) {
	switch m.state.Level {
	case LevelContainers, LevelElements:
		m.repaint(ctx)
	default:
		m.host.ClearHints(ctx)
	}
}

func isTypable(k string) bool {
	r := []rune(k)
	return len(r) == 1 && unicode.IsPrint(r[0])
}

// Session plumbing for colon commands. These run on the machine goroutine
// via the command runner.

// PageURL returns the page the current session belongs to.
func (m *Machine) PageURL() string {
	return m.state.URL
}

// AnnotationSnapshot exports the session's labels for persistence. ok is
// false when no labeled session is active.
func (m *Machine) AnnotationSnapshot() (*label.Page, bool) {
	if m.state.Level == LevelInactive || (len(m.state.Regions) == 0 && len(m.state.Standalone) == 0) {
		return nil, false
	}
	page := &label.Page{}
	for _, r := range m.state.Regions {
		page.Containers = append(page.Containers, label.Annotation{
			Selector: r.Selector, Occurrence: r.Occurrence, Label: r.Label, Kind: r.Kind,
		})
	}
	for _, it := range m.state.Standalone {
		page.Standalone = append(page.Standalone, label.Annotation{
			Selector: it.Selector, Occurrence: it.Occurrence, Label: it.Label, Kind: it.Kind,
		})
	}
	return page, true
}

// RestoreAnnotations installs a previously saved label set over the current
// page, skipping the model. Selectors that no longer resolve just drop their
// hints.
func (m *Machine) RestoreAnnotations(ctx context.Context, page *label.Page) {
	m.clearSession()
	m.state.enabled = true
	if url, _, err := m.host.Location(ctx); err == nil {
		m.state.URL = url
	}
	var regions []*Region
	for _, a := range page.Containers {
		regions = append(regions, &Region{
			Selector: a.Selector, Occurrence: a.Occurrence, Label: a.Label, Kind: a.Kind,
		})
	}
	var standalone []*Item
	for _, a := range page.Standalone {
		standalone = append(standalone, &Item{
			Selector: a.Selector, Occurrence: a.Occurrence, Label: a.Label, Kind: a.Kind,
			Text: a.Label, Category: categoryFromKind(a.Kind),
		})
	}
	m.commitPage(ctx, regions, standalone)
}

// Relabel drops the session and activates again. Callers invalidate the
// label cache first when they want fresh names.
func (m *Machine) Relabel(ctx context.Context) {
	enabled := m.state.enabled
	m.clearSession()
	m.state.enabled = enabled
	m.activate(ctx)
}

// SetLabelsEnabled toggles the model round trip for future activations.
func (m *Machine) SetLabelsEnabled(on bool) {
	m.opts.LabelsEnabled = on
}

func categoryFromKind(kind string) survey.Category {
	if kind == "input" {
		return survey.CategoryInput
	}
	return survey.CategoryButton
}
