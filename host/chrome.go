package host

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// ChromeOptions configures the live browser host.
type ChromeOptions struct {
	AttachWS   string // DevTools websocket URL; empty launches a fresh browser
	ChromePath string // Chrome binary path (empty = auto-detect)
	UserAgent  string
	Headless   bool
	StartURL   string // navigated to after attach when non-empty
	Logger     *slog.Logger
}

// Chrome is a Host backed by a Chrome tab over the DevTools protocol. All
// element access goes through a page-side registry installed by bootstrapJS;
// refs are indices into that registry and die with each navigation.
type Chrome struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	events      chan Event
	log         *slog.Logger
}

// userDataDir returns a persistent profile directory so cookies survive
// between runs.
func userDataDir() string {
	dir, _ := os.UserCacheDir()
	return filepath.Join(dir, "surfmate-chrome-profile")
}

// NewChrome attaches to (or launches) a browser and installs the page
// bootstrap. The returned host is ready for queries once this returns.
func NewChrome(parent context.Context, opts ChromeOptions) (*Chrome, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if opts.AttachWS != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(parent, opts.AttachWS)
	} else {
		allocOpts := []chromedp.ExecAllocatorOption{
			chromedp.NoDefaultBrowserCheck,
			chromedp.NoFirstRun,
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.Flag("disable-infobars", true),
			chromedp.Flag("disable-extensions", true),
			chromedp.Flag("disable-component-update", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("no-service-autorun", true),
			chromedp.WindowSize(1440, 900),
			chromedp.UserDataDir(userDataDir()),
		}
		if opts.UserAgent != "" {
			allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
		}
		if opts.Headless {
			allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
		}
		if opts.ChromePath != "" {
			allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(parent, allocOpts...)
	}

	ctx, cancel := chromedp.NewContext(allocCtx)
	c := &Chrome{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		events:      make(chan Event, 256),
		log:         logger,
	}

	chromedp.ListenTarget(ctx, c.onTargetEvent)

	actions := []chromedp.Action{
		runtime.AddBinding(bindingName),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(bootstrapJS).Do(ctx)
			return err
		}),
	}
	if opts.StartURL != "" {
		actions = append(actions,
			chromedp.Navigate(opts.StartURL),
			chromedp.WaitReady("body", chromedp.ByQuery),
		)
	}
	// Install into whatever page is already loaded, too.
	actions = append(actions, chromedp.Evaluate(bootstrapJS, nil))

	if err := chromedp.Run(ctx, actions...); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("attaching to browser: %w", err)
	}

	logger.Info("host: attached", "headless", opts.Headless, "remote", opts.AttachWS != "")
	return c, nil
}

// Close tears the browser connection down. Pending events are dropped.
func (c *Chrome) Close() {
	c.cancel()
	if c.allocCancel != nil {
		c.allocCancel()
	}
}

func (c *Chrome) onTargetEvent(ev interface{}) {
	switch e := ev.(type) {
	case *runtime.EventBindingCalled:
		if e.Name != bindingName {
			return
		}
		var msg struct {
			Type string `json:"type"`
			Key  string `json:"key"`
			URL  string `json:"url"`
		}
		if err := json.Unmarshal([]byte(e.Payload), &msg); err != nil {
			c.log.Debug("host: bad binding payload", "error", err)
			return
		}
		switch msg.Type {
		case "key":
			c.push(KeyEvent{Key: msg.Key})
		case "viewport":
			c.push(ViewportEvent{})
		case "nav":
			c.push(NavigateEvent{URL: msg.URL})
		}
	case *page.EventFrameNavigated:
		if e.Frame.ParentID == "" {
			c.push(NavigateEvent{URL: e.Frame.URL})
		}
	}
}

func (c *Chrome) push(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.log.Warn("host: event dropped, consumer too slow")
	}
}

// run executes chromedp actions against the tab, honoring the caller's
// deadline and cancellation on top of the tab's own lifetime.
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(c.ctx)
	defer cancel()
	if dl, ok := ctx.Deadline(); ok {
		var dcancel context.CancelFunc
		runCtx, dcancel = context.WithDeadline(runCtx, dl)
		defer dcancel()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// nodePayload mirrors the JSON shape bootstrapJS emits for an element.
type nodePayload struct {
	Ref         int64    `json:"ref"`
	Tag         string   `json:"tag"`
	ID          string   `json:"id"`
	Classes     []string `json:"classes"`
	Role        string   `json:"role"`
	Name        string   `json:"name"`
	Placeholder string   `json:"placeholder"`
	Href        string   `json:"href"`
	Text        string   `json:"text"`
	Rect        struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		W float64 `json:"w"`
		H float64 `json:"h"`
	} `json:"rect"`
	Visible bool          `json:"visible"`
	Order   int           `json:"order"`
	Path    []pathPayload `json:"path"`
}

type pathPayload struct {
	Tag      string   `json:"tag"`
	ID       string   `json:"id"`
	Classes  []string `json:"classes"`
	Nth      int      `json:"nth"`
	NthOfTag int      `json:"nthOfTag"`
	TagCount int      `json:"tagCount"`
}

func (p nodePayload) toNodeInfo() NodeInfo {
	info := NodeInfo{
		Ref:         NodeRef(p.Ref),
		Tag:         p.Tag,
		ID:          p.ID,
		Classes:     p.Classes,
		Role:        p.Role,
		Name:        p.Name,
		Placeholder: p.Placeholder,
		Href:        p.Href,
		Text:        p.Text,
		Rect:        Rect{X: p.Rect.X, Y: p.Rect.Y, W: p.Rect.W, H: p.Rect.H},
		Visible:     p.Visible,
		Order:       p.Order,
	}
	for _, s := range p.Path {
		info.Path = append(info.Path, PathStep(s))
	}
	return info
}

// jsString renders s as a safe JS string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// Query implements Host.
func (c *Chrome) Query(ctx context.Context, scope NodeRef, selector string) ([]NodeInfo, error) {
	expr := fmt.Sprintf("window.__surfmate.query(%s, %d)", jsString(selector), scope)
	var out []nodePayload
	if err := c.run(ctx, chromedp.Evaluate(expr, &out)); err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	infos := make([]NodeInfo, 0, len(out))
	for _, p := range out {
		infos = append(infos, p.toNodeInfo())
	}
	return infos, nil
}

// Describe implements Host.
func (c *Chrome) Describe(ctx context.Context, ref NodeRef) (NodeInfo, bool) {
	expr := fmt.Sprintf("window.__surfmate.describe(%d)", ref)
	var out nodePayload
	if err := c.run(ctx, chromedp.Evaluate(expr, &out)); err != nil {
		return NodeInfo{}, false
	}
	if out.Ref == 0 {
		return NodeInfo{}, false
	}
	return out.toNodeInfo(), true
}

func (c *Chrome) act(ctx context.Context, ref NodeRef, kind string) error {
	expr := fmt.Sprintf("window.__surfmate.act(%d, %s)", ref, jsString(kind))
	var ok bool
	if err := c.run(ctx, chromedp.Evaluate(expr, &ok)); err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	if !ok {
		return fmt.Errorf("%s: node %d detached", kind, ref)
	}
	return nil
}

// Click implements Host.
func (c *Chrome) Click(ctx context.Context, ref NodeRef) error {
	return c.act(ctx, ref, "click")
}

// Focus implements Host.
func (c *Chrome) Focus(ctx context.Context, ref NodeRef) error {
	return c.act(ctx, ref, "focus")
}

// ScrollIntoView implements Host.
func (c *Chrome) ScrollIntoView(ctx context.Context, ref NodeRef) error {
	return c.act(ctx, ref, "scroll")
}

// Navigate drives the tab to url. The resulting frame navigation flows back
// through Events like any user-initiated one.
func (c *Chrome) Navigate(ctx context.Context, url string) error {
	if err := c.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// Viewport implements Host.
func (c *Chrome) Viewport(ctx context.Context) (Rect, error) {
	var out struct {
		W float64 `json:"w"`
		H float64 `json:"h"`
	}
	if err := c.run(ctx, chromedp.Evaluate("({w: innerWidth, h: innerHeight})", &out)); err != nil {
		return Rect{}, fmt.Errorf("viewport: %w", err)
	}
	return Rect{W: out.W, H: out.H}, nil
}

// Location implements Host.
func (c *Chrome) Location(ctx context.Context) (string, string, error) {
	var out struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	}
	if err := c.run(ctx, chromedp.Evaluate("({url: location.href, title: document.title})", &out)); err != nil {
		return "", "", fmt.Errorf("location: %w", err)
	}
	return out.URL, out.Title, nil
}

type hintPayload struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Box   struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		W float64 `json:"w"`
		H float64 `json:"h"`
	} `json:"box"`
	Scale float64 `json:"scale"`
	Faded bool    `json:"faded"`
}

// ShowHints implements Host.
func (c *Chrome) ShowHints(ctx context.Context, hints []HintSpec) error {
	payload := make([]hintPayload, 0, len(hints))
	for _, h := range hints {
		p := hintPayload{Key: h.Key, Label: h.Label, Scale: h.Scale, Faded: h.Faded}
		p.Box.X, p.Box.Y, p.Box.W, p.Box.H = h.Box.X, h.Box.Y, h.Box.W, h.Box.H
		payload = append(payload, p)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding hints: %w", err)
	}
	expr := fmt.Sprintf("window.__surfmate.show(%s)", data)
	return c.run(ctx, chromedp.Evaluate(expr, nil))
}

// ClearHints implements Host.
func (c *Chrome) ClearHints(ctx context.Context) error {
	return c.run(ctx, chromedp.Evaluate("window.__surfmate.clear()", nil))
}

// ShowMessage implements Host.
func (c *Chrome) ShowMessage(ctx context.Context, msg string) error {
	expr := fmt.Sprintf("window.__surfmate.message(%s)", jsString(msg))
	return c.run(ctx, chromedp.Evaluate(expr, nil))
}

// Events implements Host.
func (c *Chrome) Events(ctx context.Context) (<-chan Event, error) {
	return c.events, nil
}
