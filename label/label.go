// Package label turns a raw page survey into named containers and standalone
// elements by round-tripping through a language model. The call is slow and
// fallible, so results are cached in memory and on disk per page URL, and the
// engine treats everything here as a black box that either returns a Page or
// an error.
package label

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"surfmate/host"
	"surfmate/survey"
)

// ErrEmptyPage is returned when there is nothing to label: the survey found
// no candidates, so no model call is made.
var ErrEmptyPage = errors.New("nothing to label on this page")

// Annotation names one survey descriptor. Selector and Occurrence must match
// a descriptor from the survey that produced it.
type Annotation struct {
	Selector   string `json:"selector"`
	Occurrence int    `json:"occurrence"`
	Label      string `json:"label"`
	Kind       string `json:"kind"`
}

// Page is the labeling result: digit-addressable containers plus standalone
// elements that live outside any chosen container.
type Page struct {
	Containers []Annotation `json:"containers"`
	Standalone []Annotation `json:"standalone"`
}

// Completer is the single-shot completion surface the client needs.
// *llm.Client satisfies it.
type Completer interface {
	CompleteWithSystem(ctx context.Context, system, prompt string) (string, error)
}

// Options tune the client.
type Options struct {
	Timeout  time.Duration // per model call; zero means 45s
	Retries  int           // extra attempts after a malformed reply; zero means 1
	CacheDir string        // disk cache location; empty disables the disk cache
	CacheTTL time.Duration // disk entries older than this are ignored; zero means 7 days
	Logger   *slog.Logger
}

const memCacheSize = 64

// Client labels pages, caching aggressively: the same URL is only sent to
// the model once per TTL unless invalidated.
type Client struct {
	llm  Completer
	opts Options
	mem  *lru.Cache[string, *Page]
	log  *slog.Logger
}

// NewClient builds a labeling client around a completion backend.
func NewClient(completer Completer, opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}
	if opts.Retries <= 0 {
		opts.Retries = 1
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 7 * 24 * time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	mem, err := lru.New[string, *Page](memCacheSize)
	if err != nil {
		return nil, fmt.Errorf("labeling: cache: %w", err)
	}
	return &Client{llm: completer, opts: opts, mem: mem, log: opts.Logger}, nil
}

// Label names the surveyed page. Cached results are returned without a model
// call. The returned Page only references selectors present in the survey;
// anything else the model invented is dropped.
func (c *Client) Label(ctx context.Context, url, title string, ds []survey.Descriptor) (*Page, error) {
	if len(ds) == 0 {
		return nil, ErrEmptyPage
	}
	key := cacheKey(url)

	if page, ok := c.mem.Get(key); ok {
		c.log.Debug("labeling: memory cache hit", "url", url)
		return page, nil
	}
	if page := c.loadDisk(key); page != nil {
		c.log.Debug("labeling: disk cache hit", "url", url)
		c.mem.Add(key, page)
		return page, nil
	}

	page, err := c.query(ctx, url, title, ds)
	if err != nil {
		return nil, err
	}
	c.mem.Add(key, page)
	c.saveDisk(key, url, page)
	return page, nil
}

// Invalidate drops any cached labels for url, forcing the next Label call to
// hit the model again.
func (c *Client) Invalidate(url string) {
	key := cacheKey(url)
	c.mem.Remove(key)
	if c.opts.CacheDir != "" {
		os.Remove(c.diskPath(key))
	}
}

// query runs the model round trip, retrying once with feedback when the
// reply cannot be parsed.
func (c *Client) query(ctx context.Context, url, title string, ds []survey.Descriptor) (*Page, error) {
	system := systemPrompt
	prompt := buildPrompt(url, title, ds)
	index := surveyIndex(ds)

	var lastErr error
	for attempt := 0; attempt <= c.opts.Retries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
		raw, err := c.llm.CompleteWithSystem(callCtx, system, prompt)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("labeling: %w", err)
		}

		page, err := parsePage(raw)
		if err != nil {
			c.log.Warn("labeling: malformed reply", "attempt", attempt, "error", err)
			lastErr = err
			prompt = prompt + "\n\nYour previous reply could not be parsed (" + err.Error() +
				"). Reply with exactly one JSON object matching the schema and nothing else."
			continue
		}

		validate(page, index)
		c.log.Info("labeling: page labeled",
			"url", url, "containers", len(page.Containers), "standalone", len(page.Standalone))
		return page, nil
	}
	return nil, fmt.Errorf("labeling: model reply unusable: %w", lastErr)
}

// Fallback builds a Page without any model call: top-scored containers named
// by their own text, plus interactive elements that sit outside every chosen
// container. Used when labeling is disabled or no provider is available.
func Fallback(ds []survey.Descriptor) *Page {
	var chosen []survey.Descriptor
	for _, d := range ds {
		if d.Category != survey.CategoryContainer {
			continue
		}
		chosen = append(chosen, d)
		if len(chosen) == 9 {
			break
		}
	}
	// Container order decides digit assignment downstream, so the chosen
	// regions follow reading order, not survey rank: the topmost region is 1.
	sort.SliceStable(chosen, func(i, j int) bool { return chosen[i].Order < chosen[j].Order })

	page := &Page{}
	var regionRects []host.Rect
	for _, d := range chosen {
		name := d.Text
		if name == "" {
			name = string(d.Category)
		}
		if runes := []rune(name); len(runes) > 24 {
			name = string(runes[:24])
		}
		page.Containers = append(page.Containers, Annotation{
			Selector:   d.Selector,
			Occurrence: d.Occurrence,
			Label:      name,
			Kind:       "region",
		})
		regionRects = append(regionRects, d.Rect)
	}
	for _, d := range ds {
		if d.Category == survey.CategoryContainer || len(page.Standalone) >= 40 {
			continue
		}
		if insideAny(d.Rect, regionRects) {
			continue
		}
		page.Standalone = append(page.Standalone, Annotation{
			Selector:   d.Selector,
			Occurrence: d.Occurrence,
			Label:      d.Text,
			Kind:       string(d.Category),
		})
	}
	return page
}

// insideAny reports whether r sits mostly within one of the region rects.
// Descriptors carry no parentage, so geometry stands in for containment.
func insideAny(r host.Rect, regions []host.Rect) bool {
	if r.Area() <= 0 {
		return false
	}
	for _, reg := range regions {
		if reg.Intersect(r).Area() >= 0.9*r.Area() {
			return true
		}
	}
	return false
}

// validate drops annotations that do not reference the survey, enforces the
// container/standalone category split, and dedupes claims in place.
func validate(page *Page, index map[string]survey.Category) {
	claimed := make(map[string]bool)
	keep := func(anns []Annotation, wantContainer bool) []Annotation {
		out := anns[:0]
		for _, a := range anns {
			a.Label = strings.TrimSpace(a.Label)
			k := annKey(a.Selector, a.Occurrence)
			cat, ok := index[k]
			if !ok || claimed[k] {
				continue
			}
			if wantContainer != (cat == survey.CategoryContainer) {
				continue
			}
			if a.Label == "" {
				continue
			}
			claimed[k] = true
			out = append(out, a)
		}
		return out
	}
	page.Containers = keep(page.Containers, true)
	page.Standalone = keep(page.Standalone, false)
}

func surveyIndex(ds []survey.Descriptor) map[string]survey.Category {
	index := make(map[string]survey.Category, len(ds))
	for _, d := range ds {
		index[annKey(d.Selector, d.Occurrence)] = d.Category
	}
	return index
}

func annKey(sel string, occ int) string {
	return fmt.Sprintf("%s\x00%d", sel, occ)
}

func cacheKey(url string) string {
	// Fragments never change page identity for labeling purposes.
	if i := strings.IndexByte(url, '#'); i >= 0 {
		url = url[:i]
	}
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:8])
}

// Disk cache: one JSON file per page URL under CacheDir.

type diskEntry struct {
	URL     string    `json:"url"`
	SavedAt time.Time `json:"saved_at"`
	Page    *Page     `json:"page"`
}

func (c *Client) diskPath(key string) string {
	return filepath.Join(c.opts.CacheDir, key+".json")
}

func (c *Client) loadDisk(key string) *Page {
	if c.opts.CacheDir == "" {
		return nil
	}
	data, err := os.ReadFile(c.diskPath(key))
	if err != nil {
		return nil
	}
	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Page == nil {
		return nil
	}
	if time.Since(entry.SavedAt) > c.opts.CacheTTL {
		return nil
	}
	return entry.Page
}

func (c *Client) saveDisk(key, url string, page *Page) {
	if c.opts.CacheDir == "" {
		return
	}
	if err := os.MkdirAll(c.opts.CacheDir, 0o755); err != nil {
		c.log.Warn("labeling: cache dir", "error", err)
		return
	}
	data, err := json.MarshalIndent(diskEntry{URL: url, SavedAt: time.Now(), Page: page}, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(c.diskPath(key), data, 0o644); err != nil {
		c.log.Warn("labeling: cache write", "error", err)
	}
}
