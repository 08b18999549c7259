package label

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"surfmate/host"
	"surfmate/survey"
)

type fakeCompleter struct {
	replies []string
	errs    []error
	calls   int
	prompts []string
}

func (f *fakeCompleter) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var reply string
	if i < len(f.replies) {
		reply = f.replies[i]
	}
	return reply, err
}

func testSurvey() []survey.Descriptor {
	return []survey.Descriptor{
		{Selector: "#topnav", Category: survey.CategoryContainer, Text: "Home Docs Pricing", Score: 73},
		{Selector: "#search", Category: survey.CategoryContainer, Text: "Search Go", Score: 72},
		{Selector: "#topnav > a:nth-child(1)", Category: survey.CategoryLink, Text: "Home", Score: 130},
		{Selector: "div.card > a", Occurrence: 1, Category: survey.CategoryLink, Text: "Second story", Score: 125},
	}
}

func newTestClient(t *testing.T, f *fakeCompleter, dir string) *Client {
	t.Helper()
	c, err := NewClient(f, Options{Timeout: time.Second, CacheDir: dir})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

const goodReply = `{"containers":[
  {"selector":"#topnav","occurrence":0,"label":"Main navigation","kind":"navigation"},
  {"selector":"#made-up","occurrence":0,"label":"Ghost","kind":"other"},
  {"selector":"#topnav > a:nth-child(1)","occurrence":0,"label":"Not a container","kind":"other"}],
 "standalone":[
  {"selector":"div.card > a","occurrence":1,"label":"Second story","kind":"link"},
  {"selector":"div.card > a","occurrence":5,"label":"Wrong occurrence","kind":"link"},
  {"selector":"#search","occurrence":0,"label":"  ","kind":"form"}]}`

func TestLabelValidatesAgainstSurvey(t *testing.T) {
	f := &fakeCompleter{replies: []string{goodReply}}
	c := newTestClient(t, f, "")

	page, err := c.Label(context.Background(), "https://store.test/", "Store", testSurvey())
	if err != nil {
		t.Fatalf("Label: %v", err)
	}
	if len(page.Containers) != 1 || page.Containers[0].Selector != "#topnav" {
		t.Errorf("containers = %#v, want only #topnav", page.Containers)
	}
	if page.Containers[0].Label != "Main navigation" {
		t.Errorf("label = %q", page.Containers[0].Label)
	}
	if len(page.Standalone) != 1 || page.Standalone[0].Occurrence != 1 {
		t.Errorf("standalone = %#v, want only the occurrence-1 card link", page.Standalone)
	}
	if f.calls != 1 {
		t.Errorf("model calls = %d, want 1", f.calls)
	}
	// The prompt carries the survey verbatim so the model can quote it.
	if !strings.Contains(f.prompts[0], `selector="#topnav"`) {
		t.Errorf("prompt missing survey line:\n%s", f.prompts[0])
	}
}

func TestLabelRetriesMalformedReply(t *testing.T) {
	f := &fakeCompleter{replies: []string{
		"Sure! Here are the labels you asked for.",
		"```json\n" + goodReply + "\n```",
	}}
	c := newTestClient(t, f, "")

	page, err := c.Label(context.Background(), "https://store.test/", "Store", testSurvey())
	if err != nil {
		t.Fatalf("Label after retry: %v", err)
	}
	if f.calls != 2 {
		t.Fatalf("model calls = %d, want 2", f.calls)
	}
	if !strings.Contains(f.prompts[1], "could not be parsed") {
		t.Errorf("retry prompt lacks feedback:\n%s", f.prompts[1])
	}
	if len(page.Containers) != 1 {
		t.Errorf("containers = %#v", page.Containers)
	}
}

func TestLabelGivesUpAfterRetries(t *testing.T) {
	f := &fakeCompleter{replies: []string{"nope", "still nope"}}
	c := newTestClient(t, f, "")

	_, err := c.Label(context.Background(), "https://store.test/", "Store", testSurvey())
	if err == nil {
		t.Fatal("want error for unusable replies")
	}
	if f.calls != 2 {
		t.Errorf("model calls = %d, want 2", f.calls)
	}
}

func TestLabelPropagatesProviderError(t *testing.T) {
	boom := errors.New("provider down")
	f := &fakeCompleter{errs: []error{boom}}
	c := newTestClient(t, f, "")

	_, err := c.Label(context.Background(), "https://store.test/", "Store", testSurvey())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped provider error", err)
	}
	if f.calls != 1 {
		t.Errorf("provider errors should not be retried, calls = %d", f.calls)
	}
}

func TestLabelEmptySurvey(t *testing.T) {
	f := &fakeCompleter{}
	c := newTestClient(t, f, "")

	_, err := c.Label(context.Background(), "https://store.test/", "Store", nil)
	if !errors.Is(err, ErrEmptyPage) {
		t.Fatalf("err = %v, want ErrEmptyPage", err)
	}
	if f.calls != 0 {
		t.Errorf("empty survey must not call the model, calls = %d", f.calls)
	}
}

func TestLabelMemoryCache(t *testing.T) {
	f := &fakeCompleter{replies: []string{goodReply}}
	c := newTestClient(t, f, "")
	ctx := context.Background()

	if _, err := c.Label(ctx, "https://store.test/", "Store", testSurvey()); err != nil {
		t.Fatalf("first Label: %v", err)
	}
	if _, err := c.Label(ctx, "https://store.test/", "Store", testSurvey()); err != nil {
		t.Fatalf("second Label: %v", err)
	}
	// Fragments do not change page identity.
	if _, err := c.Label(ctx, "https://store.test/#section-2", "Store", testSurvey()); err != nil {
		t.Fatalf("fragment Label: %v", err)
	}
	if f.calls != 1 {
		t.Errorf("model calls = %d, want 1 (cached)", f.calls)
	}
}

func TestLabelDiskCacheSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	f1 := &fakeCompleter{replies: []string{goodReply}}
	c1 := newTestClient(t, f1, dir)
	if _, err := c1.Label(ctx, "https://store.test/", "Store", testSurvey()); err != nil {
		t.Fatalf("Label: %v", err)
	}

	f2 := &fakeCompleter{}
	c2 := newTestClient(t, f2, dir)
	page, err := c2.Label(ctx, "https://store.test/", "Store", testSurvey())
	if err != nil {
		t.Fatalf("Label from disk: %v", err)
	}
	if f2.calls != 0 {
		t.Errorf("disk-cached page still called the model %d times", f2.calls)
	}
	if len(page.Containers) != 1 || page.Containers[0].Label != "Main navigation" {
		t.Errorf("disk round trip lost data: %#v", page)
	}
}

func TestInvalidateForcesRelabel(t *testing.T) {
	dir := t.TempDir()
	f := &fakeCompleter{replies: []string{goodReply, goodReply}}
	c := newTestClient(t, f, dir)
	ctx := context.Background()

	if _, err := c.Label(ctx, "https://store.test/", "Store", testSurvey()); err != nil {
		t.Fatalf("Label: %v", err)
	}
	c.Invalidate("https://store.test/")
	if _, err := c.Label(ctx, "https://store.test/", "Store", testSurvey()); err != nil {
		t.Fatalf("Label after invalidate: %v", err)
	}
	if f.calls != 2 {
		t.Errorf("model calls = %d, want 2 after invalidation", f.calls)
	}
}

func TestFallback(t *testing.T) {
	page := Fallback(testSurvey())
	if len(page.Containers) != 2 {
		t.Fatalf("fallback containers = %#v", page.Containers)
	}
	if page.Containers[0].Label != "Home Docs Pricing" {
		t.Errorf("fallback container label = %q", page.Containers[0].Label)
	}
	if len(page.Standalone) != 2 {
		t.Fatalf("fallback standalone = %#v", page.Standalone)
	}
	for _, a := range page.Standalone {
		if a.Selector == "#topnav" || a.Selector == "#search" {
			t.Errorf("container leaked into standalone: %#v", a)
		}
	}
}

func TestFallbackExcludesContainedElements(t *testing.T) {
	ds := []survey.Descriptor{
		{Selector: "#topnav", Category: survey.CategoryContainer, Text: "Home Docs", Rect: host.Rect{W: 800, H: 60}},
		{Selector: "#topnav > a:nth-child(1)", Category: survey.CategoryLink, Text: "Home", Rect: host.Rect{X: 8, Y: 8, W: 60, H: 16}},
		{Selector: "#cta", Category: survey.CategoryButton, Text: "Sign up", Rect: host.Rect{X: 8, Y: 200, W: 90, H: 16}},
	}
	page := Fallback(ds)
	if len(page.Standalone) != 1 || page.Standalone[0].Selector != "#cta" {
		t.Errorf("standalone = %#v, want only the button outside the nav", page.Standalone)
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"bare object", `{"containers":[],"standalone":[]}`, false},
		{"fenced", "```json\n{\"containers\":[],\"standalone\":[]}\n```", false},
		{"prose wrapped", `Here you go: {"containers":[],"standalone":[]} hope that helps`, false},
		{"empty", "", true},
		{"no object", "I cannot label this page.", true},
		{"broken json", `{"containers":[`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsePage(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePage(%q) err = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}
