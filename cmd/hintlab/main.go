// Hintlab runs the offline hint pipeline against a saved HTML file and
// prints what a live session would bind and where the badges land. Useful
// when tuning survey thresholds or badge layout without a browser attached.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"surfmate/hint"
	"surfmate/host"
	"surfmate/label"
	"surfmate/survey"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: hintlab <page.html> [WxH]")
		os.Exit(1)
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	vp := host.Rect{W: 1280, H: 800}
	if len(os.Args) > 2 {
		if w, h, ok := parseViewport(os.Args[2]); ok {
			vp.W, vp.H = w, h
		}
	}

	h, err := host.NewStatic(string(raw), "file://"+os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	h.SetViewport(vp.W, vp.H)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	ds, err := survey.New(h, survey.DefaultConfig(), logger).Run(ctx, host.DocumentRef, survey.ModePage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if len(ds) == 0 {
		fmt.Println("no navigable elements")
		return
	}

	page := label.Fallback(ds)

	byKey := make(map[string]survey.Descriptor, len(ds))
	for _, d := range ds {
		byKey[d.Selector+"|"+strconv.Itoa(d.Occurrence)] = d
	}
	rect := func(a label.Annotation) survey.Descriptor {
		return byKey[a.Selector+"|"+strconv.Itoa(a.Occurrence)]
	}

	var targets []hint.Target

	fmt.Printf("CONTAINERS (%d)\n", len(page.Containers))
	for i, a := range page.Containers {
		d := rect(a)
		key := "-"
		if i < 9 {
			key = strconv.Itoa(i + 1)
			targets = append(targets, hint.Target{Key: key, Label: a.Label, Box: d.Rect})
		}
		fmt.Printf("  %s  %-28s score %-4d %s\n", key, a.Label, d.Score, a.Selector)
	}

	fmt.Printf("\nSTANDALONE (%d)\n", len(page.Standalone))
	const letters = "abcdefghijklmnopqrstuvwxyz"
	for i, a := range page.Standalone {
		d := rect(a)
		key := "-"
		if i < len(letters) {
			key = string(letters[i])
			targets = append(targets, hint.Target{Key: key, Box: d.Rect})
		}
		fmt.Printf("  %s  %-28s %s  %s\n", key, a.Label, a.Kind, a.Selector)
	}

	specs := hint.Place(targets, vp, hint.DefaultConfig())

	fmt.Printf("\nBADGES (%d in %gx%g)\n", len(specs), vp.W, vp.H)
	for i, sp := range specs {
		el := targets[i].Box
		fmt.Printf("  %-3s at %4.0f,%-5.0f (element %4.0f,%-5.0f)", sp.Key, sp.Box.X, sp.Box.Y, el.X, el.Y)
		if sp.Faded {
			fmt.Print(" faded")
		}
		fmt.Println()
	}

	overlaps := 0
	for i := 0; i < len(specs); i++ {
		for j := i + 1; j < len(specs); j++ {
			if specs[i].Box.Intersect(specs[j].Box).Area() > 0 {
				overlaps++
			}
		}
	}
	fmt.Printf("\n%d badge overlaps after layout\n", overlaps)
}

func parseViewport(s string) (w, h float64, ok bool) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	pw, err1 := strconv.ParseFloat(parts[0], 64)
	ph, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || pw <= 0 || ph <= 0 {
		return 0, 0, false
	}
	return pw, ph, true
}
