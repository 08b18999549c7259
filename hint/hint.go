// Package hint lays out key badges over page elements. Badges seed just
// above their element's top-left corner, then a bounded repulsion pass
// separates any that collide, and everything is clamped into the viewport.
// The layout is pure geometry: painting is the host's job.
package hint

import (
	"surfmate/host"
)

// Target is one element that needs a badge.
type Target struct {
	Key   string
	Label string // optional, shown next to the key (container names)
	Box   host.Rect
}

// Config holds layout tuning.
type Config struct {
	Padding       float64 // gap kept between a badge and its element
	MaxIterations int     // upper bound on repulsion rounds
	OffscreenFade bool    // render badges for mostly-offscreen elements faded
}

// DefaultConfig returns the layout defaults.
func DefaultConfig() Config {
	return Config{Padding: 2, MaxIterations: 10, OffscreenFade: true}
}

const (
	badgeH        = 18.0
	badgeCharW    = 9.0
	badgePadX     = 8.0
	labelCharW    = 7.0
	maxLabelRunes = 18
	badgeGap      = 2.0 // minimum space kept between badges

	offscreenScale = 0.75
	// visibleNeed is the fraction of an element that must be inside the
	// viewport for its badge to render at full strength.
	visibleNeed = 0.4
)

// Place computes badge rectangles for targets within viewport. Mostly
// offscreen elements get a shrunken badge pinned to the viewport edge and
// are left out of the repulsion pass so edge pile-ups cannot destabilize
// the rest of the layout.
func Place(targets []Target, viewport host.Rect, cfg Config) []host.HintSpec {
	if len(targets) == 0 {
		return nil
	}
	if cfg.MaxIterations < 0 {
		cfg.MaxIterations = 0
	}

	specs := make([]host.HintSpec, len(targets))
	pinned := make([]bool, len(targets))
	for i, t := range targets {
		w, h := badgeSize(t)
		scale := 1.0
		faded := false
		if visibleFraction(t.Box, viewport) < visibleNeed {
			scale = offscreenScale
			faded = cfg.OffscreenFade
			pinned[i] = true
			w *= scale
			h *= scale
		}

		// Seed above the top-left corner, falling into the element when
		// there is no room overhead.
		x := t.Box.X - cfg.Padding
		y := t.Box.Y - h - cfg.Padding
		if y < viewport.Y {
			y = t.Box.Y + cfg.Padding
		}

		specs[i] = host.HintSpec{
			Key:   t.Key,
			Label: clip(t.Label, maxLabelRunes),
			Box:   clampRect(host.Rect{X: x, Y: y, W: w, H: h}, viewport),
			Scale: scale,
			Faded: faded,
		}
	}

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		moved := false
		for i := range specs {
			if pinned[i] {
				continue
			}
			for j := i + 1; j < len(specs); j++ {
				if pinned[j] {
					continue
				}
				if separate(&specs[i].Box, &specs[j].Box) {
					moved = true
				}
			}
		}
		for i := range specs {
			specs[i].Box = clampRect(specs[i].Box, viewport)
		}
		if !moved {
			break
		}
	}
	return specs
}

func badgeSize(t Target) (float64, float64) {
	w := badgePadX + badgeCharW*float64(len([]rune(t.Key)))
	if t.Label != "" {
		w += 4 + labelCharW*float64(len([]rune(clip(t.Label, maxLabelRunes))))
	}
	return w, badgeH
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func visibleFraction(box, viewport host.Rect) float64 {
	area := box.Area()
	if area <= 0 {
		return 0
	}
	return box.Intersect(viewport).Area() / area
}

// separate pushes two colliding badges apart along the axis of least
// penetration, half the distance each. Returns whether anything moved.
func separate(a, b *host.Rect) bool {
	if a.X >= b.X+b.W+badgeGap || b.X >= a.X+a.W+badgeGap ||
		a.Y >= b.Y+b.H+badgeGap || b.Y >= a.Y+a.H+badgeGap {
		return false
	}
	dx := min(a.X+a.W, b.X+b.W) - max(a.X, b.X) + badgeGap
	dy := min(a.Y+a.H, b.Y+b.H) - max(a.Y, b.Y) + badgeGap
	if dx < dy {
		if a.CenterX() <= b.CenterX() {
			a.X -= dx / 2
			b.X += dx / 2
		} else {
			a.X += dx / 2
			b.X -= dx / 2
		}
	} else {
		if a.CenterY() <= b.CenterY() {
			a.Y -= dy / 2
			b.Y += dy / 2
		} else {
			a.Y += dy / 2
			b.Y -= dy / 2
		}
	}
	return true
}

func clampRect(r, vp host.Rect) host.Rect {
	if r.X+r.W > vp.X+vp.W {
		r.X = vp.X + vp.W - r.W
	}
	if r.Y+r.H > vp.Y+vp.H {
		r.Y = vp.Y + vp.H - r.H
	}
	if r.X < vp.X {
		r.X = vp.X
	}
	if r.Y < vp.Y {
		r.Y = vp.Y
	}
	return r
}
