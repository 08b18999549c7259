package nav

import "time"

// debouncer coalesces a burst of triggers into one fire: each trigger pushes
// the fire back by window, but never past max from the first trigger of the
// burst. Not safe for concurrent use; the machine's loop owns it.
type debouncer struct {
	window time.Duration
	max    time.Duration
	timer  *time.Timer
	due    time.Time
}

func newDebouncer(window, max time.Duration) *debouncer {
	if window <= 0 {
		window = 100 * time.Millisecond
	}
	if max < window {
		max = 4 * window
	}
	return &debouncer{window: window, max: max}
}

// Trigger starts or extends the current burst.
func (d *debouncer) Trigger() {
	if d.timer == nil {
		d.timer = time.NewTimer(d.window)
		d.due = time.Now().Add(d.max)
		return
	}
	wait := d.window
	if rem := time.Until(d.due); rem < wait {
		wait = rem
	}
	if wait < 0 {
		wait = 0
	}
	if !d.timer.Stop() {
		select {
		case <-d.timer.C:
		default:
		}
	}
	d.timer.Reset(wait)
}

// C is the fire channel; nil while no burst is pending, which a select
// treats as never-ready.
func (d *debouncer) C() <-chan time.Time {
	if d.timer == nil {
		return nil
	}
	return d.timer.C
}

// Fired acknowledges a receive from C and closes out the burst. The owner
// must call it after every receive or the next Trigger reuses a spent
// deadline and fires immediately.
func (d *debouncer) Fired() {
	d.timer = nil
}

// Stop abandons any pending burst.
func (d *debouncer) Stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
