package nav

import (
	"testing"
	"time"
)

func TestDebounceCoalescesBurst(t *testing.T) {
	d := newDebouncer(20*time.Millisecond, 200*time.Millisecond)
	defer d.Stop()

	d.Trigger()
	d.Trigger()
	d.Trigger()

	select {
	case <-d.C():
		d.Fired()
	case <-time.After(2 * time.Second):
		t.Fatal("burst never fired")
	}
	if d.C() != nil {
		t.Fatal("channel must be nil once the burst is acknowledged")
	}

	// A fresh burst fires again on a fresh window.
	d.Trigger()
	select {
	case <-d.C():
		d.Fired()
	case <-time.After(2 * time.Second):
		t.Fatal("second burst never fired")
	}
}

func TestDebounceFiresUnderConstantStream(t *testing.T) {
	d := newDebouncer(30*time.Millisecond, 90*time.Millisecond)
	defer d.Stop()

	start := time.Now()
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	d.Trigger()
	for {
		select {
		case <-d.C():
			d.Fired()
			// The deadline caps how long a stream of triggers can hold
			// the fire off. Bound generously; CI clocks wobble.
			if elapsed := time.Since(start); elapsed > time.Second {
				t.Fatalf("deadline fire took %v", elapsed)
			}
			return
		case <-tick.C:
			d.Trigger()
			if time.Since(start) > 5*time.Second {
				t.Fatal("debouncer starved by the trigger stream")
			}
		}
	}
}

func TestDebounceIdleAndStop(t *testing.T) {
	d := newDebouncer(10*time.Millisecond, 40*time.Millisecond)
	if d.C() != nil {
		t.Fatal("idle debouncer must expose a nil channel")
	}
	d.Trigger()
	if d.C() == nil {
		t.Fatal("pending burst must expose the timer channel")
	}
	d.Stop()
	if d.C() != nil {
		t.Fatal("Stop must clear the pending burst")
	}
}
