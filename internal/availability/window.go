// Package availability implements the slot computation pipeline: merging
// recurring schedule windows, subtracting busy ranges, applying service
// buffers and slicing the remainder into discrete bookable slots. Everything
// here is pure; the overlap guarantee lives in the booking store, not here.
package availability

import (
	"sort"
	"time"
)

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Empty reports whether the window has zero or negative length.
func (w Window) Empty() bool {
	return !w.Start.Before(w.End)
}

// Overlaps reports whether two half-open windows intersect.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Merge coalesces overlapping or adjacent windows into maximal contiguous
// intervals. The input is not mutated.
func Merge(windows []Window) []Window {
	if len(windows) == 0 {
		return nil
	}
	sorted := make([]Window, 0, len(windows))
	for _, w := range windows {
		if !w.Empty() {
			sorted = append(sorted, w)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []Window{sorted[0]}
	for _, w := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !w.Start.After(last.End) {
			if w.End.After(last.End) {
				last.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

// Subtract removes every busy range from the windows, splitting windows as
// needed. A busy range that covers a window drops it; one contained inside a
// window splits it in two; edge overlaps trim one side.
func Subtract(windows, busy []Window) []Window {
	out := windows
	for _, b := range busy {
		if b.Empty() {
			continue
		}
		var next []Window
		for _, w := range out {
			if !w.Overlaps(b) {
				next = append(next, w)
				continue
			}
			if b.Start.After(w.Start) {
				next = append(next, Window{Start: w.Start, End: b.Start})
			}
			if b.End.Before(w.End) {
				next = append(next, Window{Start: b.End, End: w.End})
			}
		}
		out = next
	}
	return out
}

// Buffer shrinks each window by the service's pre/post buffer and discards
// windows that can no longer hold the service duration.
func Buffer(windows []Window, before, after, minLength time.Duration) []Window {
	var out []Window
	for _, w := range windows {
		shrunk := Window{Start: w.Start.Add(before), End: w.End.Add(-after)}
		if shrunk.Empty() || shrunk.Duration() < minLength {
			continue
		}
		out = append(out, shrunk)
	}
	return out
}
