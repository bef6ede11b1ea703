package availability

import (
	"fmt"
	"time"
)

// Slicer walks a buffered window and emits bookable slots of exactly the
// service duration. The two implementations differ only in how far each slot
// start advances; the active one is chosen from configuration at startup,
// never per request.
type Slicer interface {
	Slice(w Window, duration time.Duration) []Window
}

// SteppedSlicer advances slot starts by a fixed step independent of the
// service duration, so a 45-minute service can still start every 15 minutes.
type SteppedSlicer struct {
	Step time.Duration
}

// Slice implements Slicer.
func (s SteppedSlicer) Slice(w Window, duration time.Duration) []Window {
	return slice(w, duration, s.Step)
}

// AlignedSlicer advances slot starts by the service duration itself, yielding
// back-to-back non-overlapping slots.
type AlignedSlicer struct{}

// Slice implements Slicer.
func (AlignedSlicer) Slice(w Window, duration time.Duration) []Window {
	return slice(w, duration, duration)
}

func slice(w Window, duration, step time.Duration) []Window {
	if duration <= 0 || step <= 0 {
		return nil
	}
	var slots []Window
	for start := w.Start; ; start = start.Add(step) {
		end := start.Add(duration)
		if end.After(w.End) {
			break
		}
		slots = append(slots, Window{Start: start, End: end})
	}
	return slots
}

// NewSlicer builds the configured slicer. Modes: "stepped" (default) and
// "aligned".
func NewSlicer(mode string, step time.Duration) (Slicer, error) {
	switch mode {
	case "", "stepped":
		if step <= 0 {
			return nil, fmt.Errorf("slot step must be positive, got %s", step)
		}
		return SteppedSlicer{Step: step}, nil
	case "aligned":
		return AlignedSlicer{}, nil
	default:
		return nil, fmt.Errorf("unknown availability mode %q", mode)
	}
}
