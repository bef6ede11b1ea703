package availability

import (
	"testing"
	"time"
)

func TestSteppedSlicerOverlappingStarts(t *testing.T) {
	s := SteppedSlicer{Step: 15 * time.Minute}
	got := s.Slice(win(9, 0, 10, 30), 45*time.Minute)

	// 45-minute service, starts every 15 minutes while it still fits
	assertWindows(t, got, []Window{
		win(9, 0, 9, 45), win(9, 15, 10, 0), win(9, 30, 10, 15), win(9, 45, 10, 30),
	})
}

func TestAlignedSlicerBackToBack(t *testing.T) {
	got := AlignedSlicer{}.Slice(win(9, 0, 10, 40), 30*time.Minute)
	assertWindows(t, got, []Window{
		win(9, 0, 9, 30), win(9, 30, 10, 0), win(10, 0, 10, 30),
	})
}

func TestSliceTooSmallWindow(t *testing.T) {
	got := AlignedSlicer{}.Slice(win(9, 0, 9, 20), 30*time.Minute)
	if len(got) != 0 {
		t.Fatalf("expected no slots, got %v", got)
	}
}

func TestNewSlicer(t *testing.T) {
	if _, err := NewSlicer("stepped", 15*time.Minute); err != nil {
		t.Fatalf("stepped: %v", err)
	}
	if _, err := NewSlicer("", 15*time.Minute); err != nil {
		t.Fatalf("default mode: %v", err)
	}
	if _, err := NewSlicer("aligned", 0); err != nil {
		t.Fatalf("aligned: %v", err)
	}
	if _, err := NewSlicer("stepped", 0); err == nil {
		t.Fatal("expected error for zero step")
	}
	if _, err := NewSlicer("bogus", 15*time.Minute); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
