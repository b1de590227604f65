package form

import "time"

// Intent is a recognized request to leave the form.
type Intent int

const (
	IntentNone Intent = iota
	IntentWheel
	IntentSwipe
	IntentKey
)

func (i Intent) String() string {
	switch i {
	case IntentWheel:
		return "wheel"
	case IntentSwipe:
		return "swipe"
	case IntentKey:
		return "key"
	default:
		return "none"
	}
}

const (
	wheelThreshold = -50
	swipeThreshold = 100
	swipeWindow    = 500 * time.Millisecond
)

// WheelEvent carries the scroll deltas of a wheel or trackpad event.
type WheelEvent struct {
	DeltaX float64
	DeltaY float64
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// ClassifyWheel recognizes a mostly horizontal scroll to the left.
func ClassifyWheel(e WheelEvent) Intent {
	if abs(e.DeltaX) > abs(e.DeltaY) && e.DeltaX < wheelThreshold {
		return IntentWheel
	}
	return IntentNone
}

// KeyEvent is a key press with its modifier state.
type KeyEvent struct {
	Key  string
	Meta bool
}

func ClassifyKey(e KeyEvent) Intent {
	switch {
	case e.Key == "Escape":
		return IntentKey
	case e.Key == "ArrowLeft" && e.Meta:
		return IntentKey
	}
	return IntentNone
}

// SwipeTracker follows two-finger touch gestures. Gestures with any other
// number of touch points are ignored.
type SwipeTracker struct {
	startX  float64
	startAt time.Time
	active  bool
}

func (t *SwipeTracker) Start(xs []float64, at time.Time) {
	if len(xs) != 2 {
		t.active = false
		return
	}
	t.startX = xs[0] + xs[1]
	t.startAt = at
	t.active = true
}

// Move reports IntentSwipe when the summed position of both fingers moved
// right far enough within the gesture window.
func (t *SwipeTracker) Move(xs []float64, at time.Time) Intent {
	if !t.active || len(xs) != 2 {
		return IntentNone
	}
	if at.Sub(t.startAt) >= swipeWindow {
		return IntentNone
	}
	if xs[0]+xs[1]-t.startX > swipeThreshold {
		t.active = false
		return IntentSwipe
	}
	return IntentNone
}

func (t *SwipeTracker) End() {
	t.active = false
}
