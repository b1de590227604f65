package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyWheel(t *testing.T) {
	assert.Equal(t, IntentWheel, ClassifyWheel(WheelEvent{DeltaX: -80, DeltaY: 10}))
	assert.Equal(t, IntentNone, ClassifyWheel(WheelEvent{DeltaX: -40, DeltaY: 0}))
	assert.Equal(t, IntentNone, ClassifyWheel(WheelEvent{DeltaX: -80, DeltaY: 120}))
	assert.Equal(t, IntentNone, ClassifyWheel(WheelEvent{DeltaX: 80, DeltaY: 0}))
}

func TestClassifyKey(t *testing.T) {
	assert.Equal(t, IntentKey, ClassifyKey(KeyEvent{Key: "Escape"}))
	assert.Equal(t, IntentKey, ClassifyKey(KeyEvent{Key: "ArrowLeft", Meta: true}))
	assert.Equal(t, IntentNone, ClassifyKey(KeyEvent{Key: "ArrowLeft"}))
	assert.Equal(t, IntentNone, ClassifyKey(KeyEvent{Key: "Enter"}))
}

func TestSwipeTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var tracker SwipeTracker
	tracker.Start([]float64{10, 60}, start)
	assert.Equal(t, IntentNone, tracker.Move([]float64{30, 80}, start.Add(100*time.Millisecond)))
	assert.Equal(t, IntentSwipe, tracker.Move([]float64{130, 180}, start.Add(200*time.Millisecond)))
	assert.Equal(t, IntentNone, tracker.Move([]float64{200, 250}, start.Add(250*time.Millisecond)), "fires once per gesture")

	tracker.Start([]float64{10, 60}, start)
	assert.Equal(t, IntentNone, tracker.Move([]float64{200, 250}, start.Add(600*time.Millisecond)), "too slow")

	tracker.Start([]float64{100, 200}, start)
	assert.Equal(t, IntentSwipe, tracker.Move([]float64{160, 260}, start.Add(200*time.Millisecond)), "both fingers move together")

	tracker.Start([]float64{100, 200}, start)
	assert.Equal(t, IntentNone, tracker.Move([]float64{160, 180}, start.Add(200*time.Millisecond)), "fingers moving apart")

	tracker.Start([]float64{10}, start)
	assert.Equal(t, IntentNone, tracker.Move([]float64{200}, start.Add(100*time.Millisecond)), "single finger")
}
