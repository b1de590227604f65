// Package debounce delays a call until its trigger has been quiet for a
// fixed interval.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is used for search input when nothing else is configured.
const DefaultDelay = 300 * time.Millisecond

// Timer is a pending call that can be stopped.
type Timer interface {
	// Stop prevents the call and reports whether it was still pending.
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler schedules on the runtime timers.
var RealScheduler Scheduler = realScheduler{}

// Debouncer keeps at most one pending call. Triggering again replaces it.
type Debouncer struct {
	delay     time.Duration
	scheduler Scheduler

	mutex   sync.Mutex
	timer   Timer
	pending func()
	gen     uint64
	running sync.WaitGroup
}

func New(delay time.Duration, scheduler Scheduler) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if scheduler == nil {
		scheduler = RealScheduler
	}
	return &Debouncer{
		delay:     delay,
		scheduler: scheduler,
	}
}

func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger schedules f and cancels the previously scheduled call.
func (d *Debouncer) Trigger(f func()) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	gen := d.gen
	d.pending = f
	d.timer = d.scheduler.AfterFunc(d.delay, func() {
		d.fire(gen)
	})
}

func (d *Debouncer) fire(gen uint64) {
	d.mutex.Lock()
	// A stop that raced with the timer leaves an outdated generation behind.
	if gen != d.gen || d.pending == nil {
		d.mutex.Unlock()
		return
	}
	f := d.pending
	d.pending = nil
	d.timer = nil
	d.running.Add(1)
	d.mutex.Unlock()

	defer d.running.Done()
	f()
}

// Cancel drops the pending call and reports whether there was one.
func (d *Debouncer) Cancel() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.pending == nil {
		return false
	}
	d.stop()
	return true
}

// Flush runs the pending call immediately, if any.
func (d *Debouncer) Flush() bool {
	d.mutex.Lock()
	f := d.pending
	if f == nil {
		d.mutex.Unlock()
		return false
	}
	d.stop()
	d.running.Add(1)
	d.mutex.Unlock()

	defer d.running.Done()
	f()
	return true
}

// Wait blocks until no call is running. A timer that fired just before a
// Flush or Cancel may still be executing its call; Wait returns once it is
// done. Wait must not be called concurrently with Trigger.
func (d *Debouncer) Wait() {
	d.running.Wait()
}

func (d *Debouncer) stop() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.timer = nil
	d.pending = nil
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	return d.pending != nil
}
