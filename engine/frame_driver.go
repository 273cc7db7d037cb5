package engine

import (
	"context"
	"time"
)

// maxFrameDelta caps the delta reported after a stall, such as a window drag
// on platforms that block the event loop, so damping does not jump.
const maxFrameDelta = 250 * time.Millisecond

// FrameDriver asks the environment for the next frame.
type FrameDriver interface {
	// NextFrame blocks until the next frame may be drawn.
	//
	// Parameters:
	//   - ctx: cancels the wait
	//
	// Returns:
	//   - time.Duration: time since the previous frame, zero for the first
	//   - bool: false when the loop should end
	NextFrame(ctx context.Context) (time.Duration, bool)
}

// EventPoller pumps platform events. window.Window satisfies it.
type EventPoller interface {
	// PollEvents processes pending events and reports whether the window is still open.
	PollEvents() bool
}

// WindowDriver drives frames from a window's event loop: every NextFrame
// polls events once and ends the loop when the window closes.
type WindowDriver struct {
	events EventPoller
	now    func() time.Time
	last   time.Time
}

var _ FrameDriver = &WindowDriver{}

// WindowDriverOption is a functional option for configuring a WindowDriver.
type WindowDriverOption func(*WindowDriver)

// WithDriverClock replaces time.Now, for tests.
func WithDriverClock(now func() time.Time) WindowDriverOption {
	return func(d *WindowDriver) {
		d.now = now
	}
}

// NewWindowDriver creates a WindowDriver over events.
//
// Parameters:
//   - events: the window whose events are polled each frame
//   - options: functional options
//
// Returns:
//   - *WindowDriver: the driver
func NewWindowDriver(events EventPoller, options ...WindowDriverOption) *WindowDriver {
	d := &WindowDriver{events: events, now: time.Now}
	for _, opt := range options {
		opt(d)
	}
	return d
}

func (d *WindowDriver) NextFrame(ctx context.Context) (time.Duration, bool) {
	if ctx.Err() != nil || !d.events.PollEvents() {
		return 0, false
	}
	now := d.now()
	var dt time.Duration
	if !d.last.IsZero() {
		dt = min(now.Sub(d.last), maxFrameDelta)
	}
	d.last = now
	return dt, true
}
