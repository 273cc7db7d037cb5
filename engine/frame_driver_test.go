package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/ruins/engine/window"
)

// The frame loop pumps the window through PollEvents alone.
var _ EventPoller = window.Window(nil)

type fakePoller struct {
	open  int
	polls int
}

func (p *fakePoller) PollEvents() bool {
	p.polls++
	return p.polls <= p.open
}

type stepClock struct {
	t     time.Time
	steps []time.Duration
}

func (c *stepClock) now() time.Time {
	if len(c.steps) > 0 {
		c.t = c.t.Add(c.steps[0])
		c.steps = c.steps[1:]
	}
	return c.t
}

func TestWindowDriverMeasuresDelta(t *testing.T) {
	clock := &stepClock{
		t:     time.Unix(100, 0),
		steps: []time.Duration{0, 16 * time.Millisecond, 5 * time.Second},
	}
	d := NewWindowDriver(&fakePoller{open: 3}, WithDriverClock(clock.now))
	ctx := context.Background()

	dt, ok := d.NextFrame(ctx)
	assert.True(t, ok)
	assert.Zero(t, dt)

	dt, ok = d.NextFrame(ctx)
	assert.True(t, ok)
	assert.Equal(t, 16*time.Millisecond, dt)

	dt, ok = d.NextFrame(ctx)
	assert.True(t, ok)
	assert.Equal(t, maxFrameDelta, dt)

	_, ok = d.NextFrame(ctx)
	assert.False(t, ok)
}

func TestWindowDriverStopsOnCancel(t *testing.T) {
	poller := &fakePoller{open: 10}
	d := NewWindowDriver(poller)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := d.NextFrame(ctx)
	assert.False(t, ok)
	assert.Zero(t, poller.polls)
}

func TestWindowDriverPollsOncePerFrame(t *testing.T) {
	poller := &fakePoller{open: 2}
	d := NewWindowDriver(poller)
	ctx := context.Background()

	for range 2 {
		_, ok := d.NextFrame(ctx)
		assert.True(t, ok)
	}
	assert.Equal(t, 2, poller.polls)
}
