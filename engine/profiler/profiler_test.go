package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestProfilerLogsOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var buf bytes.Buffer
	p := NewProfiler(
		WithClock(clock.now),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
		WithInterval(time.Second),
	)

	for range 29 {
		clock.advance(time.Second / 60)
		assert.False(t, p.Tick())
	}
	p.Skip()
	clock.advance(600 * time.Millisecond)
	require.True(t, p.Tick())

	stats := p.Last()
	assert.Equal(t, 30, stats.Frames)
	assert.Equal(t, 1, stats.Skipped)
	elapsed := 29*(time.Second/60) + 600*time.Millisecond
	assert.InDelta(t, 30/elapsed.Seconds(), stats.FPS, 1e-6)
	assert.Contains(t, buf.String(), "msg=Profiler")
	assert.Contains(t, buf.String(), "skipped=1")

	clock.advance(time.Millisecond)
	assert.False(t, p.Tick(), "counters restart after a flush")
}

func TestProfilerSkipCounts(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))

	p.Skip()
	p.Skip()
	clock.advance(2 * time.Second)
	p.Skip()

	assert.Equal(t, 3, p.TotalSkipped())
	assert.Equal(t, 3, p.Last().Skipped)
	assert.Equal(t, 0, p.Last().Frames)
}

func TestProfilerIgnoresBadOptions(t *testing.T) {
	p := NewProfiler(WithInterval(0), WithLogger(nil), WithClock(nil))
	assert.Equal(t, time.Second, p.updateInterval)
	assert.NotNil(t, p.logger)
	assert.NotNil(t, p.now)
}
