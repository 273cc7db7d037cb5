package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type dragEvent struct {
	button MouseButton
	dx, dy float32
}

func TestNewEngineWindowOptions(t *testing.T) {
	w := newEngineWindow(WithTitle("ruins"), WithWidth(800), WithHeight(600), WithMinWidth(100))

	assert.Equal(t, "ruins", w.title)
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 600, w.Height())
	assert.Equal(t, 100, w.minWidth)
	assert.False(t, w.IsRunning(), "no platform window was created")
	assert.Nil(t, w.SurfaceDescriptor())
	assert.Error(t, w.Close())
	assert.False(t, w.PollEvents())
}

func TestDragReportsHeldButtons(t *testing.T) {
	w := newEngineWindow()
	var events []dragEvent
	w.SetDragCallback(func(b MouseButton, dx, dy float32) {
		events = append(events, dragEvent{b, dx, dy})
	})

	w.handleCursor(10, 10)
	assert.Empty(t, events, "moves without a held button are not drags")

	w.handleMouseButton(MouseButtonLeft, true, 10, 10)
	w.handleCursor(15, 8)
	w.handleMouseButton(MouseButtonRight, true, 15, 8)
	w.handleCursor(16, 8)
	w.handleMouseButton(MouseButtonLeft, false, 16, 8)
	w.handleCursor(16, 12)
	w.handleMouseButton(MouseButtonRight, false, 16, 12)
	w.handleCursor(20, 20)

	assert.Equal(t, []dragEvent{
		{MouseButtonLeft, 5, -2},
		{MouseButtonLeft, 1, 0},
		{MouseButtonRight, 1, 0},
		{MouseButtonRight, 0, 4},
	}, events)
}

func TestReleaseButtonsStopsDrag(t *testing.T) {
	w := newEngineWindow()
	drags := 0
	w.SetDragCallback(func(MouseButton, float32, float32) { drags++ })

	w.handleMouseButton(MouseButtonLeft, true, 0, 0)
	w.releaseButtons()
	w.handleCursor(5, 5)
	assert.Zero(t, drags)
}

func TestResizeIgnoresMinimised(t *testing.T) {
	w := newEngineWindow()
	var sizes [][2]int
	w.SetResizeCallback(func(width, height int) { sizes = append(sizes, [2]int{width, height}) })

	w.handleResize(1024, 768)
	w.handleResize(0, 0)

	assert.Equal(t, [][2]int{{1024, 768}}, sizes)
	assert.Equal(t, 0, w.Width())
}

func TestKeyAndScrollDispatch(t *testing.T) {
	w := newEngineWindow()
	var down, up []uint32
	var scrolls []float32
	w.SetKeyDownCallback(func(k uint32) { down = append(down, k) })
	w.SetKeyUpCallback(func(k uint32) { up = append(up, k) })
	w.SetScrollCallback(func(d float32) { scrolls = append(scrolls, d) })

	w.handleKey(66, true)
	w.handleKey(66, false)
	w.handleScroll(0)
	w.handleScroll(-1)

	assert.Equal(t, []uint32{66}, down)
	assert.Equal(t, []uint32{66}, up)
	assert.Equal(t, []float32{-1}, scrolls)
}
