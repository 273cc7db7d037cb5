package window

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// MouseButton identifies a pointer button reported to drag callbacks.
type MouseButton int

const (
	// MouseButtonLeft orbits the camera.
	MouseButtonLeft MouseButton = iota

	// MouseButtonRight pans the camera.
	MouseButtonRight

	// MouseButtonMiddle is reported but unbound by default.
	MouseButtonMiddle

	mouseButtonCount
)

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up/zoom in, negative = down/zoom out)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetDragCallback sets the callback for pointer movement while a button is held.
	// It fires once per held button for every cursor move.
	//
	// Parameters:
	//   - callback: function receiving the held button and the cursor delta in pixels
	SetDragCallback(callback func(button MouseButton, dx, dy float32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// PollEvents dispatches pending platform events without blocking.
	//
	// Returns:
	//   - bool: true while the window is still running
	PollEvents() bool

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int

	// PixelRatio returns framebuffer pixels per window coordinate, 2 on a
	// typical high-DPI display. It is 1 before the platform window exists.
	PixelRatio() float32
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, event callbacks and drag state.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// maxWidth is the maximum allowed window width during resize.
	maxWidth int

	// maxHeight is the maximum allowed window height during resize.
	maxHeight int

	// minWidth is the minimum allowed window width during resize.
	minWidth int

	// minHeight is the minimum allowed window height during resize.
	minHeight int

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// held tracks which buttons are down for drag reporting.
	held [mouseButtonCount]bool

	// cursorX, cursorY are the last cursor position, valid when hasCursor is set.
	cursorX, cursorY float64
	hasCursor        bool

	onResize  func(width, height int)
	onScroll  func(delta float32)
	onKeyDown func(keyCode uint32)
	onKeyUp   func(keyCode uint32)
	onDrag    func(button MouseButton, dx, dy float32)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
//   - error: error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "ruins",
		maxWidth:  0,
		maxHeight: 0,
		minWidth:  320,
		minHeight: 200,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetDragCallback(callback func(button MouseButton, dx, dy float32)) {
	w.onDrag = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) PollEvents() bool {
	return platformPollEvents(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) PixelRatio() float32 {
	return platformPixelRatio(w)
}

// handleKey dispatches a key press or release.
func (w *engineWindow) handleKey(keyCode uint32, pressed bool) {
	if pressed {
		if w.onKeyDown != nil {
			w.onKeyDown(keyCode)
		}
		return
	}
	if w.onKeyUp != nil {
		w.onKeyUp(keyCode)
	}
}

// handleMouseButton records a button transition at the given cursor position.
func (w *engineWindow) handleMouseButton(button MouseButton, pressed bool, x, y float64) {
	if button < 0 || button >= mouseButtonCount {
		return
	}
	w.held[button] = pressed
	w.cursorX, w.cursorY, w.hasCursor = x, y, true
}

// handleCursor reports a cursor move, firing one drag event per held button.
func (w *engineWindow) handleCursor(x, y float64) {
	if w.hasCursor && w.onDrag != nil {
		dx, dy := float32(x-w.cursorX), float32(y-w.cursorY)
		if dx != 0 || dy != 0 {
			for b, down := range w.held {
				if down {
					w.onDrag(MouseButton(b), dx, dy)
				}
			}
		}
	}
	w.cursorX, w.cursorY, w.hasCursor = x, y, true
}

// handleScroll forwards vertical scroll.
func (w *engineWindow) handleScroll(yoff float64) {
	if w.onScroll != nil && yoff != 0 {
		w.onScroll(float32(yoff))
	}
}

// handleResize stores the framebuffer size and notifies the resize callback.
// Zero sizes, reported while minimised, are stored but not forwarded.
func (w *engineWindow) handleResize(width, height int) {
	w.width = width
	w.height = height
	if width == 0 || height == 0 {
		return
	}
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

// releaseButtons clears drag state, used when the window loses focus.
func (w *engineWindow) releaseButtons() {
	w.held = [mouseButtonCount]bool{}
}
