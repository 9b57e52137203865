package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Button is a pointer button the viewer reacts to.
type Button int

const (
	// ButtonNone accompanies move events.
	ButtonNone Button = iota

	// ButtonPrimary is the left mouse button; dragging with it orbits.
	ButtonPrimary

	// ButtonSecondary is the middle or right mouse button; dragging with it pans.
	ButtonSecondary
)

// PointerAction is what happened to the pointer.
type PointerAction int

const (
	PointerMove PointerAction = iota
	PointerPress
	PointerRelease
)

// PointerEvent is one pointer change in framebuffer-space coordinates.
type PointerEvent struct {
	Action PointerAction
	Button Button
	X, Y   int32
}

// Window is the desktop surface the interactive viewer presents into. It reports the
// input the viewer needs (pointer drags, wheel, keys, dropped files) and the size of
// its drawable area.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the drawable area changes size.
	// A minimized window reports 0x0.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse wheel events.
	//
	// Parameters:
	//   - callback: function receiving the wheel delta (positive = away from the user)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key presses and repeats.
	//
	// Parameters:
	//   - callback: function receiving the key code (see common.Key*)
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetPointerCallback sets the callback for pointer presses, releases and moves.
	//
	// Parameters:
	//   - callback: function receiving each pointer event
	SetPointerCallback(callback func(ev PointerEvent))

	// SetDropCallback sets the callback for files dropped onto the window.
	//
	// Parameters:
	//   - callback: function receiving the dropped paths
	SetDropCallback(callback func(paths []string))

	// SetTitle replaces the title bar text. Must be called on the window thread.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor for the window's native handle.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true until the window is asked to close.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// RequestClose marks the window as closing so ProcessMessages returns after the
	// current iteration. Must be called on the window thread.
	RequestClose()

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was never opened or is already closed
	Close() error

	// ProcessMessages pumps window events until the window closes, calling the update
	// callback once per iteration.
	ProcessMessages()

	// Width returns the drawable width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the drawable height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// hostWindow is the implementation of the Window interface.
type hostWindow struct {
	title string

	// size limits enforced while the user resizes
	minWidth, minHeight int
	maxWidth, maxHeight int

	// width and height track the framebuffer, which differs from the requested size on high-DPI displays
	width, height int

	closeOnEscape bool

	platform *glfwWindow

	onUpdate  func()
	onResize  func(width, height int)
	onScroll  func(delta float32)
	onKeyDown func(keyCode uint32)
	onPointer func(ev PointerEvent)
	onDrop    func(paths []string)
}

var _ Window = &hostWindow{}

// NewWindow opens a window. Defaults: 1280x720, resizable between 320x240 and 3840x2160,
// Escape closes it.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: error if the platform window cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &hostWindow{
		title:         "oxy viewport",
		minWidth:      320,
		minHeight:     240,
		maxWidth:      3840,
		maxHeight:     2160,
		width:         1280,
		height:        720,
		closeOnEscape: true,
	}
	for _, opt := range options {
		opt(w)
	}
	if w.width <= 0 || w.height <= 0 {
		return nil, fmt.Errorf("window: size must be positive, got %dx%d", w.width, w.height)
	}
	if err := openPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	return w, nil
}

func (w *hostWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *hostWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *hostWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *hostWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *hostWindow) SetPointerCallback(callback func(ev PointerEvent)) {
	w.onPointer = callback
}

func (w *hostWindow) SetDropCallback(callback func(paths []string)) {
	w.onDrop = callback
}

func (w *hostWindow) SetTitle(title string) {
	w.title = title
	if w.platform != nil {
		w.platform.window.SetTitle(title)
	}
}

func (w *hostWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.platform == nil {
		return nil
	}
	return w.platform.surfaceDescriptor()
}

func (w *hostWindow) IsRunning() bool {
	return w.platform != nil && w.platform.isRunning()
}

func (w *hostWindow) RequestClose() {
	if w.platform != nil {
		w.platform.requestClose()
	}
}

func (w *hostWindow) Close() error {
	if w.platform == nil {
		return fmt.Errorf("window: not open")
	}
	w.platform.destroy()
	w.platform = nil
	return nil
}

func (w *hostWindow) ProcessMessages() {
	for w.IsRunning() {
		w.platform.pollEvents()
		if !w.IsRunning() {
			break
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
		runtime.Gosched()
	}
}

func (w *hostWindow) Width() int {
	return w.width
}

func (w *hostWindow) Height() int {
	return w.height
}

// resized records a new framebuffer size and forwards it.
func (w *hostWindow) resized(width, height int) {
	w.width, w.height = width, height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

func (w *hostWindow) pointer(ev PointerEvent) {
	if w.onPointer != nil {
		w.onPointer(ev)
	}
}
