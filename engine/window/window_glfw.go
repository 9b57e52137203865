package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow is the GLFW side of a hostWindow.
type glfwWindow struct {
	host    *hostWindow
	window  *glfw.Window
	running bool
}

// openPlatformWindow creates the GLFW window, wires its callbacks to w and records the
// actual framebuffer size. GLFW requires every later call on the same OS thread.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
func openPlatformWindow(w *hostWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// the renderer talks WebGPU, so no OpenGL context
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.SetSizeLimits(limit(w.minWidth), limit(w.minHeight), limit(w.maxWidth), limit(w.maxHeight))

	gw := &glfwWindow{host: w, window: win, running: true}
	gw.bind()
	w.platform = gw

	w.width, w.height = win.GetFramebufferSize()
	return nil
}

// limit maps an unset size bound to GLFW's "don't care".
func limit(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}

func (gw *glfwWindow) bind() {
	w, win := gw.host, gw.window

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Release {
			return
		}
		if key == glfw.KeyEscape && w.closeOnEscape {
			gw.requestClose()
			return
		}
		if w.onKeyDown != nil {
			w.onKeyDown(uint32(key))
		}
	})

	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(float32(yoff))
		}
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		var b Button
		switch button {
		case glfw.MouseButtonLeft:
			b = ButtonPrimary
		case glfw.MouseButtonMiddle, glfw.MouseButtonRight:
			b = ButtonSecondary
		default:
			return
		}
		ev := PointerEvent{Button: b}
		switch action {
		case glfw.Press:
			ev.Action = PointerPress
		case glfw.Release:
			ev.Action = PointerRelease
		default:
			return
		}
		ev.X, ev.Y = gw.cursor()
		w.pointer(ev)
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, _, _ float64) {
		x, y := gw.cursor()
		w.pointer(PointerEvent{Action: PointerMove, X: x, Y: y})
	})

	win.SetDropCallback(func(_ *glfw.Window, names []string) {
		if w.onDrop != nil && len(names) > 0 {
			w.onDrop(names)
		}
	})

	// framebuffer size, not window size: the surface is configured in pixels
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized(width, height)
	})
}

// cursor returns the cursor position scaled from screen coordinates to framebuffer
// pixels, so drags move the same distance on high-DPI displays.
func (gw *glfwWindow) cursor() (int32, int32) {
	x, y := gw.window.GetCursorPos()
	ww, wh := gw.window.GetSize()
	fw, fh := gw.window.GetFramebufferSize()
	if ww > 0 && wh > 0 {
		x *= float64(fw) / float64(ww)
		y *= float64(fh) / float64(wh)
	}
	return int32(x), int32(y)
}

// surfaceDescriptor builds a platform surface descriptor through the wgpuglfw bridge.
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func (gw *glfwWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

func (gw *glfwWindow) isRunning() bool {
	return gw.running && !gw.window.ShouldClose()
}

func (gw *glfwWindow) requestClose() {
	gw.running = false
	gw.window.SetShouldClose(true)
}

func (gw *glfwWindow) pollEvents() {
	glfw.PollEvents()
}

// destroy closes the window and shuts GLFW down.
func (gw *glfwWindow) destroy() {
	gw.requestClose()
	gw.window.Destroy()
	glfw.Terminate()
}
