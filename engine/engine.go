package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/Carmen-Shannon/oxy-viewport/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewport/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewport/engine/viewport"
	"github.com/Carmen-Shannon/oxy-viewport/engine/window"
)

// windowTitle is the application name shown in the title bar.
const windowTitle = "oxy viewport"

// Drag and intensity step scales for the interactive bindings.
const (
	panPixelScale  = 0.2
	intensityStep  = 0.25
	maxIntensity   = 4
	zoomWheelScale = 1
)

// dragMode is the mouse button currently held over the window.
type dragMode int

const (
	dragNone dragMode = iota
	dragRotate
	dragPan
)

// engine implements the Engine interface.
// Coordinates the window thread and the render thread around one viewport.
type engine struct {
	mu *sync.Mutex

	window          window.Window
	windowOptions   []window.WindowBuilderOption
	viewport        viewport.Viewport
	viewportOptions []viewport.ViewportBuilderOption
	ownsViewport    bool

	profilingInterval time.Duration
	renderFrameLimit  time.Duration
	renderCallback    func(deltaTime float32)
	screenshotDir     string

	bindings     map[uint32]func() error
	pendingTitle string

	drag         dragMode
	lastX, lastY int32

	wg          sync.WaitGroup
	quitChannel chan struct{}
	quitOnce    sync.Once
}

// Engine is the interactive entry point: it opens a window, hosts a viewport on it, and
// turns mouse and keyboard input into camera moves and settings changes.
//
// Default bindings: left drag orbits, middle or right drag pans, the wheel zooms.
// W toggles wireframe, M materials, T textures, A auto-rotate, L cycles the lighting
// preset, R cycles the render mode, = and - change light intensity, C writes a screenshot
// and Escape closes the window. Dropping a .gltf, .glb, .obj or .stl file opens it.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Viewport returns the hosted viewport.
	//
	// Returns:
	//   - viewport.Viewport: the viewport instance
	Viewport() viewport.Viewport

	// Open starts loading an asset into the viewport and shows its name in the title bar.
	//
	// Parameters:
	//   - desc: the asset to show
	//
	// Returns:
	//   - error: error if the viewport rejects the request
	Open(desc loader.AssetDescriptor) error

	// BindKey registers an action for a key press, replacing any existing binding.
	// Action errors are logged and never stop the engine.
	//
	// Parameters:
	//   - keyCode: the key code (see common.Key*)
	//   - action: the function to run on press
	BindKey(keyCode uint32, action func() error)

	// SetRenderCallback registers the function called after each rendered frame.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the render loop and pumps window messages until the window closes.
	// The viewport is disposed and the window closed before Run returns.
	Run()

	// Quit signals the render loop to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates an Engine with the provided options.
// Without WithWindow a window is opened from the window options; without WithViewport a
// viewport presenting through the WebGPU backend is created and initialized at the
// window size.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if the viewport cannot be initialized
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		mu:            &sync.Mutex{},
		quitChannel:   make(chan struct{}),
		screenshotDir: ".",
	}
	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		w, err := window.NewWindow(e.windowOptions...)
		if err != nil {
			return nil, fmt.Errorf("engine: failed to open window: %w", err)
		}
		e.window = w
	}

	if e.viewport == nil {
		opts := []viewport.ViewportBuilderOption{
			viewport.WithRendererBackend(renderer.BackendTypeWGPU, renderer.WithWindow(e.window)),
		}
		if e.profilingInterval > 0 {
			opts = append(opts, viewport.WithProfiler(e.profilingInterval))
		}
		opts = append(opts, e.viewportOptions...)
		vp := viewport.NewViewport(opts...)
		if err := vp.Init(e.window.Width(), e.window.Height()); err != nil {
			return nil, fmt.Errorf("engine: failed to initialize viewport: %w", err)
		}
		e.viewport = vp
		e.ownsViewport = true
	}

	e.bindings = e.defaultBindings()
	e.bindWindow()
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Viewport() viewport.Viewport {
	return e.viewport
}

func (e *engine) Open(desc loader.AssetDescriptor) error {
	if err := e.viewport.SetAsset(desc); err != nil {
		return err
	}
	e.mu.Lock()
	e.pendingTitle = desc.Name() + " - " + windowTitle
	e.mu.Unlock()
	return nil
}

func (e *engine) BindKey(keyCode uint32, action func() error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bindings[keyCode] = action
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}

func (e *engine) Run() {
	e.wg.Add(1)
	go e.handleRender()

	e.window.ProcessMessages()

	e.signalQuit()
	e.wg.Wait()
	if e.ownsViewport {
		e.viewport.Dispose()
	}
	if err := e.window.Close(); err != nil {
		common.Logger().Warn("[Engine] failed to close window", "error", err)
	}
}

// Quit signals the render loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal the render goroutine to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Frame errors are logged and the loop keeps going; a panic stops the engine.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("[Engine] render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(lastRender).Seconds())
		lastRender = now

		if err := e.viewport.Frame(dt); err != nil {
			common.Logger().Warn("[Engine] frame failed", "error", err)
		}

		e.mu.Lock()
		callback, limit := e.renderCallback, e.renderFrameLimit
		e.mu.Unlock()

		if callback != nil {
			callback(dt)
		}
		if limit > 0 {
			if remaining := limit - time.Since(lastRender); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}
