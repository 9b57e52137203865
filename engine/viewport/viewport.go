// Package viewport hosts the 3D asset viewport: it owns the render surface, drives the
// frame loop, and orchestrates load, normalize, display, attach and framing whenever the
// caller supplies a new asset or new settings.
package viewport

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/Carmen-Shannon/oxy-viewport/engine/bounds"
	"github.com/Carmen-Shannon/oxy-viewport/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewport/engine/display"
	"github.com/Carmen-Shannon/oxy-viewport/engine/lighting"
	"github.com/Carmen-Shannon/oxy-viewport/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewport/engine/overlay"
	"github.com/Carmen-Shannon/oxy-viewport/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewport/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewport/engine/scene"
)

// phase is the surface lifecycle: Uninitialized, then Ready or Failed, then Disposed.
type phase int

const (
	phaseUninitialized phase = iota
	phaseReady
	phaseFailed
	phaseDisposed
)

// pendingLoad is the single authoritative in-flight load.
type pendingLoad struct {
	gen   uint64
	desc  loader.AssetDescriptor
	token *loader.CancelToken
}

// loadResult is a finished load waiting for the frame loop to attach or discard it.
type loadResult struct {
	gen  uint64
	desc loader.AssetDescriptor
	node *scene.Node
	err  error
}

// state is the scene state owned by the host. It is only touched with viewport.mu held.
type state struct {
	phase   phase
	initErr *InitializationError

	width, height int

	scene    scene.Scene
	camera   camera.Camera
	controls camera.CameraController
	renderer renderer.Renderer

	settings       ViewerSettings
	lightMode      lighting.Mode
	lightIntensity float32
	lightsBuilt    bool

	requested loader.AssetDescriptor
	current   loader.AssetDescriptor
	pending   *pendingLoad

	lastFrame *image.RGBA
	lastStats renderer.FrameStats
}

// viewport is the implementation of the Viewport interface.
type viewport struct {
	mu       *sync.Mutex
	st       state
	disposed atomic.Bool

	loader          loader.Loader
	ownsLoader      bool
	tracker         *common.ResourceTracker
	backendType     renderer.RendererBackendType
	rendererOptions []renderer.RendererBuilderOption
	overlay         overlay.Overlay
	overlayEnabled  bool
	profiler        *profiler.Profiler
	tickRate        time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	loads  sync.WaitGroup

	queueMu *sync.Mutex
	queue   []loadResult
	closed  bool

	statusMu    *sync.Mutex
	status      Status
	gen         uint64
	subscribers map[int]chan Status
	nextSub     int
}

// Viewport is the host of one render surface and the model shown on it.
//
// All scene mutation happens on the caller's thread: in Init, SetSettings, Resize and in
// Frame, which also attaches the results of background loads. Loads never block Frame;
// the previous model keeps rendering until the new one is attached.
//
// Every method panics once Dispose has been called.
type Viewport interface {
	// Init creates the render surface, camera, scene and the initial light set.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: an *InitializationError if the surface cannot be created
	Init(width, height int) error

	// SetAsset starts loading desc, superseding any load still in flight. The superseded
	// load is cancelled and its result is disposed without ever being attached.
	// Unsupported formats fail immediately without a Loading status.
	//
	// Parameters:
	//   - desc: the asset to show
	//
	// Returns:
	//   - error: ErrNotReady before Init
	SetAsset(desc loader.AssetDescriptor) error

	// SetSettings applies new display settings to the attached model. Equal settings are
	// ignored. Lights are rebuilt only when the lighting mode or intensity changes.
	// A load in flight picks the settings up when it attaches.
	//
	// Parameters:
	//   - s: the new settings
	//
	// Returns:
	//   - error: error if s fails validation
	SetSettings(s ViewerSettings) error

	// Settings returns the active settings.
	//
	// Returns:
	//   - ViewerSettings: the settings
	Settings() ViewerSettings

	// Resize updates the surface size and the camera aspect in one step.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: ErrNotReady before Init, or error if the size is not positive
	Resize(width, height int) error

	// Size returns the surface size.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (int, int)

	// Frame attaches finished loads, advances the camera controls and renders one frame.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	//
	// Returns:
	//   - error: ErrNotReady before Init, or error if rendering or presenting fails
	Frame(deltaTime float32) error

	// Run calls Frame at the configured tick rate until ctx is done or the viewport is disposed.
	//
	// Parameters:
	//   - ctx: stops the loop when cancelled
	//
	// Returns:
	//   - error: the first Frame error, or nil when ctx is done or the viewport is disposed
	Run(ctx context.Context) error

	// Capture encodes the most recent frame as PNG. If no frame has been rendered yet
	// one is rendered first.
	//
	// Returns:
	//   - []byte: the PNG bytes
	//   - error: a *CaptureError if the surface is not ready or encoding fails
	Capture() ([]byte, error)

	// CaptureWith renders a fresh frame with the given options and encodes it as PNG.
	//
	// Parameters:
	//   - opts: size and transparency of the capture
	//
	// Returns:
	//   - []byte: the PNG bytes
	//   - error: a *CaptureError if the surface is not ready or encoding fails
	CaptureWith(opts CaptureOptions) ([]byte, error)

	// CaptureFile writes Capture's PNG to dir as "<name>_screenshot.png", where name is
	// the display name of the attached asset.
	//
	// Parameters:
	//   - dir: the directory to write into
	//
	// Returns:
	//   - string: the written path
	//   - error: a *CaptureError, or error if the file cannot be written
	CaptureFile(dir string) (string, error)

	// Status returns the current status.
	//
	// Returns:
	//   - Status: the status
	Status() Status

	// Subscribe returns a channel that receives the current status and every later
	// change. Slow subscribers miss intermediate values rather than stalling loads.
	// The channel is closed by the returned cancel func or by Dispose.
	//
	// Returns:
	//   - <-chan Status: the status stream
	//   - func(): unsubscribes and closes the channel
	Subscribe() (<-chan Status, func())

	// Scene returns the scene, or nil before Init.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// Controls returns the orbit controller, or nil before Init.
	//
	// Returns:
	//   - camera.CameraController: the controller
	Controls() camera.CameraController

	// Tracker returns the tracker counting live geometry and textures.
	//
	// Returns:
	//   - *common.ResourceTracker: the tracker
	Tracker() *common.ResourceTracker

	// Dispose cancels any load, releases the model, lights and surface, stops the
	// default loader's workers and closes every subscription. The viewport cannot be
	// used afterwards.
	Dispose()
}

var _ Viewport = &viewport{}

// NewViewport creates an Uninitialized viewport. Call Init before anything else.
//
// Parameters:
//   - options: variadic list of ViewportBuilderOption functions to configure the viewport
//
// Returns:
//   - Viewport: the viewport
func NewViewport(options ...ViewportBuilderOption) Viewport {
	v := &viewport{
		mu:             &sync.Mutex{},
		queueMu:        &sync.Mutex{},
		statusMu:       &sync.Mutex{},
		backendType:    renderer.BackendTypeHeadless,
		overlayEnabled: true,
		tickRate:       time.Second / 60,
		status:         Idle(),
		subscribers:    make(map[int]chan Status),
	}
	v.st.settings = DefaultSettings()
	for _, opt := range options {
		opt(v)
	}
	if v.tracker == nil {
		v.tracker = common.NewResourceTracker()
	}
	if v.loader == nil {
		v.loader = loader.NewLoader(loader.WithTracker(v.tracker))
		v.ownsLoader = true
	}
	v.ctx, v.cancel = context.WithCancel(context.Background())
	return v
}

// failInit moves the viewport to its terminal Failed phase. Caller must hold v.mu.
func (v *viewport) failInit(width, height int, err error) error {
	ie := &InitializationError{Width: width, Height: height, Err: err}
	v.st.phase = phaseFailed
	v.st.initErr = ie
	common.Logger().Error("[Viewport] initialization failed", "width", width, "height", height, "error", err)
	return ie
}

// mustLive panics once the viewport is disposed.
func (v *viewport) mustLive(op string) {
	if v.disposed.Load() {
		panic(fmt.Sprintf("viewport: %s called after Dispose", op))
	}
}

func (v *viewport) Init(width, height int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mustLive("Init")

	switch v.st.phase {
	case phaseUninitialized:
	case phaseFailed:
		return fmt.Errorf("viewport: initialization already failed: %w", v.st.initErr)
	default:
		return fmt.Errorf("viewport: already initialized")
	}
	if width <= 0 || height <= 0 {
		return v.failInit(width, height, fmt.Errorf("surface size must be positive"))
	}

	r, err := renderer.NewRenderer(v.backendType, v.rendererOptions...)
	if err != nil {
		return v.failInit(width, height, err)
	}
	if err := r.Resize(width, height); err != nil {
		r.Dispose()
		return v.failInit(width, height, err)
	}

	s := v.st.settings
	controls := camera.NewCameraController(camera.WithAutoRotate(s.AutoRotate, 2))
	cam := camera.NewCamera(
		camera.WithAspect(float32(width)/float32(height)),
		camera.WithController(controls),
	)
	cam.Update()

	v.st.renderer = r
	v.st.camera = cam
	v.st.controls = controls
	v.st.scene = scene.NewScene(cam, scene.WithBackground(s.BackgroundColor))
	v.st.width, v.st.height = width, height

	if err := v.composeLights(); err != nil {
		r.Dispose()
		v.st = state{settings: s}
		return v.failInit(width, height, err)
	}

	if v.overlayEnabled && v.overlay == nil {
		o, err := overlay.NewOverlay()
		if err != nil {
			common.Logger().Warn("[Viewport] status overlay disabled", "error", err)
		} else {
			v.overlay = o
		}
	}

	v.st.phase = phaseReady
	common.Logger().Info("[Viewport] initialized", "width", width, "height", height)
	return nil
}

func (v *viewport) SetAsset(desc loader.AssetDescriptor) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mustLive("SetAsset")

	if v.st.phase != phaseReady {
		return ErrNotReady
	}

	if p := v.st.pending; p != nil {
		p.token.Cancel()
		v.st.pending = nil
		common.Logger().Debug("[Viewport] superseded load", "asset", p.desc.Name())
	}
	gen := v.nextGeneration()
	v.st.requested = desc

	if err := v.loader.Validate(desc); err != nil {
		common.Logger().Warn("[Viewport] rejected asset", "asset", desc.Name(), "error", err)
		v.publish(gen, Failed(err))
		return nil
	}

	token := loader.NewCancelToken()
	v.st.pending = &pendingLoad{gen: gen, desc: desc, token: token}
	v.publish(gen, LoadingIndeterminate())

	v.loads.Add(1)
	go v.runLoad(gen, desc, token)
	return nil
}

// runLoad performs one load off the frame loop and queues its result.
// A panicking loader fails the load with a ParseFailure instead of taking down the host.
func (v *viewport) runLoad(gen uint64, desc loader.AssetDescriptor, token *loader.CancelToken) {
	defer v.loads.Done()
	var (
		node *scene.Node
		err  error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				common.Logger().Error("[Viewport] loader panicked", "asset", desc.Name(), "panic", r)
				node = nil
				err = &loader.LoadError{Kind: loader.ParseFailure, Message: "loader panicked on " + desc.Name(), Err: fmt.Errorf("%v", r)}
			}
		}()
		node, err = v.loader.Load(v.ctx, desc, func(p float64) {
			v.publish(gen, Loading(p))
		}, token)
	}()
	v.enqueue(loadResult{gen: gen, desc: desc, node: node, err: err})
}

// enqueue hands a finished load to the frame loop, or disposes it when the viewport is gone.
func (v *viewport) enqueue(res loadResult) {
	v.queueMu.Lock()
	if !v.closed {
		v.queue = append(v.queue, res)
		v.queueMu.Unlock()
		return
	}
	v.queueMu.Unlock()
	disposeLogged(res.node)
}

// drain attaches or discards every queued load result. Caller must hold v.mu.
func (v *viewport) drain() {
	v.queueMu.Lock()
	results := v.queue
	v.queue = nil
	v.queueMu.Unlock()

	for _, res := range results {
		v.finishLoad(res)
	}
}

// finishLoad completes the authoritative load and discards stale ones. Caller must hold v.mu.
func (v *viewport) finishLoad(res loadResult) {
	p := v.st.pending
	if p == nil || p.gen != res.gen {
		if res.node != nil {
			common.Logger().Debug("[Viewport] discarding stale load", "asset", res.desc.Name())
		}
		disposeLogged(res.node)
		return
	}
	v.st.pending = nil

	if res.err != nil {
		if errors.Is(res.err, loader.ErrCancelled) {
			return
		}
		common.Logger().Warn("[Viewport] load failed", "asset", res.desc.Name(), "error", res.err)
		v.publish(res.gen, Failed(res.err))
		return
	}

	if err := v.attach(res.node); err != nil {
		disposeLogged(res.node)
		common.Logger().Warn("[Viewport] failed to attach model", "asset", res.desc.Name(), "error", err)
		v.publish(res.gen, Failed(err))
		return
	}
	v.st.current = res.desc
	v.publish(res.gen, Ready())
}

// attach normalizes node, applies the display settings, swaps it in for the previous
// model and frames the camera on it. Nothing is attached when preparation fails.
// Caller must hold v.mu.
func (v *viewport) attach(node *scene.Node) error {
	if node == nil {
		return fmt.Errorf("viewport: loader returned no model")
	}
	box, err := v.prepare(node)
	if err != nil {
		return err
	}
	if err := v.st.scene.ReplaceModel(node); err != nil {
		common.Logger().Warn("[Viewport] previous model released with errors", "error", err)
	}
	camera.Frame(v.st.camera, box)
	return nil
}

// prepare runs the pre-attach pipeline on a detached node.
func (v *viewport) prepare(node *scene.Node) (box common.Box3, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("viewport: failed to prepare model: %v", r)
		}
	}()
	bounds.Normalize(node)
	display.EnableShadows(node)
	display.Apply(node, v.st.settings.displayOptions())
	return bounds.ComputeBox(node), nil
}

func (v *viewport) SetSettings(s ViewerSettings) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mustLive("SetSettings")

	if err := s.Validate(); err != nil {
		return fmt.Errorf("viewport: invalid settings: %w", err)
	}
	prev := v.st.settings
	if prev == s {
		return nil
	}
	v.st.settings = s
	if v.st.phase != phaseReady {
		return nil
	}

	if prev.displayOptions() != s.displayOptions() {
		if model := v.st.scene.Model(); model != nil {
			display.Apply(model, s.displayOptions())
		}
	}
	if prev.BackgroundColor != s.BackgroundColor {
		v.st.scene.SetBackground(s.BackgroundColor)
	}
	if prev.AutoRotate != s.AutoRotate {
		v.st.controls.SetAutoRotate(s.AutoRotate)
	}
	return v.composeLights()
}

// composeLights rebuilds the light set when the mode or intensity differs from the
// built one. Caller must hold v.mu.
func (v *viewport) composeLights() error {
	s := v.st.settings
	if v.st.lightsBuilt && v.st.lightMode == s.LightingMode && v.st.lightIntensity == s.LightingIntensity {
		return nil
	}
	if err := lighting.Compose(v.st.scene, s.LightingMode, s.LightingIntensity); err != nil {
		return fmt.Errorf("viewport: failed to compose lights: %w", err)
	}
	v.st.lightMode = s.LightingMode
	v.st.lightIntensity = s.LightingIntensity
	v.st.lightsBuilt = true
	return nil
}

func (v *viewport) Settings() ViewerSettings {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mustLive("Settings")
	return v.st.settings
}

func (v *viewport) Resize(width, height int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mustLive("Resize")

	if v.st.phase != phaseReady {
		return ErrNotReady
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("viewport: invalid size %dx%d", width, height)
	}
	if err := v.st.renderer.Resize(width, height); err != nil {
		return fmt.Errorf("viewport: resize failed: %w", err)
	}
	v.st.camera.SetAspect(float32(width) / float32(height))
	v.st.width, v.st.height = width, height
	v.st.lastFrame = nil
	return nil
}

func (v *viewport) Size() (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mustLive("Size")
	return v.st.width, v.st.height
}

func (v *viewport) Frame(deltaTime float32) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mustLive("Frame")
	return v.frame(deltaTime)
}

// frame renders one frame. Caller must hold v.mu.
func (v *viewport) frame(deltaTime float32) error {
	if v.st.phase != phaseReady {
		return ErrNotReady
	}
	start := time.Now()

	v.drain()
	v.st.controls.Update(deltaTime)
	v.st.camera.Update()

	frame, stats, err := v.st.renderer.Render(v.st.scene.Snapshot(), v.renderOptions(false))
	if err != nil {
		return fmt.Errorf("viewport: render failed: %w", err)
	}
	v.st.lastFrame = frame
	v.st.lastStats = stats

	present := frame
	if hud := v.hud(); hud.Kind != overlay.HUDNone && v.overlay != nil {
		present = cloneRGBA(frame)
		if err := v.overlay.Draw(present, hud); err != nil {
			common.Logger().Warn("[Viewport] failed to draw status overlay", "error", err)
		}
	}
	if err := v.st.renderer.Present(present); err != nil {
		return fmt.Errorf("viewport: present failed: %w", err)
	}

	if v.profiler != nil {
		v.profiler.Tick(time.Since(start), stats.Triangles, stats.Meshes, stats.Culled)
	}
	return nil
}

func (v *viewport) renderOptions(transparent bool) renderer.RenderOptions {
	return renderer.RenderOptions{
		Mode:        v.st.settings.RenderMode,
		Transparent: transparent,
	}
}

// hud maps the current status to an overlay panel.
func (v *viewport) hud() overlay.HUD {
	s := v.Status()
	name := v.st.requested.Name()
	switch s.Kind {
	case StatusLoading:
		progress := -1.0
		if s.HasProgress {
			progress = s.Progress
		}
		return overlay.HUD{Kind: overlay.HUDProgress, Label: "Loading " + name, Progress: progress}
	case StatusFailed:
		label := "Failed to load " + name
		if s.Err != nil {
			label = s.Err.Error()
		}
		return overlay.HUD{Kind: overlay.HUDError, Label: label}
	default:
		return overlay.HUD{}
	}
}

func (v *viewport) Run(ctx context.Context) error {
	v.mustLive("Run")

	ticker := time.NewTicker(v.tickRate)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-v.ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := float32(now.Sub(last).Seconds())
			last = now

			v.mu.Lock()
			if v.disposed.Load() {
				v.mu.Unlock()
				return nil
			}
			err := v.frame(dt)
			v.mu.Unlock()
			if err != nil {
				return err
			}
		}
	}
}

func (v *viewport) Status() Status {
	v.mustLive("Status")
	v.statusMu.Lock()
	defer v.statusMu.Unlock()
	return v.status
}

func (v *viewport) Subscribe() (<-chan Status, func()) {
	v.mustLive("Subscribe")
	v.statusMu.Lock()
	defer v.statusMu.Unlock()

	ch := make(chan Status, 64)
	id := v.nextSub
	v.nextSub++
	v.subscribers[id] = ch
	ch <- v.status

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.statusMu.Lock()
			defer v.statusMu.Unlock()
			if c, ok := v.subscribers[id]; ok {
				delete(v.subscribers, id)
				close(c)
			}
		})
	}
}

// nextGeneration starts a new request generation. Status updates from older
// generations are dropped from then on.
func (v *viewport) nextGeneration() uint64 {
	v.statusMu.Lock()
	defer v.statusMu.Unlock()
	v.gen++
	return v.gen
}

// publish sets the status if gen is still the current request generation.
func (v *viewport) publish(gen uint64, s Status) {
	v.statusMu.Lock()
	defer v.statusMu.Unlock()
	if gen != v.gen {
		return
	}
	v.status = s
	for _, ch := range v.subscribers {
		select {
		case ch <- s:
		default:
			common.Logger().Debug("[Viewport] dropped status for slow subscriber", "status", s.String())
		}
	}
}

func (v *viewport) Scene() scene.Scene {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mustLive("Scene")
	return v.st.scene
}

func (v *viewport) Controls() camera.CameraController {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mustLive("Controls")
	return v.st.controls
}

func (v *viewport) Tracker() *common.ResourceTracker {
	v.mustLive("Tracker")
	return v.tracker
}

func (v *viewport) Dispose() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mustLive("Dispose")
	v.disposed.Store(true)

	if p := v.st.pending; p != nil {
		p.token.Cancel()
		v.st.pending = nil
	}
	v.cancel()
	v.loads.Wait()
	if v.ownsLoader {
		v.loader.Close()
	}

	v.queueMu.Lock()
	v.closed = true
	results := v.queue
	v.queue = nil
	v.queueMu.Unlock()
	for _, res := range results {
		disposeLogged(res.node)
	}

	if v.st.scene != nil {
		if err := v.st.scene.Dispose(); err != nil {
			common.Logger().Warn("[Viewport] scene released with errors", "error", err)
		}
	}
	if v.st.renderer != nil {
		v.st.renderer.Dispose()
	}
	if v.overlay != nil {
		v.overlay.Close()
	}
	v.st.phase = phaseDisposed
	v.st.lastFrame = nil

	v.statusMu.Lock()
	v.gen++
	for id, ch := range v.subscribers {
		delete(v.subscribers, id)
		close(ch)
	}
	v.statusMu.Unlock()

	common.Logger().Info("[Viewport] disposed", "live_resources", v.tracker.Live())
}

// disposeLogged releases a node that will never be attached.
func disposeLogged(n *scene.Node) {
	if n == nil {
		return
	}
	if err := n.Dispose(); err != nil {
		common.Logger().Warn("[Viewport] failed to dispose discarded model", "node", n.Name, "error", err)
	}
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
