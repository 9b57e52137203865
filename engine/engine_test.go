package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/Carmen-Shannon/oxy-viewport/engine/lighting"
	"github.com/Carmen-Shannon/oxy-viewport/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewport/engine/viewport"
	"github.com/Carmen-Shannon/oxy-viewport/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWindow records callbacks so tests can replay input without a display.
type fakeWindow struct {
	width, height int
	running       bool

	title         string
	onUpdate      func()
	onResize      func(width, height int)
	onScroll      func(delta float32)
	onKeyDown     func(keyCode uint32)
	onPointer     func(ev window.PointerEvent)
	onDrop        func(paths []string)
	closeRequests int
}

var _ window.Window = &fakeWindow{}

func (f *fakeWindow) SetUpdateCallback(cb func())                        { f.onUpdate = cb }
func (f *fakeWindow) SetResizeCallback(cb func(width, height int))       { f.onResize = cb }
func (f *fakeWindow) SetScrollCallback(cb func(delta float32))           { f.onScroll = cb }
func (f *fakeWindow) SetKeyDownCallback(cb func(keyCode uint32))         { f.onKeyDown = cb }
func (f *fakeWindow) SetPointerCallback(cb func(ev window.PointerEvent)) { f.onPointer = cb }
func (f *fakeWindow) SetDropCallback(cb func(paths []string))            { f.onDrop = cb }
func (f *fakeWindow) SetTitle(title string)                              { f.title = title }
func (f *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor         { return nil }
func (f *fakeWindow) IsRunning() bool                                    { return f.running }
func (f *fakeWindow) RequestClose()                                      { f.running = false; f.closeRequests++ }
func (f *fakeWindow) Close() error                                       { f.running = false; return nil }
func (f *fakeWindow) Width() int                                         { return f.width }
func (f *fakeWindow) Height() int                                        { return f.height }

// drag replays a press, a move and a release with button b.
func (f *fakeWindow) drag(b window.Button, x0, y0, x1, y1 int32) {
	f.onPointer(window.PointerEvent{Action: window.PointerPress, Button: b, X: x0, Y: y0})
	f.onPointer(window.PointerEvent{Action: window.PointerMove, X: x1, Y: y1})
	f.onPointer(window.PointerEvent{Action: window.PointerRelease, Button: b, X: x1, Y: y1})
}

// ProcessMessages runs a single iteration so Run returns promptly in tests.
func (f *fakeWindow) ProcessMessages() {
	if f.onUpdate != nil {
		f.onUpdate()
	}
}

func newTestEngine(t *testing.T, options ...EngineBuilderOption) (Engine, *fakeWindow) {
	t.Helper()
	fw := &fakeWindow{width: 64, height: 48, running: true}
	vp := viewport.NewViewport(viewport.WithOverlay(false))
	require.NoError(t, vp.Init(fw.width, fw.height))
	t.Cleanup(vp.Dispose)

	e, err := NewEngine(append([]EngineBuilderOption{WithWindow(fw), WithViewport(vp)}, options...)...)
	require.NoError(t, err)
	return e, fw
}

func TestEngine_ToggleHotkeys(t *testing.T) {
	e, fw := newTestEngine(t)
	vp := e.Viewport()

	fw.onKeyDown(common.KeyW)
	fw.onKeyDown(common.KeyM)
	fw.onKeyDown(common.KeyT)
	fw.onKeyDown(common.KeyA)

	s := vp.Settings()
	assert.True(t, s.ShowWireframe)
	assert.False(t, s.ShowMaterials)
	assert.False(t, s.ShowTextures)
	assert.True(t, s.AutoRotate)
	assert.True(t, vp.Controls().AutoRotate())

	fw.onKeyDown(common.KeyW)
	assert.False(t, vp.Settings().ShowWireframe)
}

func TestEngine_CycleHotkeys(t *testing.T) {
	e, fw := newTestEngine(t)
	vp := e.Viewport()

	fw.onKeyDown(common.KeyL)
	assert.Equal(t, lighting.ModeStudio, vp.Settings().LightingMode)
	for range 3 {
		fw.onKeyDown(common.KeyL)
	}
	assert.Equal(t, lighting.ModeStandard, vp.Settings().LightingMode, "lighting cycle wraps")

	fw.onKeyDown(common.KeyR)
	assert.Equal(t, renderer.RenderModeWireframe, vp.Settings().RenderMode)
	fw.onKeyDown(common.KeyR)
	fw.onKeyDown(common.KeyR)
	assert.Equal(t, renderer.RenderModeSolid, vp.Settings().RenderMode)
}

func TestEngine_IntensityHotkeysClamp(t *testing.T) {
	e, fw := newTestEngine(t)
	vp := e.Viewport()

	fw.onKeyDown(common.KeyEqual)
	assert.InDelta(t, 1.25, vp.Settings().LightingIntensity, 1e-6)

	for range 10 {
		fw.onKeyDown(common.KeyMinus)
	}
	assert.Zero(t, vp.Settings().LightingIntensity)

	for range 40 {
		fw.onKeyDown(common.KeyEqual)
	}
	assert.InDelta(t, maxIntensity, vp.Settings().LightingIntensity, 1e-6)
}

func TestEngine_MouseControls(t *testing.T) {
	e, fw := newTestEngine(t)
	vp := e.Viewport()
	c := vp.Controls()

	radius := c.Radius()
	fw.onScroll(3)
	assert.Less(t, c.Radius(), radius, "scrolling up zooms in")

	azimuth := c.Azimuth()
	fw.drag(window.ButtonPrimary, 10, 10, 40, 10)
	require.NoError(t, vp.Frame(1.0/60))
	assert.NotEqual(t, azimuth, c.Azimuth(), "left drag orbits")

	target := c.Target()
	fw.drag(window.ButtonSecondary, 0, 0, 20, 0)
	assert.NotEqual(t, target, c.Target(), "secondary drag pans")

	// moves without a held button do nothing
	target = c.Target()
	fw.onPointer(window.PointerEvent{Action: window.PointerMove, X: 100, Y: 100})
	assert.Equal(t, target, c.Target())
}

func TestEngine_DropOpensSupportedFile(t *testing.T) {
	e, fw := newTestEngine(t)
	vp := e.Viewport()

	dir := t.TempDir()
	model := filepath.Join(dir, "tri.obj")
	require.NoError(t, os.WriteFile(model, []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0o644))

	fw.onDrop([]string{filepath.Join(dir, "notes.txt"), model})
	require.Eventually(t, func() bool {
		require.NoError(t, vp.Frame(1.0/60))
		return vp.Status().Kind == viewport.StatusReady
	}, 2*time.Second, 5*time.Millisecond)
	require.NotNil(t, vp.Scene().Model())

	fw.onUpdate()
	assert.Equal(t, "tri.obj - oxy viewport", fw.title, "the title follows the opened asset")
}

func TestEngine_ResizeForwardsToViewport(t *testing.T) {
	e, fw := newTestEngine(t)

	fw.onResize(128, 32)
	w, h := e.Viewport().Size()
	assert.Equal(t, 128, w)
	assert.Equal(t, 32, h)

	fw.onResize(0, 0)
	w, h = e.Viewport().Size()
	assert.Equal(t, 128, w, "minimized windows keep the last size")
	assert.Equal(t, 32, h)
}

func TestEngine_ScreenshotHotkey(t *testing.T) {
	dir := t.TempDir()
	_, fw := newTestEngine(t, WithScreenshotDir(dir))

	fw.onKeyDown(common.KeyC)

	_, err := os.Stat(filepath.Join(dir, "viewport_screenshot.png"))
	assert.NoError(t, err)
}

func TestEngine_BindKey(t *testing.T) {
	e, fw := newTestEngine(t)

	calls := 0
	e.BindKey(common.KeyW, func() error {
		calls++
		return errors.New("boom")
	})

	fw.onKeyDown(common.KeyW)
	fw.onKeyDown(999)
	assert.Equal(t, 1, calls)
	assert.False(t, e.Viewport().Settings().ShowWireframe, "rebinding replaces the default action")
}

func TestEngine_QuitClosesWindow(t *testing.T) {
	e, fw := newTestEngine(t)

	fw.onUpdate()
	assert.Zero(t, fw.closeRequests)

	e.Quit()
	e.Quit()
	fw.onUpdate()
	assert.Equal(t, 1, fw.closeRequests)
	assert.False(t, fw.IsRunning())
}

func TestEngine_RunReturnsAfterWindowLoop(t *testing.T) {
	e, fw := newTestEngine(t)

	e.SetRenderCallback(func(float32) {})
	e.SetRenderFrameLimit(120)
	e.Run()

	assert.False(t, fw.IsRunning())
	assert.NotPanics(t, func() { e.Viewport().Status() }, "a caller-owned viewport survives Run")
}
