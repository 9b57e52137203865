package engine

import (
	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/Carmen-Shannon/oxy-viewport/engine/lighting"
	"github.com/Carmen-Shannon/oxy-viewport/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewport/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewport/engine/viewport"
	"github.com/Carmen-Shannon/oxy-viewport/engine/window"
)

// lightingCycle is the order L steps through.
var lightingCycle = []lighting.Mode{
	lighting.ModeStandard,
	lighting.ModeStudio,
	lighting.ModeBright,
	lighting.ModeDramatic,
}

// renderModeCycle is the order R steps through.
var renderModeCycle = []renderer.RenderMode{
	renderer.RenderModeSolid,
	renderer.RenderModeWireframe,
	renderer.RenderModePoints,
}

// bindWindow routes window callbacks to the viewport. Callbacks run on the window
// thread; the viewport and the camera controller serialize against the render thread.
func (e *engine) bindWindow() {
	w := e.window

	w.SetUpdateCallback(func() {
		select {
		case <-e.quitChannel:
			w.RequestClose()
			return
		default:
		}
		if title := e.takeTitle(); title != "" {
			w.SetTitle(title)
		}
	})

	w.SetResizeCallback(func(width, height int) {
		if width <= 0 || height <= 0 {
			// minimized
			return
		}
		if err := e.viewport.Resize(width, height); err != nil {
			common.Logger().Warn("[Engine] resize failed", "width", width, "height", height, "error", err)
		}
	})

	w.SetScrollCallback(func(delta float32) {
		if c := e.viewport.Controls(); c != nil {
			c.Zoom(delta * zoomWheelScale)
		}
	})

	w.SetKeyDownCallback(e.handleKey)
	w.SetPointerCallback(e.handlePointer)
	w.SetDropCallback(e.handleDrop)
}

// handlePointer turns primary drags into orbits and secondary drags into pans.
func (e *engine) handlePointer(ev window.PointerEvent) {
	mode := dragRotate
	if ev.Button == window.ButtonSecondary {
		mode = dragPan
	}
	switch ev.Action {
	case window.PointerPress:
		e.beginDrag(mode, ev.X, ev.Y)
	case window.PointerRelease:
		e.endDrag(mode)
	case window.PointerMove:
		e.handleMouseMove(ev.X, ev.Y)
	}
}

// handleDrop opens the first dropped file the loader can read.
func (e *engine) handleDrop(paths []string) {
	for _, p := range paths {
		if !loader.IsSupported(p) {
			common.Logger().Debug("[Engine] ignoring dropped file", "path", p)
			continue
		}
		if err := e.Open(loader.AssetDescriptor{SourceLocator: p}); err != nil {
			common.Logger().Warn("[Engine] failed to open dropped file", "path", p, "error", err)
		}
		return
	}
}

// takeTitle returns the title queued by Open, once.
func (e *engine) takeTitle() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.pendingTitle
	e.pendingTitle = ""
	return t
}

func (e *engine) beginDrag(mode dragMode, x, y int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drag = mode
	e.lastX, e.lastY = x, y
}

func (e *engine) endDrag(mode dragMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.drag == mode {
		e.drag = dragNone
	}
}

func (e *engine) handleMouseMove(x, y int32) {
	e.mu.Lock()
	mode := e.drag
	dx, dy := float32(x-e.lastX), float32(y-e.lastY)
	e.lastX, e.lastY = x, y
	e.mu.Unlock()

	c := e.viewport.Controls()
	if c == nil {
		return
	}
	switch mode {
	case dragRotate:
		c.Rotate(dx, dy)
	case dragPan:
		c.PanRight(-dx * panPixelScale)
		c.PanUp(dy * panPixelScale)
	}
}

// handleKey runs the action bound to keyCode, if any.
func (e *engine) handleKey(keyCode uint32) {
	e.mu.Lock()
	action, ok := e.bindings[keyCode]
	e.mu.Unlock()
	if !ok {
		return
	}
	if err := action(); err != nil {
		common.Logger().Warn("[Engine] key action failed", "key", keyCode, "error", err)
	}
}

// defaultBindings returns the viewer hotkeys.
func (e *engine) defaultBindings() map[uint32]func() error {
	return map[uint32]func() error{
		common.KeyW: e.updateSettings(func(s *viewport.ViewerSettings) { s.ShowWireframe = !s.ShowWireframe }),
		common.KeyM: e.updateSettings(func(s *viewport.ViewerSettings) { s.ShowMaterials = !s.ShowMaterials }),
		common.KeyT: e.updateSettings(func(s *viewport.ViewerSettings) { s.ShowTextures = !s.ShowTextures }),
		common.KeyA: e.updateSettings(func(s *viewport.ViewerSettings) { s.AutoRotate = !s.AutoRotate }),
		common.KeyL: e.updateSettings(func(s *viewport.ViewerSettings) {
			s.LightingMode = next(lightingCycle, s.LightingMode)
		}),
		common.KeyR: e.updateSettings(func(s *viewport.ViewerSettings) {
			s.RenderMode = next(renderModeCycle, s.RenderMode)
		}),
		common.KeyEqual: e.updateSettings(func(s *viewport.ViewerSettings) {
			s.LightingIntensity = min(s.LightingIntensity+intensityStep, maxIntensity)
		}),
		common.KeyMinus: e.updateSettings(func(s *viewport.ViewerSettings) {
			s.LightingIntensity = max(s.LightingIntensity-intensityStep, 0)
		}),
		common.KeyC: e.screenshot,
	}
}

// updateSettings returns an action that edits a copy of the active settings and applies it.
func (e *engine) updateSettings(edit func(s *viewport.ViewerSettings)) func() error {
	return func() error {
		s := e.viewport.Settings()
		edit(&s)
		return e.viewport.SetSettings(s)
	}
}

func (e *engine) screenshot() error {
	path, err := e.viewport.CaptureFile(e.screenshotDir)
	if err != nil {
		return err
	}
	common.Logger().Info("[Engine] screenshot written", "path", path)
	return nil
}

// next returns the element after cur in cycle, wrapping around. Unknown values restart
// the cycle.
func next[T comparable](cycle []T, cur T) T {
	for i, v := range cycle {
		if v == cur {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}
