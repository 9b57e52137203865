package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-viewport/engine/viewport"
	"github.com/Carmen-Shannon/oxy-viewport/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables periodic frame statistics in the log.
//
// Parameters:
//   - interval: how often to report; 0 disables profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profilingInterval = max(interval, 0)
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithWindowOptions configures the window the engine creates when WithWindow is not used.
//
// Parameters:
//   - options: window options such as window.WithTitle
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindowOptions(options ...window.WindowBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.windowOptions = append(e.windowOptions, options...)
	}
}

// WithViewport hosts an already initialized viewport instead of creating one. The caller
// keeps ownership and must dispose it after Run returns.
//
// Parameters:
//   - vp: an initialized Viewport
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithViewport(vp viewport.Viewport) EngineBuilderOption {
	return func(e *engine) {
		e.viewport = vp
	}
}

// WithViewportOptions appends options to the viewport the engine creates, for example
// viewport.WithSettings. They are applied after the window-backed renderer option.
//
// Parameters:
//   - options: viewport options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithViewportOptions(options ...viewport.ViewportBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.viewportOptions = append(e.viewportOptions, options...)
	}
}

// WithScreenshotDir sets the directory the C hotkey writes screenshots to.
//
// Parameters:
//   - dir: the output directory (default ".")
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScreenshotDir(dir string) EngineBuilderOption {
	return func(e *engine) {
		e.screenshotDir = dir
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}
