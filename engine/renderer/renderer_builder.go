package renderer

import (
	"github.com/Carmen-Shannon/oxy-viewport/engine/window"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithWindow sets the window whose surface the WGPU backend presents to. The surface is
// sized to the window on construction.
//
// Parameters:
//   - w: the window
//
// Returns:
//   - RendererBuilderOption: a function that applies the window option to a renderer
func WithWindow(w window.Window) RendererBuilderOption {
	return func(r *renderer) {
		r.window = w
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithRasterWorkers sets how many workers rasterize frame bands in parallel.
//
// Parameters:
//   - n: the worker count, clamped to at least 1
//
// Returns:
//   - RendererBuilderOption: a function that applies the worker option to a renderer
func WithRasterWorkers(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.workers = max(n, 1)
	}
}

// WithShadows enables or disables the shadow map pass.
//
// Parameters:
//   - on: false to skip shadow mapping
//
// Returns:
//   - RendererBuilderOption: a function that applies the shadow option to a renderer
func WithShadows(on bool) RendererBuilderOption {
	return func(r *renderer) {
		r.shadowsEnabled = on
	}
}

// WithShadowResolution sets the edge length of the square shadow map in texels.
//
// Parameters:
//   - size: the resolution; values below 16 are raised to 16
//
// Returns:
//   - RendererBuilderOption: a function that applies the resolution option to a renderer
func WithShadowResolution(size int) RendererBuilderOption {
	return func(r *renderer) {
		r.shadowResolution = max(size, 16)
	}
}
