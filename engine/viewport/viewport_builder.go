package viewport

import (
	"time"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/Carmen-Shannon/oxy-viewport/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewport/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewport/engine/renderer"
)

// ViewportBuilderOption is a functional option applied to a viewport during construction via NewViewport.
type ViewportBuilderOption func(*viewport)

// WithLoader replaces the default asset loader. The caller keeps ownership: Dispose
// does not Close a loader supplied this way.
//
// Parameters:
//   - l: the loader
//
// Returns:
//   - ViewportBuilderOption: a function that applies the loader option to a viewport
func WithLoader(l loader.Loader) ViewportBuilderOption {
	return func(v *viewport) {
		v.loader = l
	}
}

// WithTracker sets the resource tracker handed to the default loader.
// Ignored for geometry created by a loader supplied through WithLoader.
//
// Parameters:
//   - t: the tracker
//
// Returns:
//   - ViewportBuilderOption: a function that applies the tracker option to a viewport
func WithTracker(t *common.ResourceTracker) ViewportBuilderOption {
	return func(v *viewport) {
		v.tracker = t
	}
}

// WithRendererBackend selects where frames are presented. Defaults to headless.
//
// Parameters:
//   - backendType: the renderer backend
//   - options: options passed to renderer.NewRenderer, e.g. renderer.WithWindow
//
// Returns:
//   - ViewportBuilderOption: a function that applies the backend option to a viewport
func WithRendererBackend(backendType renderer.RendererBackendType, options ...renderer.RendererBuilderOption) ViewportBuilderOption {
	return func(v *viewport) {
		v.backendType = backendType
		v.rendererOptions = append(v.rendererOptions, options...)
	}
}

// WithSettings sets the settings applied at Init.
//
// Parameters:
//   - s: the initial settings
//
// Returns:
//   - ViewportBuilderOption: a function that applies the settings option to a viewport
func WithSettings(s ViewerSettings) ViewportBuilderOption {
	return func(v *viewport) {
		v.st.settings = s
	}
}

// WithTickRate sets how often Run renders a frame.
//
// Parameters:
//   - fps: frames per second (defaults to 60 if <= 0)
//
// Returns:
//   - ViewportBuilderOption: a function that applies the tick rate option to a viewport
func WithTickRate(fps float64) ViewportBuilderOption {
	return func(v *viewport) {
		if fps <= 0 {
			fps = 60
		}
		v.tickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithOverlay enables or disables the status overlay on presented frames.
//
// Parameters:
//   - on: false to present frames without the status panel
//
// Returns:
//   - ViewportBuilderOption: a function that applies the overlay option to a viewport
func WithOverlay(on bool) ViewportBuilderOption {
	return func(v *viewport) {
		v.overlayEnabled = on
	}
}

// WithProfiler logs frame statistics at the given interval.
//
// Parameters:
//   - interval: the reporting interval
//
// Returns:
//   - ViewportBuilderOption: a function that applies the profiler option to a viewport
func WithProfiler(interval time.Duration) ViewportBuilderOption {
	return func(v *viewport) {
		v.profiler = profiler.NewProfiler(interval)
	}
}
