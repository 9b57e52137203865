package renderer

import (
	"image"
)

// RendererBackendType identifies where the Renderer presents finished frames.
type RendererBackendType int

const (
	// BackendTypeHeadless keeps frames in memory only. Used for tests, captures and
	// batch thumbnail rendering.
	BackendTypeHeadless RendererBackendType = iota

	// BackendTypeWGPU uploads each frame to a WebGPU surface created from a window.
	BackendTypeWGPU
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// rendererBackend presents rasterized frames. The raster work itself is backend independent.
type rendererBackend interface {
	// ConfigureSurface (re)creates the presentation surface for a new size.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: error if the surface cannot be configured
	ConfigureSurface(width, height int) error

	// SetPresentMode sets the present mode used on the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// Present shows a finished frame. The frame size matches the last ConfigureSurface.
	//
	// Parameters:
	//   - frame: the frame pixels
	//
	// Returns:
	//   - error: error if the frame could not be presented
	Present(frame *image.RGBA) error

	// Release frees every backend resource.
	Release()
}
