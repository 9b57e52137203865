package renderer

import (
	"fmt"
	"image"
)

// headlessRendererBackendImpl is a rendererBackend that presents nowhere.
type headlessRendererBackendImpl struct {
	width, height int
	presented     uint64
}

var _ rendererBackend = &headlessRendererBackendImpl{}

func newHeadlessRendererBackend() *headlessRendererBackendImpl {
	return &headlessRendererBackendImpl{}
}

func (b *headlessRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.width, b.height = width, height
	return nil
}

func (b *headlessRendererBackendImpl) SetPresentMode(PresentMode) {}

func (b *headlessRendererBackendImpl) Present(frame *image.RGBA) error {
	if frame == nil {
		return fmt.Errorf("no frame to present")
	}
	if size := frame.Rect.Size(); size.X != b.width || size.Y != b.height {
		return fmt.Errorf("frame is %dx%d, surface is %dx%d", size.X, size.Y, b.width, b.height)
	}
	b.presented++
	return nil
}

func (b *headlessRendererBackendImpl) Release() {}
