package material

import (
	"image"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewport/common"
)

// Texture is a decoded color texture owned by the model that loaded it.
// Materials reference textures; detaching a texture from a material never disposes it.
type Texture struct {
	mu       *sync.Mutex
	name     string
	img      *image.RGBA
	tracker  *common.ResourceTracker
	handle   uint64
	disposed bool
}

// NewTexture wraps decoded pixels and registers them with the tracker.
//
// Parameters:
//   - tracker: the resource tracker to register with (nil to skip tracking)
//   - name: an identifier used in logs
//   - img: the decoded pixels
//
// Returns:
//   - *Texture: the texture
func NewTexture(tracker *common.ResourceTracker, name string, img *image.RGBA) *Texture {
	return &Texture{
		mu:      &sync.Mutex{},
		name:    name,
		img:     img,
		tracker: tracker,
		handle:  tracker.Acquire(common.ResourceTexture),
	}
}

// Name returns the texture identifier.
func (t *Texture) Name() string {
	return t.name
}

// Image returns the pixels, or nil once disposed.
func (t *Texture) Image() *image.RGBA {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.img
}

// Disposed reports whether Dispose has run.
func (t *Texture) Disposed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.disposed
}

// Dispose releases the pixels. Safe to call more than once.
//
// Returns:
//   - error: always nil; present to satisfy disposer contracts
func (t *Texture) Dispose() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.disposed {
		return nil
	}
	t.disposed = true
	t.img = nil
	t.tracker.Release(t.handle)
	return nil
}

// Sample returns the texel at (u, v) with repeat wrapping and nearest filtering.
// v = 0 addresses the top row (glTF convention); the OBJ loader flips v on import.
//
// Parameters:
//   - u, v: texture coordinates
//
// Returns:
//   - common.Color: the sampled color, white when the texture has no pixels
func (t *Texture) Sample(u, v float32) common.Color {
	img := t.img
	if img == nil {
		return common.Color{R: 1, G: 1, B: 1}
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return common.Color{R: 1, G: 1, B: 1}
	}
	u -= float32(math.Floor(float64(u)))
	v -= float32(math.Floor(float64(v)))
	x := min(int(u*float32(w)), w-1)
	y := min(int(v*float32(h)), h-1)
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+3 : i+3]
	return common.Color{R: float32(p[0]) / 255, G: float32(p[1]) / 255, B: float32(p[2]) / 255}
}
