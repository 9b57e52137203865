package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/Carmen-Shannon/oxy-viewport/engine/light"
	"github.com/Carmen-Shannon/oxy-viewport/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewport/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewport/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrDisposed is returned by every Renderer call after Dispose.
var ErrDisposed = errors.New("renderer: disposed")

// ErrNoSurface is returned by Render before the first successful Resize.
var ErrNoSurface = errors.New("renderer: surface has no size")

// RenderMode selects how triangles are drawn.
type RenderMode int

const (
	// RenderModeSolid fills triangles; meshes whose material is in wireframe draw edges.
	RenderModeSolid RenderMode = iota

	// RenderModeWireframe draws every triangle edge.
	RenderModeWireframe

	// RenderModePoints draws every vertex as a small square.
	RenderModePoints
)

var renderModeNames = [...]string{"solid", "wireframe", "points"}

// String returns the lowercase mode name.
func (m RenderMode) String() string {
	if int(m) >= 0 && int(m) < len(renderModeNames) {
		return renderModeNames[m]
	}
	return fmt.Sprintf("rendermode(%d)", int(m))
}

// ParseRenderMode parses a mode name case-insensitively.
//
// Parameters:
//   - s: the mode name
//
// Returns:
//   - RenderMode: the parsed mode
//   - error: error if s names no mode
func ParseRenderMode(s string) (RenderMode, error) {
	for i, name := range renderModeNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return RenderMode(i), nil
		}
	}
	return RenderModeSolid, fmt.Errorf("unknown render mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m RenderMode) MarshalText() ([]byte, error) {
	if int(m) < 0 || int(m) >= len(renderModeNames) {
		return nil, fmt.Errorf("unknown render mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *RenderMode) UnmarshalText(text []byte) error {
	parsed, err := ParseRenderMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// RenderOptions controls a single frame.
type RenderOptions struct {
	// Mode selects solid, wireframe or points drawing.
	Mode RenderMode

	// Transparent clears to fully transparent instead of the scene background.
	Transparent bool
}

// FrameStats summarizes the work of one frame.
type FrameStats struct {
	Meshes    int
	Culled    int
	Triangles int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     rendererBackend
	window      window.Window

	target *rasterTarget
	shadow *shadowMap

	pool    *common.WorkerGroup
	workers int

	shadowsEnabled       bool
	shadowResolution     int
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode

	disposed bool
}

// Renderer defines the interface for the rendering system.
//
// Frames are rasterized on the CPU into an RGBA image: triangles are depth tested,
// shaded with ambient plus Lambert directional lighting, textured, and shadowed by the
// first shadow-casting directional light. The backend then presents the finished image,
// either nowhere (headless) or onto a WebGPU window surface.
type Renderer interface {
	// Size returns the current surface size.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (int, int)

	// Resize reallocates the frame buffers and reconfigures the presentation surface.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: error if the size is not positive or the surface cannot be configured
	Resize(width, height int) error

	// Render draws one frame of the snapshot at the surface size.
	// The returned image is owned by the renderer and is overwritten by the next Render.
	//
	// Parameters:
	//   - snap: the scene snapshot to draw
	//   - opts: per-frame options
	//
	// Returns:
	//   - *image.RGBA: the rendered frame
	//   - FrameStats: counts of drawn and culled work
	//   - error: ErrNoSurface before the first Resize, ErrDisposed after Dispose
	Render(snap scene.Snapshot, opts RenderOptions) (*image.RGBA, FrameStats, error)

	// RenderImage draws the snapshot into a new image of the given size without touching
	// the surface buffers. The projection uses the image's own aspect ratio.
	//
	// Parameters:
	//   - snap: the scene snapshot to draw
	//   - width: the image width in pixels
	//   - height: the image height in pixels
	//   - opts: per-frame options
	//
	// Returns:
	//   - *image.RGBA: the new image, owned by the caller
	//   - error: error if the size is not positive or the renderer is disposed
	RenderImage(snap scene.Snapshot, width, height int, opts RenderOptions) (*image.RGBA, error)

	// Present hands a finished frame to the backend.
	//
	// Parameters:
	//   - frame: the frame to present, normally the image returned by Render
	//
	// Returns:
	//   - error: error if presentation fails
	Present(frame *image.RGBA) error

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// A call to Resize is required after changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// Dispose releases the backend. Every later call returns ErrDisposed.
	Dispose()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type.
// The WGPU backend requires a window, supplied with WithWindow.
//
// Parameters:
//   - backendType: the presentation backend to use
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new Renderer
//   - error: error if the presentation backend cannot be created
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:               &sync.Mutex{},
		backendType:      backendType,
		workers:          max(runtime.NumCPU()-1, 1),
		shadowsEnabled:   true,
		shadowResolution: light.ShadowMapResolution,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		if r.window == nil {
			return nil, fmt.Errorf("renderer: the WGPU backend requires a window")
		}
		b, err := newWGPURendererBackend(r.window.SurfaceDescriptor(), r.forceFallbackAdapter)
		if err != nil {
			return nil, err
		}
		r.backend = b
	default:
		r.backend = newHeadlessRendererBackend()
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.pool = common.NewWorkerGroup(r.workers, 64)

	if r.window != nil {
		if err := r.Resize(r.window.Width(), r.window.Height()); err != nil {
			r.pool.Stop()
			r.backend.Release()
			return nil, err
		}
	}
	return r, nil
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.target == nil {
		return 0, 0
	}
	return r.target.w, r.target.h
}

func (r *renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return ErrDisposed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("renderer: invalid surface size %dx%d", width, height)
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return fmt.Errorf("renderer: failed to configure surface: %w", err)
	}
	r.target = newRasterTarget(width, height)
	return nil
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return
	}
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Render(snap scene.Snapshot, opts RenderOptions) (*image.RGBA, FrameStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return nil, FrameStats{}, ErrDisposed
	}
	if r.target == nil {
		return nil, FrameStats{}, ErrNoSurface
	}
	stats := r.draw(r.target, snap, opts)
	return r.target.color, stats, nil
}

func (r *renderer) RenderImage(snap scene.Snapshot, width, height int, opts RenderOptions) (*image.RGBA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return nil, ErrDisposed
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("renderer: invalid image size %dx%d", width, height)
	}
	t := newRasterTarget(width, height)
	r.draw(t, snap, opts)
	return t.color, nil
}

func (r *renderer) Present(frame *image.RGBA) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return ErrDisposed
	}
	return r.backend.Present(frame)
}

func (r *renderer) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return
	}
	r.disposed = true
	r.pool.Stop()
	r.backend.Release()
	r.target = nil
	r.shadow = nil
}

// casterMesh is a shadow-casting mesh with its world transform.
type casterMesh struct {
	geo   *scene.Geometry
	world mgl32.Mat4
}

// draw rasterizes one frame into t. Caller must hold r.mu.
func (r *renderer) draw(t *rasterTarget, snap scene.Snapshot, opts RenderOptions) FrameStats {
	bg := snap.Background.RGBA()
	if opts.Transparent {
		bg = color.RGBA{}
	}
	t.clear(bg)

	var stats FrameStats
	cam := snap.Camera
	if cam == nil {
		return stats
	}

	proj := mgl32.Perspective(cam.Fov(), float32(t.w)/float32(t.h), cam.Near(), cam.Far())
	viewProj := proj.Mul4(cam.ViewMatrix())
	frustum := common.ExtractFrustum(viewProj)

	fg := &frameGeometry{}
	var casters []casterMesh
	bounds := common.EmptyBox3()
	if snap.Model != nil {
		snap.Model.TraverseWorld(mgl32.Ident4(), func(n *scene.Node, world mgl32.Mat4) {
			if n.Kind() != scene.KindMesh {
				return
			}
			mesh := n.Mesh()
			geo := mesh.Geometry
			if geo == nil || geo.Disposed() {
				return
			}
			stats.Meshes++

			box := geo.Box().Transform(world)
			bounds = bounds.Union(box)
			item := newDrawItem(mesh.Material)
			if item.cast {
				casters = append(casters, casterMesh{geo: geo, world: world})
			}
			if !frustum.IntersectsBox(box) {
				stats.Culled++
				return
			}
			verts := meshVertices(geo, world, viewProj)
			stats.Triangles += fg.appendMesh(verts, geo.Indices(), item, opts.Mode, t.w, t.h)
		})
	}

	shadow := r.renderShadowMap(snap, casters, bounds)
	fl := newFrameLighting(cam.Position(), snap.Lights, shadow)
	rasterizeBands(r.pool, r.workers*2, t, fg, fl.shade)
	return stats
}

// renderShadowMap renders caster depth from the first shadow-casting directional light.
// It returns nil when shadows are disabled or nothing casts.
func (r *renderer) renderShadowMap(snap scene.Snapshot, casters []casterMesh, bounds common.Box3) *shadowMap {
	if !r.shadowsEnabled || len(casters) == 0 || bounds.IsEmpty() {
		return nil
	}
	var key light.Light
	for _, l := range snap.Lights {
		if l.Type() == light.LightTypeDirectional && l.CastsShadows() {
			key = l
			break
		}
	}
	if key == nil {
		return nil
	}

	if r.shadow == nil || r.shadow.size != r.shadowResolution {
		r.shadow = newShadowMap(r.shadowResolution)
	}
	sm := r.shadow
	sm.setup(key, bounds)
	for _, c := range casters {
		positions := c.geo.Positions()
		world := make([]mgl32.Vec3, len(positions))
		for i, p := range positions {
			world[i] = mgl32.TransformCoordinate(p, c.world)
		}
		indices := c.geo.Indices()
		for i := 0; i+2 < len(indices); i += 3 {
			a, b, cc := indices[i], indices[i+1], indices[i+2]
			if int(max(a, b, cc)) >= len(world) {
				continue
			}
			sm.drawCaster(world[a], world[b], world[cc])
		}
	}
	return sm
}

// newDrawItem samples a material's display state for one frame.
func newDrawItem(mat material.Material) *drawItem {
	if mat == nil {
		return &drawItem{base: material.Full}
	}
	item := &drawItem{
		base:    mat.BaseColor(),
		receive: mat.ReceiveShadow(),
		cast:    mat.CastShadow(),
		edges:   mat.Wireframe(),
	}
	if tex := mat.Map(); tex != nil && !tex.Disposed() {
		item.tex = tex
	}
	return item
}
