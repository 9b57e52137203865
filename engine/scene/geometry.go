package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Geometry is an indexed triangle list in the mesh's local space. Normals and UVs
// are per-vertex and may be empty; NewGeometry fills in missing normals.
type Geometry struct {
	mu *sync.Mutex

	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	uvs       []mgl32.Vec2
	indices   []uint32
	box       common.Box3

	tracker  *common.ResourceTracker
	handle   uint64
	disposed bool
}

// NewGeometry builds geometry from vertex streams and registers it with the tracker.
// A nil index list means the positions are already an unindexed triangle list.
// Missing or mismatched normals are replaced by area-weighted vertex normals.
//
// Parameters:
//   - tracker: the resource tracker to register with (nil to skip tracking)
//   - positions: vertex positions
//   - normals: vertex normals, or nil
//   - uvs: texture coordinates, or nil
//   - indices: triangle indices, or nil
//
// Returns:
//   - *Geometry: the geometry
func NewGeometry(tracker *common.ResourceTracker, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2, indices []uint32) *Geometry {
	if indices == nil {
		indices = make([]uint32, len(positions)-len(positions)%3)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(uvs) != len(positions) {
		uvs = nil
	}
	if len(normals) != len(positions) {
		normals = computeNormals(positions, indices)
	}

	box := common.EmptyBox3()
	for _, p := range positions {
		box = box.ExpandByPoint(p)
	}

	return &Geometry{
		mu:        &sync.Mutex{},
		positions: positions,
		normals:   normals,
		uvs:       uvs,
		indices:   indices,
		box:       box,
		tracker:   tracker,
		handle:    tracker.Acquire(common.ResourceGeometry),
	}
}

// computeNormals accumulates face normals (weighted by triangle area) into each vertex.
func computeNormals(positions []mgl32.Vec3, indices []uint32) []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if int(a) >= len(positions) || int(b) >= len(positions) || int(c) >= len(positions) {
			continue
		}
		face := positions[b].Sub(positions[a]).Cross(positions[c].Sub(positions[a]))
		normals[a] = normals[a].Add(face)
		normals[b] = normals[b].Add(face)
		normals[c] = normals[c].Add(face)
	}
	for i := range normals {
		normals[i] = common.SafeNormalize(normals[i], mgl32.Vec3{0, 1, 0})
	}
	return normals
}

// Positions returns the vertex positions, or nil once disposed.
func (g *Geometry) Positions() []mgl32.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.positions
}

// Normals returns the vertex normals, or nil once disposed.
func (g *Geometry) Normals() []mgl32.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.normals
}

// UVs returns the texture coordinates, or nil when absent or disposed.
func (g *Geometry) UVs() []mgl32.Vec2 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.uvs
}

// Indices returns the triangle indices, or nil once disposed.
func (g *Geometry) Indices() []uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.indices
}

// Box returns the local-space bounds computed at construction.
func (g *Geometry) Box() common.Box3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disposed {
		return common.EmptyBox3()
	}
	return g.box
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.indices) / 3
}

// Disposed reports whether Dispose has run.
func (g *Geometry) Disposed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.disposed
}

// Dispose releases the vertex streams. Safe to call more than once.
//
// Returns:
//   - error: always nil; present to satisfy disposer contracts
func (g *Geometry) Dispose() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disposed {
		return nil
	}
	g.disposed = true
	g.positions, g.normals, g.uvs, g.indices = nil, nil, nil, nil
	g.tracker.Release(g.handle)
	return nil
}
