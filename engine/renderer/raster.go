package renderer

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/Carmen-Shannon/oxy-viewport/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewport/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// nearEpsilon keeps clipped vertices strictly in front of the eye.
const nearEpsilon float32 = 1e-5

// rasterTarget is a color buffer with a matching depth buffer.
type rasterTarget struct {
	w, h  int
	color *image.RGBA
	depth []float32
}

func newRasterTarget(w, h int) *rasterTarget {
	return &rasterTarget{
		w:     w,
		h:     h,
		color: image.NewRGBA(image.Rect(0, 0, w, h)),
		depth: make([]float32, w*h),
	}
}

// clear fills the color buffer with bg and resets depth to +Inf.
func (t *rasterTarget) clear(bg color.RGBA) {
	pix := t.color.Pix
	if len(pix) >= 4 {
		pix[0], pix[1], pix[2], pix[3] = bg.R, bg.G, bg.B, bg.A
		for i := 4; i < len(pix); i *= 2 {
			copy(pix[i:], pix[:i])
		}
	}
	if len(t.depth) > 0 {
		t.depth[0] = float32(math.Inf(1))
		for i := 1; i < len(t.depth); i *= 2 {
			copy(t.depth[i:], t.depth[:i])
		}
	}
}

// drawItem is the per-mesh state sampled once per frame.
type drawItem struct {
	base    common.Color
	tex     *material.Texture
	receive bool
	cast    bool
	edges   bool
}

// clipVertex is a vertex in clip space with its shading attributes.
type clipVertex struct {
	clip   mgl32.Vec4
	world  mgl32.Vec3
	normal mgl32.Vec3
	uv     mgl32.Vec2
}

func lerpClip(a, b clipVertex, t float32) clipVertex {
	return clipVertex{
		clip:   a.clip.Add(b.clip.Sub(a.clip).Mul(t)),
		world:  a.world.Add(b.world.Sub(a.world).Mul(t)),
		normal: a.normal.Add(b.normal.Sub(a.normal).Mul(t)),
		uv:     a.uv.Add(b.uv.Sub(a.uv).Mul(t)),
	}
}

// screenVertex is a clip vertex after the perspective divide and viewport mapping.
type screenVertex struct {
	x, y, z float32
	invW    float32
	world   mgl32.Vec3
	normal  mgl32.Vec3
	uv      mgl32.Vec2
}

type rasterTri struct {
	v          [3]screenVertex
	item       *drawItem
	minY, maxY int
}

type rasterLine struct {
	a, b       screenVertex
	item       *drawItem
	minY, maxY int
}

type rasterPoint struct {
	v    screenVertex
	item *drawItem
}

// frameGeometry is everything one frame rasterizes, already in screen space.
type frameGeometry struct {
	tris   []rasterTri
	lines  []rasterLine
	points []rasterPoint
}

// clipNear clips a triangle against the near plane (z >= -w) and returns the
// resulting convex polygon, empty when the triangle is entirely behind it.
func clipNear(tri [3]clipVertex, out []clipVertex) []clipVertex {
	out = out[:0]
	dist := func(v clipVertex) float32 { return v.clip[2] + v.clip[3] }
	for i := range 3 {
		a, b := tri[i], tri[(i+1)%3]
		da, db := dist(a), dist(b)
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			out = append(out, lerpClip(a, b, da/(da-db)))
		}
	}
	return out
}

func toScreen(v clipVertex, w, h int) (screenVertex, bool) {
	cw := v.clip[3]
	if cw < nearEpsilon {
		return screenVertex{}, false
	}
	inv := 1 / cw
	return screenVertex{
		x:      (v.clip[0]*inv + 1) * 0.5 * float32(w),
		y:      (1 - v.clip[1]*inv) * 0.5 * float32(h),
		z:      v.clip[2] * inv,
		invW:   inv,
		world:  v.world,
		normal: v.normal,
		uv:     v.uv,
	}, true
}

func rowSpan(h int, ys ...float32) (int, int) {
	lo, hi := ys[0], ys[0]
	for _, y := range ys[1:] {
		lo = min(lo, y)
		hi = max(hi, y)
	}
	return max(int(math.Floor(float64(lo))), 0), min(int(math.Ceil(float64(hi))), h-1)
}

// meshVertices transforms a mesh's vertices to clip space.
func meshVertices(geo *scene.Geometry, world, viewProj mgl32.Mat4) []clipVertex {
	positions := geo.Positions()
	normals := geo.Normals()
	uvs := geo.UVs()
	normalMat := world.Mat3().Inv().Transpose()

	out := make([]clipVertex, len(positions))
	for i, p := range positions {
		wp := mgl32.TransformCoordinate(p, world)
		v := clipVertex{
			clip:  viewProj.Mul4x1(wp.Vec4(1)),
			world: wp,
		}
		if i < len(normals) {
			v.normal = normalMat.Mul3x1(normals[i])
		}
		if i < len(uvs) {
			v.uv = uvs[i]
		}
		out[i] = v
	}
	return out
}

// appendMesh converts a mesh's triangles into screen-space primitives for the given mode.
func (fg *frameGeometry) appendMesh(verts []clipVertex, indices []uint32, item *drawItem, mode RenderMode, w, h int) int {
	if mode == RenderModePoints {
		for _, v := range verts {
			sv, ok := toScreen(v, w, h)
			if !ok || sv.z < -1 || sv.z > 1 {
				continue
			}
			fg.points = append(fg.points, rasterPoint{v: sv, item: item})
		}
		return len(indices) / 3
	}

	edges := mode == RenderModeWireframe || item.edges
	poly := make([]clipVertex, 0, 4)
	drawn := 0
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		if int(max(i0, i1, i2)) >= len(verts) {
			continue
		}
		poly = clipNear([3]clipVertex{verts[i0], verts[i1], verts[i2]}, poly)
		if len(poly) < 3 {
			continue
		}
		sv := make([]screenVertex, 0, len(poly))
		for _, v := range poly {
			s, ok := toScreen(v, w, h)
			if !ok {
				break
			}
			sv = append(sv, s)
		}
		if len(sv) != len(poly) {
			continue
		}
		drawn++

		if edges {
			for i := range sv {
				a, b := sv[i], sv[(i+1)%len(sv)]
				lo, hi := rowSpan(h, a.y, b.y)
				fg.lines = append(fg.lines, rasterLine{a: a, b: b, item: item, minY: lo, maxY: hi})
			}
			continue
		}
		for i := 1; i+1 < len(sv); i++ {
			tri := rasterTri{v: [3]screenVertex{sv[0], sv[i], sv[i+1]}, item: item}
			tri.minY, tri.maxY = rowSpan(h, sv[0].y, sv[i].y, sv[i+1].y)
			fg.tris = append(fg.tris, tri)
		}
	}
	return drawn
}

// rasterizeBands splits the target into horizontal bands and rasterizes each on the pool.
// Bands never share pixels, so workers write without locking.
func rasterizeBands(pool *common.WorkerGroup, bands int, t *rasterTarget, fg *frameGeometry, shade shadeFunc) {
	bands = max(min(bands, t.h), 1)
	rows := (t.h + bands - 1) / bands

	var wg sync.WaitGroup
	for b := range bands {
		y0 := b * rows
		y1 := min(y0+rows, t.h)
		if y0 >= y1 {
			break
		}
		wg.Add(1)
		pool.Submit(worker.Task{
			ID: b,
			Do: func() (any, error) {
				defer wg.Done()
				rasterizeBand(t, fg, shade, y0, y1)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// shadeFunc returns the lit color of a surface sample.
type shadeFunc func(item *drawItem, world, normal mgl32.Vec3, uv mgl32.Vec2) common.Color

func rasterizeBand(t *rasterTarget, fg *frameGeometry, shade shadeFunc, y0, y1 int) {
	for i := range fg.tris {
		tri := &fg.tris[i]
		if tri.maxY < y0 || tri.minY >= y1 {
			continue
		}
		fillTriangle(t, tri, shade, y0, y1)
	}
	for i := range fg.lines {
		ln := &fg.lines[i]
		if ln.maxY < y0 || ln.minY >= y1 {
			continue
		}
		drawLine(t, ln, shade, y0, y1)
	}
	for i := range fg.points {
		drawPoint(t, &fg.points[i], shade, y0, y1)
	}
}

func edgeFn(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func fillTriangle(t *rasterTarget, tri *rasterTri, shade shadeFunc, y0, y1 int) {
	v0, v1, v2 := tri.v[0], tri.v[1], tri.v[2]
	area := edgeFn(v0.x, v0.y, v1.x, v1.y, v2.x, v2.y)
	if area > -1e-8 && area < 1e-8 {
		return
	}
	invArea := 1 / area

	minX := max(int(math.Floor(float64(min(v0.x, v1.x, v2.x)))), 0)
	maxX := min(int(math.Ceil(float64(max(v0.x, v1.x, v2.x)))), t.w-1)
	minY := max(tri.minY, y0)
	maxY := min(tri.maxY, y1-1)

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			b0 := edgeFn(v1.x, v1.y, v2.x, v2.y, px, py) * invArea
			b1 := edgeFn(v2.x, v2.y, v0.x, v0.y, px, py) * invArea
			b2 := edgeFn(v0.x, v0.y, v1.x, v1.y, px, py) * invArea
			if b0 < 0 || b1 < 0 || b2 < 0 {
				continue
			}
			z := b0*v0.z + b1*v1.z + b2*v2.z
			idx := y*t.w + x
			if z < -1 || z > 1 || z >= t.depth[idx] {
				continue
			}

			p0, p1, p2 := b0*v0.invW, b1*v1.invW, b2*v2.invW
			s := p0 + p1 + p2
			if s <= 0 {
				continue
			}
			p0, p1, p2 = p0/s, p1/s, p2/s
			world := v0.world.Mul(p0).Add(v1.world.Mul(p1)).Add(v2.world.Mul(p2))
			normal := v0.normal.Mul(p0).Add(v1.normal.Mul(p1)).Add(v2.normal.Mul(p2))
			uv := v0.uv.Mul(p0).Add(v1.uv.Mul(p1)).Add(v2.uv.Mul(p2))

			t.depth[idx] = z
			t.color.SetRGBA(x, y, shade(tri.item, world, normal, uv).RGBA())
		}
	}
}

func drawLine(t *rasterTarget, ln *rasterLine, shade shadeFunc, y0, y1 int) {
	a, b := ln.a, ln.b
	dx, dy := b.x-a.x, b.y-a.y
	steps := int(math.Ceil(float64(max(abs32(dx), abs32(dy)))))
	steps = max(steps, 1)
	for i := 0; i <= steps; i++ {
		f := float32(i) / float32(steps)
		x := int(a.x + dx*f)
		y := int(a.y + dy*f)
		if y < y0 || y >= y1 || x < 0 || x >= t.w {
			continue
		}
		z := a.z + (b.z-a.z)*f
		idx := y*t.w + x
		if z < -1 || z > 1 || z > t.depth[idx] {
			continue
		}
		pa, pb := (1-f)*a.invW, f*b.invW
		s := pa + pb
		if s <= 0 {
			continue
		}
		pa, pb = pa/s, pb/s
		world := a.world.Mul(pa).Add(b.world.Mul(pb))
		normal := a.normal.Mul(pa).Add(b.normal.Mul(pb))
		uv := a.uv.Mul(pa).Add(b.uv.Mul(pb))
		t.depth[idx] = z
		t.color.SetRGBA(x, y, shade(ln.item, world, normal, uv).RGBA())
	}
}

func drawPoint(t *rasterTarget, pt *rasterPoint, shade shadeFunc, y0, y1 int) {
	cx, cy := int(pt.v.x), int(pt.v.y)
	var c color.RGBA
	shaded := false
	for y := cy - 1; y <= cy; y++ {
		if y < y0 || y >= y1 || y < 0 {
			continue
		}
		for x := cx - 1; x <= cx; x++ {
			if x < 0 || x >= t.w {
				continue
			}
			idx := y*t.w + x
			if pt.v.z > t.depth[idx] {
				continue
			}
			if !shaded {
				c = shade(pt.item, pt.v.world, pt.v.normal, pt.v.uv).RGBA()
				shaded = true
			}
			t.depth[idx] = pt.v.z
			t.color.SetRGBA(x, y, c)
		}
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
