package renderer

import (
	"math"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/Carmen-Shannon/oxy-viewport/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

// directionalTerm is one directional light prepared for shading.
type directionalTerm struct {
	toLight  mgl32.Vec3
	radiance common.Color
	shadow   *shadowMap
}

// frameLighting is the light set of one frame reduced to what the shader needs.
type frameLighting struct {
	eye         mgl32.Vec3
	ambient     common.Color
	directional []directionalTerm
}

// newFrameLighting sums ambient lights and prepares each directional light. The first
// shadow-casting directional light gets the shadow map, when one was built.
func newFrameLighting(eye mgl32.Vec3, lights []light.Light, shadow *shadowMap) *frameLighting {
	fl := &frameLighting{eye: eye}
	shadowAssigned := false
	for _, l := range lights {
		switch l.Type() {
		case light.LightTypeAmbient:
			fl.ambient = fl.ambient.Add(l.Radiance())
		case light.LightTypeDirectional:
			term := directionalTerm{
				toLight:  l.Direction().Mul(-1),
				radiance: l.Radiance(),
			}
			if l.CastsShadows() && !shadowAssigned && shadow != nil {
				term.shadow = shadow
				shadowAssigned = true
			}
			fl.directional = append(fl.directional, term)
		}
	}
	return fl
}

// shade computes base color (times texture) lit by ambient plus Lambert directional terms.
// Surfaces are two-sided: the normal is flipped to face the eye.
func (fl *frameLighting) shade(item *drawItem, world, normal mgl32.Vec3, uv mgl32.Vec2) common.Color {
	base := item.base
	if item.tex != nil {
		base = base.Mul(item.tex.Sample(uv[0], uv[1]))
	}

	n := normal
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	} else {
		n = common.SafeNormalize(fl.eye.Sub(world), mgl32.Vec3{0, 0, 1})
	}
	if n.Dot(fl.eye.Sub(world)) < 0 {
		n = n.Mul(-1)
	}

	lit := fl.ambient
	for i := range fl.directional {
		d := &fl.directional[i]
		ndl := n.Dot(d.toLight)
		if ndl <= 0 {
			continue
		}
		contrib := d.radiance.Scale(ndl)
		if d.shadow != nil && item.receive && d.shadow.occluded(world) {
			contrib = contrib.Scale(1 - light.ShadowDarkening)
		}
		lit = lit.Add(contrib)
	}
	return base.Mul(lit)
}

// shadowMap is an orthographic depth map rendered from a directional light.
type shadowMap struct {
	size     int
	depth    []float32
	viewProj mgl32.Mat4
	bias     float32
}

// newShadowMap allocates a square depth map of the given resolution.
func newShadowMap(size int) *shadowMap {
	return &shadowMap{size: size, depth: make([]float32, size*size)}
}

// setup fits the light's orthographic frustum around the model bounds and clears depth.
func (sm *shadowMap) setup(l light.Light, bounds common.Box3) {
	center := bounds.Center()
	halfExtent := max(light.DefaultShadowHalfExtent, bounds.Size().Len()/2)
	dir := l.Direction()
	eye := center.Sub(dir.Mul(halfExtent * 2))

	up := mgl32.Vec3{0, 1, 0}
	if abs32(dir.Dot(up)) > 0.99 {
		up = mgl32.Vec3{0, 0, 1}
	}
	near := light.DefaultShadowNear
	far := max(light.DefaultShadowFar, halfExtent*4)

	view := mgl32.LookAtV(eye, center, up)
	proj := mgl32.Ortho(-halfExtent, halfExtent, -halfExtent, halfExtent, near, far)
	sm.viewProj = proj.Mul4(view)
	sm.bias = light.DefaultShadowBias * 2 / (far - near)

	inf := float32(math.Inf(1))
	for i := range sm.depth {
		sm.depth[i] = inf
	}
}

// project maps a world position to shadow texel coordinates and NDC depth.
func (sm *shadowMap) project(p mgl32.Vec3) (float32, float32, float32) {
	c := sm.viewProj.Mul4x1(p.Vec4(1))
	return (c[0] + 1) * 0.5 * float32(sm.size), (1 - c[1]) * 0.5 * float32(sm.size), c[2]
}

// drawCaster writes one triangle's depth into the map.
func (sm *shadowMap) drawCaster(a, b, c mgl32.Vec3) {
	ax, ay, az := sm.project(a)
	bx, by, bz := sm.project(b)
	cx, cy, cz := sm.project(c)
	area := edgeFn(ax, ay, bx, by, cx, cy)
	if area > -1e-8 && area < 1e-8 {
		return
	}
	inv := 1 / area

	minX := max(int(math.Floor(float64(min(ax, bx, cx)))), 0)
	maxX := min(int(math.Ceil(float64(max(ax, bx, cx)))), sm.size-1)
	minY := max(int(math.Floor(float64(min(ay, by, cy)))), 0)
	maxY := min(int(math.Ceil(float64(max(ay, by, cy)))), sm.size-1)
	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edgeFn(bx, by, cx, cy, px, py) * inv
			w1 := edgeFn(cx, cy, ax, ay, px, py) * inv
			w2 := edgeFn(ax, ay, bx, by, px, py) * inv
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*az + w1*bz + w2*cz
			idx := y*sm.size + x
			if z < sm.depth[idx] {
				sm.depth[idx] = z
			}
		}
	}
}

// occluded reports whether a caster lies between the light and p.
func (sm *shadowMap) occluded(p mgl32.Vec3) bool {
	fx, fy, z := sm.project(p)
	x, y := int(fx), int(fy)
	if x < 0 || y < 0 || x >= sm.size || y >= sm.size || z < -1 || z > 1 {
		return false
	}
	return z-sm.bias > sm.depth[y*sm.size+x]
}
