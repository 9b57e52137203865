package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func testFrustum() Frustum {
	proj := mgl32.Perspective(mgl32.DegToRad(75), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	return ExtractFrustum(proj.Mul4(view))
}

func TestFrustum_PlanesAreNormalized(t *testing.T) {
	f := testFrustum()
	for i, p := range f.Planes {
		assert.InDelta(t, 1, p.Normal.Len(), 1e-5, "plane %d", i)
	}
}

func TestFrustum_IntersectsBox(t *testing.T) {
	f := testFrustum()
	unit := func(c mgl32.Vec3) Box3 {
		return Box3{Min: c.Sub(mgl32.Vec3{1, 1, 1}), Max: c.Add(mgl32.Vec3{1, 1, 1})}
	}

	tests := []struct {
		name string
		box  Box3
		want bool
	}{
		{name: "at target", box: unit(mgl32.Vec3{}), want: true},
		{name: "straddles left plane", box: unit(mgl32.Vec3{-8, 0, 0}), want: true},
		{name: "behind camera", box: unit(mgl32.Vec3{0, 0, 20}), want: false},
		{name: "beyond far plane", box: unit(mgl32.Vec3{0, 0, -200}), want: false},
		{name: "far off to the side", box: unit(mgl32.Vec3{100, 0, 0}), want: false},
		{name: "empty", box: EmptyBox3(), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.IntersectsBox(tt.box))
		})
	}
}
