package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestComposeTRS(t *testing.T) {
	m := ComposeTRS(mgl32.Vec3{1, 2, 3}, mgl32.QuatIdent(), mgl32.Vec3{2, 2, 2})
	p := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, m)
	assert.InDelta(t, 3, p[0], 1e-6)
	assert.InDelta(t, 2, p[1], 1e-6)
	assert.InDelta(t, 3, p[2], 1e-6)

	// scale applies before rotation
	rot := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})
	m = ComposeTRS(mgl32.Vec3{}, rot, mgl32.Vec3{3, 1, 1})
	p = mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, m)
	assert.InDelta(t, 0, p[0], 1e-5)
	assert.InDelta(t, 3, p[1], 1e-5)
}

func TestSafeNormalize(t *testing.T) {
	fallback := mgl32.Vec3{0, 0, 1}
	assert.Equal(t, fallback, SafeNormalize(mgl32.Vec3{}, fallback))
	n := SafeNormalize(mgl32.Vec3{3, 0, 4}, fallback)
	assert.InDelta(t, 1, n.Len(), 1e-6)
	assert.InDelta(t, 0.6, n[0], 1e-6)
}

func TestScalarHelpers(t *testing.T) {
	assert.Equal(t, float32(7), MaxComponent(mgl32.Vec3{-9, 7, 2}))
	assert.Equal(t, float32(0), Clamp32(-1, 0, 1))
	assert.Equal(t, float32(1), Clamp32(5, 0, 1))
	assert.Equal(t, float32(0.5), Clamp32(0.5, 0, 1))
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}
