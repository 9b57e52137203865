package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestBox3_Empty(t *testing.T) {
	b := EmptyBox3()
	assert.True(t, b.IsEmpty())
	assert.Equal(t, mgl32.Vec3{}, b.Center())
	assert.Equal(t, mgl32.Vec3{}, b.Size())
	assert.Zero(t, b.MaxDim())
	assert.True(t, b.Transform(mgl32.Scale3D(2, 2, 2)).IsEmpty())
}

func TestBox3_ExpandAndMeasure(t *testing.T) {
	b := EmptyBox3().
		ExpandByPoint(mgl32.Vec3{-1, 0, 2}).
		ExpandByPoint(mgl32.Vec3{3, 4, 2})

	assert.False(t, b.IsEmpty())
	assert.Equal(t, mgl32.Vec3{-1, 0, 2}, b.Min)
	assert.Equal(t, mgl32.Vec3{3, 4, 2}, b.Max)
	assert.Equal(t, mgl32.Vec3{1, 2, 2}, b.Center())
	assert.Equal(t, mgl32.Vec3{4, 4, 0}, b.Size())
	assert.Equal(t, float32(4), b.MaxDim())
}

func TestBox3_SinglePointIsNotEmpty(t *testing.T) {
	b := EmptyBox3().ExpandByPoint(mgl32.Vec3{1, 1, 1})
	assert.False(t, b.IsEmpty())
	assert.Zero(t, b.MaxDim())
}

func TestBox3_Union(t *testing.T) {
	a := Box3{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	b := Box3{Min: mgl32.Vec3{-2, 0.5, 0}, Max: mgl32.Vec3{0, 3, 0.5}}

	u := a.Union(b)
	assert.Equal(t, mgl32.Vec3{-2, 0, 0}, u.Min)
	assert.Equal(t, mgl32.Vec3{1, 3, 1}, u.Max)

	assert.Equal(t, a, a.Union(EmptyBox3()))
	assert.Equal(t, a, EmptyBox3().Union(a))
}

func TestBox3_Corners(t *testing.T) {
	b := Box3{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 2, 3}}
	c := b.Corners()
	assert.Equal(t, b.Min, c[0])
	assert.Equal(t, b.Max, c[7])
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, c[1])
	assert.Equal(t, mgl32.Vec3{0, 2, 0}, c[2])
	assert.Equal(t, mgl32.Vec3{0, 0, 3}, c[4])
}

func TestBox3_Transform(t *testing.T) {
	b := Box3{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}

	moved := b.Transform(mgl32.Translate3D(10, 0, 0).Mul4(mgl32.Scale3D(2, 1, 1)))
	assert.InDelta(t, 8, moved.Min[0], 1e-5)
	assert.InDelta(t, 12, moved.Max[0], 1e-5)
	assert.InDelta(t, -1, moved.Min[1], 1e-5)

	// a 45 degree turn widens the enclosing box to the diagonal
	turned := b.Transform(mgl32.HomogRotate3DY(mgl32.DegToRad(45)))
	assert.InDelta(t, 1.41421, turned.Max[0], 1e-4)
	assert.InDelta(t, 1.41421, turned.Max[2], 1e-4)
	assert.InDelta(t, 1, turned.Max[1], 1e-5)
}
