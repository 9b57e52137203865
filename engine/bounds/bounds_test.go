package bounds

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewport/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewport/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meshFrom(points ...mgl32.Vec3) *scene.Node {
	return scene.NewMeshNode("mesh", scene.NewGeometry(nil, points, nil, nil, nil), material.NewMaterial())
}

func assertVecNear(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, want[i], got[i], 1e-4, "component %d of %v", i, got)
	}
}

func TestComputeBox_AppliesNestedTransforms(t *testing.T) {
	root := scene.NewGroup("root")
	child := scene.NewGroup("child")
	child.Position = mgl32.Vec3{5, 0, 0}
	child.Scale = mgl32.Vec3{2, 2, 2}
	child.Add(meshFrom(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}))
	root.Add(child)

	box := ComputeBox(root)
	assertVecNear(t, mgl32.Vec3{5, 0, 0}, box.Min)
	assertVecNear(t, mgl32.Vec3{7, 2, 0}, box.Max)
}

func TestComputeBox_EmptySubtree(t *testing.T) {
	assert.True(t, ComputeBox(scene.NewGroup("empty")).IsEmpty())
	assert.True(t, ComputeBox(nil).IsEmpty())
}

func TestNormalize_ScalesLargestDimensionAndCenters(t *testing.T) {
	tests := []struct {
		name     string
		points   []mgl32.Vec3
		position mgl32.Vec3
	}{
		{name: "offset cube", points: []mgl32.Vec3{{0, 0, 0}, {2, 0, 0}, {0, 2, 2}}},
		{name: "tiny flat", points: []mgl32.Vec3{{0, 0, 0}, {0.01, 0, 0}, {0, 0.002, 0}}},
		{name: "huge", points: []mgl32.Vec3{{-500, 0, 0}, {500, 20, 0}, {0, 0, 300}}},
		{name: "pre-translated root", points: []mgl32.Vec3{{0, 0, 0}, {4, 0, 0}, {0, 1, 0}}, position: mgl32.Vec3{3, -7, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := scene.NewGroup("model")
			root.Position = tt.position
			root.Add(meshFrom(tt.points...))

			Normalize(root)

			box := ComputeBox(root)
			assert.InDelta(t, TargetSize, box.MaxDim(), 1e-3)
			assertVecNear(t, mgl32.Vec3{}, box.Center())
		})
	}
}

func TestNormalize_DegenerateKeepsScale(t *testing.T) {
	p := mgl32.Vec3{3, 4, 5}
	root := scene.NewGroup("model")
	root.Add(meshFrom(p, p, p))

	Normalize(root)

	assert.Equal(t, mgl32.Vec3{1, 1, 1}, root.Scale)
	assertVecNear(t, mgl32.Vec3{}, ComputeBox(root).Center())
}

func TestNormalize_EmptyAndNil(t *testing.T) {
	root := scene.NewGroup("empty")
	require.Same(t, root, Normalize(root))
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, root.Scale)
	assert.Equal(t, mgl32.Vec3{}, root.Position)
	assert.Nil(t, Normalize(nil))
}
