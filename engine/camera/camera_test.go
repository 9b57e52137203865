package camera

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVecNear(t *testing.T, want, got mgl32.Vec3, delta float64) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, want[i], got[i], delta, "component %d of %v", i, got)
	}
}

func newFramedCamera() Camera {
	return NewCamera(WithController(NewCameraController()))
}

func TestCamera_Defaults(t *testing.T) {
	cam := newFramedCamera()
	assert.InDelta(t, mgl32.DegToRad(75), cam.Fov(), 1e-6)
	assert.Equal(t, DefaultNear, cam.Near())
	assert.Equal(t, DefaultFar, cam.Far())
	assertVecNear(t, mgl32.Vec3{5, 5, 5}, cam.Position(), 1e-4)

	assert.Equal(t, mgl32.Vec3{}, NewCamera().Position(), "no controller means no position")
}

func TestCamera_AspectUpdatesProjection(t *testing.T) {
	cam := newFramedCamera()
	before := cam.ProjectionMatrix()
	cam.SetAspect(2)
	assert.Equal(t, float32(2), cam.Aspect())
	assert.False(t, before.ApproxEqual(cam.ProjectionMatrix()))
	assert.True(t, cam.ProjectionMatrix().Mul4(cam.ViewMatrix()).ApproxEqual(cam.ViewProjectionMatrix()))
}

func TestFrame_CentersAndKeepsDirection(t *testing.T) {
	cam := newFramedCamera()
	box := common.Box3{Min: mgl32.Vec3{-5, -2, -1}, Max: mgl32.Vec3{5, 2, 1}}
	dirBefore := cam.Position().Normalize()

	Frame(cam, box)

	ctrl := cam.Controller()
	assertVecNear(t, mgl32.Vec3{}, ctrl.Target(), 1e-5)
	assert.InDelta(t, 20, ctrl.Radius(), 1e-4, "distance is twice the largest dimension")
	assertVecNear(t, dirBefore, ctrl.Position().Sub(ctrl.Target()).Normalize(), 1e-4)
	assertVecNear(t, ctrl.Position(), cam.Position(), 1e-6)

	// the view matrix looks at the new target
	center := mgl32.TransformCoordinate(box.Center(), cam.ViewMatrix())
	assert.InDelta(t, 0, center[0], 1e-4)
	assert.InDelta(t, 0, center[1], 1e-4)
	assert.InDelta(t, -20, center[2], 1e-3)
}

func TestFrame_OffCenterBoxAfterOrbit(t *testing.T) {
	cam := newFramedCamera()
	ctrl := cam.Controller()
	ctrl.SetAzimuth(1.2)
	ctrl.SetElevation(-0.3)
	dirBefore := ctrl.Position().Sub(ctrl.Target()).Normalize()

	box := common.Box3{Min: mgl32.Vec3{10, 10, 10}, Max: mgl32.Vec3{12, 13, 11}}
	Frame(cam, box)

	assertVecNear(t, box.Center(), ctrl.Target(), 1e-5)
	assert.InDelta(t, 6, ctrl.Radius(), 1e-4)
	assertVecNear(t, dirBefore, ctrl.Position().Sub(ctrl.Target()).Normalize(), 1e-4)
}

func TestFrame_ClampsDistance(t *testing.T) {
	cam := newFramedCamera()

	Frame(cam, common.EmptyBox3())
	assert.InDelta(t, DefaultNear, cam.Controller().Radius(), 1e-6)

	huge := common.Box3{Min: mgl32.Vec3{-5000, 0, 0}, Max: mgl32.Vec3{5000, 1, 1}}
	Frame(cam, huge)
	assert.InDelta(t, DefaultFar, cam.Controller().Radius(), 1e-3)
}

func TestFrame_RequiresController(t *testing.T) {
	assert.Panics(t, func() { Frame(NewCamera(), common.EmptyBox3()) })
}

func TestController_ZoomAndBounds(t *testing.T) {
	c := NewCameraController(WithRadiusBounds(1, 10))
	require.InDelta(t, 5*math.Sqrt(3), c.Radius(), 1e-4)

	c.Zoom(1)
	assert.InDelta(t, 5*math.Sqrt(3)*0.95, c.Radius(), 1e-4)

	c.Zoom(-1000)
	assert.Equal(t, float32(10), c.Radius())
	c.Zoom(1000)
	assert.Equal(t, float32(1), c.Radius())
}

func TestController_RotateIsDamped(t *testing.T) {
	c := NewCameraController(WithDamping(0.5))
	start := c.Azimuth()

	c.Rotate(100, 0)
	assert.Equal(t, start, c.Azimuth(), "rotation is applied on Update")

	c.Update(1.0 / 60)
	first := c.Azimuth() - start
	c.Update(1.0 / 60)
	second := c.Azimuth() - start - first

	assert.InDelta(t, -0.25, first, 1e-5)
	assert.InDelta(t, -0.125, second, 1e-5)
}

func TestController_ElevationClamp(t *testing.T) {
	c := NewCameraController(WithDamping(0))
	c.Rotate(0, 10000)
	c.Update(0)
	assert.Less(t, c.Elevation(), float32(math.Pi/2))
	assert.InDelta(t, math.Pi/2-0.01, c.Elevation(), 1e-5)
}

func TestController_AutoRotate(t *testing.T) {
	c := NewCameraController(WithDamping(0), WithAutoRotate(true, 2))
	assert.True(t, c.AutoRotate())
	start := c.Azimuth()

	c.Update(1)
	assert.InDelta(t, -2*math.Pi/60*2, c.Azimuth()-start, 1e-5)

	c.SetAutoRotate(false)
	mid := c.Azimuth()
	c.Update(1)
	assert.Equal(t, mid, c.Azimuth())
}

func TestController_PanMovesTargetAndEyeTogether(t *testing.T) {
	c := NewCameraController()
	offset := c.Position().Sub(c.Target())

	c.PanRight(1)
	c.PanUp(-2)

	assert.NotEqual(t, mgl32.Vec3{}, c.Target())
	assertVecNear(t, offset, c.Position().Sub(c.Target()), 1e-4)
}

func TestController_SetPositionKeepsTarget(t *testing.T) {
	c := NewCameraController(WithTarget(1, 0, 0))
	c.SetPosition(1, 0, 4)
	assertVecNear(t, mgl32.Vec3{1, 0, 4}, c.Position(), 1e-4)
	assert.InDelta(t, 4, c.Radius(), 1e-5)
	assertVecNear(t, mgl32.Vec3{1, 0, 0}, c.Target(), 1e-6)
}
