package camera

import (
	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/go-gl/mathgl/mgl32"
)

// FramingFactor multiplies the largest box dimension to get the framing distance.
const FramingFactor float32 = 2

// Frame points the camera at the center of box from a distance of FramingFactor times
// the box's largest dimension, keeping the current viewing direction so the user's
// orbit orientation survives a model swap. The distance is clamped to the camera's
// near and far planes. An empty box frames the origin at the near plane.
//
// Parameters:
//   - cam: the camera whose controller is repositioned; must have a controller
//   - box: the world-space bounds of the newly attached model
func Frame(cam Camera, box common.Box3) {
	ctrl := cam.Controller()
	if ctrl == nil {
		panic("camera: Frame requires a camera with a controller")
	}

	dir := common.SafeNormalize(ctrl.Position().Sub(ctrl.Target()), mgl32.Vec3{0, 0, 1})
	distance := common.Clamp32(box.MaxDim()*FramingFactor, cam.Near(), cam.Far())

	ctrl.SetRadiusBounds(cam.Near(), cam.Far())
	ctrl.Look(box.Center(), dir, distance)
	cam.Update()
}
