package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/go-gl/mathgl/mgl32"
)

// cameraControllerImpl is the single implementation of CameraController.
// Supports both orbit and planar controls simultaneously. Orbit methods modify
// spherical coordinates and recompute position; planar methods translate both
// position and target along local camera axes, preserving the orbit relationship.
type cameraControllerImpl struct {
	mu *sync.Mutex

	// Camera position (computed from target + spherical coords)
	position mgl32.Vec3
	target   mgl32.Vec3

	// Spherical coordinates (offset from target)
	radius    float32
	azimuth   float32 // Horizontal angle around Y axis, 0 = +Z
	elevation float32 // Vertical angle from horizontal plane

	// Rotation still to be applied by Update
	pendingAzimuth   float32
	pendingElevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed       float32
	mouseSensitivity float32
	zoomSpeed        float32
	panSpeed         float32

	dampingFactor   float32
	autoRotate      bool
	autoRotateSpeed float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new orbit camera controller looking at the origin
// from (5, 5, 5), with damping 0.05 and an auto-rotate speed of 2 (one revolution
// every 30 seconds).
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu: &sync.Mutex{},

		minRadius:    DefaultNear,
		maxRadius:    DefaultFar,
		minElevation: -float32(math.Pi/2 - 0.01),
		maxElevation: float32(math.Pi/2 - 0.01),

		orbitSpeed:       0.03,
		mouseSensitivity: 0.005,
		zoomSpeed:        1.0,
		panSpeed:         0.01,

		dampingFactor:   0.05,
		autoRotateSpeed: 2.0,
	}
	cc.setEye(mgl32.Vec3{5, 5, 5})

	for _, option := range options {
		option(cc)
	}

	cc.clampSpherical()
	cc.updatePosition()
	return cc
}

// --- internal helpers ---

// updatePosition recomputes the camera position from spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	cosElev := float32(math.Cos(float64(cc.elevation)))
	sinElev := float32(math.Sin(float64(cc.elevation)))
	cosAzim := float32(math.Cos(float64(cc.azimuth)))
	sinAzim := float32(math.Sin(float64(cc.azimuth)))

	cc.position = cc.target.Add(mgl32.Vec3{
		cc.radius * cosElev * sinAzim,
		cc.radius * sinElev,
		cc.radius * cosElev * cosAzim,
	})
}

// setEye derives spherical coordinates from an eye position relative to the target.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) setEye(eye mgl32.Vec3) {
	offset := eye.Sub(cc.target)
	cc.radius = offset.Len()
	cc.setDirection(common.SafeNormalize(offset, mgl32.Vec3{0, 0, 1}))
}

// setDirection derives azimuth and elevation from a unit offset direction.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) setDirection(dir mgl32.Vec3) {
	cc.elevation = float32(math.Asin(float64(common.Clamp32(dir[1], -1, 1))))
	cc.azimuth = float32(math.Atan2(float64(dir[0]), float64(dir[2])))
}

// clampSpherical keeps radius and elevation inside their bounds.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) clampSpherical() {
	cc.radius = common.Clamp32(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = common.Clamp32(cc.elevation, cc.minElevation, cc.maxElevation)
}

// localAxes computes the camera's right and up axes consistent with the LookAt matrix.
// Both are zero if position and target coincide.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) localAxes() (right, up mgl32.Vec3) {
	back := cc.position.Sub(cc.target)
	if back.Len() < 1e-8 {
		return
	}
	back = back.Normalize()
	right = mgl32.Vec3{0, 1, 0}.Cross(back)
	if right.Len() < 1e-8 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	right = right.Normalize()
	up = back.Cross(right)
	return right, up
}

// --- CameraController shared methods ---

func (cc *cameraControllerImpl) Position() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) SetPosition(x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.setEye(mgl32.Vec3{x, y, z})
	cc.clampSpherical()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Target() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) SetTarget(x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = mgl32.Vec3{x, y, z}
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius *= float32(math.Pow(0.95, float64(delta*cc.zoomSpeed)))
	cc.clampSpherical()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Look(target, direction mgl32.Vec3, distance float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = target
	cc.radius = distance
	cc.setDirection(common.SafeNormalize(direction, mgl32.Vec3{0, 0, 1}))
	cc.pendingAzimuth, cc.pendingElevation = 0, 0
	cc.clampSpherical()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Update(deltaTime float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if cc.autoRotate {
		// 2*pi/60 radians per second at speed 1.
		cc.pendingAzimuth -= 2 * math.Pi / 60 * cc.autoRotateSpeed * deltaTime
	}
	if cc.pendingAzimuth == 0 && cc.pendingElevation == 0 {
		return
	}

	if cc.dampingFactor > 0 {
		cc.azimuth += cc.pendingAzimuth * cc.dampingFactor
		cc.elevation += cc.pendingElevation * cc.dampingFactor
		cc.pendingAzimuth *= 1 - cc.dampingFactor
		cc.pendingElevation *= 1 - cc.dampingFactor
		if math.Abs(float64(cc.pendingAzimuth)) < 1e-6 {
			cc.pendingAzimuth = 0
		}
		if math.Abs(float64(cc.pendingElevation)) < 1e-6 {
			cc.pendingElevation = 0
		}
	} else {
		cc.azimuth += cc.pendingAzimuth
		cc.elevation += cc.pendingElevation
		cc.pendingAzimuth, cc.pendingElevation = 0, 0
	}
	cc.clampSpherical()
	cc.updatePosition()
}

// --- orbitCameraController implementation ---

func (cc *cameraControllerImpl) OrbitLeft() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth -= cc.orbitSpeed
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitRight() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth += cc.orbitSpeed
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitUp() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation += cc.orbitSpeed
	cc.clampSpherical()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitDown() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation -= cc.orbitSpeed
	cc.clampSpherical()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Rotate(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pendingAzimuth -= dx * cc.mouseSensitivity
	cc.pendingElevation += dy * cc.mouseSensitivity
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) SetRadius(radius float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = radius
	cc.clampSpherical()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) SetRadiusBounds(minRadius, maxRadius float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.minRadius = minRadius
	cc.maxRadius = maxRadius
	cc.clampSpherical()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) SetAzimuth(azimuth float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth = azimuth
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) SetElevation(elevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation = elevation
	cc.clampSpherical()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) AutoRotate() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.autoRotate
}

func (cc *cameraControllerImpl) SetAutoRotate(on bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.autoRotate = on
}

// --- planarCameraController implementation ---

func (cc *cameraControllerImpl) PanRight(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	right, _ := cc.localAxes()
	offset := right.Mul(delta * cc.panSpeed * cc.radius)
	cc.target = cc.target.Add(offset)
	cc.position = cc.position.Add(offset)
}

func (cc *cameraControllerImpl) PanUp(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	_, up := cc.localAxes()
	offset := up.Mul(delta * cc.panSpeed * cc.radius)
	cc.target = cc.target.Add(offset)
	cc.position = cc.position.Add(offset)
}
