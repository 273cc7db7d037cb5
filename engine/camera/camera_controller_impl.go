package camera

import (
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/ruins/common"
)

// DefaultDampingFactor is the fraction of queued motion applied per 60 Hz frame.
const DefaultDampingFactor float32 = 0.05

// Default input speeds: radians per dragged pixel for rotation, and radius
// fractions per dragged pixel for panning.
const (
	DefaultRotateSpeed float32 = 0.005
	DefaultPanSpeed    float32 = 0.002
)

// polarEpsilon keeps the polar angle off the poles, where the view basis degenerates.
const polarEpsilon float32 = 1e-6

// referenceFrame is the frame duration the damping factor is expressed against.
const referenceFrame = time.Second / 60

// cameraControllerImpl is the orbit implementation of CameraController.
// The pose is kept in spherical coordinates around the target; pending input
// is held in the delta fields until Update consumes it.
type cameraControllerImpl struct {
	mu *sync.Mutex

	camera Camera

	target common.Vec3

	radius  float32
	azimuth float32 // around +Y, 0 = +Z
	polar   float32 // from +Y

	// pending input
	azimuthDelta float32
	polarDelta   float32
	panOffset    common.Vec3
	scale        float32

	minRadius float32
	maxRadius float32
	minPolar  float32
	maxPolar  float32

	dampingEnabled bool
	dampingFactor  float32

	rotateSpeed float32
	zoomSpeed   float32
	panSpeed    float32

	initialTarget   common.Vec3
	initialPosition common.Vec3
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewOrbitController creates orbit controls for cam. The starting spherical pose
// is derived from the camera's position relative to the target, and damping is
// enabled with DefaultDampingFactor.
//
// Parameters:
//   - cam: the camera to drive
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewOrbitController(cam Camera, options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:     &sync.Mutex{},
		camera: cam,
		target: cam.Target(),
		scale:  1,

		minRadius: 0,
		maxRadius: math32.Inf(1),
		minPolar:  0,
		maxPolar:  math32.Pi,

		dampingEnabled: true,
		dampingFactor:  DefaultDampingFactor,

		rotateSpeed: DefaultRotateSpeed,
		zoomSpeed:   1,
		panSpeed:    DefaultPanSpeed,
	}
	for _, option := range options {
		option(cc)
	}

	cc.initialTarget = cc.target
	cc.initialPosition = cam.Position()
	cc.setFromPosition(cc.initialPosition)
	cc.apply()
	return cc
}

func (cc *cameraControllerImpl) Camera() Camera {
	return cc.camera
}

func (cc *cameraControllerImpl) Target() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) SetTarget(target common.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = target
	cc.apply()
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) Polar() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.polar
}

func (cc *cameraControllerImpl) Rotate(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuthDelta -= dx * cc.rotateSpeed
	cc.polarDelta -= dy * cc.rotateSpeed
}

func (cc *cameraControllerImpl) Pan(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	right, up := cc.viewPlaneAxes()
	distance := cc.radius * cc.panSpeed
	cc.panOffset = cc.panOffset.
		Add(right.Scale(-dx * distance)).
		Add(up.Scale(dy * distance))
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.scale *= math32.Pow(0.95, delta*cc.zoomSpeed)
}

func (cc *cameraControllerImpl) Update(dt time.Duration) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	applied := float32(1)
	if cc.dampingEnabled {
		frames := float32(dt) / float32(referenceFrame)
		applied = 1 - math32.Pow(1-cc.dampingFactor, frames)
	}

	cc.azimuth += cc.azimuthDelta * applied
	cc.polar += cc.polarDelta * applied
	cc.target = cc.target.Add(cc.panOffset.Scale(applied))
	cc.radius *= cc.scale

	remaining := 1 - applied
	cc.azimuthDelta *= remaining
	cc.polarDelta *= remaining
	cc.panOffset = cc.panOffset.Scale(remaining)
	cc.scale = 1

	cc.apply()
}

func (cc *cameraControllerImpl) Reset() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = cc.initialTarget
	cc.azimuthDelta, cc.polarDelta = 0, 0
	cc.panOffset = common.Vec3{}
	cc.scale = 1
	cc.setFromPosition(cc.initialPosition)
	cc.apply()
}

func (cc *cameraControllerImpl) DampingEnabled() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.dampingEnabled
}

func (cc *cameraControllerImpl) SetDamping(enabled bool, factor float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.dampingEnabled = enabled
	cc.dampingFactor = factor
}

// --- internal helpers ---

// setFromPosition derives the spherical pose of position around the target.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) setFromPosition(position common.Vec3) {
	offset := position.Sub(cc.target)
	cc.radius = offset.Length()
	if cc.radius == 0 {
		cc.azimuth, cc.polar = 0, 0
		return
	}
	cc.azimuth = math32.Atan2(offset[0], offset[2])
	cc.polar = math32.Acos(common.Clamp(offset[1]/cc.radius, -1, 1))
}

// apply clamps the spherical pose and writes it to the camera.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) apply() {
	minPolar := max(cc.minPolar, polarEpsilon)
	maxPolar := min(cc.maxPolar, math32.Pi-polarEpsilon)
	cc.polar = common.Clamp(cc.polar, minPolar, maxPolar)
	cc.radius = common.Clamp(cc.radius, cc.minRadius, cc.maxRadius)

	sinPolar := math32.Sin(cc.polar)
	offset := common.Vec3{
		cc.radius * sinPolar * math32.Sin(cc.azimuth),
		cc.radius * math32.Cos(cc.polar),
		cc.radius * sinPolar * math32.Cos(cc.azimuth),
	}
	cc.camera.SetPosition(cc.target.Add(offset))
	cc.camera.LookAt(cc.target)
}

// viewPlaneAxes returns the camera's right and up vectors for the current pose.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) viewPlaneAxes() (right, up common.Vec3) {
	sinPolar := math32.Sin(cc.polar)
	backward := common.Vec3{
		sinPolar * math32.Sin(cc.azimuth),
		math32.Cos(cc.polar),
		sinPolar * math32.Cos(cc.azimuth),
	}
	right = common.Vec3{0, 1, 0}.Cross(backward).Normalize()
	up = backward.Cross(right)
	return right, up
}
