package camera

import (
	"sync"

	"github.com/Carmen-Shannon/ruins/common"
)

// Default perspective and pose of the scene camera.
const (
	DefaultFov  float32 = 45
	DefaultNear float32 = 0.1
	DefaultFar  float32 = 100
)

// DefaultPosition is where the camera starts, looking at the origin.
var DefaultPosition = common.Vec3{4, 2, 4}

type cameraImpl struct {
	mu *sync.Mutex

	position common.Vec3
	target   common.Vec3
	up       common.Vec3

	fov    float32 // degrees
	aspect float32
	near   float32
	far    float32

	viewMatrix           common.Mat4
	projectionMatrix     common.Mat4
	viewProjectionMatrix common.Mat4
}

// Camera defines the interface for a perspective camera.
// The camera keeps its world pose (position and look-at target) and
// recomputes view and projection matrices whenever either changes.
type Camera interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - common.Vec3: the eye position
	Position() common.Vec3

	// Target returns the point the camera looks at.
	//
	// Returns:
	//   - common.Vec3: the look-at point
	Target() common.Vec3

	// Up returns the camera's up vector.
	Up() common.Vec3

	// Fov returns the vertical field of view in degrees.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// View returns the current view matrix (column-major).
	//
	// Returns:
	//   - common.Mat4: the view matrix
	View() common.Mat4

	// Projection returns the current projection matrix (column-major).
	//
	// Returns:
	//   - common.Mat4: the projection matrix
	Projection() common.Mat4

	// ViewProjection returns the current combined view-projection matrix (column-major).
	//
	// Returns:
	//   - common.Mat4: projection * view
	ViewProjection() common.Mat4

	// Uniform packs the camera state for the GPU.
	//
	// Returns:
	//   - GPUCameraUniform: view-projection, view and eye position
	Uniform() GPUCameraUniform

	// SetPosition moves the camera, keeping its target.
	//
	// Parameters:
	//   - p: the new eye position
	SetPosition(p common.Vec3)

	// LookAt points the camera at target.
	//
	// Parameters:
	//   - target: the world-space point to look at
	LookAt(target common.Vec3)

	// SetFov sets the vertical field of view in degrees.
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height). Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// Resize sets the aspect ratio from a framebuffer size. A zero height is ignored,
	// which happens while the window is minimised.
	//
	// Parameters:
	//   - width: framebuffer width in pixels
	//   - height: framebuffer height in pixels
	//
	// Returns:
	//   - error: always nil, present so the camera can be resized with render targets
	Resize(width, height uint32) error
}

var _ Camera = &cameraImpl{}

// NewCamera creates a perspective camera with a 45 degree field of view,
// near 0.1, far 100, positioned at (4, 2, 4) and looking at the origin.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: DefaultPosition,
		up:       common.Vec3{0, 1, 0},
		fov:      DefaultFov,
		aspect:   1.0,
		near:     DefaultNear,
		far:      DefaultFar,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) View() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) Projection() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjection() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{
		ViewProj: c.viewProjectionMatrix,
		View:     c.viewMatrix,
		Position: [4]float32{c.position[0], c.position[1], c.position[2], 1},
	}
}

func (c *cameraImpl) SetPosition(p common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
	c.updateMatrices()
}

func (c *cameraImpl) LookAt(target common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	c.SetAspect(float32(width) / float32(height))
	return nil
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = common.LookAt(c.position, c.target, c.up)
	c.projectionMatrix = common.Perspective(common.DegToRad(c.fov), c.aspect, c.near, c.far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul(c.viewMatrix)
}
