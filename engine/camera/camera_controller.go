package camera

import (
	"time"

	"github.com/Carmen-Shannon/ruins/common"
)

// CameraController defines the interface for orbit controls around a target.
// Input methods accumulate deltas; Update applies them, with exponential damping
// when enabled, and writes the resulting pose to the controlled camera.
type CameraController interface {
	// Camera returns the camera driven by this controller.
	//
	// Returns:
	//   - Camera: the controlled camera
	Camera() Camera

	// Target returns the orbit pivot.
	//
	// Returns:
	//   - common.Vec3: world-space target position
	Target() common.Vec3

	// SetTarget moves the orbit pivot immediately and updates the camera.
	//
	// Parameters:
	//   - target: world-space coordinates
	SetTarget(target common.Vec3)

	// Radius returns the current distance from the target.
	Radius() float32

	// Azimuth returns the horizontal angle around the Y axis in radians (0 = +Z).
	Azimuth() float32

	// Polar returns the angle from the +Y axis in radians.
	Polar() float32

	// Rotate queues an orbit from a pointer drag.
	// Positive dx orbits the camera to the left, positive dy orbits it upward.
	//
	// Parameters:
	//   - dx: horizontal drag in pixels
	//   - dy: vertical drag in pixels
	Rotate(dx, dy float32)

	// Pan queues a translation of the target and camera in the view plane.
	//
	// Parameters:
	//   - dx: horizontal drag in pixels
	//   - dy: vertical drag in pixels
	Pan(dx, dy float32)

	// Zoom queues a dolly toward the target. Positive delta moves closer.
	//
	// Parameters:
	//   - delta: scroll amount, scaled by the zoom speed
	Zoom(delta float32)

	// Update applies queued input and writes the camera pose.
	// Should be called once per frame with the frame's delta time.
	//
	// Parameters:
	//   - dt: time since the previous update
	Update(dt time.Duration)

	// Reset returns the controller and camera to the pose captured at construction.
	Reset()

	// DampingEnabled reports whether input is eased in over several frames.
	DampingEnabled() bool

	// SetDamping enables or disables damping and sets its per-frame factor.
	//
	// Parameters:
	//   - enabled: whether damping applies
	//   - factor: fraction of the remaining motion applied per 60 Hz frame
	SetDamping(enabled bool, factor float32)
}
