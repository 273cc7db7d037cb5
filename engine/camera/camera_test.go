package camera

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/ruins/common"
)

const eps = 1e-4

func assertVec3(t *testing.T, want, got common.Vec3) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, want[i], got[i], eps, "component %d", i)
	}
}

func TestCameraDefaults(t *testing.T) {
	c := NewCamera()

	assert.Equal(t, DefaultFov, c.Fov())
	assert.Equal(t, DefaultNear, c.Near())
	assert.Equal(t, DefaultFar, c.Far())
	assert.Equal(t, float32(1), c.Aspect())
	assert.Equal(t, common.Vec3{4, 2, 4}, c.Position())
	assert.Equal(t, common.Vec3{}, c.Target())
}

func TestCameraViewMapsTargetAhead(t *testing.T) {
	c := NewCamera()
	// the target lies on the view -Z axis at the eye distance
	p := c.View().MulPoint(common.Vec3{})
	assert.InDelta(t, 0, p[0], eps)
	assert.InDelta(t, 0, p[1], eps)
	assert.InDelta(t, -6, p[2], eps)

	clip := c.ViewProjection().MulPoint(common.Vec3{})
	assert.InDelta(t, 0, clip[0], eps)
	assert.InDelta(t, 0, clip[1], eps)
	assert.Greater(t, clip[2], float32(0))
	assert.Less(t, clip[2], float32(1))
}

func TestCameraResize(t *testing.T) {
	c := NewCamera()
	require.NoError(t, c.Resize(1280, 720))
	assert.InDelta(t, 1280.0/720.0, c.Aspect(), eps)

	require.NoError(t, c.Resize(800, 0))
	assert.InDelta(t, 1280.0/720.0, c.Aspect(), eps)

	c.SetAspect(-1)
	assert.InDelta(t, 1280.0/720.0, c.Aspect(), eps)
}

func TestCameraOptions(t *testing.T) {
	c := NewCamera(
		WithPosition(common.Vec3{0, 0, 10}),
		WithLookAt(common.Vec3{0, 0, 0}),
		WithFov(60),
		WithAspect(2),
		WithClipPlanes(1, 50),
	)
	assert.Equal(t, float32(60), c.Fov())
	assert.Equal(t, float32(2), c.Aspect())
	assert.Equal(t, float32(1), c.Near())
	assert.Equal(t, float32(50), c.Far())
	assertVec3(t, common.Vec3{0, 0, -10}, c.View().MulPoint(common.Vec3{}))
}

func TestCameraUniformMarshal(t *testing.T) {
	c := NewCamera()
	u := c.Uniform()
	assert.Equal(t, 144, u.Size())
	assert.Equal(t, [4]float32{4, 2, 4, 1}, u.Position)
	assert.Equal(t, [16]float32(c.ViewProjection()), u.ViewProj)

	buf := u.Marshal()
	require.Len(t, buf, 144)
	assert.Equal(t, float32(4), math.Float32frombits(binary.LittleEndian.Uint32(buf[128:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[140:])))
	assert.Equal(t, u.View[0], math.Float32frombits(binary.LittleEndian.Uint32(buf[64:])))
}

func TestOrbitControllerKeepsInitialPose(t *testing.T) {
	c := NewCamera()
	cc := NewOrbitController(c)

	assert.InDelta(t, 6, cc.Radius(), eps)
	assert.InDelta(t, math.Pi/4, cc.Azimuth(), eps)
	assertVec3(t, common.Vec3{4, 2, 4}, c.Position())
	assert.True(t, cc.DampingEnabled())
}

func TestOrbitControllerRotateWithoutDamping(t *testing.T) {
	c := NewCamera()
	cc := NewOrbitController(c, WithDamping(false, 0), WithRotateSpeed(0.01))
	start := cc.Azimuth()

	cc.Rotate(-10, 0)
	cc.Update(time.Second / 60)
	assert.InDelta(t, start+0.1, cc.Azimuth(), eps)
	assert.InDelta(t, 6, c.Position().Length(), eps)

	// nothing left queued
	cc.Update(time.Second / 60)
	assert.InDelta(t, start+0.1, cc.Azimuth(), eps)
}

func TestOrbitControllerDampingIsFrameRateIndependent(t *testing.T) {
	rotate := func(steps int, dt time.Duration) float32 {
		cc := NewOrbitController(NewCamera(), WithRotateSpeed(0.01))
		start := cc.Azimuth()
		cc.Rotate(-100, 0)
		for range steps {
			cc.Update(dt)
		}
		return cc.Azimuth() - start
	}

	at60 := rotate(60, time.Second/60)
	at120 := rotate(120, time.Second/120)
	assert.InDelta(t, at60, at120, 1e-3)

	// one 60 Hz frame applies the damping factor
	cc := NewOrbitController(NewCamera(), WithRotateSpeed(0.01))
	start := cc.Azimuth()
	cc.Rotate(-100, 0)
	cc.Update(time.Second / 60)
	assert.InDelta(t, 1.0*DefaultDampingFactor, cc.Azimuth()-start, eps)
}

func TestOrbitControllerPolarClamp(t *testing.T) {
	c := NewCamera()
	cc := NewOrbitController(c, WithDamping(false, 0), WithPolarBounds(0.2, 1.2))

	cc.Rotate(0, 10000)
	cc.Update(time.Millisecond)
	assert.InDelta(t, 0.2, cc.Polar(), eps)

	cc.Rotate(0, -10000)
	cc.Update(time.Millisecond)
	assert.InDelta(t, 1.2, cc.Polar(), eps)
}

func TestOrbitControllerZoom(t *testing.T) {
	c := NewCamera()
	cc := NewOrbitController(c, WithDamping(false, 0), WithRadiusBounds(2, 8))

	cc.Zoom(1)
	cc.Update(time.Millisecond)
	assert.InDelta(t, 6*0.95, cc.Radius(), eps)

	cc.Zoom(1000)
	cc.Update(time.Millisecond)
	assert.InDelta(t, 2, cc.Radius(), eps)

	cc.Zoom(-1000)
	cc.Update(time.Millisecond)
	assert.InDelta(t, 8, cc.Radius(), eps)
}

func TestOrbitControllerPanMovesTarget(t *testing.T) {
	c := NewCamera()
	cc := NewOrbitController(c, WithDamping(false, 0))
	offsetBefore := c.Position().Sub(cc.Target())

	cc.Pan(100, 0)
	cc.Update(time.Millisecond)

	target := cc.Target()
	assert.Greater(t, target.Length(), float32(0))
	assert.InDelta(t, 0, target[1], eps)
	assertVec3(t, offsetBefore, c.Position().Sub(target))
	assertVec3(t, target, c.Target())
}

func TestOrbitControllerReset(t *testing.T) {
	c := NewCamera()
	cc := NewOrbitController(c, WithDamping(false, 0))

	cc.Rotate(50, 20)
	cc.Pan(10, 10)
	cc.Zoom(3)
	cc.Update(time.Millisecond)
	cc.Reset()

	assertVec3(t, common.Vec3{4, 2, 4}, c.Position())
	assertVec3(t, common.Vec3{}, c.Target())
	assert.InDelta(t, 6, cc.Radius(), eps)
}
