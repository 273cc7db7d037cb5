package render_target

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestWrapDoesNotOwn(t *testing.T) {
	rt := Wrap("screen", nil, wgpu.TextureFormatBGRA8UnormSrgb, 640, 480)

	assert.Equal(t, "screen", rt.Label())
	assert.Equal(t, uint32(640), rt.Width())
	assert.Equal(t, uint32(480), rt.Height())
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, rt.Format())
	assert.Nil(t, rt.Texture())
	assert.NotPanics(t, rt.Release)
}

func TestIsSRGB(t *testing.T) {
	assert.True(t, IsSRGB(wgpu.TextureFormatBGRA8UnormSrgb))
	assert.True(t, IsSRGB(wgpu.TextureFormatRGBA8UnormSrgb))
	assert.False(t, IsSRGB(wgpu.TextureFormatBGRA8Unorm))
	assert.False(t, IsSRGB(DefaultFormat))
}
