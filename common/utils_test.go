package common

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 0, 3, 4))
	assert.Equal(t, "", Coalesce[string]())
	assert.Equal(t, "a", Coalesce("", "a"))
}

func TestPutFloatsAndUints(t *testing.T) {
	buf := make([]byte, 12)
	next := PutFloats(buf, 0, 1.5, -2)
	assert.Equal(t, 8, next)
	next = PutUints(buf, next, 7)
	assert.Equal(t, 12, next)

	assert.Equal(t, float32(1.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])))
	assert.Equal(t, float32(-2), math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])))
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(buf[8:12]))
}

func TestUint32sToBytes(t *testing.T) {
	b := Uint32sToBytes([]uint32{1, 0xFFFFFFFF})
	assert.Equal(t, []byte{1, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF}, b)
	assert.Empty(t, Uint32sToBytes(nil))
}

func TestHexColor(t *testing.T) {
	white := HexColor(0xFFFFFF)
	assert.InDelta(t, 1, white[0], 1e-3)
	assert.InDelta(t, 1, white[1], 1e-3)
	assert.InDelta(t, 1, white[2], 1e-3)

	red := HexColor(0xFF0000)
	assert.InDelta(t, 1, red[0], 1e-3)
	assert.Equal(t, float32(0), red[1])

	// mid grey in sRGB is darker in linear space
	grey := HexColor(0x808080)
	assert.InDelta(t, 0.2158, grey[0], 1e-3)
}

func TestSRGBRoundTrip(t *testing.T) {
	for _, c := range []float32{0, 0.001, 0.2, 0.5, 0.9, 1} {
		assert.InDelta(t, c, LinearToSRGB(SRGBToLinear(c)), 2e-3)
	}
}
