package common

import (
	"encoding/binary"
	"math"
)

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: candidates in priority order
//
// Returns:
//   - T: the first non-zero value, or the zero value of T
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// PutFloats writes vals into buf as little-endian float32 values starting at
// offset and returns the offset just past the last value written.
//
// Parameters:
//   - buf: destination buffer, must hold offset + 4*len(vals) bytes
//   - offset: byte offset of the first value
//   - vals: the values to encode
//
// Returns:
//   - int: the next free offset
func PutFloats(buf []byte, offset int, vals ...float32) int {
	for _, v := range vals {
		binary.LittleEndian.PutUint32(buf[offset:offset+4], math.Float32bits(v))
		offset += 4
	}
	return offset
}

// PutUints writes vals into buf as little-endian uint32 values starting at
// offset and returns the offset just past the last value written.
func PutUints(buf []byte, offset int, vals ...uint32) int {
	for _, v := range vals {
		binary.LittleEndian.PutUint32(buf[offset:offset+4], v)
		offset += 4
	}
	return offset
}

// Uint32sToBytes encodes indices as a little-endian byte slice for index buffer uploads.
func Uint32sToBytes(vals []uint32) []byte {
	buf := make([]byte, 4*len(vals))
	PutUints(buf, 0, vals...)
	return buf
}

// BoolToUint32 maps true to 1 and false to 0 for GPU flag fields.
func BoolToUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
