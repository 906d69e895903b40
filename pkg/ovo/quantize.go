package ovo

import (
	"github.com/chewxy/math32"
	"github.com/x448/float16"

	ovomath "github.com/Faultbox/ovokit/pkg/math"
)

// PackNormal quantizes a direction into a signed 10-10-10-2 word.
// The vector is normalized first; each component becomes round(f*511)
// stored in 10 bits with negative values wrapped by +1024. The top two
// bits are left zero.
func PackNormal(v ovomath.Vec3) uint32 {
	n := v.Normalize()
	return packSnorm10(n.X) | packSnorm10(n.Y)<<10 | packSnorm10(n.Z)<<20
}

// UnpackNormal reverses PackNormal. Components are sign-extended from
// 10 bits, divided by 511 and clamped to [-1, 1]; the result is not
// renormalized.
func UnpackNormal(p uint32) ovomath.Vec3 {
	return ovomath.Vec3{
		X: unpackSnorm10(p),
		Y: unpackSnorm10(p >> 10),
		Z: unpackSnorm10(p >> 20),
	}
}

// PackTangent packs a tangent with the normal encoding and w = 0.
// A zero tangent packs to 0.
func PackTangent(v ovomath.Vec3) uint32 {
	if v == (ovomath.Vec3{}) {
		return 0
	}
	return PackNormal(v)
}

func packSnorm10(f float32) uint32 {
	if f > 1 {
		f = 1
	} else if f < -1 {
		f = -1
	}
	n := int32(math32.Round(f * 511))
	if n < 0 {
		n += 1024
	}
	return uint32(n) & 0x3FF
}

func unpackSnorm10(bits uint32) float32 {
	n := int32(bits & 0x3FF)
	if n >= 512 {
		n -= 1024
	}
	f := float32(n) / 511
	if f < -1 {
		return -1
	}
	return f
}

// PackUV stores u and v as IEEE-754 half floats, v in the high 16 bits.
// Both coordinates are clamped to [0, 1] first.
func PackUV(uv ovomath.Vec2) uint32 {
	c := uv.Clamp01()
	u := float16.Fromfloat32(c.X).Bits()
	v := float16.Fromfloat32(c.Y).Bits()
	return uint32(v)<<16 | uint32(u)
}

// UnpackUV reverses PackUV.
func UnpackUV(p uint32) ovomath.Vec2 {
	return ovomath.Vec2{
		X: float16.Frombits(uint16(p & 0xFFFF)).Float32(),
		Y: float16.Frombits(uint16(p >> 16)).Float32(),
	}
}
