package ovo

import (
	ovomath "github.com/Faultbox/ovokit/pkg/math"
)

// Forward is the axis a light points along before its orientation is applied.
var Forward = ovomath.Vec3{X: 0, Y: 0, Z: -1}

// LightOrientation derives the rotation that turns Forward onto the
// stored light direction. Omni lights and zero directions have no
// orientation and return the identity. The record is not modified.
func LightOrientation(l *Light) ovomath.Quat {
	if l.Subtype == LightOmni {
		return ovomath.QuatIdentity()
	}
	return ovomath.QuatFromTo(Forward, l.Direction)
}

// NormalizeLight applies the encoder defaults. Omni lights always point
// Forward with a 180 degree cutoff. Directional lights have no radius.
// Spot cutoffs are capped at 40 degrees and only spots keep an exponent.
func NormalizeLight(p LightParams) LightParams {
	switch p.Subtype {
	case LightOmni:
		p.Cutoff = 180
		p.Direction = Forward
	case LightDirectional:
		p.Radius = 0
	case LightSpot:
		if p.Cutoff > 40 {
			p.Cutoff = 40
		}
	}
	if p.Subtype != LightSpot {
		p.SpotExponent = 0
	}
	if p.Subtype != LightOmni {
		if d := p.Direction.Normalize(); d != (ovomath.Vec3{}) {
			p.Direction = d
		} else {
			p.Direction = Forward
		}
	}
	return p
}
