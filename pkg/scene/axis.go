package scene

import (
	ovomath "github.com/Faultbox/ovokit/pkg/math"
)

// AxisCorrection is composed on the left of every direct child of a
// RootName record on export. It maps the authoring Z-up convention onto
// the runtime Y-up one.
func AxisCorrection() ovomath.Mat4 {
	return ovomath.RotateX(ovomath.Radians(-90))
}

// InverseAxisCorrection undoes AxisCorrection on import.
func InverseAxisCorrection() ovomath.Mat4 {
	return ovomath.RotateX(ovomath.Radians(90))
}
