// Package scene converts between a scene tree and the flat OVO record
// stream, where each node only stores how many children follow it.
package scene

import (
	"fmt"

	"github.com/Faultbox/ovokit/pkg/geometry"
	ovomath "github.com/Faultbox/ovokit/pkg/math"
	"github.com/Faultbox/ovokit/pkg/ovo"
)

// Kind is the kind of a scene object.
type Kind int

const (
	KindNode Kind = iota
	KindMesh
	KindLight
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindMesh:
		return "mesh"
	case KindLight:
		return "light"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses a kind name as returned by String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "node":
		return KindNode, nil
	case "mesh":
		return KindMesh, nil
	case "light":
		return KindLight, nil
	default:
		return KindNode, fmt.Errorf("unknown object kind %q", s)
	}
}

// KindOf returns the kind of a decoded scene record.
func KindOf(rec ovo.SceneRecord) Kind {
	switch rec.(type) {
	case *ovo.Mesh:
		return KindMesh
	case *ovo.Light:
		return KindLight
	default:
		return KindNode
	}
}

// Object is the read-only view of a host scene object.
type Object interface {
	// ID is stable for the lifetime of the scene and unique within it.
	ID() string
	Name() string
	Kind() Kind
	// Transform is relative to the parent object.
	Transform() ovomath.Mat4
	Children() []Object
}

// Targeter is implemented by objects that reference another node by name.
type Targeter interface {
	Target() string
}

// MeshObject is an object with geometry.
type MeshObject interface {
	Object
	Geometry() (*geometry.Mesh, error)
	MaterialName() string
	MeshSubtype() ovo.MeshSubtype
	// Physics returns nil when the mesh has no rigid body.
	Physics() *ovo.Physics
}

// Decimator is implemented by mesh objects that can supply reduced
// levels of detail. A nil mesh with a nil error means the level is not
// available.
type Decimator interface {
	Decimate(ratio float32) (*geometry.Mesh, error)
}

// LightObject is an object that emits light.
type LightObject interface {
	Object
	LightParams() ovo.LightParams
}
