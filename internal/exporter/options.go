package exporter

import (
	"context"
	"fmt"

	"github.com/Faultbox/ovokit/internal/config"
	"github.com/Faultbox/ovokit/pkg/geometry"
	"github.com/Faultbox/ovokit/pkg/ovo"
	"github.com/Faultbox/ovokit/pkg/scene"
)

// Options controls an export.
type Options struct {
	IncludeMeshes bool
	IncludeLights bool
	RootPolicy    scene.RootPolicy
	UVPrecision   int
	LOD           geometry.LODOptions
	// AtomicWrite makes ExportFile write a temp file and rename it.
	AtomicWrite bool
	// Textures maps texture references to the names written to the
	// file. Nil writes references unchanged.
	Textures TextureResolver
}

// DefaultOptions returns the options used when no config is given.
func DefaultOptions() Options {
	return Options{
		IncludeMeshes: true,
		IncludeLights: true,
		RootPolicy:    scene.RootAlways,
		UVPrecision:   geometry.DefaultUVPrecision,
		LOD:           geometry.DefaultLODOptions(),
		AtomicWrite:   true,
	}
}

// OptionsFromConfig converts the export section of the config file.
func OptionsFromConfig(c config.ExportConfig) (Options, error) {
	policy, err := scene.ParseRootPolicy(c.RootPolicy)
	if err != nil {
		return Options{}, fmt.Errorf("export options: %w", err)
	}
	return Options{
		IncludeMeshes: c.IncludeMeshes,
		IncludeLights: c.IncludeLights,
		RootPolicy:    policy,
		UVPrecision:   c.UVPrecision,
		LOD: geometry.LODOptions{
			FaceThreshold: c.LODFaceThreshold,
			Ratios:        c.LODRatios,
		},
		AtomicWrite: c.AtomicWrite,
	}, nil
}

// MaterialSource supplies one material of the host scene.
type MaterialSource interface {
	MaterialRecord() ovo.Material
}

// TextureResolver turns a texture reference of a material slot into the
// name stored in the file. An error drops the texture from that slot.
type TextureResolver interface {
	ResolveTexture(ctx context.Context, material, slot, ref string) (string, error)
}

// TextureResolverFunc adapts a function to TextureResolver.
type TextureResolverFunc func(ctx context.Context, material, slot, ref string) (string, error)

func (f TextureResolverFunc) ResolveTexture(ctx context.Context, material, slot, ref string) (string, error) {
	return f(ctx, material, slot, ref)
}

func (o Options) include(obj scene.Object) bool {
	switch obj.Kind() {
	case scene.KindMesh:
		return o.IncludeMeshes
	case scene.KindLight:
		return o.IncludeLights
	default:
		return true
	}
}
