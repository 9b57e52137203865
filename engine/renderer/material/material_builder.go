package material

import (
	"github.com/Carmen-Shannon/oxy-viewport/common"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor is an option builder that sets the base color and records it as the
// authored color so display toggles can restore it later.
//
// Parameters:
//   - c: the authored base color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option to a material
func WithBaseColor(c common.Color) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = c
		m.authoredColor = c
		m.hasAuthored = true
	}
}

// WithColorTexture is an option builder that sets and attaches the color texture.
//
// Parameters:
//   - tex: the color texture; the material takes ownership
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture option to a material
func WithColorTexture(tex *Texture) MaterialBuilderOption {
	return func(m *material) {
		m.colorMap = tex
		m.mapAttached = tex != nil
	}
}

// WithWireframe is an option builder that sets the initial wireframe flag.
//
// Parameters:
//   - on: true to draw edges only
//
// Returns:
//   - MaterialBuilderOption: a function that applies the wireframe option to a material
func WithWireframe(on bool) MaterialBuilderOption {
	return func(m *material) {
		m.wireframe = on
	}
}
