// Package display applies viewer display toggles (wireframe, materials, textures) to
// the meshes of a loaded model without reloading it.
package display

import (
	"github.com/Carmen-Shannon/oxy-viewport/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewport/engine/scene"
)

// Options is the subset of viewer settings that affects mesh materials.
type Options struct {
	ShowWireframe bool
	ShowMaterials bool
	ShowTextures  bool
}

// Apply sets every mesh material in the subtree to reflect opts. It is idempotent:
// applying the same options twice leaves the same state as applying them once.
//
// With materials hidden the base color becomes material.Gray; with materials shown
// the authored color recorded at load time is restored (material.Full when the
// asset authored none). Hiding textures detaches the color texture without
// disposing it, so showing them again reattaches the same texture.
//
// Parameters:
//   - node: the model root
//   - opts: the display toggles
func Apply(node *scene.Node, opts Options) {
	if node == nil {
		return
	}
	for _, n := range node.Meshes() {
		mat := n.Mesh().Material
		mat.SetWireframe(opts.ShowWireframe)

		if opts.ShowMaterials {
			if c, ok := mat.AuthoredColor(); ok {
				mat.SetBaseColor(c)
			} else {
				mat.SetBaseColor(material.Full)
			}
		} else {
			mat.SetBaseColor(material.Gray)
		}

		if opts.ShowTextures {
			mat.AttachMap()
		} else {
			mat.DetachMap()
		}
	}
}

// EnableShadows turns on shadow casting and receiving for every mesh in the subtree.
// Called once when a model is loaded, not on every settings change.
//
// Parameters:
//   - node: the model root
func EnableShadows(node *scene.Node) {
	if node == nil {
		return
	}
	for _, n := range node.Meshes() {
		n.Mesh().Material.SetShadows(true, true)
	}
}
