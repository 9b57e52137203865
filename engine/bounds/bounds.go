// Package bounds computes axis-aligned bounds of scene subtrees and normalizes loaded
// models into a canonical size and position.
package bounds

import (
	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/Carmen-Shannon/oxy-viewport/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// TargetSize is the largest dimension every model is scaled to.
const TargetSize float32 = 10

// ComputeBox returns the bounds of every mesh vertex in the subtree, expressed in the
// space of node's parent (node's own transform is applied, its ancestors' are not).
// Returns an empty box when the subtree has no geometry.
//
// Parameters:
//   - node: the subtree root
//
// Returns:
//   - common.Box3: the enclosing box
func ComputeBox(node *scene.Node) common.Box3 {
	box := common.EmptyBox3()
	if node == nil {
		return box
	}
	node.TraverseWorld(mgl32.Ident4(), func(n *scene.Node, world mgl32.Mat4) {
		if n.Kind() != scene.KindMesh {
			return
		}
		for _, p := range n.Mesh().Geometry.Positions() {
			box = box.ExpandByPoint(mgl32.TransformCoordinate(p, world))
		}
	})
	return box
}

// Normalize scales node uniformly so its largest dimension equals TargetSize and
// translates it so the bounds center sits at the origin. Geometry with zero extent on
// every axis keeps scale 1 and is only recentred. The node is mutated in place.
//
// Parameters:
//   - node: the model root; must not have a parent
//
// Returns:
//   - *scene.Node: node, for chaining
func Normalize(node *scene.Node) *scene.Node {
	if node == nil {
		return nil
	}
	box := ComputeBox(node)
	if box.IsEmpty() {
		return node
	}

	scale := float32(1)
	if maxDim := box.MaxDim(); maxDim > 0 {
		scale = TargetSize / maxDim
	}

	// Scaling about the parent origin moves the center to center*scale, so translate by
	// -center*scale to land it at the origin.
	center := box.Center()
	node.Scale = node.Scale.Mul(scale)
	node.Position = node.Position.Mul(scale).Sub(center.Mul(scale))
	return node
}
