package scene

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/Carmen-Shannon/oxy-viewport/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewport/engine/light"
	"github.com/Carmen-Shannon/oxy-viewport/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// NodeKind tags a Node with the payload it carries. The kind is fixed at construction.
type NodeKind int

const (
	// KindGroup is a transform-only node that carries children.
	KindGroup NodeKind = iota

	// KindMesh carries a Mesh (geometry + material).
	KindMesh

	// KindLight carries a light.Light.
	KindLight

	// KindCamera carries a camera.Camera.
	KindCamera
)

// String returns a lowercase name for logs.
func (k NodeKind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindMesh:
		return "mesh"
	case KindLight:
		return "light"
	case KindCamera:
		return "camera"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Mesh is the payload of a KindMesh node.
type Mesh struct {
	Geometry *Geometry
	Material material.Material
}

// Node is one element of the scene graph. Every node has a local transform
// (translation, rotation, scale) and any number of children; the payload is
// selected by Kind.
//
// Nodes are not safe for concurrent mutation. A loaded subtree is built on the
// loader goroutine and handed to the viewport, which owns it from then on.
type Node struct {
	Name string

	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3

	kind     NodeKind
	parent   *Node
	children []*Node

	mesh   *Mesh
	light  light.Light
	camera camera.Camera
}

func newNode(name string, kind NodeKind) *Node {
	return &Node{
		Name:     name,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		kind:     kind,
	}
}

// NewGroup creates an empty transform node.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - *Node: the group node
func NewGroup(name string) *Node {
	return newNode(name, KindGroup)
}

// NewMeshNode creates a mesh node. Panics when geometry or material is nil.
//
// Parameters:
//   - name: the node name
//   - geo: the geometry; the node takes ownership
//   - mat: the material; the node takes ownership
//
// Returns:
//   - *Node: the mesh node
func NewMeshNode(name string, geo *Geometry, mat material.Material) *Node {
	if geo == nil || mat == nil {
		panic("scene: NewMeshNode requires non-nil geometry and material")
	}
	n := newNode(name, KindMesh)
	n.mesh = &Mesh{Geometry: geo, Material: mat}
	return n
}

// NewLightNode creates a light node. Panics when l is nil.
//
// Parameters:
//   - name: the node name
//   - l: the light source
//
// Returns:
//   - *Node: the light node
func NewLightNode(name string, l light.Light) *Node {
	if l == nil {
		panic("scene: NewLightNode requires a non-nil Light")
	}
	n := newNode(name, KindLight)
	n.light = l
	return n
}

// NewCameraNode creates a camera node. Panics when c is nil.
//
// Parameters:
//   - name: the node name
//   - c: the camera
//
// Returns:
//   - *Node: the camera node
func NewCameraNode(name string, c camera.Camera) *Node {
	if c == nil {
		panic("scene: NewCameraNode requires a non-nil Camera")
	}
	n := newNode(name, KindCamera)
	n.camera = c
	return n
}

// Kind returns the payload tag.
func (n *Node) Kind() NodeKind {
	return n.kind
}

// Mesh returns the mesh payload, or nil unless Kind is KindMesh.
func (n *Node) Mesh() *Mesh {
	return n.mesh
}

// Light returns the light payload, or nil unless Kind is KindLight.
func (n *Node) Light() light.Light {
	return n.light
}

// Camera returns the camera payload, or nil unless Kind is KindCamera.
func (n *Node) Camera() camera.Camera {
	return n.camera
}

// Parent returns the parent node, or nil for a detached root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Add appends child, first detaching it from any previous parent.
//
// Parameters:
//   - child: the node to adopt
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	child.RemoveFromParent()
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child if it is a direct child of n.
//
// Parameters:
//   - child: the node to detach
//
// Returns:
//   - bool: true if child was found and removed
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// RemoveFromParent detaches n from its parent, if any.
func (n *Node) RemoveFromParent() {
	if n.parent != nil {
		n.parent.Remove(n)
	}
}

// LocalMatrix returns T * R * S for this node.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	return common.ComposeTRS(n.Position, n.Rotation, n.Scale)
}

// WorldMatrix returns the product of every ancestor's local matrix and this node's.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// Traverse visits n and every descendant in pre-order.
//
// Parameters:
//   - fn: called for each node
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// TraverseWorld visits n and every descendant in pre-order with each node's world matrix,
// computed relative to parentWorld.
//
// Parameters:
//   - parentWorld: the world matrix of n's parent (identity for a root)
//   - fn: called for each node with its world matrix
func (n *Node) TraverseWorld(parentWorld mgl32.Mat4, fn func(*Node, mgl32.Mat4)) {
	world := parentWorld.Mul4(n.LocalMatrix())
	fn(n, world)
	for _, c := range n.children {
		c.TraverseWorld(world, fn)
	}
}

// Meshes returns every mesh node in the subtree in pre-order.
func (n *Node) Meshes() []*Node {
	var out []*Node
	n.Traverse(func(c *Node) {
		if c.kind == KindMesh {
			out = append(out, c)
		}
	})
	return out
}

// Dispose releases the geometry and material of every mesh in the subtree.
// A failure does not stop the remaining releases; all failures are joined and logged.
//
// Returns:
//   - error: the joined release failures, or nil
func (n *Node) Dispose() error {
	var errs []error
	n.Traverse(func(c *Node) {
		if c.kind != KindMesh || c.mesh == nil {
			return
		}
		if err := c.mesh.Geometry.Dispose(); err != nil {
			common.Logger().Warn("[Scene] geometry dispose failed", "node", c.Name, "err", err)
			errs = append(errs, fmt.Errorf("dispose geometry of %q: %w", c.Name, err))
		}
		if err := c.mesh.Material.Dispose(); err != nil {
			common.Logger().Warn("[Scene] material dispose failed", "node", c.Name, "err", err)
			errs = append(errs, fmt.Errorf("dispose material of %q: %w", c.Name, err))
		}
	})
	return errors.Join(errs...)
}
