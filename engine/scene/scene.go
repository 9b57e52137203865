package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/Carmen-Shannon/oxy-viewport/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewport/engine/light"
)

// DefaultBackground is the clear color of a new scene (#f5f5f5).
var DefaultBackground = common.ColorFromHex(0xf5f5f5)

// Snapshot is a consistent view of the scene taken under the scene lock.
// The renderer draws from a snapshot so a frame never observes a half-replaced
// light set.
type Snapshot struct {
	Camera     camera.Camera
	Model      *Node
	Lights     []light.Light
	Background common.Color
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.RWMutex

	name       string
	root       *Node
	cameraNode *Node
	model      *Node
	background common.Color
}

// Scene defines the interface for the viewport's world: one root group holding the
// camera node, the active light set, and at most one attached model subtree.
//
// Model and light replacement are single locked mutations, so a Snapshot taken by
// the renderer always sees either the old or the new state in full.
type Scene interface {
	// Name returns the scene's name.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// Camera returns the scene's camera.
	//
	// Returns:
	//   - camera.Camera: the camera carried by the scene's camera node
	Camera() camera.Camera

	// Root returns the root group.
	//
	// Returns:
	//   - *Node: the root node
	Root() *Node

	// Model returns the attached model subtree, or nil.
	//
	// Returns:
	//   - *Node: the model root or nil
	Model() *Node

	// ReplaceModel detaches and disposes the current model, then attaches next.
	// Passing nil just removes the current model. Dispose failures are logged and
	// returned after next is attached.
	//
	// Parameters:
	//   - next: the new model root, or nil
	//
	// Returns:
	//   - error: error if releasing the previous model failed
	ReplaceModel(next *Node) error

	// Lights returns the light sources of every light node in the scene.
	//
	// Returns:
	//   - []light.Light: the active light set
	Lights() []light.Light

	// ReplaceLights removes every light node in the scene and adds nodes under the root,
	// in one locked step.
	//
	// Parameters:
	//   - nodes: the new light nodes; non-light nodes are ignored
	ReplaceLights(nodes ...*Node)

	// Background returns the clear color.
	//
	// Returns:
	//   - common.Color: the background color
	Background() common.Color

	// SetBackground sets the clear color.
	//
	// Parameters:
	//   - c: the background color
	SetBackground(c common.Color)

	// Snapshot captures camera, model, lights and background under one read lock.
	//
	// Returns:
	//   - Snapshot: the frame's view of the scene
	Snapshot() Snapshot

	// Dispose removes and disposes the model and removes all lights.
	//
	// Returns:
	//   - error: error if releasing the model failed
	Dispose() error
}

var _ Scene = &scene{}

// NewScene creates a scene around a camera. Panics if cam is nil.
//
// Parameters:
//   - cam: the camera to carry in the scene's camera node
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	s := &scene{
		mu:         &sync.RWMutex{},
		name:       "viewport",
		root:       NewGroup("root"),
		background: DefaultBackground,
	}
	s.cameraNode = NewCameraNode("camera", cam)
	s.root.Add(s.cameraNode)

	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cameraNode.Camera()
}

func (s *scene) Root() *Node {
	return s.root
}

func (s *scene) Model() *Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

func (s *scene) ReplaceModel(next *Node) error {
	s.mu.Lock()
	prev := s.model
	if prev != nil {
		s.root.Remove(prev)
	}
	s.model = nil

	var err error
	if prev != nil {
		if err = prev.Dispose(); err != nil {
			common.Logger().Warn("[Scene] previous model released with errors", "model", prev.Name, "err", err)
		}
	}

	if next != nil {
		s.root.Add(next)
		s.model = next
	}
	s.mu.Unlock()
	return err
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLights()
}

// collectLights gathers the light payloads of every light node. Caller must hold s.mu.
func (s *scene) collectLights() []light.Light {
	var out []light.Light
	s.root.Traverse(func(n *Node) {
		if n.Kind() == KindLight {
			out = append(out, n.Light())
		}
	})
	return out
}

func (s *scene) ReplaceLights(nodes ...*Node) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stale []*Node
	s.root.Traverse(func(n *Node) {
		if n.Kind() == KindLight {
			stale = append(stale, n)
		}
	})
	for _, n := range stale {
		n.RemoveFromParent()
	}
	for _, n := range nodes {
		if n != nil && n.Kind() == KindLight {
			s.root.Add(n)
		}
	}
}

func (s *scene) Background() common.Color {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

func (s *scene) SetBackground(c common.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = c
}

func (s *scene) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Camera:     s.cameraNode.Camera(),
		Model:      s.model,
		Lights:     s.collectLights(),
		Background: s.background,
	}
}

func (s *scene) Dispose() error {
	s.ReplaceLights()
	return s.ReplaceModel(nil)
}
