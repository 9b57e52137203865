package material

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewport/common"
)

var (
	// Gray is the neutral base color used when authored materials are hidden.
	Gray = common.ColorFromHex(0x808080)

	// Full is the base color restored when no authored color was recorded.
	Full = common.ColorFromHex(0xffffff)
)

// material is the implementation of the Material interface.
type material struct {
	mu *sync.Mutex

	name          string
	baseColor     common.Color
	authoredColor common.Color
	hasAuthored   bool

	colorMap    *Texture
	mapAttached bool

	wireframe     bool
	castShadow    bool
	receiveShadow bool
}

// Material defines the display surface of a mesh: a base color, an optional color
// texture, the wireframe flag and the shadow flags.
//
// The authored base color and texture are recorded when the material is built so that
// display toggles can hide and restore them without reloading the asset. Detaching the
// color texture keeps the texture alive; only Dispose releases it.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the base color currently used for shading.
	//
	// Returns:
	//   - common.Color: the active base color
	BaseColor() common.Color

	// SetBaseColor overrides the active base color. The authored color is unaffected.
	//
	// Parameters:
	//   - c: the new base color
	SetBaseColor(c common.Color)

	// AuthoredColor retrieves the base color recorded at load time.
	//
	// Returns:
	//   - common.Color: the authored color
	//   - bool: false when the asset did not author a color
	AuthoredColor() (common.Color, bool)

	// Map retrieves the attached color texture, or nil if none is attached.
	//
	// Returns:
	//   - *Texture: the attached texture or nil
	Map() *Texture

	// RetainedMap retrieves the color texture owned by this material whether or not it is attached.
	//
	// Returns:
	//   - *Texture: the retained texture or nil
	RetainedMap() *Texture

	// AttachMap reattaches the retained color texture. No-op without a retained texture.
	AttachMap()

	// DetachMap detaches the color texture without disposing it.
	DetachMap()

	// Wireframe reports whether the mesh is drawn as edges only.
	//
	// Returns:
	//   - bool: the wireframe flag
	Wireframe() bool

	// SetWireframe sets the wireframe flag.
	//
	// Parameters:
	//   - on: true to draw edges only
	SetWireframe(on bool)

	// CastShadow reports whether the mesh occludes shadow-casting lights.
	//
	// Returns:
	//   - bool: the cast flag
	CastShadow() bool

	// ReceiveShadow reports whether the mesh is darkened by occluders.
	//
	// Returns:
	//   - bool: the receive flag
	ReceiveShadow() bool

	// SetShadows sets both shadow flags.
	//
	// Parameters:
	//   - cast: whether the mesh casts shadows
	//   - receive: whether the mesh receives shadows
	SetShadows(cast, receive bool)

	// Dispose releases the retained color texture.
	//
	// Returns:
	//   - error: error if the texture fails to release
	Dispose() error
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
// The default base color is Full and no texture is attached.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		mu:        &sync.Mutex{},
		baseColor: Full,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() common.Color {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baseColor
}

func (m *material) SetBaseColor(c common.Color) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseColor = c
}

func (m *material) AuthoredColor() (common.Color, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authoredColor, m.hasAuthored
}

func (m *material) Map() *Texture {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.mapAttached {
		return nil
	}
	return m.colorMap
}

func (m *material) RetainedMap() *Texture {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.colorMap
}

func (m *material) AttachMap() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mapAttached = m.colorMap != nil
}

func (m *material) DetachMap() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mapAttached = false
}

func (m *material) Wireframe() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wireframe
}

func (m *material) SetWireframe(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wireframe = on
}

func (m *material) CastShadow() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.castShadow
}

func (m *material) ReceiveShadow() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.receiveShadow
}

func (m *material) SetShadows(cast, receive bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.castShadow = cast
	m.receiveShadow = receive
}

func (m *material) Dispose() error {
	m.mu.Lock()
	tex := m.colorMap
	m.colorMap = nil
	m.mapAttached = false
	m.mu.Unlock()
	if tex == nil {
		return nil
	}
	return tex.Dispose()
}
