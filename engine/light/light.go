package light

import (
	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeAmbient represents uniform light reaching every surface from every direction.
	// It has no position and never casts shadows.
	LightTypeAmbient LightType = iota

	// LightTypeDirectional represents a distant light shining from its position toward the
	// origin. Only the direction matters for shading; the position also anchors the
	// orthographic shadow frustum.
	LightTypeDirectional
)

// String returns a lowercase name for logs.
func (t LightType) String() string {
	switch t {
	case LightTypeAmbient:
		return "ambient"
	case LightTypeDirectional:
		return "directional"
	default:
		return "unknown"
	}
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType    LightType
	position     mgl32.Vec3
	target       mgl32.Vec3
	color        common.Color
	intensity    float32
	castsShadows bool
}

// Light defines the interface for a light source carried by a scene light node.
//
// Lights contribute to shading in the renderer each frame. Ambient lights add a flat
// term; directional lights add a Lambert term along Direction and may occlude via the
// shadow map when CastsShadows is set.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Position returns the world-space position of the light.
	// Meaningless for ambient lights.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Direction returns the normalized direction the light travels, from Position toward
	// its target. Zero for ambient lights.
	//
	// Returns:
	//   - mgl32.Vec3: the unit direction
	Direction() mgl32.Vec3

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - common.Color: the color
	Color() common.Color

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// CastsShadows returns whether this light is used for shadow map generation.
	//
	// Returns:
	//   - bool: true if the light casts shadows
	CastsShadows() bool

	// Radiance returns Color scaled by Intensity.
	//
	// Returns:
	//   - common.Color: the light's contribution per unit of cosine
	Radiance() common.Color
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with white color, intensity 1
// and any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		position:  mgl32.Vec3{0, 1, 0},
		color:     common.Color{R: 1, G: 1, B: 1},
		intensity: 1.0,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.lightType == LightTypeAmbient {
		l.castsShadows = false
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	if l.lightType == LightTypeAmbient {
		return mgl32.Vec3{}
	}
	return common.SafeNormalize(l.target.Sub(l.position), mgl32.Vec3{0, -1, 0})
}

func (l *lightImpl) Color() common.Color {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) CastsShadows() bool {
	return l.castsShadows
}

func (l *lightImpl) Radiance() common.Color {
	return l.color.Scale(l.intensity)
}
