// Package lighting builds the fixed light presets of the viewport and swaps them into
// a scene as one atomic replacement.
package lighting

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/Carmen-Shannon/oxy-viewport/engine/light"
	"github.com/Carmen-Shannon/oxy-viewport/engine/scene"
)

// Mode selects a light preset.
type Mode int

const (
	// ModeStandard is one shadow-casting key light plus a low ambient fill.
	ModeStandard Mode = iota

	// ModeStudio is key, fill and rim directional lights plus very low ambient.
	ModeStudio

	// ModeBright is two strong directional lights plus moderate ambient.
	ModeBright

	// ModeDramatic is one very strong shadow-casting key light plus minimal ambient.
	ModeDramatic
)

var modeNames = map[Mode]string{
	ModeStandard: "standard",
	ModeStudio:   "studio",
	ModeBright:   "bright",
	ModeDramatic: "dramatic",
}

// String returns the lowercase preset name.
func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode parses a preset name case-insensitively.
//
// Parameters:
//   - s: the preset name
//
// Returns:
//   - Mode: the parsed mode
//   - error: error if s names no preset
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return m, nil
		}
	}
	return ModeStandard, fmt.Errorf("unknown lighting mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if _, ok := modeNames[m]; !ok {
		return nil, fmt.Errorf("unknown lighting mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// presetLight is one light of a preset.
type presetLight struct {
	name      string
	kind      light.LightType
	color     uint32
	intensity float32
	position  [3]float32
	shadows   bool
}

var presets = map[Mode][]presetLight{
	ModeStandard: {
		{name: "key", kind: light.LightTypeDirectional, color: 0xffffff, intensity: 1.0, position: [3]float32{5, 10, 5}, shadows: true},
		{name: "ambient", kind: light.LightTypeAmbient, color: 0x404040, intensity: 0.4},
	},
	ModeStudio: {
		{name: "key", kind: light.LightTypeDirectional, color: 0xffffff, intensity: 1.0, position: [3]float32{5, 10, 5}, shadows: true},
		{name: "fill", kind: light.LightTypeDirectional, color: 0xffffff, intensity: 0.3, position: [3]float32{-5, 5, 5}},
		{name: "rim", kind: light.LightTypeDirectional, color: 0xffffff, intensity: 0.5, position: [3]float32{0, 5, -10}},
		{name: "ambient", kind: light.LightTypeAmbient, color: 0xffffff, intensity: 0.2},
	},
	ModeBright: {
		{name: "key", kind: light.LightTypeDirectional, color: 0xffffff, intensity: 1.5, position: [3]float32{10, 10, 10}, shadows: true},
		{name: "fill", kind: light.LightTypeDirectional, color: 0xffffff, intensity: 0.8, position: [3]float32{-10, 10, -10}},
		{name: "ambient", kind: light.LightTypeAmbient, color: 0xffffff, intensity: 0.6},
	},
	ModeDramatic: {
		{name: "key", kind: light.LightTypeDirectional, color: 0xffffff, intensity: 2.0, position: [3]float32{10, 15, 5}, shadows: true},
		{name: "ambient", kind: light.LightTypeAmbient, color: 0x202020, intensity: 0.1},
	},
}

// Build constructs the light nodes of a preset. Every intensity is multiplied by
// intensityScale; a negative scale is treated as 0, which leaves the scene unlit.
//
// Parameters:
//   - mode: the preset
//   - intensityScale: uniform intensity multiplier
//
// Returns:
//   - []*scene.Node: the preset's light nodes
//   - error: error if mode is unknown
func Build(mode Mode, intensityScale float32) ([]*scene.Node, error) {
	lights, ok := presets[mode]
	if !ok {
		return nil, fmt.Errorf("unknown lighting mode %d", int(mode))
	}
	intensityScale = max(intensityScale, 0)

	nodes := make([]*scene.Node, 0, len(lights))
	for _, sp := range lights {
		opts := []light.LightBuilderOption{
			light.WithColor(sp.color),
			light.WithIntensity(sp.intensity * intensityScale),
		}
		if sp.kind == light.LightTypeDirectional {
			opts = append(opts,
				light.WithPosition(sp.position[0], sp.position[1], sp.position[2]),
				light.WithCastsShadows(sp.shadows),
			)
		}
		node := scene.NewLightNode(mode.String()+"-"+sp.name, light.NewLight(sp.kind, opts...))
		node.Position = node.Light().Position()
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// Compose replaces the scene's light set with the preset for mode. The old lights are
// removed and the new ones inserted in a single locked scene mutation.
//
// Parameters:
//   - scn: the scene to relight
//   - mode: the preset
//   - intensityScale: uniform intensity multiplier
//
// Returns:
//   - error: error if mode is unknown; the scene is left untouched
func Compose(scn scene.Scene, mode Mode, intensityScale float32) error {
	nodes, err := Build(mode, intensityScale)
	if err != nil {
		return err
	}
	scn.ReplaceLights(nodes...)
	common.Logger().Debug("[Lighting] preset applied", "mode", mode.String(), "lights", len(nodes))
	return nil
}
