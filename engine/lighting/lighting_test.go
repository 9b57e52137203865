package lighting

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/Carmen-Shannon/oxy-viewport/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewport/engine/light"
	"github.com/Carmen-Shannon/oxy-viewport/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lightSummary struct {
	kind      light.LightType
	color     uint32
	intensity float32
	position  mgl32.Vec3
	shadows   bool
}

func summarize(nodes []*scene.Node) []lightSummary {
	out := make([]lightSummary, 0, len(nodes))
	for _, n := range nodes {
		l := n.Light()
		s := lightSummary{kind: l.Type(), color: l.Color().Hex(), intensity: l.Intensity(), shadows: l.CastsShadows()}
		if l.Type() == light.LightTypeDirectional {
			s.position = l.Position()
		}
		out = append(out, s)
	}
	return out
}

func TestBuild_PresetTables(t *testing.T) {
	dir, amb := light.LightTypeDirectional, light.LightTypeAmbient
	tests := []struct {
		mode Mode
		want []lightSummary
	}{
		{ModeStandard, []lightSummary{
			{dir, 0xffffff, 1.0, mgl32.Vec3{5, 10, 5}, true},
			{amb, 0x404040, 0.4, mgl32.Vec3{}, false},
		}},
		{ModeStudio, []lightSummary{
			{dir, 0xffffff, 1.0, mgl32.Vec3{5, 10, 5}, true},
			{dir, 0xffffff, 0.3, mgl32.Vec3{-5, 5, 5}, false},
			{dir, 0xffffff, 0.5, mgl32.Vec3{0, 5, -10}, false},
			{amb, 0xffffff, 0.2, mgl32.Vec3{}, false},
		}},
		{ModeBright, []lightSummary{
			{dir, 0xffffff, 1.5, mgl32.Vec3{10, 10, 10}, true},
			{dir, 0xffffff, 0.8, mgl32.Vec3{-10, 10, -10}, false},
			{amb, 0xffffff, 0.6, mgl32.Vec3{}, false},
		}},
		{ModeDramatic, []lightSummary{
			{dir, 0xffffff, 2.0, mgl32.Vec3{10, 15, 5}, true},
			{amb, 0x202020, 0.1, mgl32.Vec3{}, false},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			nodes, err := Build(tt.mode, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, summarize(nodes))
		})
	}
}

func TestBuild_IntensityScale(t *testing.T) {
	nodes, err := Build(ModeStudio, 2)
	require.NoError(t, err)
	got := summarize(nodes)
	assert.InDelta(t, 2.0, got[0].intensity, 1e-6)
	assert.InDelta(t, 0.6, got[1].intensity, 1e-6)
	assert.Greater(t, got[0].intensity, got[2].intensity, "ordering is preserved")

	nodes, err = Build(ModeStandard, -1)
	require.NoError(t, err)
	for _, n := range nodes {
		assert.Zero(t, n.Light().Intensity(), "negative scale clamps to unlit")
	}
}

func TestBuild_UnknownMode(t *testing.T) {
	_, err := Build(Mode(42), 1)
	assert.Error(t, err)
}

func TestCompose_ReplacesLightSet(t *testing.T) {
	scn := scene.NewScene(camera.NewCamera())

	require.NoError(t, Compose(scn, ModeStudio, 1))
	assert.Len(t, scn.Lights(), 4)

	require.NoError(t, Compose(scn, ModeDramatic, 1))
	lights := scn.Lights()
	require.Len(t, lights, 2, "old preset lights are removed")
	assert.InDelta(t, 2.0, lights[0].Intensity(), 1e-6)

	assert.Error(t, Compose(scn, Mode(-1), 1))
	assert.Len(t, scn.Lights(), 2, "a failed compose leaves the scene untouched")
}

func TestMode_TextRoundTrip(t *testing.T) {
	for _, m := range []Mode{ModeStandard, ModeStudio, ModeBright, ModeDramatic} {
		text, err := m.MarshalText()
		require.NoError(t, err)
		var back Mode
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, m, back)
	}

	m, err := ParseMode(" Studio ")
	require.NoError(t, err)
	assert.Equal(t, ModeStudio, m)

	_, err = ParseMode("neon")
	assert.Error(t, err)
	_, err = Mode(9).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "mode(9)", Mode(9).String())
}

func TestLight_Radiance(t *testing.T) {
	l := light.NewLight(light.LightTypeAmbient, light.WithColor(0x404040), light.WithIntensity(0.5), light.WithCastsShadows(true))
	assert.False(t, l.CastsShadows(), "ambient lights never cast shadows")
	assert.Equal(t, mgl32.Vec3{}, l.Direction())
	assert.InDelta(t, common.ColorFromHex(0x404040).R*0.5, l.Radiance().R, 1e-6)

	d := light.NewLight(light.LightTypeDirectional, light.WithPosition(0, 10, 0))
	assert.InDelta(t, -1, d.Direction()[1], 1e-6, "directional lights point at their target")
}
