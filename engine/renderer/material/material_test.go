package material

import (
	"image"
	"image/color"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterial_Defaults(t *testing.T) {
	m := NewMaterial(WithName("plain"))
	assert.Equal(t, "plain", m.Name())
	assert.Equal(t, Full, m.BaseColor())
	_, ok := m.AuthoredColor()
	assert.False(t, ok)
	assert.Nil(t, m.Map())
	assert.False(t, m.Wireframe())
	assert.NoError(t, m.Dispose())
}

func TestMaterial_AuthoredColorSurvivesOverride(t *testing.T) {
	c := common.ColorFromHex(0x336699)
	m := NewMaterial(WithBaseColor(c), WithWireframe(true))
	assert.True(t, m.Wireframe())

	m.SetBaseColor(Gray)
	assert.Equal(t, Gray, m.BaseColor())
	authored, ok := m.AuthoredColor()
	assert.True(t, ok)
	assert.Equal(t, c, authored)
}

func TestMaterial_DetachKeepsTexture(t *testing.T) {
	tr := common.NewResourceTracker()
	tex := NewTexture(tr, "albedo", image.NewRGBA(image.Rect(0, 0, 1, 1)))
	m := NewMaterial(WithColorTexture(tex))

	assert.Same(t, tex, m.Map())
	m.DetachMap()
	assert.Nil(t, m.Map())
	assert.Same(t, tex, m.RetainedMap())
	assert.False(t, tex.Disposed())

	m.AttachMap()
	assert.Same(t, tex, m.Map())

	require.NoError(t, m.Dispose())
	assert.True(t, tex.Disposed())
	assert.Nil(t, m.RetainedMap())
	assert.Zero(t, tr.Live())

	m.AttachMap()
	assert.Nil(t, m.Map(), "nothing to reattach after dispose")
}

func TestTexture_Sample(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	img.SetRGBA(1, 0, color.RGBA{G: 255, A: 255})
	img.SetRGBA(0, 1, color.RGBA{B: 255, A: 255})
	tex := NewTexture(nil, "quad", img)

	assert.Equal(t, common.Color{R: 1}, tex.Sample(0.1, 0.1))
	assert.Equal(t, common.Color{G: 1}, tex.Sample(0.9, 0.1))
	assert.Equal(t, common.Color{B: 1}, tex.Sample(0.1, 0.9))
	assert.Equal(t, common.Color{G: 1}, tex.Sample(1.9, -0.9), "coordinates wrap")
	assert.Equal(t, common.Color{R: 1}, tex.Sample(1, 0), "u = 1 wraps to the first column")

	require.NoError(t, tex.Dispose())
	assert.Nil(t, tex.Image())
	assert.Equal(t, common.Color{R: 1, G: 1, B: 1}, tex.Sample(0.5, 0.5))
}
