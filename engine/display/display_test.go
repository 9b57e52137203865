package display

import (
	"image"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/Carmen-Shannon/oxy-viewport/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewport/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = common.ColorFromHex(0xff0000)

func model(tr *common.ResourceTracker) (*scene.Node, material.Material, material.Material, *material.Texture) {
	tex := material.NewTexture(tr, "albedo", image.NewRGBA(image.Rect(0, 0, 2, 2)))
	authored := material.NewMaterial(material.WithBaseColor(red), material.WithColorTexture(tex))
	plain := material.NewMaterial()

	geo := func() *scene.Geometry {
		return scene.NewGeometry(tr, []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, nil, nil, nil)
	}
	root := scene.NewGroup("model")
	root.Add(scene.NewMeshNode("a", geo(), authored))
	inner := scene.NewGroup("inner")
	inner.Add(scene.NewMeshNode("b", geo(), plain))
	root.Add(inner)
	return root, authored, plain, tex
}

func TestApply_HideAndRestore(t *testing.T) {
	tr := common.NewResourceTracker()
	root, authored, plain, tex := model(tr)

	Apply(root, Options{ShowWireframe: true, ShowMaterials: false, ShowTextures: false})
	assert.True(t, authored.Wireframe())
	assert.True(t, plain.Wireframe())
	assert.Equal(t, material.Gray, authored.BaseColor())
	assert.Equal(t, material.Gray, plain.BaseColor())
	assert.Nil(t, authored.Map())
	assert.False(t, tex.Disposed(), "hiding textures keeps them alive")

	Apply(root, Options{ShowMaterials: true, ShowTextures: true})
	assert.False(t, authored.Wireframe())
	assert.Equal(t, red, authored.BaseColor(), "authored color is restored")
	assert.Equal(t, material.Full, plain.BaseColor(), "meshes without an authored color restore Full")
	assert.Same(t, tex, authored.Map())
	assert.Nil(t, plain.Map())
	assert.Equal(t, 3, tr.Live())
}

func TestApply_Idempotent(t *testing.T) {
	tr := common.NewResourceTracker()
	opts := Options{ShowWireframe: true, ShowMaterials: false, ShowTextures: true}

	once, a1, p1, _ := model(tr)
	Apply(once, opts)

	twice, a2, p2, _ := model(tr)
	Apply(twice, opts)
	Apply(twice, opts)

	for _, pair := range [][2]material.Material{{a1, a2}, {p1, p2}} {
		assert.Equal(t, pair[0].BaseColor(), pair[1].BaseColor())
		assert.Equal(t, pair[0].Wireframe(), pair[1].Wireframe())
		assert.Equal(t, pair[0].Map() == nil, pair[1].Map() == nil)
	}
}

func TestEnableShadows(t *testing.T) {
	root, authored, plain, _ := model(nil)
	require.False(t, authored.CastShadow())

	EnableShadows(root)
	for _, m := range []material.Material{authored, plain} {
		assert.True(t, m.CastShadow())
		assert.True(t, m.ReceiveShadow())
	}

	assert.NotPanics(t, func() {
		Apply(nil, Options{})
		EnableShadows(nil)
	})
}
