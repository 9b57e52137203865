package overlay

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestDrawNoneLeavesFrame(t *testing.T) {
	o, err := NewOverlay(WithoutText())
	require.NoError(t, err)
	defer o.Close()

	bg := color.RGBA{R: 245, G: 245, B: 245, A: 255}
	frame := solidFrame(200, 100, bg)
	require.NoError(t, o.Draw(frame, HUD{Kind: HUDNone}))
	assert.Equal(t, bg, frame.RGBAAt(100, 80))
}

func TestDrawErrorBannerIsRed(t *testing.T) {
	o, err := NewOverlay(WithoutText())
	require.NoError(t, err)
	defer o.Close()

	frame := solidFrame(200, 100, color.RGBA{R: 245, G: 245, B: 245, A: 255})
	require.NoError(t, o.Draw(frame, HUD{Kind: HUDError, Label: "parse failure"}))

	px := frame.RGBAAt(100, 100-panelMargin-panelHeight/2)
	assert.Greater(t, int(px.R), int(px.G)+60)
	assert.Greater(t, int(px.R), int(px.B)+60)
	assert.Equal(t, color.RGBA{R: 245, G: 245, B: 245, A: 255}, frame.RGBAAt(100, 5))
}

func TestDrawProgressDiffersFromError(t *testing.T) {
	o, err := NewOverlay(WithoutText())
	require.NoError(t, err)
	defer o.Close()

	bg := color.RGBA{R: 245, G: 245, B: 245, A: 255}
	loading := solidFrame(200, 100, bg)
	failed := solidFrame(200, 100, bg)
	require.NoError(t, o.Draw(loading, HUD{Kind: HUDProgress, Label: "loading", Progress: 0.5}))
	require.NoError(t, o.Draw(failed, HUD{Kind: HUDError, Label: "failed"}))

	y := 100 - panelMargin - panelHeight/2
	assert.NotEqual(t, loading.RGBAAt(100, y), failed.RGBAAt(100, y))
	assert.NotEqual(t, bg, loading.RGBAAt(100, y))
}

func TestDrawTinyFrameIsNoop(t *testing.T) {
	o, err := NewOverlay(WithoutText())
	require.NoError(t, err)
	defer o.Close()

	frame := solidFrame(10, 10, color.RGBA{A: 255})
	require.NoError(t, o.Draw(frame, HUD{Kind: HUDError, Label: "x"}))
	assert.Equal(t, color.RGBA{A: 255}, frame.RGBAAt(5, 5))
}

func TestProgressLabel(t *testing.T) {
	assert.Equal(t, "loading  50%", progressLabel(HUD{Label: "loading", Progress: 0.5}))
	assert.Equal(t, "loading", progressLabel(HUD{Label: "loading", Progress: -1}))
	assert.Equal(t, "x 100%", progressLabel(HUD{Label: "x", Progress: 3}))
}

func TestNewOverlayLoadsFont(t *testing.T) {
	o, err := NewOverlay(WithFontSize(11))
	require.NoError(t, err)
	defer o.Close()
	assert.NotNil(t, o.(*overlay).face)
}
