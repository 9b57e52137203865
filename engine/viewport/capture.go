package viewport

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/Carmen-Shannon/oxy-viewport/engine/loader"
)

// CaptureOptions controls CaptureWith.
type CaptureOptions struct {
	// Width and Height default to the surface size when zero.
	Width, Height int

	// Transparent replaces the background with transparent pixels.
	Transparent bool
}

func (v *viewport) Capture() ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mustLive("Capture")
	return v.capture()
}

// capture encodes the last frame, rendering one if needed. Caller must hold v.mu.
func (v *viewport) capture() ([]byte, error) {
	if v.st.phase != phaseReady {
		return nil, &CaptureError{Reason: "render surface not ready", Err: ErrNotReady}
	}
	frame := v.st.lastFrame
	if frame == nil {
		img, err := v.st.renderer.RenderImage(v.st.scene.Snapshot(), v.st.width, v.st.height, v.renderOptions(false))
		if err != nil {
			return nil, &CaptureError{Reason: "render failed", Err: err}
		}
		frame = img
	}
	return encodePNG(frame)
}

func (v *viewport) CaptureWith(opts CaptureOptions) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mustLive("CaptureWith")

	if v.st.phase != phaseReady {
		return nil, &CaptureError{Reason: "render surface not ready", Err: ErrNotReady}
	}
	w := common.Coalesce(opts.Width, v.st.width)
	h := common.Coalesce(opts.Height, v.st.height)
	if w < 0 || h < 0 {
		return nil, &CaptureError{Reason: fmt.Sprintf("invalid capture size %dx%d", w, h)}
	}
	img, err := v.st.renderer.RenderImage(v.st.scene.Snapshot(), w, h, v.renderOptions(opts.Transparent))
	if err != nil {
		return nil, &CaptureError{Reason: "render failed", Err: err}
	}
	return encodePNG(img)
}

func (v *viewport) CaptureFile(dir string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mustLive("CaptureFile")

	data, err := v.capture()
	if err != nil {
		return "", err
	}
	name := "viewport"
	if v.st.current != (loader.AssetDescriptor{}) {
		name = common.Coalesce(screenshotBase(v.st.current.Name()), name)
	}
	path := filepath.Join(dir, name+"_screenshot.png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("viewport: failed to write capture: %w", err)
	}
	common.Logger().Info("[Viewport] saved capture", "path", path, "bytes", len(data))
	return path, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &CaptureError{Reason: "png encoding failed", Err: err}
	}
	return buf.Bytes(), nil
}

// screenshotBase strips the extension and any path separators from an asset name.
func screenshotBase(name string) string {
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	if name == "." {
		return ""
	}
	return strings.TrimSpace(name)
}
