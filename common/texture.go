// package common contains plain helper types shared by every engine package: math on
// top of mgl32, colors, bounds, texture decoding, resource tracking and the logger.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// TextureSource describes where the pixels of a texture come from.
// For embedded textures (GLB, data URIs) Data holds the encoded image bytes.
// For external textures Path names a file inside FS.
type TextureSource struct {
	// Name is an identifier for this texture (e.g. the glTF image name).
	Name string

	// Path is the file path for external textures (empty for embedded).
	Path string

	// FS resolves Path. Ignored when Data is set.
	FS fs.FS

	// Data contains encoded image bytes for embedded textures.
	Data []byte

	// MimeType indicates the image format (e.g. "image/png").
	MimeType string
}

// Decode decodes the texture into an RGBA image.
// Supports PNG, JPEG, BMP and WebP.
// Reference: https://pkg.go.dev/image
//
// Returns:
//   - *image.RGBA: the decoded pixels with bounds starting at (0, 0)
//   - error: error if the source is empty or decoding fails
func (t *TextureSource) Decode() (*image.RGBA, error) {
	if t == nil {
		return nil, fmt.Errorf("texture is nil")
	}

	var r io.Reader
	switch {
	case len(t.Data) > 0:
		r = bytes.NewReader(t.Data)
	case t.Path != "" && t.FS != nil:
		f, err := t.FS.Open(t.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open texture file %s: %w", t.Path, err)
		}
		defer f.Close()
		r = f
	default:
		return nil, fmt.Errorf("texture %q has neither data nor path", t.Name)
	}

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %q: %w", t.Name, err)
	}
	return ToRGBA(img), nil
}

// ToRGBA copies img into a new RGBA image whose bounds start at the origin.
// An *image.RGBA already anchored at the origin is returned as is.
//
// Parameters:
//   - img: the source image
//
// Returns:
//   - *image.RGBA: the converted image
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
