// Package overlay draws the viewport status HUD over a rendered frame.
package overlay

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// Panel layout in pixels.
const (
	panelHeight  = 36
	panelMargin  = 12
	barHeight    = 8
	defaultPoint = 13
)

// HUDKind selects which panel the overlay draws.
type HUDKind int

const (
	// HUDNone draws nothing.
	HUDNone HUDKind = iota

	// HUDProgress draws a progress bar with a label.
	HUDProgress

	// HUDError draws a red banner with the error message.
	HUDError
)

// HUD is the content of one overlay draw.
type HUD struct {
	Kind HUDKind

	// Label is shown on the panel.
	Label string

	// Progress is in [0, 1]. A negative value draws an indeterminate bar.
	Progress float64
}

// overlay is the implementation of the Overlay interface.
type overlay struct {
	mu *sync.Mutex

	face     text.Face
	fontSize float64

	panel      *gg.Context
	panelWidth int

	barColor    string
	errorColor  string
	panelColor  string
	labelColor  string
	disableText bool
}

// Overlay draws HUD panels onto frames in place.
type Overlay interface {
	// Draw composites the HUD along the bottom edge of frame.
	//
	// Parameters:
	//   - frame: the rendered frame, modified in place
	//   - hud: what to draw
	//
	// Returns:
	//   - error: error if the panel could not be rasterized
	Draw(frame *image.RGBA, hud HUD) error

	// Close releases the panel context.
	Close()
}

var _ Overlay = &overlay{}

// NewOverlay creates an Overlay. The Go Regular font is loaded unless text is disabled.
//
// Parameters:
//   - options: variadic list of OverlayBuilderOption functions to configure the overlay
//
// Returns:
//   - Overlay: the overlay
//   - error: error if the font cannot be parsed
func NewOverlay(options ...OverlayBuilderOption) (Overlay, error) {
	o := &overlay{
		mu:         &sync.Mutex{},
		fontSize:   defaultPoint,
		barColor:   "#3b82f6",
		errorColor: "#dc2626",
		panelColor: "#1f2937",
		labelColor: "#ffffff",
	}
	for _, opt := range options {
		opt(o)
	}
	if !o.disableText {
		source, err := text.NewFontSource(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("overlay: failed to load font: %w", err)
		}
		o.face = source.Face(o.fontSize)
	}
	return o, nil
}

func (o *overlay) Draw(frame *image.RGBA, hud HUD) error {
	if hud.Kind == HUDNone || frame == nil {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	fw, fh := frame.Rect.Dx(), frame.Rect.Dy()
	width := fw - 2*panelMargin
	if width <= 0 || fh < panelHeight+2*panelMargin {
		return nil
	}
	if err := o.ensurePanel(width); err != nil {
		return err
	}
	dc := o.panel
	dc.Clear()

	w := float64(width)
	h := float64(panelHeight)
	switch hud.Kind {
	case HUDProgress:
		dc.SetHexColor(o.panelColor)
		dc.DrawRoundedRectangle(0, 0, w, h, 6)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("overlay: failed to fill panel: %w", err)
		}

		trackX, trackY := 8.0, h-barHeight-6
		trackW := w - 16
		dc.SetRGBA(1, 1, 1, 0.2)
		dc.DrawRectangle(trackX, trackY, trackW, barHeight)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("overlay: failed to fill track: %w", err)
		}

		fill := trackW * 0.25
		if hud.Progress >= 0 {
			fill = trackW * clampUnit(hud.Progress)
		}
		if fill > 0 {
			dc.SetHexColor(o.barColor)
			dc.DrawRectangle(trackX, trackY, fill, barHeight)
			if err := dc.Fill(); err != nil {
				return fmt.Errorf("overlay: failed to fill bar: %w", err)
			}
		}
		o.label(dc, progressLabel(hud), 8, 16)

	case HUDError:
		dc.SetHexColor(o.errorColor)
		dc.DrawRoundedRectangle(0, 0, w, h, 6)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("overlay: failed to fill banner: %w", err)
		}
		o.label(dc, hud.Label, 8, h/2+5)
	}

	panel := dc.Image()
	at := image.Pt(frame.Rect.Min.X+panelMargin, frame.Rect.Max.Y-panelMargin-panelHeight)
	draw.Draw(frame, image.Rectangle{Min: at, Max: at.Add(panel.Bounds().Size())}, panel, image.Point{}, draw.Over)
	return nil
}

func (o *overlay) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.panel != nil {
		_ = o.panel.Close()
		o.panel = nil
	}
}

// ensurePanel keeps one panel context sized to the frame width. Caller must hold o.mu.
func (o *overlay) ensurePanel(width int) error {
	if o.panel != nil && o.panelWidth == width {
		return nil
	}
	if o.panel != nil {
		if err := o.panel.Resize(width, panelHeight); err == nil {
			o.panelWidth = width
			return nil
		}
		_ = o.panel.Close()
	}
	o.panel = gg.NewContext(width, panelHeight)
	o.panelWidth = width
	if o.face != nil {
		o.panel.SetFont(o.face)
	}
	return nil
}

func (o *overlay) label(dc *gg.Context, s string, x, y float64) {
	if o.face == nil || s == "" {
		return
	}
	dc.SetHexColor(o.labelColor)
	dc.DrawString(s, x, y)
}

func progressLabel(hud HUD) string {
	if hud.Progress < 0 {
		return hud.Label
	}
	return fmt.Sprintf("%s %3.0f%%", hud.Label, clampUnit(hud.Progress)*100)
}

func clampUnit(v float64) float64 {
	return min(max(v, 0), 1)
}
