package overlay

// OverlayBuilderOption is a function that configures an overlay during construction.
type OverlayBuilderOption func(*overlay)

// WithFontSize sets the label size in points.
//
// Parameters:
//   - points: the font size
//
// Returns:
//   - OverlayBuilderOption: a function that applies the font size option to an overlay
func WithFontSize(points float64) OverlayBuilderOption {
	return func(o *overlay) {
		if points > 0 {
			o.fontSize = points
		}
	}
}

// WithBarColor sets the progress bar color as a "#rrggbb" string.
//
// Parameters:
//   - hex: the color
//
// Returns:
//   - OverlayBuilderOption: a function that applies the color option to an overlay
func WithBarColor(hex string) OverlayBuilderOption {
	return func(o *overlay) {
		o.barColor = hex
	}
}

// WithErrorColor sets the failure banner color as a "#rrggbb" string.
//
// Parameters:
//   - hex: the color
//
// Returns:
//   - OverlayBuilderOption: a function that applies the color option to an overlay
func WithErrorColor(hex string) OverlayBuilderOption {
	return func(o *overlay) {
		o.errorColor = hex
	}
}

// WithoutText skips font loading; panels are drawn without labels.
//
// Returns:
//   - OverlayBuilderOption: a function that disables labels on an overlay
func WithoutText() OverlayBuilderOption {
	return func(o *overlay) {
		o.disableText = true
	}
}
