package viewport

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned by operations that need an initialized surface.
var ErrNotReady = errors.New("viewport: not initialized")

// InitializationError reports that the render surface could not be created.
// It is fatal to the viewport: later Init calls fail with an error wrapping it, and
// every other operation reports ErrNotReady until Dispose.
type InitializationError struct {
	Width, Height int
	Err           error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("viewport: failed to initialize %dx%d surface: %v", e.Width, e.Height, e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// CaptureError reports that a frame could not be captured. No partial image is returned.
type CaptureError struct {
	Reason string
	Err    error
}

func (e *CaptureError) Error() string {
	if e.Err == nil {
		return "viewport: capture failed: " + e.Reason
	}
	return fmt.Sprintf("viewport: capture failed: %s: %v", e.Reason, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}
