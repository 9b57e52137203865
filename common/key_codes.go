package common

// Key codes for the viewer hotkeys.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyA     = 65  // A key (ASCII): toggle auto-rotate
	KeyC     = 67  // C key (ASCII): write a screenshot
	KeyL     = 76  // L key (ASCII): cycle lighting preset
	KeyM     = 77  // M key (ASCII): toggle authored materials
	KeyR     = 82  // R key (ASCII): cycle render mode
	KeyT     = 84  // T key (ASCII): toggle textures
	KeyW     = 87  // W key (ASCII): toggle wireframe
	KeyEqual = 61  // = key (ASCII): raise light intensity
	KeyMinus = 45  // - key (ASCII): lower light intensity
	KeyEsc   = 256 // Escape key (GLFW)
)

// Additional non-printable keys
const (
	KeyLeftShift  = 340 // Left Shift (GLFW)
	KeyRightShift = 344 // Right Shift (GLFW)
)
