package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWindow_RejectsEmptySize(t *testing.T) {
	w, err := NewWindow(WithSize(0, 480))
	assert.Nil(t, w)
	assert.Error(t, err)
}

func TestHostWindow_Options(t *testing.T) {
	w := &hostWindow{}
	for _, opt := range []WindowBuilderOption{
		WithTitle("chair.glb"),
		WithSize(800, 600),
		WithSizeLimits(100, 80, 0, 0),
		WithCloseOnEscape(false),
	} {
		opt(w)
	}
	assert.Equal(t, "chair.glb", w.title)
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 600, w.Height())
	assert.Equal(t, [4]int{100, 80, 0, 0}, [4]int{w.minWidth, w.minHeight, w.maxWidth, w.maxHeight})
	assert.False(t, w.closeOnEscape)
}

func TestHostWindow_ForwardsEventsWithoutPlatform(t *testing.T) {
	w := &hostWindow{width: 10, height: 10}

	var sizes [][2]int
	w.SetResizeCallback(func(width, height int) { sizes = append(sizes, [2]int{width, height}) })
	w.resized(640, 360)
	assert.Equal(t, [][2]int{{640, 360}}, sizes)
	assert.Equal(t, 640, w.Width())

	var events []PointerEvent
	w.pointer(PointerEvent{Action: PointerPress, Button: ButtonPrimary})
	w.SetPointerCallback(func(ev PointerEvent) { events = append(events, ev) })
	w.pointer(PointerEvent{Action: PointerMove, X: 3, Y: 4})
	require.Len(t, events, 1, "events before a callback is set are dropped")
	assert.Equal(t, int32(4), events[0].Y)

	w.SetTitle("renamed")
	assert.Equal(t, "renamed", w.title)
	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.NotPanics(t, w.RequestClose)
	assert.Error(t, w.Close(), "closing a window that never opened")

	w.ProcessMessages()
}
