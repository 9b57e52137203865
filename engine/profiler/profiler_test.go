package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickReportsAfterInterval(t *testing.T) {
	p := NewProfiler(time.Second)
	start := time.Unix(1000, 0)
	clock := start
	p.now = func() time.Time { return clock }
	p.lastTime = start

	clock = start.Add(250 * time.Millisecond)
	assert.False(t, p.Tick(10*time.Millisecond, 100, 2, 0))
	clock = start.Add(500 * time.Millisecond)
	assert.False(t, p.Tick(30*time.Millisecond, 300, 2, 1))

	clock = start.Add(1 * time.Second)
	assert.True(t, p.Tick(20*time.Millisecond, 200, 2, 1))

	s := p.Last()
	assert.InDelta(t, 3.0, s.FPS, 1e-9)
	assert.Equal(t, 20*time.Millisecond, s.AvgFrame)
	assert.Equal(t, 30*time.Millisecond, s.MaxFrame)
	assert.Equal(t, 200, s.Triangles)
	assert.Equal(t, 2, s.Meshes)
	assert.Equal(t, time.Second, s.IntervalSpan)
}

func TestTickResetsCounters(t *testing.T) {
	p := NewProfiler(0)
	start := time.Unix(0, 0)
	clock := start
	p.now = func() time.Time { return clock }
	p.lastTime = start

	clock = start.Add(time.Second)
	assert.True(t, p.Tick(time.Millisecond, 10, 1, 0))
	clock = clock.Add(10 * time.Millisecond)
	assert.False(t, p.Tick(time.Millisecond, 10, 1, 0))
	assert.Equal(t, 1, p.frameCount)
}
