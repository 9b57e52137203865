package common

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceTracker(t *testing.T) {
	tr := NewResourceTracker()

	g := tr.Acquire(ResourceGeometry)
	tex := tr.Acquire(ResourceTexture)
	assert.NotEqual(t, g, tex)
	assert.Equal(t, 2, tr.Live())
	assert.Equal(t, 1, tr.LiveOf(ResourceTexture))

	tr.Release(tex)
	tr.Release(tex)
	tr.Release(0)
	assert.Equal(t, 1, tr.Live())
	assert.Zero(t, tr.LiveOf(ResourceTexture))
}

func TestResourceTracker_Nil(t *testing.T) {
	var tr *ResourceTracker
	assert.Zero(t, tr.Acquire(ResourceGeometry))
	assert.NotPanics(t, func() { tr.Release(1) })
	assert.Zero(t, tr.Live())
	assert.Zero(t, tr.LiveOf(ResourceGeometry))
}

func TestResourceTracker_Concurrent(t *testing.T) {
	tr := NewResourceTracker()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				tr.Release(tr.Acquire(ResourceGeometry))
			}
		}()
	}
	wg.Wait()
	assert.Zero(t, tr.Live())
}
