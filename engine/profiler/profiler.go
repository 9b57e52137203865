package profiler

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-viewport/common"
)

// Snapshot is one reporting interval of frame statistics.
type Snapshot struct {
	FPS          float64
	AvgFrame     time.Duration
	MaxFrame     time.Duration
	Triangles    int
	Meshes       int
	Culled       int
	HeapMB       float64
	AllocRateMB  float64
	GCCount      uint32
	LastPauseUs  uint64
	MaxPauseUs   uint64
	SysMB        float64
	IntervalSpan time.Duration
}

// Profiler tracks frame rate, frame cost and memory statistics for performance monitoring.
// Outputs stats to the engine logger at a configurable interval.
type Profiler struct {
	mu *sync.Mutex

	frameCount     int
	frameTotal     time.Duration
	frameMax       time.Duration
	triangles      int
	meshes         int
	culled         int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Snapshot

	now func() time.Time
}

// NewProfiler creates a new Profiler.
//
// Parameters:
//   - interval: the reporting interval; values <= 0 default to 1 second
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		mu:             &sync.Mutex{},
		lastTime:       time.Now(),
		updateInterval: interval,
		now:            time.Now,
	}
}

// Tick should be called once per frame with that frame's cost and draw counts.
// Logs a summary when the update interval has elapsed.
//
// Parameters:
//   - frameCost: wall time spent producing the frame
//   - triangles: primitives drawn
//   - meshes: meshes visited
//   - culled: meshes rejected by the frustum
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(frameCost time.Duration, triangles, meshes, culled int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	p.frameTotal += frameCost
	p.frameMax = max(p.frameMax, frameCost)
	p.triangles += triangles
	p.meshes += meshes
	p.culled += culled

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	n := p.frameCount
	snap := Snapshot{
		FPS:          float64(n) / elapsed.Seconds(),
		AvgFrame:     p.frameTotal / time.Duration(n),
		MaxFrame:     p.frameMax,
		Triangles:    p.triangles / n,
		Meshes:       p.meshes / n,
		Culled:       p.culled / n,
		HeapMB:       float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:  float64(allocDelta) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:      gcCount,
		LastPauseUs:  lastPauseUs,
		MaxPauseUs:   maxPauseUs,
		SysMB:        float64(p.memStats.Sys) / 1024 / 1024,
		IntervalSpan: elapsed,
	}
	p.last = snap

	common.Logger().Info("[Profiler] frame stats",
		slog.Float64("fps", snap.FPS),
		slog.Duration("avg_frame", snap.AvgFrame),
		slog.Duration("max_frame", snap.MaxFrame),
		slog.Int("triangles", snap.Triangles),
		slog.Int("meshes", snap.Meshes),
		slog.Int("culled", snap.Culled),
		slog.Float64("heap_mb", snap.HeapMB),
		slog.Float64("alloc_rate_mb", snap.AllocRateMB),
		slog.Any("gc", gcCount),
		slog.Any("gc_last_us", lastPauseUs),
		slog.Any("gc_max_us", maxPauseUs),
		slog.Float64("sys_mb", snap.SysMB),
	)

	p.frameCount = 0
	p.frameTotal = 0
	p.frameMax = 0
	p.triangles, p.meshes, p.culled = 0, 0, 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recently logged interval.
func (p *Profiler) Last() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
