package profiler

import (
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// Stats is one interval's worth of frame and memory statistics.
type Stats struct {
	FPS           float64
	Frames        int
	Skipped       int
	HeapMB        float64
	AllocRateMB   float64
	GCCount       uint32
	LastPauseUs   uint64
	MaxPauseUs    uint64
	SysMB         float64
	TotalSkipped  int
	IntervalStart time.Time
}

// Profiler tracks frame rate, skipped frames and memory statistics.
// Stats are logged through slog once per interval.
type Profiler struct {
	mu sync.Mutex

	logger *slog.Logger
	now    func() time.Time

	frameCount     int
	skipCount      int
	totalSkipped   int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
}

// ProfilerOption configures a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often stats are logged. Non-positive values are ignored.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithLogger sets the logger stats are written to.
func WithLogger(logger *slog.Logger) ProfilerOption {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second and the logger to slog.Default().
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		logger:         slog.Default(),
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per rendered frame.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frameCount++
	return p.flushLocked()
}

// Skip records a frame dropped after an error or a recovered panic.
func (p *Profiler) Skip() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.skipCount++
	p.totalSkipped++
	p.flushLocked()
}

// TotalSkipped returns the number of frames skipped since creation.
func (p *Profiler) TotalSkipped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalSkipped
}

// Last returns the stats of the most recent logged interval.
func (p *Profiler) Last() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *Profiler) flushLocked() bool {
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc is live heap, TotalAlloc only grows and tracks churn, Sys is the process footprint.
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.last = Stats{
		FPS:           float64(p.frameCount) / elapsed.Seconds(),
		Frames:        p.frameCount,
		Skipped:       p.skipCount,
		HeapMB:        float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:   float64(allocDelta) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:       gcCount,
		LastPauseUs:   lastPauseUs,
		MaxPauseUs:    maxPauseUs,
		SysMB:         float64(p.memStats.Sys) / 1024 / 1024,
		TotalSkipped:  p.totalSkipped,
		IntervalStart: p.lastTime,
	}

	p.logger.Info("Profiler",
		slog.Float64("fps", p.last.FPS),
		slog.Int("skipped", p.last.Skipped),
		slog.Float64("heap_mb", p.last.HeapMB),
		slog.Float64("alloc_rate_mb", p.last.AllocRateMB),
		slog.Uint64("gc", uint64(gcCount)),
		slog.Uint64("gc_last_us", lastPauseUs),
		slog.Uint64("gc_max_us", maxPauseUs),
		slog.Float64("sys_mb", p.last.SysMB),
	)

	p.frameCount = 0
	p.skipCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
