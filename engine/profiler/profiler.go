package profiler

import (
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"
)

// SectionStats accumulates timings for one named section of the frame.
type SectionStats struct {
	// Count is the number of completed Begin/End pairs.
	Count int

	// Total is the summed duration of all completed pairs.
	Total time.Duration

	// Max is the longest single duration observed.
	Max time.Duration
}

// Average returns the mean duration of the section, or 0 if it never ran.
//
// Returns:
//   - time.Duration: Total / Count
func (s SectionStats) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Profiler tracks frame rate, memory statistics and named section timings for performance monitoring.
// Outputs stats to the logger at a configurable interval.
//
// A Profiler is created explicitly and handed to the components that should report into it; there is no
// package-level instance. It is safe for concurrent use, so animators ticked on different goroutines may
// share one. All methods are no-ops on a nil *Profiler.
type Profiler struct {
	mu sync.Mutex

	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	sections map[string]*SectionStats

	logger *slog.Logger
	now    func() time.Time
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second and the logger to slog.Default().
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions to configure the Profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		sections:       make(map[string]*SectionStats),
		logger:         slog.Default(),
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Begin marks the start of a named section.
// Pass the returned time to End with the same name.
//
// Parameters:
//   - section: the section name (unused until End, kept for call-site symmetry)
//
// Returns:
//   - time.Time: the start timestamp
func (p *Profiler) Begin(section string) time.Time {
	if p == nil {
		return time.Time{}
	}
	return p.now()
}

// End records the time elapsed since start against the named section.
//
// Parameters:
//   - section: the section name
//   - start: the timestamp returned by Begin
func (p *Profiler) End(section string, start time.Time) {
	if p == nil {
		return
	}
	d := p.now().Sub(start)

	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sections[section]
	if !ok {
		s = &SectionStats{}
		p.sections[section] = s
	}
	s.Count++
	s.Total += d
	s.Max = max(s.Max, d)
}

// Section returns a snapshot of the named section's statistics.
//
// Parameters:
//   - name: the section name
//
// Returns:
//   - SectionStats: the accumulated statistics, zero if the section never ran
func (p *Profiler) Section(name string) SectionStats {
	if p == nil {
		return SectionStats{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.sections[name]; ok {
		return *s
	}
	return SectionStats{}
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times, total memory and the
// average time of every section.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	// Alloc: live heap bytes. TotalAlloc: cumulative heap bytes (tracks churn). Sys: bytes obtained from the OS.
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses.
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	names := make([]string, 0, len(p.sections))
	for name := range p.sections {
		names = append(names, name)
	}
	sort.Strings(names)
	sectionAttrs := make([]any, 0, len(names))
	for _, name := range names {
		sectionAttrs = append(sectionAttrs, slog.Duration(name, p.sections[name].Average()))
	}

	p.logger.Info("frame stats",
		slog.Group("profiler",
			slog.Float64("fps", fps),
			slog.Float64("heap_mb", allocMB),
			slog.Float64("alloc_rate_mb_s", allocRateMB),
			slog.Uint64("gc", uint64(gcCount)),
			slog.Uint64("gc_last_us", lastPauseUs),
			slog.Uint64("gc_max_us", maxPauseUs),
			slog.Float64("sys_mb", sysMB),
		),
		slog.Group("sections", sectionAttrs...),
	)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
