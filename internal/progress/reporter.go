// internal/progress/reporter.go
package progress

import (
	"sync"
	"time"

	"github.com/rosbache/multiImageTextOverlay/internal/logger"
)

// Reporter tracks and reports per-file outcomes for a batch run.
type Reporter struct {
	mu             sync.Mutex
	total          int
	succeeded      int
	skipped        int
	failed         int
	startTime      time.Time
	lastUpdateTime time.Time
	updateInterval time.Duration
}

// New creates a new progress reporter
func New() *Reporter {
	return &Reporter{
		updateInterval: 2 * time.Second,
	}
}

// Start initializes the reporter with the total number of discovered files.
func (r *Reporter) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total = total
	r.succeeded = 0
	r.skipped = 0
	r.failed = 0
	r.startTime = time.Now()
	r.lastUpdateTime = time.Now()

	logger.Info("Processing %d image(s)", total)
}

// Succeed marks a file as processed successfully.
func (r *Reporter) Succeed(filename string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.succeeded++
	r.updateProgress()
}

// Skip marks a file as skipped by the collision policy.
func (r *Reporter) Skip(filename string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.skipped++
	r.updateProgress()
}

// Fail marks a file as failed.
func (r *Reporter) Fail(filename string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failed++
	r.updateProgress()
}

// Counts returns the current outcome tallies.
func (r *Reporter) Counts() (succeeded, skipped, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.succeeded, r.skipped, r.failed
}

// Elapsed returns the time since Start.
func (r *Reporter) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	return time.Since(r.startTime)
}

// Finish emits the final summary line.
func (r *Reporter) Finish(outputDir string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	duration := time.Since(r.startTime)

	logger.Info("Batch complete: %d/%d succeeded, %d skipped, %d failed in %s, output in %s",
		r.succeeded, r.total, r.skipped, r.failed, duration.Round(time.Millisecond), outputDir)
}

// updateProgress periodically logs overall progress for long batches.
func (r *Reporter) updateProgress() {
	now := time.Now()
	if now.Sub(r.lastUpdateTime) < r.updateInterval {
		return
	}

	r.lastUpdateTime = now
	processed := r.succeeded + r.skipped + r.failed
	if processed == 0 || r.total == 0 {
		return
	}

	percentage := float64(processed) / float64(r.total) * 100
	logger.Info("Progress: %.1f%% (%d/%d, %d succeeded, %d skipped, %d failed)",
		percentage, processed, r.total, r.succeeded, r.skipped, r.failed)
}
