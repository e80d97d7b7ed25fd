// internal/batch/driver.go
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rosbache/multiImageTextOverlay/internal/config"
	"github.com/rosbache/multiImageTextOverlay/internal/logger"
	"github.com/rosbache/multiImageTextOverlay/internal/progress"
	"github.com/rosbache/multiImageTextOverlay/internal/worker"
)

// Status is the terminal state of one file.
type Status int

const (
	Succeeded Status = iota
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the per-file result tuple.
type Outcome struct {
	Status   Status
	Filename string
	Message  string
}

// Summary aggregates a finished batch.
type Summary struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
	Elapsed   time.Duration
	OutputDir string
}

// Processor turns one input image into one annotated output image.
type Processor interface {
	Process(inputPath, outputPath, filename string) error
}

// Sink receives successfully processed outputs, e.g. an S3 bucket.
type Sink interface {
	UploadFile(ctx context.Context, reader io.Reader, objectKey string, size int64, contentType string) error
}

// Driver runs a batch: it discovers eligible files, resolves output-path
// collisions serially before dispatch, fans jobs out to a bounded worker
// pool, and aggregates one Outcome per discovered file.
type Driver struct {
	cfg          *config.Config
	newProcessor func() Processor
	reporter     *progress.Reporter
	sink         Sink
}

// NewDriver creates a driver. The factory is invoked once per worker so
// that each worker owns its processor (and the caches and font handles
// inside it). The sink may be nil.
func NewDriver(cfg *config.Config, newProcessor func() Processor, reporter *progress.Reporter, sink Sink) *Driver {
	return &Driver{
		cfg:          cfg,
		newProcessor: newProcessor,
		reporter:     reporter,
		sink:         sink,
	}
}

// Run processes the batch and blocks until every dispatched job has
// completed. The returned error covers setup failures only; per-file
// failures are accounted in the summary and never abort sibling jobs.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	files, err := Discover(d.cfg.Input)
	if err != nil {
		return Summary{}, err
	}

	d.reporter.Start(len(files))

	if len(files) == 0 {
		logger.Info("No JPEG images found in %s", d.cfg.Input)
		d.reporter.Finish(d.cfg.Output)
		return Summary{OutputDir: d.cfg.Output}, nil
	}

	if err := os.MkdirAll(d.cfg.Output, 0755); err != nil {
		return Summary{}, fmt.Errorf("cannot create output directory %s: %w", d.cfg.Output, err)
	}

	workers := d.cfg.Batch.Workers
	if workers > len(files) {
		workers = len(files)
	}

	pool := worker.NewPool(workers, d.newProcessor)
	results := make(chan Outcome, len(files))
	assigned := make(map[string]bool)

	for _, name := range files {
		name := name
		inputPath := filepath.Join(d.cfg.Input, name)

		// Collision resolution happens here, serially, checking both the
		// filesystem and the paths already handed to in-flight jobs, so
		// two jobs can never race for the same output path under rename
		// mode.
		outputPath, skip := d.resolveOutputPath(name, assigned)
		if skip {
			results <- Outcome{Status: Skipped, Filename: name, Message: "output already exists"}
			continue
		}

		if d.cfg.Batch.DryRun {
			logger.Info("DRY RUN: would process %s -> %s", inputPath, outputPath)
			results <- Outcome{Status: Succeeded, Filename: name, Message: "dry run"}
			continue
		}

		pool.Submit(func(proc Processor) {
			results <- d.runJob(ctx, proc, name, inputPath, outputPath)
		})
	}

	summary := Summary{Total: len(files), OutputDir: d.cfg.Output}
	for i := 0; i < len(files); i++ {
		outcome := <-results

		switch outcome.Status {
		case Succeeded:
			summary.Succeeded++
			d.reporter.Succeed(outcome.Filename)
			logger.Info("Processed %s: %s", outcome.Filename, outcome.Message)
		case Skipped:
			summary.Skipped++
			d.reporter.Skip(outcome.Filename)
			logger.Info("Skipped %s: %s", outcome.Filename, outcome.Message)
		case Failed:
			summary.Failed++
			d.reporter.Fail(outcome.Filename)
			logger.Error("Failed %s: %s", outcome.Filename, outcome.Message)
		}
	}

	pool.Close()

	summary.Elapsed = d.reporter.Elapsed()
	d.reporter.Finish(d.cfg.Output)

	return summary, nil
}

// runJob executes one file end to end. Any panic is converted into a
// Failed outcome at this boundary; a single worker fault never aborts the
// batch.
func (d *Driver) runJob(ctx context.Context, proc Processor, name, inputPath, outputPath string) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = Outcome{Status: Failed, Filename: name, Message: fmt.Sprintf("panic: %v", r)}
		}
	}()

	if err := proc.Process(inputPath, outputPath, name); err != nil {
		return Outcome{Status: Failed, Filename: name, Message: err.Error()}
	}

	if d.sink != nil {
		if err := d.upload(ctx, outputPath); err != nil {
			return Outcome{Status: Failed, Filename: name, Message: fmt.Sprintf("upload: %v", err)}
		}
	}

	return Outcome{Status: Succeeded, Filename: name, Message: "wrote " + filepath.Base(outputPath)}
}

func (d *Driver) upload(ctx context.Context, outputPath string) error {
	f, err := os.Open(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	return d.sink.UploadFile(ctx, f, filepath.Base(outputPath), info.Size(), "image/jpeg")
}

// resolveOutputPath applies the collision policy against the output
// directory. A path counts as taken when it exists on disk or is in the
// assigned set, i.e. handed to a job in this batch that may not have
// written it yet. Under rename mode the suffix search is unbounded; it
// terminates because the suffix namespace is infinite and each probe is a
// single existence check.
func (d *Driver) resolveOutputPath(name string, assigned map[string]bool) (path string, skip bool) {
	taken := func(p string) bool {
		return assigned[p] || exists(p)
	}

	path = filepath.Join(d.cfg.Output, name)

	switch d.cfg.Batch.Collision {
	case "overwrite":
		assigned[path] = true
		return path, false
	case "skip":
		if taken(path) {
			return "", true
		}
		assigned[path] = true
		return path, false
	default: // rename
		if !taken(path) {
			assigned[path] = true
			return path, false
		}
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		for i := 1; ; i++ {
			candidate := filepath.Join(d.cfg.Output, fmt.Sprintf("%s_%d%s", stem, i, ext))
			if !taken(candidate) {
				assigned[candidate] = true
				return candidate, false
			}
		}
	}
}

// Discover lists eligible image files in dir, matching the accepted
// extensions case-insensitively. The input directory itself must exist;
// an empty result is not an error.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read input directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg":
			files = append(files, entry.Name())
		}
	}

	sort.Strings(files)
	return files, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
