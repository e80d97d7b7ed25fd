package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosbache/multiImageTextOverlay/internal/config"
	"github.com/rosbache/multiImageTextOverlay/internal/progress"
)

// fakeProcessor copies the input to the output, or fails/panics on
// command, standing in for the extract-and-annotate pipeline.
type fakeProcessor struct {
	mu      sync.Mutex
	failOn  map[string]bool
	panicOn map[string]bool
	delay   time.Duration
	calls   []string
}

func (f *fakeProcessor) Process(inputPath, outputPath, filename string) error {
	f.mu.Lock()
	f.calls = append(f.calls, filename)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.panicOn[filename] {
		panic("boom in " + filename)
	}
	if f.failOn[filename] {
		return fmt.Errorf("injected failure for %s", filename)
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, append(data, []byte(" processed")...), 0644)
}

func testConfig(t *testing.T, collision string) *config.Config {
	t.Helper()

	cfg := config.New()
	cfg.Input = t.TempDir()
	cfg.Output = t.TempDir()
	cfg.Batch.Workers = 2
	cfg.Batch.Collision = collision
	return cfg
}

func writeInputs(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("img "+name), 0644))
	}
}

func newTestDriver(cfg *config.Config, proc *fakeProcessor) *Driver {
	return NewDriver(cfg, func() Processor { return proc }, progress.New(), nil)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir, "a.jpg", "b.JPG", "c.jpeg", "d.JPEG", "notes.txt", "e.png")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.jpg"), 0755))

	files, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.JPG", "c.jpeg", "d.JPEG"}, files)
}

func TestDiscoverMissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestRunEmptyBatch(t *testing.T) {
	cfg := testConfig(t, "rename")

	summary, err := newTestDriver(cfg, &fakeProcessor{}).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
	assert.Zero(t, summary.Succeeded+summary.Skipped+summary.Failed)
}

func TestRunProcessesAll(t *testing.T) {
	cfg := testConfig(t, "rename")
	writeInputs(t, cfg.Input, "a.jpg", "b.jpg", "c.jpg")

	summary, err := newTestDriver(cfg, &fakeProcessor{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Succeeded)
	assert.FileExists(t, filepath.Join(cfg.Output, "a.jpg"))
	assert.FileExists(t, filepath.Join(cfg.Output, "b.jpg"))
	assert.FileExists(t, filepath.Join(cfg.Output, "c.jpg"))
}

func TestRunSkipMode(t *testing.T) {
	cfg := testConfig(t, "skip")
	writeInputs(t, cfg.Input, "a.jpg", "b.jpg")

	pre := filepath.Join(cfg.Output, "a.jpg")
	require.NoError(t, os.WriteFile(pre, []byte("pre-existing"), 0644))

	proc := &fakeProcessor{}
	summary, err := newTestDriver(cfg, proc).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Skipped)

	// The pre-existing file is untouched and its job never dispatched.
	data, err := os.ReadFile(pre)
	require.NoError(t, err)
	assert.Equal(t, "pre-existing", string(data))
	assert.NotContains(t, proc.calls, "a.jpg")
}

func TestRunOverwriteMode(t *testing.T) {
	cfg := testConfig(t, "overwrite")
	writeInputs(t, cfg.Input, "a.jpg")

	pre := filepath.Join(cfg.Output, "a.jpg")
	require.NoError(t, os.WriteFile(pre, []byte("pre-existing"), 0644))

	summary, err := newTestDriver(cfg, &fakeProcessor{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)

	data, err := os.ReadFile(pre)
	require.NoError(t, err)
	assert.Equal(t, "img a.jpg processed", string(data))
}

func TestRunRenameMode(t *testing.T) {
	cfg := testConfig(t, "rename")
	writeInputs(t, cfg.Input, "a.jpg")

	proc := &fakeProcessor{}
	driver := newTestDriver(cfg, proc)

	// Three runs over the same input never overwrite, producing
	// incrementing suffixes.
	for i := 0; i < 3; i++ {
		summary, err := driver.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Succeeded)
	}

	assert.FileExists(t, filepath.Join(cfg.Output, "a.jpg"))
	assert.FileExists(t, filepath.Join(cfg.Output, "a_1.jpg"))
	assert.FileExists(t, filepath.Join(cfg.Output, "a_2.jpg"))
}

func TestRunRenameInFlightCollision(t *testing.T) {
	cfg := testConfig(t, "rename")
	writeInputs(t, cfg.Input, "a.jpg", "a_1.jpg")

	pre := filepath.Join(cfg.Output, "a.jpg")
	require.NoError(t, os.WriteFile(pre, []byte("pre-existing"), 0644))

	// a.jpg collides with the pre-existing output and is renamed to
	// a_1.jpg before the sibling input a_1.jpg is resolved. Slow jobs
	// keep both in flight at once, so nothing is on disk yet when the
	// sibling probes; its path must be claimed off the in-flight set or
	// both jobs end up writing a_1.jpg.
	proc := &fakeProcessor{delay: 50 * time.Millisecond}
	summary, err := newTestDriver(cfg, proc).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)

	data, err := os.ReadFile(pre)
	require.NoError(t, err)
	assert.Equal(t, "pre-existing", string(data))

	data, err = os.ReadFile(filepath.Join(cfg.Output, "a_1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "img a.jpg processed", string(data))

	data, err = os.ReadFile(filepath.Join(cfg.Output, "a_1_1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "img a_1.jpg processed", string(data))

	entries, err := os.ReadDir(cfg.Output)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestRunOutcomeSumInvariant(t *testing.T) {
	cfg := testConfig(t, "skip")
	writeInputs(t, cfg.Input, "a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg")

	// One pre-existing output, one injected failure, one worker panic.
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Output, "a.jpg"), []byte("x"), 0644))

	proc := &fakeProcessor{
		failOn:  map[string]bool{"b.jpg": true},
		panicOn: map[string]bool{"c.jpg": true},
	}

	summary, err := newTestDriver(cfg, proc).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, summary.Total, summary.Succeeded+summary.Skipped+summary.Failed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, 2, summary.Succeeded)
}

func TestRunDryRun(t *testing.T) {
	cfg := testConfig(t, "rename")
	cfg.Batch.DryRun = true
	writeInputs(t, cfg.Input, "a.jpg", "b.jpg")

	proc := &fakeProcessor{}
	summary, err := newTestDriver(cfg, proc).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Empty(t, proc.calls)
	assert.NoFileExists(t, filepath.Join(cfg.Output, "a.jpg"))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "succeeded", Succeeded.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "failed", Failed.String())
}
