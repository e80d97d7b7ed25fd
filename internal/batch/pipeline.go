// internal/batch/pipeline.go
package batch

import (
	"github.com/rosbache/multiImageTextOverlay/internal/metadata"
	"github.com/rosbache/multiImageTextOverlay/internal/overlay"
)

// Pipeline is the production Processor: extract metadata, then composite
// the overlay. One pipeline per worker; the extractor's projection cache
// and the renderer's font face are worker-owned.
type Pipeline struct {
	extractor *metadata.Extractor
	renderer  *overlay.Renderer
}

// NewPipeline wires an extractor and renderer into a Processor.
func NewPipeline(extractor *metadata.Extractor, renderer *overlay.Renderer) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		renderer:  renderer,
	}
}

// Process runs the extract-and-annotate sequence for one file. Extraction
// never fails outward; only codec and I/O problems surface here.
func (p *Pipeline) Process(inputPath, outputPath, filename string) error {
	rec := p.extractor.Extract(inputPath, filename)
	return p.renderer.Render(inputPath, outputPath, rec)
}
