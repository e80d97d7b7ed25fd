// internal/overlay/overlay.go
package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/rosbache/multiImageTextOverlay/internal/jpegseg"
	"github.com/rosbache/multiImageTextOverlay/internal/logger"
	"github.com/rosbache/multiImageTextOverlay/internal/metadata"
	"github.com/rosbache/multiImageTextOverlay/pkg/common"
)

// Options controls text placement and output encoding.
type Options struct {
	Position     string
	TextColor    color.RGBA
	OutlineColor color.RGBA
	OutlineWidth int
	FontPath     string
	FontSize     float64
	Padding      int
	Quality      int
}

// Renderer composites a metadata text block onto images. A renderer owns
// its font face, which is not safe for concurrent use; every worker builds
// its own renderer.
type Renderer struct {
	opts Options
	face font.Face
}

// NewRenderer creates a renderer. Font resolution never fails; see
// loadFace.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{
		opts: opts,
		face: loadFace(opts.FontPath, opts.FontSize),
	}
}

// Render reads the source image, draws the overlay text for the record,
// and writes the annotated copy to outputPath. The source file and its
// embedded metadata are never modified; the original Exif segment is
// carried over into the output unchanged.
func (r *Renderer) Render(inputPath, outputPath string, rec metadata.Record) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		return common.NewCodecError(fmt.Sprintf("decoding %s: %v", inputPath, err))
	}

	exifSegment, err := jpegseg.ExtractEXIF(bytes.NewReader(raw))
	if err != nil {
		// The image decoded, so keep going without metadata carry-over.
		logger.Debug("No Exif segment carried over from %s: %v", inputPath, err)
		exifSegment = nil
	}

	annotated := r.draw(img, Compose(rec))

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, annotated, &jpeg.Options{Quality: r.opts.Quality}); err != nil {
		return common.NewCodecError(fmt.Sprintf("encoding %s: %v", outputPath, err))
	}

	data := buf.Bytes()
	if exifSegment != nil {
		spliced, err := jpegseg.Splice(data, exifSegment)
		if err != nil {
			logger.Debug("Could not splice Exif segment into %s: %v", outputPath, err)
		} else {
			data = spliced
		}
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}

	return nil
}

// draw composites the text block onto a copy of src at the configured
// corner. The outline is drawn by repeating the text at every offset
// within the outline width, then the fill color goes on top.
func (r *Renderer) draw(src image.Image, text string) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)

	lines := strings.Split(text, "\n")
	metrics := r.face.Metrics()
	lineHeight := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()

	maxWidth := 0
	for _, line := range lines {
		if w := font.MeasureString(r.face, line).Ceil(); w > maxWidth {
			maxWidth = w
		}
	}
	blockHeight := lineHeight * len(lines)

	pad := r.opts.Padding
	var x, y int
	switch r.opts.Position {
	case "top-left":
		x, y = pad, pad
	case "top-right":
		x, y = bounds.Dx()-maxWidth-pad, pad
	case "bottom-right":
		x, y = bounds.Dx()-maxWidth-pad, bounds.Dy()-blockHeight-pad
	default: // bottom-left
		x, y = pad, bounds.Dy()-blockHeight-pad
	}

	width := r.opts.OutlineWidth
	for i, line := range lines {
		baseline := y + ascent + i*lineHeight
		for dx := -width; dx <= width; dx++ {
			for dy := -width; dy <= width; dy++ {
				if dx == 0 && dy == 0 {
					continue
				}
				r.drawString(dst, line, bounds.Min.X+x+dx, bounds.Min.Y+baseline+dy, r.opts.OutlineColor)
			}
		}
		r.drawString(dst, line, bounds.Min.X+x, bounds.Min.Y+baseline, r.opts.TextColor)
	}

	return dst
}

func (r *Renderer) drawString(dst *image.RGBA, s string, x, y int, col color.RGBA) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: r.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
