// internal/overlay/fonts.go
package overlay

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"

	"github.com/rosbache/multiImageTextOverlay/internal/logger"
)

// fallbackFonts are probed in order when the configured font is missing.
var fallbackFonts = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"/Library/Fonts/Arial.ttf",
	"C:\\Windows\\Fonts\\arial.ttf",
}

// loadFace resolves a font face for the overlay: the configured path
// first, then the fallback list, and finally the built-in bitmap face,
// which cannot fail.
func loadFace(path string, size float64) font.Face {
	var candidates []string
	if path != "" {
		candidates = append(candidates, path)
	}
	candidates = append(candidates, fallbackFonts...)

	for _, p := range candidates {
		face, err := openFace(p, size)
		if err != nil {
			logger.Debug("Font %s unavailable: %v", p, err)
			continue
		}
		if path != "" && p != path {
			logger.Warn("Configured font %q not usable, using %s", path, p)
		}
		return face
	}

	logger.Warn("No TrueType font found, falling back to the built-in bitmap font")
	return basicfont.Face7x13
}

func openFace(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
