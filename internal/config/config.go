package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/rosbache/multiImageTextOverlay/pkg/common"
)

// Valid enum values for the overlay and batch surfaces.
var (
	Positions  = []string{"top-left", "top-right", "bottom-left", "bottom-right"}
	Collisions = []string{"overwrite", "skip", "rename"}
)

// Config represents the application configuration
type Config struct {
	LogLevel string
	LogFile  string
	Input    string
	Output   string

	Overlay    OverlayConfig
	Projection ProjectionConfig
	Batch      BatchConfig
	S3         S3Config
}

// OverlayConfig controls the rendered text block.
type OverlayConfig struct {
	Position         string
	TextColor        string // "R,G,B", each channel 0-255
	OutlineColor     string
	OutlineWidth     int
	FontPath         string
	FontSize         float64
	Padding          int
	Quality          int
	Banner           string
	ShowHeading      bool
	HeadingPrecision int
}

// ProjectionConfig controls the optional reprojected location line. Zone and
// Hemisphere are display labels only; Target governs the numeric transform.
type ProjectionConfig struct {
	Enabled    bool
	Target     string
	Zone       int
	Hemisphere string
}

// BatchConfig controls discovery and dispatch.
type BatchConfig struct {
	Workers   int
	Collision string
	DryRun    bool
}

// S3Config represents the optional S3 output sink.
type S3Config struct {
	Enabled   bool
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Prefix    string
}

// New creates a new configuration with default values
func New() *Config {
	return &Config{
		LogLevel: "info",
		Input:    "input",
		Output:   "output",
		Overlay: OverlayConfig{
			Position:         "bottom-left",
			TextColor:        "255,255,255",
			OutlineColor:     "0,0,0",
			OutlineWidth:     2,
			FontSize:         32,
			Padding:          20,
			Quality:          95,
			ShowHeading:      true,
			HeadingPrecision: 16,
		},
		Projection: ProjectionConfig{
			Target:     "EPSG:25832",
			Zone:       32,
			Hemisphere: "N",
		},
		Batch: BatchConfig{
			Workers:   4,
			Collision: "rename",
		},
		S3: S3Config{
			Region: "us-east-1",
			UseSSL: true,
		},
	}
}

// Validate checks the full configuration surface. Any violation is a
// ConfigurationError and aborts the run before any file is touched.
func (c *Config) Validate() error {
	if c.Input == "" {
		return common.NewConfigurationError("input directory is required")
	}
	if c.Output == "" {
		return common.NewConfigurationError("output directory is required")
	}
	if !contains(Positions, c.Overlay.Position) {
		return common.NewConfigurationError(fmt.Sprintf("invalid text position %q (want one of %s)",
			c.Overlay.Position, strings.Join(Positions, ", ")))
	}
	if _, err := ParseRGB(c.Overlay.TextColor); err != nil {
		return common.NewConfigurationError(fmt.Sprintf("invalid text color: %v", err))
	}
	if _, err := ParseRGB(c.Overlay.OutlineColor); err != nil {
		return common.NewConfigurationError(fmt.Sprintf("invalid outline color: %v", err))
	}
	if c.Overlay.OutlineWidth < 0 {
		return common.NewConfigurationError("outline width must not be negative")
	}
	if c.Overlay.FontSize <= 0 {
		return common.NewConfigurationError("font size must be positive")
	}
	if c.Overlay.Padding < 0 {
		return common.NewConfigurationError("padding must not be negative")
	}
	if c.Overlay.Quality < 1 || c.Overlay.Quality > 100 {
		return common.NewConfigurationError(fmt.Sprintf("output quality %d out of range 1-100", c.Overlay.Quality))
	}
	if c.Overlay.HeadingPrecision != 8 && c.Overlay.HeadingPrecision != 16 {
		return common.NewConfigurationError(fmt.Sprintf("heading precision %d invalid (want 8 or 16)", c.Overlay.HeadingPrecision))
	}
	if c.Batch.Workers < 1 || c.Batch.Workers > 32 {
		return common.NewConfigurationError(fmt.Sprintf("worker count %d out of range 1-32", c.Batch.Workers))
	}
	if !contains(Collisions, c.Batch.Collision) {
		return common.NewConfigurationError(fmt.Sprintf("invalid collision mode %q (want one of %s)",
			c.Batch.Collision, strings.Join(Collisions, ", ")))
	}
	if c.Projection.Enabled {
		if c.Projection.Target == "" {
			return common.NewConfigurationError("projection target identifier is required when projection is enabled")
		}
		if c.Projection.Hemisphere != "N" && c.Projection.Hemisphere != "S" {
			return common.NewConfigurationError(fmt.Sprintf("invalid hemisphere %q (want N or S)", c.Projection.Hemisphere))
		}
	}
	if c.S3.Enabled {
		if c.S3.Endpoint == "" || c.S3.Bucket == "" {
			return common.NewConfigurationError("S3 endpoint and bucket are required when the S3 sink is enabled")
		}
		if c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			return common.NewConfigurationError("S3 access key and secret key are required when the S3 sink is enabled")
		}
	}
	return nil
}

// ParseRGB parses an "R,G,B" triple with each channel in 0-255.
func ParseRGB(s string) (color.RGBA, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return color.RGBA{}, fmt.Errorf("color %q must have 3 comma-separated channels", s)
	}

	var channels [3]uint8
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return color.RGBA{}, fmt.Errorf("color channel %q is not a number", p)
		}
		if v < 0 || v > 255 {
			return color.RGBA{}, fmt.Errorf("color channel %d out of range 0-255", v)
		}
		channels[i] = uint8(v)
	}

	return color.RGBA{R: channels[0], G: channels[1], B: channels[2], A: 255}, nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
