// internal/metadata/metadata.go
package metadata

import (
	"fmt"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/rosbache/multiImageTextOverlay/internal/geo"
	"github.com/rosbache/multiImageTextOverlay/internal/logger"
	"github.com/rosbache/multiImageTextOverlay/internal/projection"
	"github.com/rosbache/multiImageTextOverlay/pkg/common"
)

// Record is the extraction result for a single image. Every field except
// Filename is independently optional; a zero value means the source did
// not carry the field or it could not be parsed, never an error by itself.
// A Record is built once and not mutated afterwards.
type Record struct {
	Filename  string
	Timestamp string
	Location  string
	Projected string
	Altitude  *float64
	Heading   *float64
	Cardinal  string
	Banner    string
}

// Options controls which derived fields the extractor produces.
type Options struct {
	ProjectionEnabled bool
	ProjectionTarget  string
	Zone              int
	Hemisphere        string
	ShowHeading       bool
	HeadingPrecision  int
	Banner            string
}

// Extractor pulls capture metadata out of image files. Each worker owns
// one extractor together with its projection cache.
type Extractor struct {
	opts  Options
	cache *projection.Cache
}

// NewExtractor creates an extractor bound to a worker-owned projection
// cache.
func NewExtractor(opts Options, cache *projection.Cache) *Extractor {
	return &Extractor{
		opts:  opts,
		cache: cache,
	}
}

// Extract reads the embedded metadata container of the file at path and
// returns a Record. It never fails outward: every step is independently
// guarded, and a failure in one field leaves only that field absent while
// all others are still attempted.
func (e *Extractor) Extract(path, filename string) Record {
	rec := Record{
		Filename: filename,
		Banner:   e.opts.Banner,
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Error("Input file %s does not exist: %v", path, err)
		} else {
			logger.Error("Cannot read %s: %v", path, err)
		}
		return rec
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		cause := common.NewContainerError(fmt.Sprintf("%s: %v", filename, err))
		logger.Warn("%v", cause)
		return rec
	}

	rec.Timestamp = e.timestamp(x, filename)

	lat, lon, ok := e.position(x, filename)
	if ok {
		rec.Location = geo.FormatDMS(lat, geo.Latitude) + ", " + geo.FormatDMS(lon, geo.Longitude)

		if e.opts.ProjectionEnabled {
			east, north, err := e.cache.Project(lat, lon, e.opts.ProjectionTarget)
			if err != nil {
				logger.Warn("%v", common.NewCoordinateError(
					fmt.Sprintf("%s: projecting to %s: %v", filename, e.opts.ProjectionTarget, err)))
			} else {
				rec.Projected = fmt.Sprintf("E %.0f N %.0f (zone %d%s)",
					east, north, e.opts.Zone, e.opts.Hemisphere)
			}
		}
	}

	if alt, ok := e.altitude(x, filename); ok {
		rec.Altitude = &alt
	}

	if e.opts.ShowHeading {
		if heading, ok := e.heading(x, filename); ok {
			rec.Heading = &heading
			if label, err := geo.Cardinal(heading, e.opts.HeadingPrecision); err == nil {
				rec.Cardinal = label
			} else {
				logger.Debug("No cardinal label for %s: %v", filename, err)
			}
		}
	}

	return rec
}

// timestamp reads the DateTime tag. Non-ASCII bytes fall back to a
// Latin-1 interpretation instead of dropping the field.
func (e *Extractor) timestamp(x *exif.Exif, filename string) string {
	tag, err := x.Get(exif.DateTime)
	if err != nil {
		logger.Debug("No DateTime tag in %s", filename)
		return ""
	}

	s, err := tag.StringVal()
	if err != nil {
		s = latin1String(tag.Val)
		logger.Debug("DateTime in %s is not clean ASCII, decoded byte-wise", filename)
	}

	return strings.TrimRight(s, "\x00 ")
}

// position decodes both GPS axes. The location is all-or-nothing: a
// missing triple or hemisphere reference on either axis leaves it absent.
func (e *Extractor) position(x *exif.Exif, filename string) (lat, lon float64, ok bool) {
	lat, ok = e.axis(x, exif.GPSLatitude, exif.GPSLatitudeRef, filename)
	if !ok {
		return 0, 0, false
	}

	lon, ok = e.axis(x, exif.GPSLongitude, exif.GPSLongitudeRef, filename)
	if !ok {
		return 0, 0, false
	}

	return lat, lon, true
}

func (e *Extractor) axis(x *exif.Exif, valueName, refName exif.FieldName, filename string) (float64, bool) {
	tag, err := x.Get(valueName)
	if err != nil {
		logger.Debug("No %s tag in %s", valueName, filename)
		return 0, false
	}

	refTag, err := x.Get(refName)
	if err != nil {
		logger.Debug("Missing %s reference in %s", refName, filename)
		return 0, false
	}

	triple, err := rationalTriple(tag)
	if err == nil {
		var decimal float64
		decimal, err = geo.DecodeTriple(triple)
		if err == nil {
			ref, refErr := refTag.StringVal()
			if refErr != nil {
				logger.Debug("Unreadable %s reference in %s: %v", refName, filename, refErr)
				return 0, false
			}

			ref = strings.TrimSpace(ref)
			if ref == "S" || ref == "W" {
				decimal = -decimal
			}
			return decimal, true
		}
	}

	logger.Debug("%v", common.NewCoordinateError(fmt.Sprintf("%s in %s: %v", valueName, filename, err)))
	return 0, false
}

// altitude reads GPSAltitude; AltitudeRef 1 marks below sea level.
func (e *Extractor) altitude(x *exif.Exif, filename string) (float64, bool) {
	tag, err := x.Get(exif.GPSAltitude)
	if err != nil {
		return 0, false
	}

	v, err := ratOrScalar(tag)
	if err != nil {
		logger.Debug("Unreadable altitude in %s: %v", filename, err)
		return 0, false
	}

	if refTag, err := x.Get(exif.GPSAltitudeRef); err == nil {
		if ref, err := refTag.Int(0); err == nil && ref == 1 {
			v = -v
		}
	}

	return v, true
}

// heading reads GPSImgDirection. The reference (true vs magnetic north)
// is read for diagnostics but the raw angle is used as-is.
func (e *Extractor) heading(x *exif.Exif, filename string) (float64, bool) {
	tag, err := x.Get(exif.GPSImgDirection)
	if err != nil {
		return 0, false
	}

	v, err := ratOrScalar(tag)
	if err != nil {
		logger.Debug("Unreadable heading in %s: %v", filename, err)
		return 0, false
	}

	if refTag, err := x.Get(exif.GPSImgDirectionRef); err == nil {
		if ref, err := refTag.StringVal(); err == nil {
			logger.Debug("Heading reference %q in %s used as-is", strings.TrimSpace(ref), filename)
		}
	}

	return v, true
}

// rationalTriple copies all rational components of a tag; arity is
// validated by geo.DecodeTriple.
func rationalTriple(tag *tiff.Tag) ([]geo.Rational, error) {
	n := int(tag.Count)
	triple := make([]geo.Rational, 0, n)

	for i := 0; i < n; i++ {
		num, den, err := tag.Rat2(i)
		if err != nil {
			return nil, err
		}
		triple = append(triple, geo.Rational{Num: num, Den: den})
	}

	return triple, nil
}

// ratOrScalar divides a rational tag to a float, accepting integer tags
// from cameras that write scalars where EXIF calls for a rational.
func ratOrScalar(tag *tiff.Tag) (float64, error) {
	if num, den, err := tag.Rat2(0); err == nil {
		if den == 0 {
			return 0, fmt.Errorf("zero denominator")
		}
		return float64(num) / float64(den), nil
	}

	v, err := tag.Int(0)
	if err != nil {
		return 0, err
	}
	return float64(v), nil
}

// latin1String maps raw bytes one-to-one onto code points.
func latin1String(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
