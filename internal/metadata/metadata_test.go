package metadata

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosbache/multiImageTextOverlay/internal/projection"
)

func testExtractor() *Extractor {
	return NewExtractor(Options{
		ProjectionEnabled: true,
		ProjectionTarget:  "EPSG:25832",
		Zone:              32,
		Hemisphere:        "N",
		ShowHeading:       true,
		HeadingPrecision:  16,
		Banner:            "Survey 2024",
	}, projection.NewCache())
}

func TestExtractMissingFile(t *testing.T) {
	e := testExtractor()

	rec := e.Extract(filepath.Join(t.TempDir(), "nope.jpg"), "nope.jpg")

	assert.Equal(t, "nope.jpg", rec.Filename)
	assert.Equal(t, "Survey 2024", rec.Banner)
	assert.Empty(t, rec.Timestamp)
	assert.Empty(t, rec.Location)
	assert.Empty(t, rec.Projected)
	assert.Nil(t, rec.Altitude)
	assert.Nil(t, rec.Heading)
}

func TestExtractCorruptContainer(t *testing.T) {
	// A readable file that is not a valid metadata container degrades to
	// a record with only the filename set.
	path := filepath.Join(t.TempDir(), "broken.jpg")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a JPEG"), 0644))

	e := testExtractor()
	rec := e.Extract(path, "broken.jpg")

	assert.Equal(t, "broken.jpg", rec.Filename)
	assert.Empty(t, rec.Timestamp)
	assert.Empty(t, rec.Location)
	assert.Nil(t, rec.Altitude)
	assert.Nil(t, rec.Heading)
}

// exifFixture describes a synthetic capture-metadata blob. Rationals are
// numerator/denominator pairs; latitude and longitude are
// degrees/minutes/seconds triples.
type exifFixture struct {
	dateTime       string // exactly 19 characters
	latRef, lonRef byte
	lat, lon       [3][2]uint32
	altRef         byte
	alt            [2]uint32
	dir            [2]uint32
}

// buildExifTIFF serializes the fixture as a little-endian TIFF stream:
// IFD0 carries DateTime and the GPS sub-directory pointer, the GPS IFD
// carries the position, altitude and heading tags. Offsets are fixed by
// the layout below.
func buildExifTIFF(t *testing.T, fx exifFixture) []byte {
	t.Helper()
	require.Len(t, fx.dateTime, 19)

	buf := new(bytes.Buffer)
	le := binary.LittleEndian

	write := func(v any) {
		require.NoError(t, binary.Write(buf, le, v))
	}
	entry := func(tag, typ uint16, count uint32, value [4]byte) {
		write(tag)
		write(typ)
		write(count)
		buf.Write(value[:])
	}
	offset := func(v uint32) [4]byte {
		var b [4]byte
		le.PutUint32(b[:], v)
		return b
	}

	buf.WriteString("II")
	write(uint16(42))
	write(uint32(8)) // IFD0 offset

	// IFD0 at 8: two entries, ends at 38.
	write(uint16(2))
	entry(0x0132, 2, 20, offset(38)) // DateTime, ASCII incl. NUL
	entry(0x8825, 4, 1, offset(58))  // GPS IFD pointer
	write(uint32(0))
	buf.WriteString(fx.dateTime)
	buf.WriteByte(0)

	// GPS IFD at 58: eight entries, value area starts at 160.
	write(uint16(8))
	entry(0x0001, 2, 2, [4]byte{fx.latRef})
	entry(0x0002, 5, 3, offset(160))
	entry(0x0003, 2, 2, [4]byte{fx.lonRef})
	entry(0x0004, 5, 3, offset(184))
	entry(0x0005, 1, 1, [4]byte{fx.altRef})
	entry(0x0006, 5, 1, offset(208))
	entry(0x0010, 2, 2, [4]byte{'T'})
	entry(0x0011, 5, 1, offset(216))
	write(uint32(0))

	for _, r := range fx.lat {
		write(r[0])
		write(r[1])
	}
	for _, r := range fx.lon {
		write(r[0])
		write(r[1])
	}
	write(fx.alt[0])
	write(fx.alt[1])
	write(fx.dir[0])
	write(fx.dir[1])

	return buf.Bytes()
}

func writeExifFile(t *testing.T, fx exifFixture) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, buildExifTIFF(t, fx), 0644))
	return path
}

func TestExtractGeotagged(t *testing.T) {
	// 59°54'30.5"S 10°44'24.5"W, 12.5 m below sea level, heading 281.5°.
	path := writeExifFile(t, exifFixture{
		dateTime: "2023:05:17 14:03:22",
		latRef:   'S',
		lat:      [3][2]uint32{{59, 1}, {54, 1}, {305, 10}},
		lonRef:   'W',
		lon:      [3][2]uint32{{10, 1}, {44, 1}, {245, 10}},
		altRef:   1,
		alt:      [2]uint32{125, 10},
		dir:      [2]uint32{2815, 10},
	})

	e := NewExtractor(Options{
		ProjectionEnabled: true,
		ProjectionTarget:  "EPSG:32729",
		Zone:              29,
		Hemisphere:        "S",
		ShowHeading:       true,
		HeadingPrecision:  16,
	}, projection.NewCache())

	rec := e.Extract(path, "photo.jpg")

	assert.Equal(t, "2023:05:17 14:03:22", rec.Timestamp)
	assert.Equal(t, `59°54'30"S, 10°44'24"W`, rec.Location)
	require.NotNil(t, rec.Altitude)
	assert.Equal(t, -12.5, *rec.Altitude)
	require.NotNil(t, rec.Heading)
	assert.Equal(t, 281.5, *rec.Heading)
	assert.Equal(t, "WNW", rec.Cardinal)
	assert.True(t, strings.HasPrefix(rec.Projected, "E "), "projected line %q", rec.Projected)
	assert.Contains(t, rec.Projected, "(zone 29S)")
}

func TestExtractNorthEastAboveSeaLevel(t *testing.T) {
	path := writeExifFile(t, exifFixture{
		dateTime: "2024:01:02 03:04:05",
		latRef:   'N',
		lat:      [3][2]uint32{{59, 1}, {54, 1}, {305, 10}},
		lonRef:   'E',
		lon:      [3][2]uint32{{10, 1}, {44, 1}, {245, 10}},
		altRef:   0,
		alt:      [2]uint32{125, 10},
		dir:      [2]uint32{0, 1},
	})

	e := NewExtractor(Options{
		ShowHeading:      true,
		HeadingPrecision: 8,
	}, projection.NewCache())

	rec := e.Extract(path, "photo.jpg")

	assert.Equal(t, `59°54'30"N, 10°44'24"E`, rec.Location)
	require.NotNil(t, rec.Altitude)
	assert.Equal(t, 12.5, *rec.Altitude)
	assert.Equal(t, "N", rec.Cardinal)
	assert.Empty(t, rec.Projected)
}

func TestLatin1String(t *testing.T) {
	assert.Equal(t, "2021:05:01 12:00:00", latin1String([]byte("2021:05:01 12:00:00")))
	// High bytes map one-to-one onto code points instead of being dropped.
	assert.Equal(t, "café", latin1String([]byte{'c', 'a', 'f', 0xE9}))
	assert.Equal(t, "", latin1String(nil))
}
