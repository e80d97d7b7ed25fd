// Package jpegseg preserves the original EXIF container across re-encodes.
// The Go JPEG encoder drops application segments, so the raw APP1 Exif
// segment is lifted from the source bytes and spliced unchanged into the
// freshly encoded output. No tag inside the segment is ever rewritten.
package jpegseg

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

const (
	markerPrefix = 0xFF
	markerSOI    = 0xD8
	markerAPP0   = 0xE0
	markerAPP1   = 0xE1
	markerSOS    = 0xDA
)

var exifHeader = []byte("Exif\x00\x00")

// ErrNotJPEG is returned when a stream does not start with a JPEG SOI
// marker.
var ErrNotJPEG = errors.New("not a JPEG stream")

// ExtractEXIF walks the segment list of a JPEG stream and returns the raw
// APP1 Exif segment, marker and length bytes included. It returns nil when
// the stream carries no Exif segment.
func ExtractEXIF(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)

	var soi [2]byte
	if _, err := io.ReadFull(br, soi[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJPEG, err)
	}
	if soi[0] != markerPrefix || soi[1] != markerSOI {
		return nil, ErrNotJPEG
	}

	for {
		marker, err := readMarker(br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, err
		}

		// Entropy-coded data follows SOS; no metadata segments after it.
		if marker == markerSOS {
			return nil, nil
		}
		if standalone(marker) {
			continue
		}

		var lenBytes [2]byte
		if _, err := io.ReadFull(br, lenBytes[:]); err != nil {
			return nil, fmt.Errorf("truncated segment length: %w", err)
		}
		length := int(lenBytes[0])<<8 | int(lenBytes[1])
		if length < 2 {
			return nil, fmt.Errorf("invalid segment length %d", length)
		}

		payload := make([]byte, length-2)
		if _, err := io.ReadFull(br, payload); err != nil {
			return nil, fmt.Errorf("truncated segment payload: %w", err)
		}

		if marker == markerAPP1 && bytes.HasPrefix(payload, exifHeader) {
			segment := make([]byte, 0, 4+len(payload))
			segment = append(segment, markerPrefix, markerAPP1, lenBytes[0], lenBytes[1])
			segment = append(segment, payload...)
			return segment, nil
		}
	}
}

// Splice inserts a previously extracted segment into an encoded JPEG,
// after the JFIF APP0 segment when one is present, otherwise directly
// after SOI.
func Splice(jpg []byte, segment []byte) ([]byte, error) {
	if len(jpg) < 2 || jpg[0] != markerPrefix || jpg[1] != markerSOI {
		return nil, ErrNotJPEG
	}

	insertAt := 2
	if len(jpg) >= 4 && jpg[2] == markerPrefix && jpg[3] == markerAPP0 {
		if len(jpg) < 6 {
			return nil, fmt.Errorf("truncated APP0 segment")
		}
		length := int(jpg[4])<<8 | int(jpg[5])
		if length < 2 || 4+length > len(jpg) {
			return nil, fmt.Errorf("invalid APP0 segment length %d", length)
		}
		insertAt = 4 + length
	}

	out := make([]byte, 0, len(jpg)+len(segment))
	out = append(out, jpg[:insertAt]...)
	out = append(out, segment...)
	out = append(out, jpg[insertAt:]...)
	return out, nil
}

// readMarker scans to the next marker byte pair, tolerating fill bytes.
func readMarker(br *bufio.Reader) (byte, error) {
	b, err := br.ReadByte()
	if err != nil {
		return 0, err
	}
	if b != markerPrefix {
		return 0, fmt.Errorf("expected marker prefix, got 0x%02X", b)
	}

	for {
		b, err = br.ReadByte()
		if err != nil {
			return 0, err
		}
		if b != markerPrefix {
			return b, nil
		}
	}
}

// standalone reports whether a marker has no length/payload.
func standalone(marker byte) bool {
	if marker == 0x01 {
		return true
	}
	return marker >= 0xD0 && marker <= 0xD9
}
