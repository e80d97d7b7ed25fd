// internal/geo/format.go
package geo

import (
	"errors"
	"fmt"
	"math"
)

// Axis identifies which hemisphere letters apply to a coordinate.
type Axis int

const (
	Latitude Axis = iota
	Longitude
)

// ErrInvalidPrecision is returned when a compass precision is neither 8
// nor 16.
var ErrInvalidPrecision = errors.New("invalid compass precision")

var (
	cardinal8 = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

	cardinal16 = []string{
		"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
		"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
	}
)

// FormatDMS renders decimal degrees as a degrees/minutes/seconds string,
// e.g. 40°42'46"N. Seconds are truncated to whole integers; the output is
// for display, not for round-tripping.
func FormatDMS(decimal float64, axis Axis) string {
	positive := decimal >= 0
	v := math.Abs(decimal)

	degrees := int(v)
	minutesDecimal := (v - float64(degrees)) * 60
	minutes := int(minutesDecimal)
	seconds := int((minutesDecimal - float64(minutes)) * 60)

	var direction string
	if axis == Latitude {
		direction = "N"
		if !positive {
			direction = "S"
		}
	} else {
		direction = "E"
		if !positive {
			direction = "W"
		}
	}

	return fmt.Sprintf("%d°%d'%d\"%s", degrees, minutes, seconds, direction)
}

// Cardinal maps a heading in degrees to a compass sector label. Precision
// selects the 8-way or 16-way table; half a sector is added before
// dividing so boundaries round to the nearest label.
func Cardinal(heading float64, precision int) (string, error) {
	var labels []string
	switch precision {
	case 8:
		labels = cardinal8
	case 16:
		labels = cardinal16
	default:
		return "", fmt.Errorf("%w: %d (want 8 or 16)", ErrInvalidPrecision, precision)
	}

	h := math.Mod(heading, 360)
	if h < 0 {
		h += 360
	}

	sector := 360.0 / float64(precision)
	index := int(math.Mod(h+sector/2, 360) / sector)

	return labels[index], nil
}
