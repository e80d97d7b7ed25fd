// internal/geo/rational.go
package geo

import (
	"errors"
	"fmt"
)

// ErrMalformedCoordinate is returned when a GPS rational triple has the
// wrong arity or a zero denominator.
var ErrMalformedCoordinate = errors.New("malformed coordinate")

// Rational is one numerator/denominator pair from a GPS rational value.
type Rational struct {
	Num int64
	Den int64
}

// DecodeTriple converts a degrees/minutes/seconds rational triple into
// decimal degrees. The triple must hold exactly three pairs and no
// denominator may be zero.
func DecodeTriple(triple []Rational) (float64, error) {
	if len(triple) != 3 {
		return 0, fmt.Errorf("%w: expected 3 components, got %d", ErrMalformedCoordinate, len(triple))
	}
	for i, r := range triple {
		if r.Den == 0 {
			return 0, fmt.Errorf("%w: zero denominator in component %d", ErrMalformedCoordinate, i)
		}
	}

	degrees := float64(triple[0].Num) / float64(triple[0].Den)
	minutes := float64(triple[1].Num) / float64(triple[1].Den)
	seconds := float64(triple[2].Num) / float64(triple[2].Den)

	return degrees + minutes/60.0 + seconds/3600.0, nil
}
