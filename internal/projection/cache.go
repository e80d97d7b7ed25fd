// internal/projection/cache.go
package projection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wroge/wgs84"
)

// ErrUnsupportedProjection is returned when a target identifier cannot be
// resolved to a transform.
var ErrUnsupportedProjection = errors.New("unsupported projection")

// Cache memoizes one WGS84-to-target transform per spatial reference
// identifier. A cache belongs to exactly one worker and is not safe for
// concurrent use; workers never share an instance, so no locking is needed.
type Cache struct {
	transforms map[string]wgs84.Func
}

// NewCache creates an empty projection cache.
func NewCache() *Cache {
	return &Cache{
		transforms: make(map[string]wgs84.Func),
	}
}

// Project reprojects geographic WGS84 coordinates to the target system and
// returns the planar easting/northing pair. The transform is built on first
// use per identifier and reused afterwards. A failed construction is never
// stored, so a bad identifier is reported on every call without poisoning
// the cache for other identifiers.
func (c *Cache) Project(lat, lon float64, target string) (easting, northing float64, err error) {
	transform, err := c.get(target)
	if err != nil {
		return 0, 0, err
	}

	// Axis order into the transform is longitude, latitude. Getting this
	// wrong produces plausible-looking garbage, not an error.
	easting, northing, _ = transform(lon, lat, 0)
	return easting, northing, nil
}

func (c *Cache) get(target string) (wgs84.Func, error) {
	if transform, ok := c.transforms[target]; ok {
		return transform, nil
	}

	crs, err := resolve(target)
	if err != nil {
		return nil, err
	}

	transform := wgs84.Transform(wgs84.LonLat(), crs)
	c.transforms[target] = transform
	return transform, nil
}

// resolve maps a spatial reference identifier ("EPSG:25832" or a bare
// code) to a coordinate reference system.
func resolve(target string) (wgs84.CoordinateReferenceSystem, error) {
	s := strings.TrimSpace(target)
	s = strings.TrimPrefix(strings.ToUpper(s), "EPSG:")

	code, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProjection, target)
	}

	switch {
	case code == 3857:
		return wgs84.WebMercator(), nil
	case code >= 32601 && code <= 32660:
		return wgs84.UTM(float64(code-32600), true), nil
	case code >= 32701 && code <= 32760:
		return wgs84.UTM(float64(code-32700), false), nil
	case code >= 25828 && code <= 25838:
		return wgs84.ETRS89UTM(float64(code - 25800)), nil
	}

	return nil, fmt.Errorf("%w: EPSG:%d", ErrUnsupportedProjection, code)
}
