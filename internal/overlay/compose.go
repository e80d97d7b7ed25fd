// internal/overlay/compose.go
package overlay

import (
	"fmt"
	"strings"

	"github.com/rosbache/multiImageTextOverlay/internal/metadata"
)

// Compose builds the overlay text block for one record, one line per
// present field. An empty record yields a placeholder so every output
// image carries a visible mark.
func Compose(rec metadata.Record) string {
	var lines []string

	if rec.Timestamp != "" {
		// "2021:05:01 12:00:00" reads better as "2021-05-01 12:00:00"
		lines = append(lines, "Date: "+strings.Replace(rec.Timestamp, ":", "-", 2))
	}
	if rec.Location != "" {
		lines = append(lines, "Location: "+rec.Location)
	}
	if rec.Projected != "" {
		lines = append(lines, "Projected: "+rec.Projected)
	}
	if rec.Altitude != nil {
		lines = append(lines, fmt.Sprintf("Altitude: %.1f m", *rec.Altitude))
	}
	if rec.Heading != nil {
		line := fmt.Sprintf("Heading: %.0f°", *rec.Heading)
		if rec.Cardinal != "" {
			line += " " + rec.Cardinal
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		lines = append(lines, "No metadata available")
	}
	if rec.Banner != "" {
		lines = append([]string{rec.Banner}, lines...)
	}

	return strings.Join(lines, "\n")
}
