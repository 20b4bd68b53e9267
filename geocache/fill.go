package geocache

import (
	"context"
	"log"

	"github.com/stapply-ai/jobmap/record"
)

// FillCoordinates patches rows whose lat/lon cells are absent or empty from
// the cache, keyed by the row's location string. Only the missing cell is
// patched; a cell that already carries a value is kept. Rows the cache
// cannot resolve are left untouched and fall to the normalizer's validity
// gate. Returns the number of rows filled.
func FillCoordinates(ctx context.Context, cache Cache, rows []record.Row) int {
	if cache == nil {
		return 0
	}

	filled := 0
	for _, row := range rows {
		hasLat := hasCoordinate(row, "lat")
		hasLng := hasCoordinate(row, "lon") || hasCoordinate(row, "lng")
		if hasLat && hasLng {
			continue
		}
		location, _ := row["location"].(string)
		if location == "" {
			continue
		}

		lat, lng, ok, err := cache.Lookup(ctx, location)
		if err != nil {
			log.Printf("[geocache] lookup %q: %v", location, err)
			continue
		}
		if !ok {
			continue
		}

		if !hasLat {
			row["lat"] = lat
		}
		if !hasLng {
			row["lon"] = lng
		}
		filled++
	}
	return filled
}

func hasCoordinate(row record.Row, key string) bool {
	switch v := row[key].(type) {
	case float64:
		return true
	case string:
		return v != ""
	default:
		return false
	}
}
