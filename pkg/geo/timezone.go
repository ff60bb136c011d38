package geo

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ringsaturn/tzf"
)

// FallbackZone is returned when no timezone polygon contains a point.
const FallbackZone = "UTC"

// ZoneFinder maps a point to an IANA zone name. Note the longitude-first
// argument order, matching tzf.
type ZoneFinder interface {
	GetTimezoneName(lng, lat float64) string
}

var (
	finderOnce sync.Once
	finder     ZoneFinder
)

// defaultFinder loads the bundled tzf polygons once per process.
func defaultFinder(logger *slog.Logger) ZoneFinder {
	finderOnce.Do(func() {
		f, err := tzf.NewDefaultFinder()
		if err != nil {
			logger.Warn("timezone polygons unavailable; every lookup falls back to UTC", "error", err)
			return
		}
		finder = f
	})
	return finder
}

// ResolveTimezone returns the IANA zone containing (lat, lon), or "UTC" when
// the point is invalid, unmatched, or names a zone the local tz database
// cannot load.
func (r *Resolver) ResolveTimezone(lat, lon float64) string {
	if r.zones == nil || !validCoordinates(lat, lon) {
		return FallbackZone
	}
	name := r.zones.GetTimezoneName(lon, lat)
	if name == "" {
		return FallbackZone
	}
	if _, err := time.LoadLocation(name); err != nil {
		r.logger.Debug("resolved zone not in tz database", "zone", name, "error", err)
		return FallbackZone
	}
	return name
}

func validCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
