package solartime

import (
	"errors"
	"fmt"
	"math"
)

// ErrCoordinates is returned for a latitude or longitude outside WGS84 range.
var ErrCoordinates = errors.New("coordinates out of range")

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks lat is within [-90, 90] and lon within [-180, 180].
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v", ErrCoordinates, c.Lat)
	}
	if math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %v", ErrCoordinates, c.Lon)
	}
	return nil
}

// Birth is an immutable birth record as submitted.
type Birth struct {
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Zone        string       `json:"timezone,omitempty"`
	Date        Date         `json:"date"`
	Clock       Clock        `json:"time"`
	TimeKnown   bool         `json:"time_known"`
}

// noon stands in for an unknown birth time.
var noon = Clock{Hour: 12}

// Resolve picks the correction path for b. With coordinates it applies the
// full true solar time correction, in b.Zone when set and otherwise in the
// zone resolved from the coordinates. Without coordinates it falls back to
// LegacyKST. An unknown time is corrected as noon.
func (c *Corrector) Resolve(b Birth) (Correction, error) {
	clock := b.Clock
	if !b.TimeKnown {
		clock = noon
	}
	if b.Coordinates != nil {
		if err := b.Coordinates.Validate(); err != nil {
			return Correction{}, err
		}
	}
	switch {
	case b.Coordinates != nil && b.Zone != "":
		return CorrectInZone(b.Date, clock, b.Coordinates.Lon, b.Zone)
	case b.Coordinates != nil:
		return c.Correct(b.Date, clock, b.Coordinates.Lat, b.Coordinates.Lon)
	default:
		return LegacyKST(b.Date, clock, b.Zone)
	}
}
