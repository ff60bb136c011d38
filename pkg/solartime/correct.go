package solartime

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// ErrUnknownZone is returned when a zone name is not in the tz database.
var ErrUnknownZone = errors.New("unknown timezone")

const minutesPerDay = 1440

// Day rollover directions reported in Trace.DateCrossed.
const (
	CrossedNone = ""
	CrossedNext = "next"
	CrossedPrev = "prev"
)

// ZoneResolver maps coordinates to an IANA zone name. *geo.Resolver
// satisfies it.
type ZoneResolver interface {
	ResolveTimezone(lat, lon float64) string
}

// Trace records every intermediate value of a correction.
type Trace struct {
	Timezone               string  `json:"timezone"`
	DateCrossed            string  `json:"date_crossed"`
	IsDST                  bool    `json:"is_dst"`
	EffectiveOffsetMin     int     `json:"effective_offset_min"`
	StandardOffsetMin      int     `json:"standard_offset_min"`
	StandardOffsetHours    float64 `json:"standard_offset_hours"`
	StandardMeridian       float64 `json:"standard_meridian"`
	Longitude              float64 `json:"longitude"`
	LongitudeCorrectionMin float64 `json:"longitude_correction_min"`
	EquationOfTimeMin      float64 `json:"equation_of_time_min"`
	DSTCorrectionMin       int     `json:"dst_correction_min"`
	TotalCorrectionMin     float64 `json:"total_correction_min"`
	OriginalMinutes        int     `json:"original_minutes"`
	CorrectedMinutes       int     `json:"corrected_minutes"`
}

// Correction is the corrected local civil date and time.
type Correction struct {
	Date  Date  `json:"date"`
	Clock Clock `json:"time"`
	Trace Trace `json:"trace"`
}

// Corrector performs true solar time corrections.
type Corrector struct {
	zones  ZoneResolver
	logger *slog.Logger
}

// New creates a Corrector that resolves zones with zones.
func New(zones ZoneResolver, logger *slog.Logger) *Corrector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Corrector{zones: zones, logger: logger}
}

// Correct resolves the zone at (lat, lon) and corrects the wall-clock time
// observed there.
func (c *Corrector) Correct(date Date, clock Clock, lat, lon float64) (Correction, error) {
	zone := "UTC"
	if c.zones != nil {
		zone = c.zones.ResolveTimezone(lat, lon)
	}
	corr, err := CorrectInZone(date, clock, lon, zone)
	if err != nil {
		return Correction{}, err
	}
	c.logger.Debug("solar time correction",
		"zone", corr.Trace.Timezone,
		"input", date.String()+" "+clock.String(),
		"output", corr.Date.String()+" "+corr.Clock.String(),
		"is_dst", corr.Trace.IsDST,
		"longitude_min", corr.Trace.LongitudeCorrectionMin,
		"eot_min", corr.Trace.EquationOfTimeMin,
		"crossed", corr.Trace.DateCrossed)
	return corr, nil
}

// CorrectInZone corrects a wall-clock time observed in zone at longitude lon.
func CorrectInZone(date Date, clock Clock, lon float64, zone string) (Correction, error) {
	if !date.Valid() {
		return Correction{}, fmt.Errorf("invalid date %s", date)
	}
	if !clock.Valid() {
		return Correction{}, fmt.Errorf("invalid time %s", clock)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return Correction{}, fmt.Errorf("%w: longitude %v", ErrCoordinates, lon)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Correction{}, fmt.Errorf("%w %q: %w", ErrUnknownZone, zone, err)
	}

	wall := time.Date(date.Year, time.Month(date.Month), date.Day, clock.Hour, clock.Minute, 0, 0, loc)
	effective, standard, isDST := Offsets(wall)

	tr := Trace{
		Timezone:           zone,
		IsDST:              isDST,
		EffectiveOffsetMin: effective / 60,
		StandardOffsetMin:  standard / 60,
		Longitude:          lon,
		OriginalMinutes:    clock.Minutes(),
	}
	tr.StandardOffsetHours = float64(standard) / 3600
	// The meridian comes from the standard offset; the DST offset would count the shift twice.
	tr.StandardMeridian = math.Round(tr.StandardOffsetHours) * 15
	tr.LongitudeCorrectionMin = (lon - tr.StandardMeridian) * 4
	tr.EquationOfTimeMin = EquationOfTime(date.DayOfYear())
	if isDST {
		tr.DSTCorrectionMin = tr.EffectiveOffsetMin - tr.StandardOffsetMin
		if tr.DSTCorrectionMin <= 0 {
			tr.DSTCorrectionMin = 60
		}
	}
	tr.TotalCorrectionMin = tr.LongitudeCorrectionMin + tr.EquationOfTimeMin - float64(tr.DSTCorrectionMin)

	minutes := clock.Minutes() + int(math.Round(tr.TotalCorrectionMin))
	days := floorDiv(minutes, minutesPerDay)
	minutes -= days * minutesPerDay
	corrected := date.AddDays(days)
	switch {
	case days > 0:
		tr.DateCrossed = CrossedNext
	case days < 0:
		tr.DateCrossed = CrossedPrev
	}
	tr.CorrectedMinutes = minutes

	return Correction{Date: corrected, Clock: clockFromMinutes(minutes), Trace: tr}, nil
}

// Offsets returns the effective and standard UTC offsets, in seconds, of
// the zone at t, and whether daylight saving is in force.
func Offsets(t time.Time) (effective, standard int, isDST bool) {
	_, effective = t.Zone()
	isDST = t.IsDST()
	if !isDST {
		return effective, effective, false
	}
	loc := t.Location()
	for _, month := range []time.Month{time.January, time.July} {
		sample := time.Date(t.Year(), month, 1, 12, 0, 0, 0, loc)
		if !sample.IsDST() {
			_, standard = sample.Zone()
			return effective, standard, true
		}
	}
	return effective, effective - 3600, true
}

// floorDiv rounds toward negative infinity so negative minute totals land
// on the previous day.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// EquationOfTime approximates apparent minus mean solar time, in minutes,
// for a day of the year.
func EquationOfTime(dayOfYear int) float64 {
	b := 2 * math.Pi * float64(dayOfYear-81) / 365
	return 9.87*math.Sin(2*b) - 7.53*math.Cos(b) - 1.5*math.Sin(b)
}
