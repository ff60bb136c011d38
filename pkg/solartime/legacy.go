package solartime

import (
	"fmt"
	"time"
)

// DefaultLegacyZone is assumed by LegacyKST when no zone is given.
const DefaultLegacyZone = "Asia/Seoul"

var kst = time.FixedZone("KST", 9*60*60)

// LegacyKST re-expresses a wall-clock time observed in zone as Korean
// standard time (UTC+9). It removes daylight saving, including Korea's own
// historic DST, but applies no longitude or equation-of-time terms. Callers
// without coordinates use this path.
func LegacyKST(date Date, clock Clock, zone string) (Correction, error) {
	if zone == "" {
		zone = DefaultLegacyZone
	}
	if !date.Valid() {
		return Correction{}, fmt.Errorf("invalid date %s", date)
	}
	if !clock.Valid() {
		return Correction{}, fmt.Errorf("invalid time %s", clock)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Correction{}, fmt.Errorf("%w %q: %w", ErrUnknownZone, zone, err)
	}

	wall := time.Date(date.Year, time.Month(date.Month), date.Day, clock.Hour, clock.Minute, 0, 0, loc)
	effective, standard, isDST := Offsets(wall)
	k := wall.In(kst)

	tr := Trace{
		Timezone:            zone,
		IsDST:               isDST,
		EffectiveOffsetMin:  effective / 60,
		StandardOffsetMin:   standard / 60,
		StandardOffsetHours: float64(standard) / 3600,
		StandardMeridian:    135,
		OriginalMinutes:     clock.Minutes(),
		CorrectedMinutes:    k.Hour()*60 + k.Minute(),
	}
	if isDST {
		tr.DSTCorrectionMin = (effective - standard) / 60
	}
	tr.TotalCorrectionMin = float64(9*60 - tr.EffectiveOffsetMin)

	out := Date{Year: k.Year(), Month: int(k.Month()), Day: k.Day()}
	if out != date {
		tr.DateCrossed = CrossedNext
		if k.Before(time.Date(date.Year, time.Month(date.Month), date.Day, 0, 0, 0, 0, kst)) {
			tr.DateCrossed = CrossedPrev
		}
	}
	return Correction{Date: out, Clock: Clock{Hour: k.Hour(), Minute: k.Minute()}, Trace: tr}, nil
}
