// Package calendar binds the sexagenary calendar library. Everything above
// this package sees only stem/branch strings and cycle windows, so the
// library can be swapped or faked.
package calendar

import (
	"errors"
	"fmt"
	"time"

	lunar "github.com/6tail/lunar-go/calendar"
)

// ErrCalculation marks a failure inside the calendar library.
var ErrCalculation = errors.New("calendar calculation failed")

// DefaultSect fixes the day boundary at 00:00 (the 23:00 子 hour stays on
// the same day pillar).
const DefaultSect = 2

// Gender selects the luck-cycle direction.
type Gender int

// Genders, numbered the way the library expects.
const (
	Female Gender = 0
	Male   Gender = 1
)

// ParseGender accepts "male"/"m" and "female"/"f".
func ParseGender(s string) (Gender, error) {
	switch s {
	case "male", "m", "M", "Male":
		return Male, nil
	case "female", "f", "F", "Female":
		return Female, nil
	}
	return Female, fmt.Errorf("invalid gender %q", s)
}

// String returns "male" or "female".
func (g Gender) String() string {
	if g == Male {
		return "male"
	}
	return "female"
}

// MarshalText encodes the gender by name.
func (g Gender) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// DateTime is a corrected civil timestamp.
type DateTime struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
}

// Time returns dt as a UTC time.Time, for age arithmetic only.
func (dt DateTime) Time() time.Time {
	return time.Date(dt.Year, time.Month(dt.Month), dt.Day, dt.Hour, dt.Minute, 0, 0, time.UTC)
}

// EightChar holds the four pillars as two-character Hanja strings.
type EightChar struct {
	Year  string
	Month string
	Day   string
	Hour  string
}

// AnnualCycle is one year within a macro cycle.
type AnnualCycle struct {
	GanZhi string
	Year   int
	Age    int
}

// MajorCycle is one macro (roughly ten-year) luck window. GanZhi is empty
// for the window before the first cycle begins.
type MajorCycle struct {
	GanZhi    string
	Annual    []AnnualCycle
	Index     int
	StartAge  int
	EndAge    int
	StartYear int
	EndYear   int
}

// Yun is the full luck sequence for a birth.
type Yun struct {
	Cycles  []MajorCycle
	Forward bool
}

// Source derives pillars and luck cycles from a civil timestamp.
type Source interface {
	EightChar(dt DateTime) (EightChar, error)
	Cycles(dt DateTime, gender Gender, n int) (Yun, error)
}

// Lunar is the Source backed by github.com/6tail/lunar-go.
type Lunar struct {
	sect int
}

// NewLunar returns a Lunar source using sect (1 or 2); other values fall
// back to DefaultSect.
func NewLunar(sect int) *Lunar {
	if sect != 1 && sect != 2 {
		sect = DefaultSect
	}
	return &Lunar{sect: sect}
}

// Sect reports the configured sect.
func (l *Lunar) Sect() int { return l.sect }

func (l *Lunar) eightChar(dt DateTime) *lunar.EightChar {
	solar := lunar.NewSolar(dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute, 0)
	ec := solar.GetLunar().GetEightChar()
	ec.SetSect(l.sect)
	return ec
}

// EightChar implements Source.
func (l *Lunar) EightChar(dt DateTime) (out EightChar, err error) {
	defer recoverInto(&err)
	ec := l.eightChar(dt)
	out = EightChar{
		Year:  ec.GetYearGan() + ec.GetYearZhi(),
		Month: ec.GetMonthGan() + ec.GetMonthZhi(),
		Day:   ec.GetDayGan() + ec.GetDayZhi(),
		Hour:  ec.GetTimeGan() + ec.GetTimeZhi(),
	}
	return out, nil
}

// Cycles implements Source.
func (l *Lunar) Cycles(dt DateTime, gender Gender, n int) (out Yun, err error) {
	defer recoverInto(&err)
	yun := l.eightChar(dt).GetYun(int(gender))
	out.Forward = yun.IsForward()
	for _, d := range yun.GetDaYunBy(n) {
		c := MajorCycle{
			GanZhi:    d.GetGanZhi(),
			Index:     d.GetIndex(),
			StartAge:  d.GetStartAge(),
			EndAge:    d.GetEndAge(),
			StartYear: d.GetStartYear(),
			EndYear:   d.GetEndYear(),
		}
		for _, ln := range d.GetLiuNian() {
			c.Annual = append(c.Annual, AnnualCycle{GanZhi: ln.GetGanZhi(), Year: ln.GetYear(), Age: ln.GetAge()})
		}
		out.Cycles = append(out.Cycles, c)
	}
	return out, nil
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrCalculation, r)
	}
}
