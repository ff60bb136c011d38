// Package luck derives the macro luck cycles (대운) and the current annual
// cycle (세운) for a birth, annotated relative to the Day Master.
package luck

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/fourpillars/pkg/calendar"
	"github.com/codeGROOVE-dev/fourpillars/pkg/ganzhi"
	"github.com/codeGROOVE-dev/fourpillars/pkg/solartime"
)

// ErrNoCurrentCycle is returned when the present age falls outside every
// computed macro cycle.
var ErrNoCurrentCycle = errors.New("age outside all luck cycles")

// DefaultCycles is how many macro cycles are requested from the calendar.
const DefaultCycles = 10

// Phase describes how far into the current macro cycle the subject is.
type Phase string

// Phases.
const (
	PhaseEntering   Phase = "entering"
	PhaseStable     Phase = "stable"
	PhaseTransition Phase = "approaching-transition"
)

const (
	enteringMaxYears = 2
	transitionYears  = 8
)

// PhaseFor classifies years elapsed since the cycle started.
func PhaseFor(elapsed int) Phase {
	switch {
	case elapsed <= enteringMaxYears:
		return PhaseEntering
	case elapsed >= transitionYears:
		return PhaseTransition
	default:
		return PhaseStable
	}
}

// Cycle is one macro cycle window.
type Cycle struct {
	Hanja         string         `json:"hanja,omitempty"`
	StemTenGod    ganzhi.TenGod  `json:"stem_ten_god,omitempty"`
	BranchTenGod  ganzhi.TenGod  `json:"branch_ten_god,omitempty"`
	Annual        []Annual       `json:"-"`
	Pillar        ganzhi.Pillar  `json:"pillar"`
	StemElement   ganzhi.Element `json:"stem_element"`
	BranchElement ganzhi.Element `json:"branch_element"`
	Index         int            `json:"index"`
	StartAge      int            `json:"start_age"`
	EndAge        int            `json:"end_age"`
	StartYear     int            `json:"start_year"`
	EndYear       int            `json:"end_year"`
	PreCycle      bool           `json:"pre_cycle,omitempty"`
}

// Contains reports whether age falls within the cycle window.
func (c Cycle) Contains(age int) bool {
	return age >= c.StartAge && age <= c.EndAge
}

// Annual is one year inside a macro cycle.
type Annual struct {
	Hanja         string         `json:"hanja"`
	StemTenGod    ganzhi.TenGod  `json:"stem_ten_god"`
	BranchTenGod  ganzhi.TenGod  `json:"branch_ten_god"`
	Pillar        ganzhi.Pillar  `json:"pillar"`
	StemElement   ganzhi.Element `json:"stem_element"`
	BranchElement ganzhi.Element `json:"branch_element"`
	Year          int            `json:"year"`
	Age           int            `json:"age"`
}

// Info is the luck reading at a point in time. Previous and Next are nil at
// the ends of the sequence; Annual is nil when the current cycle carries no
// entry for the current year.
type Info struct {
	Previous     *Cycle      `json:"previous"`
	Current      *Cycle      `json:"current"`
	Next         *Cycle      `json:"next"`
	Annual       *Annual     `json:"annual"`
	Phase        Phase       `json:"phase"`
	Cycles       []Cycle     `json:"cycles"`
	Age          int         `json:"age"`
	YearsElapsed int         `json:"years_elapsed"`
	DayMaster    ganzhi.Stem `json:"day_master"`
	Forward      bool        `json:"forward"`
}

// Input is what the calculator needs about a birth.
type Input struct {
	Birth  solartime.Birth
	Gender calendar.Gender
}

// Calculator computes luck cycles.
type Calculator struct {
	source    calendar.Source
	corrector *solartime.Corrector
	logger    *slog.Logger
	cycles    int
}

// New returns a Calculator. Births with coordinates are corrected to true
// solar time with corrector; the rest, or every birth when corrector is
// nil, use the raw wall clock.
func New(source calendar.Source, corrector *solartime.Corrector, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{source: source, corrector: corrector, logger: logger, cycles: DefaultCycles}
}

// Age is the completed-years age on now's calendar date.
func Age(birth solartime.Date, now time.Time) int {
	age := now.Year() - birth.Year
	if int(now.Month()) < birth.Month || (int(now.Month()) == birth.Month && now.Day() < birth.Day) {
		age--
	}
	return age
}

func (c *Calculator) instant(b solartime.Birth) (calendar.DateTime, error) {
	clock := b.Clock
	if !b.TimeKnown {
		clock = solartime.Clock{Hour: 12}
	}
	if c.corrector == nil || b.Coordinates == nil {
		return calendar.DateTime{Year: b.Date.Year, Month: b.Date.Month, Day: b.Date.Day, Hour: clock.Hour, Minute: clock.Minute}, nil
	}
	corr, err := c.corrector.Resolve(b)
	if err != nil {
		return calendar.DateTime{}, fmt.Errorf("correct birth time: %w", err)
	}
	return calendar.DateTime{
		Year: corr.Date.Year, Month: corr.Date.Month, Day: corr.Date.Day,
		Hour: corr.Clock.Hour, Minute: corr.Clock.Minute,
	}, nil
}

// Calculate returns the luck reading for in as of now. It returns
// ErrNoCurrentCycle when no macro cycle contains the present age.
func (c *Calculator) Calculate(in Input, now time.Time) (*Info, error) {
	dt, err := c.instant(in.Birth)
	if err != nil {
		return nil, err
	}
	ec, err := c.source.EightChar(dt)
	if err != nil {
		return nil, err
	}
	day, err := ganzhi.ParsePillar(ec.Day)
	if err != nil {
		return nil, fmt.Errorf("%w: day pillar: %w", calendar.ErrCalculation, err)
	}
	yun, err := c.source.Cycles(dt, in.Gender, c.cycles)
	if err != nil {
		return nil, err
	}

	info := &Info{
		DayMaster: day.Stem,
		Forward:   yun.Forward,
		Age:       Age(in.Birth.Date, now),
		Cycles:    make([]Cycle, 0, len(yun.Cycles)),
	}
	for _, raw := range yun.Cycles {
		cy, err := annotateCycle(raw, day.Stem)
		if err != nil {
			return nil, err
		}
		info.Cycles = append(info.Cycles, cy)
	}

	idx := -1
	for i, cy := range info.Cycles {
		if cy.Contains(info.Age) {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.logger.Warn("no luck cycle contains age", "age", info.Age, "cycles", len(info.Cycles))
		return nil, ErrNoCurrentCycle
	}

	info.Current = &info.Cycles[idx]
	if idx > 0 {
		info.Previous = &info.Cycles[idx-1]
	}
	if idx+1 < len(info.Cycles) {
		info.Next = &info.Cycles[idx+1]
	}
	for i := range info.Current.Annual {
		if info.Current.Annual[i].Year == now.Year() {
			info.Annual = &info.Current.Annual[i]
			break
		}
	}
	info.YearsElapsed = info.Age - info.Current.StartAge
	info.Phase = PhaseFor(info.YearsElapsed)

	c.logger.Debug("luck cycles",
		"age", info.Age, "forward", info.Forward, "current", info.Current.Hanja,
		"phase", info.Phase, "annual_found", info.Annual != nil)
	return info, nil
}

func annotateCycle(raw calendar.MajorCycle, dm ganzhi.Stem) (Cycle, error) {
	cy := Cycle{
		Index:     raw.Index,
		StartAge:  raw.StartAge,
		EndAge:    raw.EndAge,
		StartYear: raw.StartYear,
		EndYear:   raw.EndYear,
	}
	if raw.GanZhi == "" {
		cy.PreCycle = true
		cy.Pillar = ganzhi.Pillar{Stem: ganzhi.StemUnknown, Branch: ganzhi.BranchUnknown}
		cy.StemElement, cy.BranchElement = ganzhi.ElementUnknown, ganzhi.ElementUnknown
	} else {
		p, err := ganzhi.ParsePillar(raw.GanZhi)
		if err != nil {
			return Cycle{}, fmt.Errorf("%w: cycle %d: %w", calendar.ErrCalculation, raw.Index, err)
		}
		cy.Pillar = p
		cy.Hanja = p.Hanja()
		cy.StemElement = p.Stem.Element()
		cy.BranchElement = p.Branch.Element()
		cy.StemTenGod = ganzhi.Relation(dm, p.Stem)
		cy.BranchTenGod = ganzhi.BranchRelation(dm, p.Branch)
	}
	for _, a := range raw.Annual {
		p, err := ganzhi.ParsePillar(a.GanZhi)
		if err != nil {
			return Cycle{}, fmt.Errorf("%w: year %d: %w", calendar.ErrCalculation, a.Year, err)
		}
		cy.Annual = append(cy.Annual, Annual{
			Year:          a.Year,
			Age:           a.Age,
			Pillar:        p,
			Hanja:         p.Hanja(),
			StemElement:   p.Stem.Element(),
			BranchElement: p.Branch.Element(),
			StemTenGod:    ganzhi.Relation(dm, p.Stem),
			BranchTenGod:  ganzhi.BranchRelation(dm, p.Branch),
		})
	}
	return cy, nil
}
