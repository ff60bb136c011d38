// Package pillars builds a Four Pillars chart from a corrected birth
// instant: the four stem/branch pairs, their elements and Ten God labels
// relative to the Day Master, and the element balance signals used for
// scoring.
package pillars

import (
	"fmt"
	"log/slog"

	"github.com/codeGROOVE-dev/fourpillars/pkg/calendar"
	"github.com/codeGROOVE-dev/fourpillars/pkg/ganzhi"
)

// Pillar positions.
const (
	PositionYear  = "year"
	PositionMonth = "month"
	PositionDay   = "day"
	PositionHour  = "hour"
)

// PillarInfo is one annotated pillar.
type PillarInfo struct {
	Position       string          `json:"position"`
	Hanja          string          `json:"hanja"`
	Korean         string          `json:"korean"`
	StemTenGod     ganzhi.TenGod   `json:"stem_ten_god"`
	BranchTenGod   ganzhi.TenGod   `json:"branch_ten_god"`
	Pillar         ganzhi.Pillar   `json:"pillar"`
	StemElement    ganzhi.Element  `json:"stem_element"`
	BranchElement  ganzhi.Element  `json:"branch_element"`
	StemPolarity   ganzhi.Polarity `json:"stem_polarity"`
	BranchPolarity ganzhi.Polarity `json:"branch_polarity"`
}

// Chart is a complete Four Pillars reading. Hour is nil when the birth time
// is unknown.
type Chart struct {
	Hour              *PillarInfo      `json:"hour"`
	Dominant          []ganzhi.Element `json:"dominant_elements"`
	Missing           []ganzhi.Element `json:"missing_elements"`
	Year              PillarInfo       `json:"year"`
	Month             PillarInfo       `json:"month"`
	Day               PillarInfo       `json:"day"`
	ElementCounts     ElementCounts    `json:"element_counts"`
	PolarityCounts    PolarityCounts   `json:"polarity_counts"`
	HardwareScore     float64          `json:"hardware_score"`
	OperatingRate     int              `json:"operating_rate"`
	DayMaster         ganzhi.Stem      `json:"day_master"`
	DayMasterElement  ganzhi.Element   `json:"day_master_element"`
	DayMasterPolarity ganzhi.Polarity  `json:"day_master_polarity"`
	TimeUnknown       bool             `json:"time_unknown"`
}

// Pillars returns the known pillars in year, month, day, hour order.
func (c *Chart) Pillars() []PillarInfo {
	out := []PillarInfo{c.Year, c.Month, c.Day}
	if c.Hour != nil {
		out = append(out, *c.Hour)
	}
	return out
}

// Calculator derives charts from a calendar source.
type Calculator struct {
	source calendar.Source
	logger *slog.Logger
}

// New returns a Calculator backed by source.
func New(source calendar.Source, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{source: source, logger: logger}
}

// Calculate builds the chart for the corrected instant dt. When hourKnown is
// false the calendar is consulted at noon and the hour pillar is omitted.
func (c *Calculator) Calculate(dt calendar.DateTime, hourKnown bool) (*Chart, error) {
	if !hourKnown {
		dt.Hour, dt.Minute = 12, 0
	}
	ec, err := c.source.EightChar(dt)
	if err != nil {
		return nil, err
	}
	chart, err := FromEightChar(ec, hourKnown)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("four pillars",
		"year", chart.Year.Hanja, "month", chart.Month.Hanja, "day", chart.Day.Hanja,
		"hour_known", hourKnown, "day_master", chart.DayMaster.Hanja(),
		"operating_rate", chart.OperatingRate, "hardware", chart.HardwareScore)
	return chart, nil
}

// FromEightChar annotates raw library output.
func FromEightChar(ec calendar.EightChar, hourKnown bool) (*Chart, error) {
	raw := []struct{ pos, gz string }{
		{PositionYear, ec.Year},
		{PositionMonth, ec.Month},
		{PositionDay, ec.Day},
	}
	if hourKnown {
		raw = append(raw, struct{ pos, gz string }{PositionHour, ec.Hour})
	}

	parsed := make([]ganzhi.Pillar, len(raw))
	for i, r := range raw {
		p, err := ganzhi.ParsePillar(r.gz)
		if err != nil {
			return nil, fmt.Errorf("%w: %s pillar: %w", calendar.ErrCalculation, r.pos, err)
		}
		parsed[i] = p
	}

	dm := parsed[2].Stem
	chart := &Chart{
		DayMaster:         dm,
		DayMasterElement:  dm.Element(),
		DayMasterPolarity: dm.Polarity(),
		TimeUnknown:       !hourKnown,
	}

	infos := make([]PillarInfo, len(parsed))
	for i, p := range parsed {
		infos[i] = Annotate(raw[i].pos, p, dm)
		chart.ElementCounts.Add(infos[i].StemElement)
		chart.ElementCounts.Add(infos[i].BranchElement)
		chart.PolarityCounts.Add(infos[i].StemPolarity)
		chart.PolarityCounts.Add(infos[i].BranchPolarity)
	}
	chart.Year, chart.Month, chart.Day = infos[0], infos[1], infos[2]
	if hourKnown {
		chart.Hour = &infos[3]
	}

	chart.OperatingRate = OperatingRate(chart.ElementCounts)
	chart.HardwareScore = HardwareScore(chart.ElementCounts, chart.PolarityCounts)
	chart.Dominant = chart.ElementCounts.Dominant()
	chart.Missing = chart.ElementCounts.Missing()
	return chart, nil
}

// Annotate labels pillar p at position pos relative to Day Master dm. The
// day stem is its own peer.
func Annotate(pos string, p ganzhi.Pillar, dm ganzhi.Stem) PillarInfo {
	info := PillarInfo{
		Position:       pos,
		Pillar:         p,
		Hanja:          p.Hanja(),
		Korean:         p.Korean(),
		StemElement:    p.Stem.Element(),
		BranchElement:  p.Branch.Element(),
		StemPolarity:   p.Stem.Polarity(),
		BranchPolarity: p.Branch.Polarity(),
		StemTenGod:     ganzhi.Relation(dm, p.Stem),
		BranchTenGod:   ganzhi.BranchRelation(dm, p.Branch),
	}
	if pos == PositionDay {
		info.StemTenGod = ganzhi.PeerSame
	}
	return info
}
