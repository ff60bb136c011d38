// Package report runs the full pipeline for one birth: solar time
// correction, Four Pillars, luck cycles, operating state, and behavior
// translation, producing a JSON-ready Bundle.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/codeGROOVE-dev/fourpillars/pkg/behavior"
	"github.com/codeGROOVE-dev/fourpillars/pkg/calendar"
	"github.com/codeGROOVE-dev/fourpillars/pkg/luck"
	"github.com/codeGROOVE-dev/fourpillars/pkg/metrics"
	"github.com/codeGROOVE-dev/fourpillars/pkg/operating"
	"github.com/codeGROOVE-dev/fourpillars/pkg/personality"
	"github.com/codeGROOVE-dev/fourpillars/pkg/pillars"
	"github.com/codeGROOVE-dev/fourpillars/pkg/solartime"
	"github.com/codeGROOVE-dev/fourpillars/pkg/survey"
)

var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/codeGROOVE-dev/fourpillars"))

// ProfileSource fetches personality profiles. *personality.Client
// satisfies it.
type ProfileSource interface {
	Profile(ctx context.Context, req personality.Request) (*personality.Profile, error)
}

// Bundle is the complete analysis.
type Bundle struct {
	GeneratedAt       time.Time             `json:"generated_at"`
	Correction        *solartime.Correction `json:"correction"`
	Chart             *pillars.Chart        `json:"chart"`
	Luck              *luck.Info            `json:"luck"`
	Operating         *operating.Result     `json:"operating"`
	Profile           *personality.Profile  `json:"profile"`
	Behavior          *behavior.Bundle      `json:"behavior"`
	ID                string                `json:"id"`
	Birth             solartime.Birth       `json:"birth"`
	Survey            survey.Scores         `json:"survey"`
	Gender            calendar.Gender       `json:"gender"`
	Age               int                   `json:"age"`
	TimeUnknown       bool                  `json:"time_unknown"`
	LimitedAnalysis   bool                  `json:"limited_analysis"`
	CalculationFailed bool                  `json:"calculation_failed"`
	// DayMasterMismatch is set when the luck cycles were read from a day
	// pillar other than the chart's. Legacy births that cross midnight
	// during daylight saving do this.
	DayMasterMismatch bool                  `json:"day_master_mismatch"`
}

// Analyzer runs the pipeline.
type Analyzer struct {
	zones       solartime.ZoneResolver
	source      calendar.Source
	personality ProfileSource
	observer    metrics.Observer
	now         func() time.Time
	logger      *slog.Logger
	corrector   *solartime.Corrector
	pillars     *pillars.Calculator
	luck        *luck.Calculator
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithResolver sets the coordinate-to-zone resolver (usually *geo.Resolver).
func WithResolver(z solartime.ZoneResolver) Option {
	return func(a *Analyzer) { a.zones = z }
}

// WithCalendar sets the calendar source.
func WithCalendar(s calendar.Source) Option {
	return func(a *Analyzer) {
		if s != nil {
			a.source = s
		}
	}
}

// WithClock overrides the current time.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// WithObserver records pipeline metrics.
func WithObserver(o metrics.Observer) Option {
	return func(a *Analyzer) { a.observer = o }
}

// WithPersonality enables personality profile lookups.
func WithPersonality(p ProfileSource) Option {
	return func(a *Analyzer) { a.personality = p }
}

// New creates an Analyzer.
func New(logger *slog.Logger, opts ...Option) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Analyzer{
		source: calendar.NewLunar(calendar.DefaultSect),
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.corrector = solartime.New(a.zones, logger)
	a.pillars = pillars.New(a.source, logger)
	a.luck = luck.New(a.source, a.corrector, logger)
	return a
}

// ID derives a stable identifier from the inputs.
func ID(in Input) string {
	b := in.Birth
	key := fmt.Sprintf("%s|%s|%t|%s|%s|%s", b.Date, b.Clock, b.TimeKnown, b.Zone, in.Gender, in.Survey.Answers)
	if b.Coordinates != nil {
		key += fmt.Sprintf("|%.6f,%.6f", b.Coordinates.Lat, b.Coordinates.Lon)
	}
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

// Analyze runs the pipeline. Invalid input is an error; calendar failures,
// missing luck cycles, and personality outages are reported as flags on
// the bundle.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*Bundle, error) {
	start := time.Now()
	b, err := a.analyze(ctx, in)
	if a.observer != nil {
		a.observer.RecordAnalysis(time.Since(start), err)
		if b != nil && b.Operating != nil {
			a.observer.RecordReport(string(b.Operating.OSMode), int(b.Operating.Level))
		}
	}
	return b, err
}

func (a *Analyzer) analyze(ctx context.Context, in Input) (*Bundle, error) {
	now := a.now()
	surveyDate := in.SurveyDate
	if surveyDate.IsZero() {
		surveyDate = now
	}

	b := &Bundle{
		ID:          ID(in),
		GeneratedAt: now,
		Birth:       in.Birth,
		Gender:      in.Gender,
		Survey:      in.Survey,
		Age:         luck.Age(in.Birth.Date, now),
		TimeUnknown: !in.Birth.TimeKnown,
	}

	corr, err := a.corrector.Resolve(in.Birth)
	if err != nil {
		return nil, fmt.Errorf("correcting birth time: %w", err)
	}
	b.Correction = &corr

	dt := calendar.DateTime{
		Year: corr.Date.Year, Month: corr.Date.Month, Day: corr.Date.Day,
		Hour: corr.Clock.Hour, Minute: corr.Clock.Minute,
	}
	chart, err := a.pillars.Calculate(dt, in.Birth.TimeKnown)
	if err != nil {
		a.logger.Warn("four pillars calculation failed", "error", err, "id", b.ID)
		b.CalculationFailed = true
		b.LimitedAnalysis = true
		return b, nil
	}
	b.Chart = chart

	info, err := a.luck.Calculate(luck.Input{Birth: in.Birth, Gender: in.Gender}, now)
	switch {
	case errors.Is(err, luck.ErrNoCurrentCycle):
		b.LimitedAnalysis = true
	case err != nil:
		a.logger.Warn("luck cycle calculation failed", "error", err, "id", b.ID)
		b.LimitedAnalysis = true
	default:
		b.Luck = info
		if info.DayMaster != chart.DayMaster {
			b.DayMasterMismatch = true
			a.logger.Warn("luck cycles use a different day master than the chart",
				"id", b.ID, "chart", chart.DayMaster.Hanja(), "luck", info.DayMaster.Hanja(),
				"corrected_date", corr.Date.String())
		}
	}

	result := operating.Score(operating.Input{
		SurveyDate:    surveyDate,
		Survey:        in.Survey,
		Counts:        chart.ElementCounts,
		HardwareScore: chart.HardwareScore,
		RawRate:       chart.OperatingRate,
	})
	b.Operating = &result

	b.Profile = a.profile(ctx, in.Birth, corr.Trace.Timezone)

	bh := behavior.Translate(behavior.Input{
		Chart:     chart,
		Luck:      b.Luck,
		Profile:   b.Profile,
		Survey:    in.Survey,
		Operating: result,
		Age:       b.Age,
	})
	b.Behavior = &bh

	a.logger.Info("analysis complete",
		"id", b.ID, "day_master", chart.DayMaster.Hanja(), "os_mode", result.OSMode,
		"level", result.Level, "limited", b.LimitedAnalysis, "profile", b.Profile != nil)
	return b, nil
}

// profile looks up the personality profile. It needs a known birth time.
func (a *Analyzer) profile(ctx context.Context, birth solartime.Birth, zone string) *personality.Profile {
	if a.personality == nil || !birth.TimeKnown {
		return nil
	}
	if birth.Zone != "" {
		zone = birth.Zone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		a.logger.Debug("personality lookup skipped", "zone", zone, "error", err)
		return nil
	}
	req := personality.Request{
		BirthUTC: time.Date(birth.Date.Year, time.Month(birth.Date.Month), birth.Date.Day,
			birth.Clock.Hour, birth.Clock.Minute, 0, 0, loc).UTC(),
	}
	if c := birth.Coordinates; c != nil {
		req.Lat, req.Lon = c.Lat, c.Lon
	}
	p, err := a.personality.Profile(ctx, req)
	if err != nil {
		a.logger.Warn("personality profile unavailable", "error", err)
		return nil
	}
	return p
}
