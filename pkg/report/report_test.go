package report

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeGROOVE-dev/fourpillars/pkg/calendar"
	"github.com/codeGROOVE-dev/fourpillars/pkg/ganzhi"
	"github.com/codeGROOVE-dev/fourpillars/pkg/operating"
	"github.com/codeGROOVE-dev/fourpillars/pkg/personality"
	"github.com/codeGROOVE-dev/fourpillars/pkg/solartime"
	"github.com/codeGROOVE-dev/fourpillars/pkg/survey"
)

type staticZones string

func (z staticZones) ResolveTimezone(_, _ float64) string { return string(z) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func ptr(f float64) *float64 { return &f }

func seoulRequest() Request {
	return Request{
		Date:    "1996-09-18",
		Time:    "11:56",
		Lat:     ptr(37.5665),
		Lon:     ptr(126.978),
		Gender:  "male",
		Answers: "AACBBAABA",
	}
}

func mustParse(t *testing.T, r Request) Input {
	t.Helper()
	in, err := ParseRequest(r)
	require.NoError(t, err)
	return in
}

func newAnalyzer(opts ...Option) *Analyzer {
	base := []Option{WithResolver(staticZones("Asia/Seoul")), WithClock(clock)}
	return New(quietLogger(), append(base, opts...)...)
}

func TestAnalyzeSeoul(t *testing.T) {
	in := mustParse(t, seoulRequest())
	assert.True(t, in.Survey.ThreatClarity)
	assert.False(t, in.Survey.EnvironmentStable)
	assert.True(t, in.Survey.AgencyActive)

	b, err := newAnalyzer().Analyze(context.Background(), in)
	require.NoError(t, err)

	assert.False(t, b.CalculationFailed)
	assert.False(t, b.TimeUnknown)
	assert.Equal(t, 30, b.Age)
	assert.Equal(t, solartime.Clock{Hour: 11, Minute: 31}, b.Correction.Clock)

	require.NotNil(t, b.Chart)
	assert.Equal(t, ganzhi.Mu, b.Chart.DayMaster)
	assert.Equal(t, "丙子", b.Chart.Year.Hanja)
	assert.Equal(t, "戊午", b.Chart.Hour.Hanja)
	assert.Equal(t, 8, b.Chart.ElementCounts.Total())

	require.NotNil(t, b.Operating)
	assert.Equal(t, operating.Active, b.Operating.OSMode)

	require.NotNil(t, b.Luck)
	assert.True(t, b.Luck.Current.Contains(b.Luck.Age))

	require.NotNil(t, b.Behavior)
	assert.True(t, b.Behavior.ProfileMissing)
	assert.Nil(t, b.Profile)
}

func TestAnalyzeDeterministic(t *testing.T) {
	in := mustParse(t, seoulRequest())
	a := newAnalyzer()

	first, err := a.Analyze(context.Background(), in)
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), in)
	require.NoError(t, err)

	j1, err := json.Marshal(first)
	require.NoError(t, err)
	j2, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(j1), string(j2))

	other := seoulRequest()
	other.Answers = "BBBBBBBBB"
	assert.NotEqual(t, ID(in), ID(mustParse(t, other)))
}

func TestAnalyzeUnknownTime(t *testing.T) {
	r := seoulRequest()
	r.Time = ""
	b, err := newAnalyzer().Analyze(context.Background(), mustParse(t, r))
	require.NoError(t, err)
	assert.True(t, b.TimeUnknown)
	assert.Nil(t, b.Chart.Hour)
	assert.Equal(t, 6, b.Chart.ElementCounts.Total())
}

type failingSource struct{}

func (failingSource) EightChar(calendar.DateTime) (calendar.EightChar, error) {
	return calendar.EightChar{}, calendar.ErrCalculation
}

func (failingSource) Cycles(calendar.DateTime, calendar.Gender, int) (calendar.Yun, error) {
	return calendar.Yun{}, calendar.ErrCalculation
}

func TestAnalyzeCalendarFailure(t *testing.T) {
	b, err := newAnalyzer(WithCalendar(failingSource{})).Analyze(context.Background(), mustParse(t, seoulRequest()))
	require.NoError(t, err)
	assert.True(t, b.CalculationFailed)
	assert.True(t, b.LimitedAnalysis)
	assert.Nil(t, b.Chart)
	assert.Nil(t, b.Operating)
	assert.NotEmpty(t, b.ID)
}

type noCycles struct {
	calendar.Source
}

func (noCycles) Cycles(calendar.DateTime, calendar.Gender, int) (calendar.Yun, error) {
	return calendar.Yun{Forward: true}, nil
}

func TestAnalyzeNoLuckCycle(t *testing.T) {
	src := noCycles{Source: calendar.NewLunar(calendar.DefaultSect)}
	b, err := newAnalyzer(WithCalendar(src)).Analyze(context.Background(), mustParse(t, seoulRequest()))
	require.NoError(t, err)
	assert.True(t, b.LimitedAnalysis)
	assert.False(t, b.CalculationFailed)
	assert.Nil(t, b.Luck)
	assert.NotNil(t, b.Operating)
	assert.Contains(t, b.Behavior.Timing, "no luck cycle reading")
}

func TestAnalyzeFlagsDayMasterMismatch(t *testing.T) {
	// 00:30 under Korean summer time is 23:30 KST on the previous day, while
	// the luck cycles read the raw wall clock.
	r := Request{Date: "1988-07-15", Time: "00:30", Gender: "female", Answers: "AACBBAABA"}
	b, err := newAnalyzer().Analyze(context.Background(), mustParse(t, r))
	require.NoError(t, err)
	require.NotNil(t, b.Chart)
	require.NotNil(t, b.Luck)

	assert.Equal(t, solartime.Date{Year: 1988, Month: 7, Day: 14}, b.Correction.Date)
	assert.NotEqual(t, b.Chart.DayMaster, b.Luck.DayMaster)
	assert.True(t, b.DayMasterMismatch)

	seoul, err := newAnalyzer().Analyze(context.Background(), mustParse(t, seoulRequest()))
	require.NoError(t, err)
	assert.False(t, seoul.DayMasterMismatch)
}

type fakeProfiles struct {
	mu   sync.Mutex
	reqs []personality.Request
	err  error
}

func (f *fakeProfiles) Profile(_ context.Context, req personality.Request) (*personality.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	defined := []personality.Center{personality.SolarPlexus, personality.Throat}
	return &personality.Profile{
		Type:           personality.Manifestor,
		Authority:      personality.AuthorityEmotional,
		DefinedCenters: defined,
		OpenCenters:    personality.OpenCenters(defined),
	}, nil
}

func TestAnalyzeWithProfile(t *testing.T) {
	profiles := &fakeProfiles{}
	b, err := newAnalyzer(WithPersonality(profiles)).Analyze(context.Background(), mustParse(t, seoulRequest()))
	require.NoError(t, err)

	require.Len(t, profiles.reqs, 1)
	assert.Equal(t, time.Date(1996, 9, 18, 2, 56, 0, 0, time.UTC), profiles.reqs[0].BirthUTC)
	assert.InDelta(t, 37.5665, profiles.reqs[0].Lat, 1e-9)

	require.NotNil(t, b.Profile)
	assert.False(t, b.Behavior.ProfileMissing)
	require.Len(t, b.Behavior.Gaps, 1)
	assert.Equal(t, "decision-speed", b.Behavior.Gaps[0].ID)
}

func TestAnalyzeProfileOutage(t *testing.T) {
	profiles := &fakeProfiles{err: errors.New("upstream down")}
	b, err := newAnalyzer(WithPersonality(profiles)).Analyze(context.Background(), mustParse(t, seoulRequest()))
	require.NoError(t, err)
	assert.Nil(t, b.Profile)
	assert.True(t, b.Behavior.ProfileMissing)
}

func TestAnalyzeSkipsProfileWithoutTime(t *testing.T) {
	profiles := &fakeProfiles{}
	r := seoulRequest()
	r.Time = "unknown"
	_, err := newAnalyzer(WithPersonality(profiles)).Analyze(context.Background(), mustParse(t, r))
	require.NoError(t, err)
	assert.Empty(t, profiles.reqs)
}

type recordingObserver struct {
	analyses int
	reports  []string
}

func (*recordingObserver) RecordUpstream(string, error) {}

func (*recordingObserver) RecordRequest(string, int) {}

func (o *recordingObserver) RecordAnalysis(time.Duration, error) {
	o.analyses++
}

func (o *recordingObserver) RecordReport(osMode string, _ int) {
	o.reports = append(o.reports, osMode)
}

func TestAnalyzeRecordsMetrics(t *testing.T) {
	obs := &recordingObserver{}
	_, err := newAnalyzer(WithObserver(obs)).Analyze(context.Background(), mustParse(t, seoulRequest()))
	require.NoError(t, err)
	assert.Equal(t, 1, obs.analyses)
	assert.Equal(t, []string{"active"}, obs.reports)
}

func TestAnalyzeRejectsUnknownZone(t *testing.T) {
	r := seoulRequest()
	r.Timezone = "Mars/Olympus"
	_, err := newAnalyzer().Analyze(context.Background(), mustParse(t, r))
	assert.True(t, errors.Is(err, solartime.ErrUnknownZone))
}

func TestParseRequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"bad date", func(r *Request) { r.Date = "18/09/1996" }},
		{"bad time", func(r *Request) { r.Time = "25:00" }},
		{"half coordinates", func(r *Request) { r.Lon = nil }},
		{"longitude out of range", func(r *Request) { r.Lon = ptr(500) }},
		{"latitude out of range", func(r *Request) { r.Lat = ptr(-91) }},
		{"bad gender", func(r *Request) { r.Gender = "x" }},
		{"short survey", func(r *Request) { r.Answers = "AAB" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := seoulRequest()
			tt.mutate(&r)
			_, err := ParseRequest(r)
			assert.Error(t, err)
		})
	}

	_, err := ParseRequest(Request{Date: "1996-09-18", Gender: "female", Answers: "AAAAAAAAA"})
	assert.NoError(t, err)

	r := seoulRequest()
	r.Answers = "AAAAAAAAD"
	_, err = ParseRequest(r)
	assert.True(t, errors.Is(err, survey.ErrIncomplete))
}
