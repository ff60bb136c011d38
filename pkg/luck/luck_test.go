package luck

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeGROOVE-dev/fourpillars/pkg/calendar"
	"github.com/codeGROOVE-dev/fourpillars/pkg/ganzhi"
	"github.com/codeGROOVE-dev/fourpillars/pkg/solartime"
)

type fakeSource struct {
	yun    calendar.Yun
	gender []calendar.Gender
	seen   []calendar.DateTime
}

func (f *fakeSource) EightChar(dt calendar.DateTime) (calendar.EightChar, error) {
	f.seen = append(f.seen, dt)
	return calendar.EightChar{Year: "丙子", Month: "丁酉", Day: "戊午", Hour: "戊午"}, nil
}

func (f *fakeSource) Cycles(_ calendar.DateTime, g calendar.Gender, n int) (calendar.Yun, error) {
	f.gender = append(f.gender, g)
	if n < len(f.yun.Cycles) {
		return calendar.Yun{Forward: f.yun.Forward, Cycles: f.yun.Cycles[:n]}, nil
	}
	return f.yun, nil
}

// forwardYun builds a pre-cycle ending at age 7 followed by ten-year windows
// starting from 戊戌, each with its annual entries.
func forwardYun(birthYear int) calendar.Yun {
	yun := calendar.Yun{Forward: true}
	yun.Cycles = append(yun.Cycles, calendar.MajorCycle{
		Index: 0, StartAge: 1, EndAge: 7, StartYear: birthYear, EndYear: birthYear + 6,
	})
	start := ganzhi.SexagenaryIndex(ganzhi.Pillar{Stem: ganzhi.Mu, Branch: ganzhi.Dog})
	for i := 1; i < 10; i++ {
		startAge := 8 + (i-1)*10
		c := calendar.MajorCycle{
			Index:     i,
			GanZhi:    ganzhi.PillarAt(start + i - 1).Hanja(),
			StartAge:  startAge,
			EndAge:    startAge + 9,
			StartYear: birthYear + startAge - 1,
			EndYear:   birthYear + startAge + 8,
		}
		for y := c.StartYear; y <= c.EndYear; y++ {
			c.Annual = append(c.Annual, calendar.AnnualCycle{
				Year:   y,
				Age:    y - birthYear + 1,
				GanZhi: ganzhi.PillarAt(y - 4).Hanja(),
			})
		}
		yun.Cycles = append(yun.Cycles, c)
	}
	return yun
}

var birth1996 = solartime.Birth{Date: solartime.Date{Year: 1996, Month: 9, Day: 18}, Clock: solartime.Clock{Hour: 11, Minute: 56}, TimeKnown: true}

func TestAge(t *testing.T) {
	b := solartime.Date{Year: 1996, Month: 9, Day: 18}
	tests := []struct {
		now  string
		want int
	}{
		{"2026-09-17", 29},
		{"2026-09-18", 30},
		{"2026-10-19", 30},
		{"2026-01-01", 29},
		{"1996-09-18", 0},
	}
	for _, tt := range tests {
		now, err := time.Parse(time.DateOnly, tt.now)
		require.NoError(t, err)
		assert.Equal(t, tt.want, Age(b, now), tt.now)
	}
}

func TestPhaseFor(t *testing.T) {
	tests := []struct {
		elapsed int
		want    Phase
	}{
		{0, PhaseEntering},
		{2, PhaseEntering},
		{3, PhaseStable},
		{7, PhaseStable},
		{8, PhaseTransition},
		{11, PhaseTransition},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.elapsed), func(t *testing.T) {
			assert.Equal(t, tt.want, PhaseFor(tt.elapsed))
		})
	}
}

func TestCalculate(t *testing.T) {
	src := &fakeSource{yun: forwardYun(1996)}
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	info, err := New(src, nil, nil).Calculate(Input{Birth: birth1996, Gender: calendar.Male}, now)
	require.NoError(t, err)

	assert.Equal(t, []calendar.Gender{calendar.Male}, src.gender)
	assert.Equal(t, 30, info.Age)
	assert.True(t, info.Forward)
	assert.Equal(t, ganzhi.Mu, info.DayMaster)
	require.Len(t, info.Cycles, 10)

	assert.True(t, info.Cycles[0].PreCycle)
	assert.Empty(t, info.Cycles[0].StemTenGod)

	require.NotNil(t, info.Current)
	assert.Equal(t, 28, info.Current.StartAge)
	assert.Equal(t, 2, info.YearsElapsed)
	assert.Equal(t, PhaseEntering, info.Phase)
	// 戊戌 + 2 = 庚子: 庚 is the neutral expression of a 戊 master, 子 hides 癸.
	assert.Equal(t, "庚子", info.Current.Hanja)
	assert.Equal(t, ganzhi.ExpressionNeutral, info.Current.StemTenGod)
	assert.Equal(t, ganzhi.WealthDirect, info.Current.BranchTenGod)
	assert.Equal(t, ganzhi.Metal, info.Current.StemElement)

	require.NotNil(t, info.Previous)
	assert.Equal(t, 18, info.Previous.StartAge)
	require.NotNil(t, info.Next)
	assert.Equal(t, 38, info.Next.StartAge)

	require.NotNil(t, info.Annual)
	assert.Equal(t, 2026, info.Annual.Year)
	assert.Equal(t, "丙午", info.Annual.Hanja)
	assert.Equal(t, ganzhi.ResourceIndirect, info.Annual.StemTenGod)
}

func TestCalculateBoundaries(t *testing.T) {
	src := &fakeSource{yun: forwardYun(1996)}
	calc := New(src, nil, nil)

	young, err := calc.Calculate(Input{Birth: birth1996}, time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, young.Current.PreCycle)
	assert.Nil(t, young.Previous)
	assert.NotNil(t, young.Next)

	last, err := calc.Calculate(Input{Birth: birth1996}, time.Date(2092, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 96, last.Age)
	assert.Nil(t, last.Next)
	assert.Equal(t, PhaseTransition, last.Phase)

	_, err = calc.Calculate(Input{Birth: birth1996}, time.Date(2150, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, errors.Is(err, ErrNoCurrentCycle))
}

func TestCalculateMissingAnnual(t *testing.T) {
	yun := forwardYun(1996)
	for i := range yun.Cycles {
		yun.Cycles[i].Annual = nil
	}
	info, err := New(&fakeSource{yun: yun}, nil, nil).Calculate(Input{Birth: birth1996}, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.NotNil(t, info.Current)
	assert.Nil(t, info.Annual)
}

func TestCalculateBadCycle(t *testing.T) {
	yun := forwardYun(1996)
	yun.Cycles[3].GanZhi = "xx"
	_, err := New(&fakeSource{yun: yun}, nil, nil).Calculate(Input{Birth: birth1996}, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, errors.Is(err, calendar.ErrCalculation))
}

func TestCalculateCorrectsOnlyWithCoordinates(t *testing.T) {
	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{yun: forwardYun(1996)}
	calc := New(src, solartime.New(nil, nil), nil)

	_, err := calc.Calculate(Input{Birth: birth1996}, now)
	require.NoError(t, err)

	b := birth1996
	b.Coordinates = &solartime.Coordinates{Lat: 37.5665, Lon: 126.978}
	b.Zone = "Asia/Seoul"
	_, err = calc.Calculate(Input{Birth: b}, now)
	require.NoError(t, err)

	require.Len(t, src.seen, 2)
	assert.Equal(t, calendar.DateTime{Year: 1996, Month: 9, Day: 18, Hour: 11, Minute: 56}, src.seen[0], "raw wall clock")
	assert.Equal(t, calendar.DateTime{Year: 1996, Month: 9, Day: 18, Hour: 11, Minute: 31}, src.seen[1], "true solar time")
}

func TestCalculateWithLibrary(t *testing.T) {
	calc := New(calendar.NewLunar(calendar.DefaultSect), solartime.New(nil, nil), nil)
	b := birth1996
	b.Coordinates = &solartime.Coordinates{Lat: 37.5665, Lon: 126.978}
	b.Zone = "Asia/Seoul"

	info, err := calc.Calculate(Input{Birth: b, Gender: calendar.Male}, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, ganzhi.Mu, info.DayMaster)
	assert.True(t, info.Forward)
	require.NotNil(t, info.Current)
	assert.True(t, info.Current.Contains(info.Age))
	assert.NotEqual(t, ganzhi.TenGodUnknown, info.Current.StemTenGod)
}
