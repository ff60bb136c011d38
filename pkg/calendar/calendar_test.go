package calendar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEightCharGolden(t *testing.T) {
	tests := []struct {
		name string
		dt   DateTime
		want EightChar
	}{
		{
			name: "1996-09-18 11:31 solar time in Seoul",
			dt:   DateTime{Year: 1996, Month: 9, Day: 18, Hour: 11, Minute: 31},
			want: EightChar{Year: "丙子", Month: "丁酉", Day: "戊午", Hour: "戊午"},
		},
		{
			name: "2000-01-01 noon is still the 己卯 year before 立春",
			dt:   DateTime{Year: 2000, Month: 1, Day: 1, Hour: 12, Minute: 0},
			want: EightChar{Year: "己卯", Month: "丙子", Day: "戊午", Hour: "戊午"},
		},
		{
			name: "2024-02-10 after 立春",
			dt:   DateTime{Year: 2024, Month: 2, Day: 10, Hour: 8, Minute: 0},
			want: EightChar{Year: "甲辰", Month: "丙寅", Day: "甲辰", Hour: "戊辰"},
		},
	}
	src := NewLunar(DefaultSect)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := src.EightChar(tt.dt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCyclesShape(t *testing.T) {
	src := NewLunar(DefaultSect)
	yun, err := src.Cycles(DateTime{Year: 1996, Month: 9, Day: 18, Hour: 11, Minute: 31}, Male, 10)
	require.NoError(t, err)
	require.Len(t, yun.Cycles, 10)

	// 丙 is a yang year stem, so a male chart runs forward.
	assert.True(t, yun.Forward)

	for i := 1; i < len(yun.Cycles); i++ {
		prev, cur := yun.Cycles[i-1], yun.Cycles[i]
		assert.Equal(t, prev.EndAge+1, cur.StartAge, "cycle %d starts where %d ends", i, i-1)
		assert.NotEmpty(t, cur.GanZhi)
		assert.NotEmpty(t, cur.Annual)
	}

	female, err := src.Cycles(DateTime{Year: 1996, Month: 9, Day: 18, Hour: 11, Minute: 31}, Female, 10)
	require.NoError(t, err)
	assert.False(t, female.Forward)
}

func TestNewLunarSect(t *testing.T) {
	assert.Equal(t, 1, NewLunar(1).Sect())
	assert.Equal(t, DefaultSect, NewLunar(7).Sect())
}

func TestRecoverInto(t *testing.T) {
	run := func() (err error) {
		defer recoverInto(&err)
		panic("boom")
	}
	err := run()
	assert.True(t, errors.Is(err, ErrCalculation))
	assert.Contains(t, err.Error(), "boom")
}

func TestParseGender(t *testing.T) {
	g, err := ParseGender("male")
	require.NoError(t, err)
	assert.Equal(t, Male, g)
	g, err = ParseGender("F")
	require.NoError(t, err)
	assert.Equal(t, Female, g)
	_, err = ParseGender("x")
	assert.Error(t, err)
}
