package histogram

import (
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/codeGROOVE-dev/fourpillars/pkg/calendar"
	"github.com/codeGROOVE-dev/fourpillars/pkg/luck"
	"github.com/codeGROOVE-dev/fourpillars/pkg/pillars"
)

func init() {
	color.NoColor = true
}

func chart(t *testing.T, hourKnown bool) *pillars.Chart {
	t.Helper()
	c, err := pillars.FromEightChar(calendar.EightChar{Year: "丙子", Month: "丁酉", Day: "戊午", Hour: "戊午"}, hourKnown)
	if err != nil {
		t.Fatalf("FromEightChar: %v", err)
	}
	return c
}

func TestElements(t *testing.T) {
	out := Elements(chart(t, true))
	for _, want := range []string{
		"火 fire  ^ (4) ████████████",
		"木 wood  x",
		"水 water   (1) ███",
		"Operating rate 85  Hardware +4.0  Yang 6 / Yin 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Elements output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Birth hour unknown") {
		t.Errorf("unexpected unknown-hour warning:\n%s", out)
	}
}

func TestElementsUnknownHour(t *testing.T) {
	out := Elements(chart(t, false))
	if !strings.Contains(out, "6 of 8 slots counted") {
		t.Errorf("missing unknown-hour warning:\n%s", out)
	}
}

func TestPillars(t *testing.T) {
	out := Pillars(chart(t, true))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "hour") || !strings.Contains(lines[0], "year") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "戊 mu") {
		t.Errorf("stems = %q", lines[1])
	}
}

func TestTimeline(t *testing.T) {
	info := &luck.Info{
		Phase: luck.PhaseStable,
		Cycles: []luck.Cycle{
			{PreCycle: true, StartAge: 1, EndAge: 7},
			{Hanja: "戊戌", StartAge: 8, EndAge: 17},
			{Hanja: "己亥", StartAge: 18, EndAge: 27},
		},
	}
	info.Current = &info.Cycles[2]

	out := Timeline(info)
	if !strings.Contains(out, "  1-7   --") {
		t.Errorf("pre-cycle row missing:\n%s", out)
	}
	if !strings.Contains(out, "← stable") || strings.Count(out, "←") != 1 {
		t.Errorf("current marker wrong:\n%s", out)
	}
	if Timeline(nil) != "Luck cycles unavailable\n" {
		t.Errorf("nil timeline = %q", Timeline(nil))
	}
}
