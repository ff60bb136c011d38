// Package behavior turns chart, survey, luck, and personality signals into
// plain-language statements through fixed lookup tables.
package behavior

import (
	"fmt"

	"github.com/codeGROOVE-dev/fourpillars/pkg/luck"
	"github.com/codeGROOVE-dev/fourpillars/pkg/operating"
	"github.com/codeGROOVE-dev/fourpillars/pkg/personality"
	"github.com/codeGROOVE-dev/fourpillars/pkg/pillars"
	"github.com/codeGROOVE-dev/fourpillars/pkg/survey"
)

// Input gathers every signal the translator reads. Luck and Profile may be
// nil.
type Input struct {
	Chart     *pillars.Chart
	Luck      *luck.Info
	Profile   *personality.Profile
	Survey    survey.Scores
	Operating operating.Result
	Age       int
}

// Gap is an explanation emitted when two independent signals disagree.
type Gap struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Bundle is the plain-language output.
type Bundle struct {
	CoreDrive       string   `json:"core_drive"`
	DecisionStyle   string   `json:"decision_style"`
	WarningSignal   string   `json:"warning_signal,omitempty"`
	EnvironmentFit  string   `json:"environment_fit"`
	Timing          string   `json:"timing"`
	Vulnerabilities []string `json:"vulnerabilities"`
	Strengths       []string `json:"strengths"`
	WatchOuts       []string `json:"watch_outs"`
	ElementNotes    []string `json:"element_notes"`
	Gaps            []Gap    `json:"gaps"`
	ProfileMissing  bool     `json:"profile_missing"`
}

// Translate builds the bundle. It only looks values up and fills templates.
func Translate(in Input) Bundle {
	b := Bundle{
		Vulnerabilities: []string{},
		Strengths:       []string{},
		WatchOuts:       []string{},
		ElementNotes:    []string{},
		Gaps:            []Gap{},
		ProfileMissing:  in.Profile == nil,
		DecisionStyle:   defaultDecisionStyle,
		EnvironmentFit:  environmentFits[in.Operating.OSMode],
		Timing:          timing(in.Luck, in.Age),
	}

	if in.Chart != nil {
		dm := in.Chart.DayMaster
		b.CoreDrive = fmt.Sprintf("Day Master %s (%s %s): %s.",
			dm.Hanja(), in.Chart.DayMasterPolarity, in.Chart.DayMasterElement, coreDrives[in.Chart.DayMasterElement])
		for _, e := range in.Chart.Missing {
			b.ElementNotes = append(b.ElementNotes, fmt.Sprintf("No %s in the chart: %s.", e, missingElementNotes[e]))
		}
		for _, e := range in.Chart.Dominant {
			if n := in.Chart.ElementCounts.Of(e); n > 3 {
				b.ElementNotes = append(b.ElementNotes, fmt.Sprintf("%s appears %d times and sets the tone of the chart.", capitalize(e.String()), n))
			}
		}
	}

	if p := in.Profile; p != nil {
		if s, ok := decisionStyles[p.Authority]; ok {
			b.DecisionStyle = s
		}
		theme := p.NotSelfTheme
		if theme == "" {
			theme = notSelfByType[p.Type]
		}
		b.WarningSignal = warningSignals[theme]
		for _, c := range p.OpenCenters {
			b.Vulnerabilities = append(b.Vulnerabilities, vulnerabilities[c])
		}
		for _, c := range personality.AllCenters {
			if p.Defined(c) {
				b.Strengths = append(b.Strengths, strengths[c])
			}
		}
		if p.MotivationShadow != "" {
			b.WatchOuts = append(b.WatchOuts, fmt.Sprintf("Motivation %q can slide into %q.", p.Motivation, p.MotivationShadow))
		}
		if p.PerspectiveShadow != "" {
			b.WatchOuts = append(b.WatchOuts, fmt.Sprintf("Perspective %q can slide into %q.", p.Perspective, p.PerspectiveShadow))
		}
	}

	b.Gaps = detectGaps(in)
	return b
}

func timing(info *luck.Info, age int) string {
	if info == nil || info.Current == nil {
		return fmt.Sprintf("At %d no luck cycle reading is available; timing notes are limited.", age)
	}
	cur := info.Current
	name := cur.Hanja
	if cur.PreCycle {
		name = "pre-cycle"
	}
	return fmt.Sprintf("At %d you are %s the %s cycle (ages %d-%d). %s",
		info.Age, phaseTiming[info.Phase], name, cur.StartAge, cur.EndAge, phaseAdvice[info.Phase])
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
