// Package operating classifies the subject's current operating state from
// survey axes and the chart's element structure, and converts it into a
// 1-5 level with a reassessment window.
package operating

import (
	"math"
	"time"

	"github.com/codeGROOVE-dev/fourpillars/pkg/pillars"
	"github.com/codeGROOVE-dev/fourpillars/pkg/survey"
)

// Bonus caps and multipliers.
const (
	matchedCap         = 10
	matchedMultiplier  = 1.5
	reactiveCap        = 20
	reactiveMultiplier = 2.5
	mismatchCap        = 15
	mismatchMultiplier = 2
)

// IntensityBonus is the signed rate adjustment for a hardware score under the
// given modes.
func IntensityBonus(hardwareScore float64, os OSMode, tm ThreatMode) int {
	mag := abs(hardwareScore)
	hw := Hardware(hardwareScore)

	var bonus float64
	switch {
	case os == Reactive:
		bonus = -math.Min(reactiveCap, mag*reactiveMultiplier)
	case matched(hw, os):
		bonus = math.Min(matchedCap, mag*matchedMultiplier)
	default:
		bonus = -math.Min(mismatchCap, mag*mismatchMultiplier)
	}

	// Damp extreme inputs.
	switch {
	case mag > 6:
		bonus *= 0.7
	case mag > 4:
		bonus *= 0.85
	}

	switch {
	case tm == Freeze && hw == Dynamic:
		bonus -= 5
	case tm == Emotional && hw == Static:
		bonus -= 3
	case tm == Forward && hw == Dynamic && os == Active:
		bonus += 3
	}
	return int(math.Round(bonus))
}

// Ceiling caps the final rate by element balance.
func Ceiling(c pillars.ElementCounts) int {
	missing := len(c.Missing())
	switch {
	case missing == 0 && c.Max() <= 3:
		return 105
	case missing == 0:
		return 103
	case missing == 1:
		return 100
	default:
		return 97
	}
}

// Level is the 1-5 operating level.
type Level int

var levelNames = [...]string{"", "Survival", "Recovery", "Stable", "Aligned", "Flow"}

// Name returns the level's label.
func (l Level) Name() string {
	if l < 1 || l > 5 {
		return "Unknown"
	}
	return levelNames[l]
}

// LevelFor converts a final rate into a level. Each threshold belongs to the
// higher level.
func LevelFor(rate float64) Level {
	switch {
	case rate < 35:
		return 1
	case rate < 50:
		return 2
	case rate < 65:
		return 3
	case rate < 80:
		return 4
	default:
		return 5
	}
}

// Input is everything the scorer reads.
type Input struct {
	SurveyDate    time.Time
	Survey        survey.Scores
	Counts        pillars.ElementCounts
	HardwareScore float64
	RawRate       int
}

// Result is the scored operating state.
type Result struct {
	OSMode       OSMode        `json:"os_mode"`
	ThreatMode   ThreatMode    `json:"threat_mode"`
	HardwareType HardwareType  `json:"hardware_type"`
	Alignment    AlignmentType `json:"alignment"`
	LevelName    string        `json:"level_name"`
	Validity     Validity      `json:"validity"`
	Bonus        int           `json:"bonus"`
	Ceiling      int           `json:"ceiling"`
	RawRate      int           `json:"raw_rate"`
	FinalRate    int           `json:"final_rate"`
	Level        Level         `json:"level"`
}

// Score runs the full classification.
func Score(in Input) Result {
	os := ClassifyOS(in.Survey.AgencyActive, in.Survey.EnvironmentStable)
	tm := ThreatFromSurvey(in.Survey)
	r := Result{
		OSMode:       os,
		ThreatMode:   tm,
		HardwareType: Hardware(in.HardwareScore),
		Alignment:    Alignment(in.HardwareScore, os, in.RawRate),
		Bonus:        IntensityBonus(in.HardwareScore, os, tm),
		Ceiling:      Ceiling(in.Counts),
		RawRate:      in.RawRate,
	}
	r.FinalRate = min(max(in.RawRate+r.Bonus, 0), r.Ceiling)
	r.Level = LevelFor(float64(r.FinalRate))
	r.LevelName = r.Level.Name()
	r.Validity = ValidityFor(r.Level, r.Alignment, os, in.SurveyDate)
	return r
}
