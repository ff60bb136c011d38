package operating

import "time"

// Urgency tiers for reassessment.
const (
	UrgencyHigh   = "high"
	UrgencyMedium = "medium"
	UrgencyLow    = "low"
)

const (
	minWeeks = 2
	maxWeeks = 20
)

var baseWeeks = map[Level]int{1: 4, 2: 6, 3: 12, 4: 16, 5: 8}

var alignmentWeeks = map[AlignmentType]int{
	Aligned:       4,
	Underutilized: 0,
	Overdriven:    -2,
	Scattered:     -4,
	Depleted:      -4,
}

var osWeeks = map[OSMode]int{Active: 0, Reactive: -4, Passive: 2}

// Validity says how long a result should be trusted.
type Validity struct {
	ValidUntil time.Time `json:"valid_until"`
	Urgency    string    `json:"urgency"`
	Reason     string    `json:"reason"`
	Weeks      int       `json:"weeks"`
}

type reasonRule struct {
	match   func(Level, AlignmentType, OSMode) bool
	message string
}

// reasons are evaluated in order; the first match wins.
var reasons = []reasonRule{
	{
		func(l Level, _ AlignmentType, _ OSMode) bool { return l == 1 },
		"Survival mode shifts quickly once the immediate load changes. Check again soon.",
	},
	{
		func(l Level, _ AlignmentType, _ OSMode) bool { return l == 5 },
		"Flow states rarely last. Check again before the peak fades.",
	},
	{
		func(_ Level, _ AlignmentType, os OSMode) bool { return os == Reactive },
		"A reactive state follows the environment. Check again once your surroundings settle.",
	},
	{
		func(_ Level, a AlignmentType, _ OSMode) bool { return a == Aligned },
		"Behavior and structure agree, so this reading holds for longer.",
	},
	{
		func(Level, AlignmentType, OSMode) bool { return true },
		"Routine reassessment.",
	},
}

// ValidityFor computes the reassessment window starting at surveyDate.
func ValidityFor(level Level, a AlignmentType, os OSMode, surveyDate time.Time) Validity {
	weeks := baseWeeks[level] + alignmentWeeks[a] + osWeeks[os]
	weeks = min(max(weeks, minWeeks), maxWeeks)

	v := Validity{
		Weeks:      weeks,
		ValidUntil: surveyDate.AddDate(0, 0, weeks*7),
	}
	switch {
	case weeks <= 4:
		v.Urgency = UrgencyHigh
	case weeks <= 8:
		v.Urgency = UrgencyMedium
	default:
		v.Urgency = UrgencyLow
	}
	for _, r := range reasons {
		if r.match(level, a, os) {
			v.Reason = r.message
			break
		}
	}
	return v
}
