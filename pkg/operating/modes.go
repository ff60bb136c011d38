package operating

import "github.com/codeGROOVE-dev/fourpillars/pkg/survey"

// OSMode is how the subject engages with the world.
type OSMode string

// OS modes.
const (
	Active   OSMode = "active"
	Reactive OSMode = "reactive"
	Passive  OSMode = "passive"
)

// ThreatMode is the subject's default response to pressure.
type ThreatMode string

// Threat modes.
const (
	Forward   ThreatMode = "forward"
	Emotional ThreatMode = "emotional"
	Freeze    ThreatMode = "freeze"
)

// HardwareType is the sign of the structural dynamism score.
type HardwareType string

// Hardware types.
const (
	Dynamic HardwareType = "dynamic"
	Static  HardwareType = "static"
)

// AlignmentType describes how behavior fits the chart's structure.
type AlignmentType string

// Alignment types.
const (
	Aligned       AlignmentType = "aligned"
	Underutilized AlignmentType = "underutilized"
	Overdriven    AlignmentType = "overdriven"
	Scattered     AlignmentType = "scattered"
	Depleted      AlignmentType = "depleted"
)

// ClassifyOS maps the agency and environment flags to an OSMode. Agency
// wins regardless of environment.
func ClassifyOS(agencyActive, environmentStable bool) OSMode {
	switch {
	case agencyActive:
		return Active
	case !environmentStable:
		return Reactive
	default:
		return Passive
	}
}

// ClassifyThreat maps counts of confrontive and avoidant threat answers to a
// ThreatMode. Everything that is neither clearly confrontive nor avoidant is
// emotional.
func ClassifyThreat(confront, avoid int) ThreatMode {
	switch {
	case confront >= 2:
		return Forward
	case avoid >= 1:
		return Freeze
	default:
		return Emotional
	}
}

// ThreatFromSurvey classifies the threat answers of s.
func ThreatFromSurvey(s survey.Scores) ThreatMode {
	return ClassifyThreat(s.ThreatConfront, s.ThreatAvoid)
}

// Hardware returns the hardware type for a dynamism score.
func Hardware(score float64) HardwareType {
	if score >= 0 {
		return Dynamic
	}
	return Static
}

func matched(hw HardwareType, os OSMode) bool {
	return (hw == Dynamic && os == Active) || (hw == Static && os == Passive)
}

// scatterThreshold separates scattered from depleted reactive states.
const scatterThreshold = 4

// depletedRate is the raw operating rate at or below which any misfit is
// treated as depletion.
const depletedRate = 50

// Alignment classifies how OSMode fits the hardware.
func Alignment(hardwareScore float64, os OSMode, rawRate int) AlignmentType {
	hw := Hardware(hardwareScore)
	var a AlignmentType
	switch {
	case os == Reactive:
		a = Depleted
		if abs(hardwareScore) > scatterThreshold {
			a = Scattered
		}
	case matched(hw, os):
		return Aligned
	case hw == Dynamic:
		a = Underutilized
	default:
		a = Overdriven
	}
	if rawRate <= depletedRate {
		return Depleted
	}
	return a
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
