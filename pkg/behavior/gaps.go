package behavior

import (
	"github.com/codeGROOVE-dev/fourpillars/pkg/operating"
	"github.com/codeGROOVE-dev/fourpillars/pkg/personality"
)

// Gap identifiers.
const (
	GapDecisionSpeed    = "decision-speed"
	GapIdleEngine       = "idle-engine"
	GapBorrowedPressure = "borrowed-pressure"
	GapForcedInitiation = "forced-initiation"
)

type gapRule struct {
	id    string
	match func(Input) bool
	text  string
}

var gapRules = []gapRule{
	{
		id: GapDecisionSpeed,
		match: func(in Input) bool {
			return in.Survey.AgencyActive &&
				in.Operating.ThreatMode == operating.Forward &&
				in.Profile != nil && waitingAuthorities[in.Profile.Authority] &&
				in.Profile.Defined(personality.SolarPlexus)
		},
		text: "You describe yourself as a fast, decisive mover, but your profile says clarity arrives only after waiting. " +
			"Quick calls made at an emotional high or low are the ones most likely to be regretted.",
	},
	{
		id: GapIdleEngine,
		match: func(in Input) bool {
			return in.Operating.OSMode == operating.Passive &&
				in.Operating.HardwareType == operating.Dynamic &&
				in.Profile.GeneratorFamily() &&
				in.Profile.Defined(personality.Sacral)
		},
		text: "Your chart and profile both point to a large, renewable engine, yet you are currently waiting rather than engaging. " +
			"Unused energy tends to turn into restlessness; find work you can respond to with a full yes.",
	},
	{
		id: GapBorrowedPressure,
		match: func(in Input) bool {
			return in.Operating.OSMode == operating.Reactive &&
				in.Profile.Open(personality.Root) &&
				in.Profile.Open(personality.Head) &&
				!in.Survey.EnvironmentStable
		},
		text: "Much of the pressure you feel right now is absorbed from an unstable environment rather than generated by you. " +
			"Sort what is actually yours to resolve before reacting to it.",
	},
	{
		id: GapForcedInitiation,
		match: func(in Input) bool {
			return in.Operating.OSMode == operating.Active &&
				in.Profile != nil &&
				(in.Profile.Type == personality.Projector || in.Profile.Type == personality.Reflector) &&
				in.Survey.Agency == 3 &&
				in.Operating.Alignment == operating.Overdriven
		},
		text: "You push to initiate everything, but your profile works best when invited and your chart's structure is already strained. " +
			"Initiating less and waiting for recognition would cost far less energy.",
	},
}

func detectGaps(in Input) []Gap {
	out := []Gap{}
	for _, r := range gapRules {
		if r.match(in) {
			out = append(out, Gap{ID: r.id, Text: r.text})
		}
	}
	return out
}
