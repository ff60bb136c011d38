package behavior

import (
	"github.com/codeGROOVE-dev/fourpillars/pkg/ganzhi"
	"github.com/codeGROOVE-dev/fourpillars/pkg/luck"
	"github.com/codeGROOVE-dev/fourpillars/pkg/operating"
	"github.com/codeGROOVE-dev/fourpillars/pkg/personality"
)

var decisionStyles = map[string]string{
	personality.AuthorityEmotional:     "Decide after the emotional wave settles. Sleep on anything important; clarity arrives over time, not in the moment.",
	personality.AuthoritySacral:        "Trust the immediate gut response. A clear yes or no in the body is more reliable than a reasoned list.",
	personality.AuthoritySplenic:       "Act on the first quiet intuitive hit. It speaks once and does not repeat itself.",
	personality.AuthorityEgo:           "Commit only to what you truly want and have the will to deliver.",
	personality.AuthoritySelfProjected: "Talk decisions through and listen to what you hear yourself say.",
	personality.AuthorityMental:        "Use trusted sounding boards in the right setting; clarity comes from hearing the options aloud.",
	personality.AuthorityLunar:         "Give major decisions a full lunar cycle, about 28 days, before committing.",
}

const defaultDecisionStyle = "Decide once the facts are in and your energy agrees with them."

// waitingAuthorities need time before a clear decision forms.
var waitingAuthorities = map[string]bool{
	personality.AuthorityEmotional: true,
	personality.AuthorityLunar:     true,
}

var notSelfByType = map[string]string{
	personality.Generator:            "frustration",
	personality.ManifestingGenerator: "frustration",
	personality.Projector:            "bitterness",
	personality.Manifestor:           "anger",
	personality.Reflector:            "disappointment",
}

var warningSignals = map[string]string{
	"frustration":    "Recurring frustration means you are pushing into work you never responded to.",
	"bitterness":     "Bitterness means your guidance is going where it was not invited.",
	"anger":          "Anger means people are resisting moves they were not told about in advance.",
	"disappointment": "Disappointment means the environment around you does not fit.",
}

var vulnerabilities = map[personality.Center]string{
	personality.Head:        "Open head: pressure to answer other people's questions crowds out your own.",
	personality.Ajna:        "Open ajna: pretending to be certain to look competent.",
	personality.Throat:      "Open throat: talking to attract attention when nobody asked.",
	personality.G:           "Open G: searching for direction and identity in the wrong places.",
	personality.Heart:       "Open heart: proving your worth by over-promising.",
	personality.Sacral:      "Open sacral: not knowing when enough is enough, then burning out.",
	personality.Spleen:      "Open spleen: holding on to people and habits that are not good for you.",
	personality.SolarPlexus: "Open solar plexus: avoiding conflict and truth to keep the peace.",
	personality.Root:        "Open root: rushing to get rid of pressure that is not yours.",
}

var strengths = map[personality.Center]string{
	personality.Head:        "Defined head: a steady source of inspiration and questions.",
	personality.Ajna:        "Defined ajna: a consistent way of processing and concluding.",
	personality.Throat:      "Defined throat: reliable access to expression and manifestation.",
	personality.G:           "Defined G: a fixed sense of identity and direction.",
	personality.Heart:       "Defined heart: willpower you can count on when you commit.",
	personality.Sacral:      "Defined sacral: renewable life force for work you respond to.",
	personality.Spleen:      "Defined spleen: dependable instinct for health and timing.",
	personality.SolarPlexus: "Defined solar plexus: emotional depth that others feel.",
	personality.Root:        "Defined root: a steady relationship with pressure and deadlines.",
}

var coreDrives = map[ganzhi.Element]string{
	ganzhi.Wood:  "growth and expansion; you need room to start things and see them grow",
	ganzhi.Fire:  "visibility and expression; you need an audience and a reason to shine",
	ganzhi.Earth: "stability and mediation; you hold things together and need solid ground",
	ganzhi.Metal: "precision and standards; you cut through ambiguity and need clear rules",
	ganzhi.Water: "insight and adaptability; you read the flow and need space to think",
}

var environmentFits = map[operating.OSMode]string{
	operating.Active:   "You do best where you can set direction and move first. Rigid approval chains drain you.",
	operating.Reactive: "Your state tracks your surroundings right now. Reduce volatility around you before taking on new load.",
	operating.Passive:  "You do best in stable settings with clear invitations. Constant self-starting wears you down.",
}

var phaseTiming = map[luck.Phase]string{
	luck.PhaseEntering:   "early in",
	luck.PhaseStable:     "in the middle of",
	luck.PhaseTransition: "approaching the end of",
}

var phaseAdvice = map[luck.Phase]string{
	luck.PhaseEntering:   "New themes are still arriving; avoid locking in long commitments too early.",
	luck.PhaseStable:     "This is the cycle's working stretch; build on what has already taken shape.",
	luck.PhaseTransition: "A change of cycle is near; wrap up and prepare rather than start large new ventures.",
}

var missingElementNotes = map[ganzhi.Element]string{
	ganzhi.Wood:  "starting new things may take deliberate effort",
	ganzhi.Fire:  "showing your work and enthusiasm may not come naturally",
	ganzhi.Earth: "staying grounded and consistent may need outside structure",
	ganzhi.Metal: "setting limits and finishing cleanly may need practice",
	ganzhi.Water: "rest and reflection tend to get skipped",
}
