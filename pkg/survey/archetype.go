package survey

// Archetype is the named profile for a type key.
type Archetype struct {
	Name    string `json:"name"`
	Korean  string `json:"korean"`
	Summary string `json:"summary"`
}

var archetypes = map[string]Archetype{
	"T1-E1-A1": {"Architect", "설계자", "Meets pressure head-on, builds on stable ground, and moves first."},
	"T1-E1-A0": {"Guardian", "수호자", "Holds the line under pressure and prefers a steady base; acts when the moment is clear."},
	"T1-E0-A1": {"Pathfinder", "개척자", "Confronts problems directly and thrives on change; starts things without waiting."},
	"T1-E0-A0": {"Sentinel", "파수꾼", "Faces threats squarely in shifting terrain but waits for the right opening."},
	"T0-E1-A1": {"Builder", "건축가", "Avoids open conflict, values stability, and initiates steadily within it."},
	"T0-E1-A0": {"Harbor", "항구", "Seeks calm and continuity; responds rather than initiates."},
	"T0-E0-A1": {"Explorer", "탐험가", "Sidesteps confrontation but chases novelty and takes the first step."},
	"T0-E0-A0": {"Drifter", "표류자", "Moves with the current; sensitive to pressure and change, waits for cues."},
}

// ArchetypeFor returns the archetype for a type key.
func ArchetypeFor(key string) (Archetype, bool) {
	a, ok := archetypes[key]
	return a, ok
}
