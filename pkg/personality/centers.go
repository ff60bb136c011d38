package personality

import "strings"

// Center is one of the nine structural centers.
type Center string

// Centers.
const (
	Head        Center = "head"
	Ajna        Center = "ajna"
	Throat      Center = "throat"
	G           Center = "g"
	Heart       Center = "heart"
	Sacral      Center = "sacral"
	Spleen      Center = "spleen"
	SolarPlexus Center = "solar-plexus"
	Root        Center = "root"
)

// AllCenters is the fixed universe, top to bottom.
var AllCenters = [9]Center{Head, Ajna, Throat, G, Heart, Sacral, Spleen, SolarPlexus, Root}

var centerAliases = map[string]Center{
	"head":         Head,
	"crown":        Head,
	"ajna":         Ajna,
	"mind":         Ajna,
	"throat":       Throat,
	"g":            G,
	"identity":     G,
	"self":         G,
	"heart":        Heart,
	"ego":          Heart,
	"will":         Heart,
	"sacral":       Sacral,
	"spleen":       Spleen,
	"splenic":      Spleen,
	"solar-plexus": SolarPlexus,
	"solarplexus":  SolarPlexus,
	"emotional":    SolarPlexus,
	"root":         Root,
}

// ParseCenter normalizes a center name from the API.
func ParseCenter(s string) (Center, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "-", "_", "-").Replace(key)
	c, ok := centerAliases[key]
	return c, ok
}

// OpenCenters returns the centers of the universe not in defined, in
// universe order.
func OpenCenters(defined []Center) []Center {
	set := make(map[Center]bool, len(defined))
	for _, c := range defined {
		set[c] = true
	}
	open := make([]Center, 0, len(AllCenters)-len(set))
	for _, c := range AllCenters {
		if !set[c] {
			open = append(open, c)
		}
	}
	return open
}
