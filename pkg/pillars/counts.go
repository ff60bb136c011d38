package pillars

import "github.com/codeGROOVE-dev/fourpillars/pkg/ganzhi"

// ElementCounts tallies element occurrences across the counted slots.
type ElementCounts struct {
	Wood  int `json:"wood"`
	Fire  int `json:"fire"`
	Earth int `json:"earth"`
	Metal int `json:"metal"`
	Water int `json:"water"`
}

func (c *ElementCounts) slot(e ganzhi.Element) *int {
	switch e {
	case ganzhi.Wood:
		return &c.Wood
	case ganzhi.Fire:
		return &c.Fire
	case ganzhi.Earth:
		return &c.Earth
	case ganzhi.Metal:
		return &c.Metal
	case ganzhi.Water:
		return &c.Water
	}
	return nil
}

// Add counts one occurrence of e. Unknown elements are ignored.
func (c *ElementCounts) Add(e ganzhi.Element) {
	if p := c.slot(e); p != nil {
		*p++
	}
}

// Of returns the count for e.
func (c ElementCounts) Of(e ganzhi.Element) int {
	if p := c.slot(e); p != nil {
		return *p
	}
	return 0
}

// Total returns the number of counted slots.
func (c ElementCounts) Total() int {
	return c.Wood + c.Fire + c.Earth + c.Metal + c.Water
}

// Max returns the largest single count.
func (c ElementCounts) Max() int {
	m := 0
	for _, e := range ganzhi.AllElements {
		m = max(m, c.Of(e))
	}
	return m
}

// Missing lists elements with no occurrences, in production order.
func (c ElementCounts) Missing() []ganzhi.Element {
	var out []ganzhi.Element
	for _, e := range ganzhi.AllElements {
		if c.Of(e) == 0 {
			out = append(out, e)
		}
	}
	return out
}

// Dominant lists the elements sharing the largest count.
func (c ElementCounts) Dominant() []ganzhi.Element {
	m := c.Max()
	if m == 0 {
		return nil
	}
	var out []ganzhi.Element
	for _, e := range ganzhi.AllElements {
		if c.Of(e) == m {
			out = append(out, e)
		}
	}
	return out
}

// PolarityCounts tallies yang and yin slots.
type PolarityCounts struct {
	Yang int `json:"yang"`
	Yin  int `json:"yin"`
}

// Add counts one occurrence of p. Unknown polarities are not counted.
func (c *PolarityCounts) Add(p ganzhi.Polarity) {
	switch p {
	case ganzhi.Yang:
		c.Yang++
	case ganzhi.Yin:
		c.Yin++
	}
}

// OperatingRate is the balance heuristic: 100, minus 10 per count above 3 in
// the largest element, minus 5 per missing element, floored at 40.
func OperatingRate(c ElementCounts) int {
	rate := 100
	if m := c.Max(); m > 3 {
		rate -= 10 * (m - 3)
	}
	rate -= 5 * len(c.Missing())
	return max(rate, 40)
}

// HardwareScore measures structural dynamism: wood and fire push it up,
// metal and water pull it down, and the yang surplus adds half a point each.
// A score of zero or more is dynamic.
func HardwareScore(c ElementCounts, p PolarityCounts) float64 {
	active := c.Wood + c.Fire
	settled := c.Metal + c.Water
	return float64(active-settled) + float64(p.Yang-p.Yin)/2
}
