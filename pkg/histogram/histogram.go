// Package histogram renders element balance and luck timelines for the
// terminal.
package histogram

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/codeGROOVE-dev/fourpillars/pkg/ganzhi"
	"github.com/codeGROOVE-dev/fourpillars/pkg/luck"
	"github.com/codeGROOVE-dev/fourpillars/pkg/pillars"
)

const fullSlots = 8

var elementColors = map[ganzhi.Element]*color.Color{
	ganzhi.Wood:  color.New(color.FgGreen),
	ganzhi.Fire:  color.New(color.FgRed),
	ganzhi.Earth: color.New(color.FgYellow),
	ganzhi.Metal: color.New(color.FgWhite),
	ganzhi.Water: color.New(color.FgBlue),
}

// elementColor returns the display color for e; grey when unknown.
func elementColor(e ganzhi.Element) *color.Color {
	if c, ok := elementColors[e]; ok {
		return c
	}
	return color.New(color.FgHiBlack)
}

// Elements draws one bar per element. Dominant elements are marked "^",
// missing ones "x".
func Elements(chart *pillars.Chart) string {
	var out strings.Builder

	out.WriteString("📊 Element Balance\n")
	out.WriteString(strings.Repeat("─", 40) + "\n")

	total := chart.ElementCounts.Total()
	if total < fullSlots {
		fmt.Fprintf(&out, "⚠️  Birth hour unknown: %d of %d slots counted\n", total, fullSlots)
		out.WriteString(strings.Repeat("─", 40) + "\n")
	}

	for _, e := range ganzhi.AllElements {
		n := chart.ElementCounts.Of(e)
		c := elementColor(e)

		marker := "  "
		switch {
		case slices.Contains(chart.Dominant, e):
			marker = color.New(color.FgYellow).Sprint("^") + " "
		case n == 0:
			marker = color.New(color.FgHiBlack).Sprint("x") + " "
		}

		line := fmt.Sprintf("%s %-5s %s", e.Hanja(), e, marker)
		if n > 0 {
			line += fmt.Sprintf("(%d) ", n)
			line += c.Sprint(strings.Repeat("█", n*3))
		} else {
			line += "    "
		}
		out.WriteString(line + "\n")
	}

	out.WriteString(strings.Repeat("─", 40) + "\n")
	fmt.Fprintf(&out, "Operating rate %d  Hardware %+.1f  Yang %d / Yin %d\n",
		chart.OperatingRate, chart.HardwareScore, chart.PolarityCounts.Yang, chart.PolarityCounts.Yin)
	return out.String()
}

// Pillars prints the chart's pillars as a compact table, hour first the way
// charts are traditionally read right to left.
func Pillars(chart *pillars.Chart) string {
	cols := chart.Pillars()
	slices.Reverse(cols)

	var head, stems, branches, gods strings.Builder
	for _, p := range cols {
		fmt.Fprintf(&head, "%-8s", p.Position)
		stems.WriteString(elementColor(p.StemElement).Sprint(p.Pillar.Stem.Hanja()))
		fmt.Fprintf(&stems, " %-6s", p.Pillar.Stem)
		branches.WriteString(elementColor(p.BranchElement).Sprint(p.Pillar.Branch.Hanja()))
		fmt.Fprintf(&branches, " %-6s", p.Pillar.Branch)
		fmt.Fprintf(&gods, "%-8s", p.StemTenGod.Korean())
	}
	return strings.Join([]string{head.String(), stems.String(), branches.String(), gods.String()}, "\n") + "\n"
}

// Timeline lists the macro cycles with the current one highlighted.
func Timeline(info *luck.Info) string {
	if info == nil {
		return "Luck cycles unavailable\n"
	}
	var out strings.Builder
	out.WriteString("🕰  Luck Cycles\n")
	out.WriteString(strings.Repeat("─", 40) + "\n")
	for i := range info.Cycles {
		cy := &info.Cycles[i]
		name := cy.Hanja
		if cy.PreCycle {
			name = "--"
		}
		line := fmt.Sprintf("%3d-%-3d %s", cy.StartAge, cy.EndAge, name)
		if !cy.PreCycle {
			line += " " + elementColor(cy.StemElement).Sprint(strings.Repeat("■", 2)) +
				elementColor(cy.BranchElement).Sprint(strings.Repeat("■", 2)) +
				" " + string(cy.StemTenGod)
		}
		if cy == info.Current {
			line = color.New(color.Bold).Sprint(line) + color.New(color.FgYellow).Sprintf("  ← %s", info.Phase)
		}
		out.WriteString(line + "\n")
	}
	return out.String()
}
