package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/codeGROOVE-dev/fourpillars/pkg/histogram"
	"github.com/codeGROOVE-dev/fourpillars/pkg/report"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type chartFlags struct {
	date     string
	clock    string
	zone     string
	gender   string
	answers  string
	format   string
	lat, lon float64
}

func newChartCmd(a *app) *cobra.Command {
	var f chartFlags
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Calculate the Four Pillars, luck cycles, and operating state for a birth",
		Example: "  saju chart --date 1996-09-18 --time 11:56 --lat 37.5665 --lon 126.978 " +
			"--gender male --answers AACBBAABA",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := report.Request{
				Date:     f.date,
				Time:     f.clock,
				Timezone: f.zone,
				Gender:   f.gender,
				Answers:  f.answers,
			}
			if cmd.Flags().Changed("lat") {
				req.Lat = &f.lat
			}
			if cmd.Flags().Changed("lon") {
				req.Lon = &f.lon
			}
			in, err := report.ParseRequest(req)
			if err != nil {
				return fmt.Errorf("invalid input: %w", err)
			}

			ctx, cancel := timeout(cmd)
			defer cancel()
			bundle, err := a.analyzer.Analyze(ctx, in)
			if err != nil {
				a.logger.Error("Analysis failed", "error", err)
				return err
			}
			return render(a.out, f.format, bundle)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.date, "date", "", "Birth date (YYYY-MM-DD)")
	fl.StringVar(&f.clock, "time", "", "Birth time (HH:MM, empty if unknown)")
	fl.Float64Var(&f.lat, "lat", 0, "Birthplace latitude")
	fl.Float64Var(&f.lon, "lon", 0, "Birthplace longitude")
	fl.StringVar(&f.zone, "tz", "", "IANA timezone of the birthplace (resolved from coordinates when empty)")
	fl.StringVar(&f.gender, "gender", "", "male or female")
	fl.StringVar(&f.answers, "answers", "", "Nine survey answers, e.g. AACBBAABA")
	fl.StringVar(&f.format, "format", formatText, "Output format: text, json, or yaml")
	for _, name := range []string{"date", "gender", "answers"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
	return cmd
}

func render(w io.Writer, format string, b *report.Bundle) error {
	switch strings.ToLower(format) {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	case formatYAML:
		return writeYAML(w, b)
	case formatText, "":
		printBundle(w, b)
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// writeYAML renders v as block-style YAML with the same keys and field
// order as its JSON encoding.
func writeYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding json as yaml: %w", err)
	}
	blockStyle(&doc)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func printBundle(w io.Writer, b *report.Bundle) {
	rule := strings.Repeat("─", 50)
	fmt.Fprintf(w, "\n🀄 Four Pillars: %s\n", b.Birth.Date)
	fmt.Fprintln(w, rule)

	if c := b.Correction; c != nil {
		if b.TimeUnknown {
			fmt.Fprintf(w, "🕐 Birth time:    unknown (hour pillar omitted)\n")
		} else {
			fmt.Fprintf(w, "🕐 Birth time:    %s → %s true solar time (%+.1f min)\n",
				b.Birth.Clock, c.Clock, c.Trace.TotalCorrectionMin)
		}
		fmt.Fprintf(w, "🌍 Timezone:      %s", c.Trace.Timezone)
		if c.Trace.IsDST {
			fmt.Fprintf(w, " (daylight saving, %+d min)", c.Trace.DSTCorrectionMin)
		}
		if c.Trace.DateCrossed != "" {
			fmt.Fprintf(w, "\n                  └─ corrected date %s (%s day)", c.Date, c.Trace.DateCrossed)
		}
		fmt.Fprintln(w)
	}

	if b.CalculationFailed || b.Chart == nil {
		fmt.Fprintln(w, "\n⚠️  Calendar calculation failed; only the survey result is available.")
		fmt.Fprintf(w, "🧭 Survey type:   %s (%s)\n", b.Survey.Archetype.Name, b.Survey.TypeKey)
		return
	}

	hanja := make([]string, 0, 4)
	for _, p := range b.Chart.Pillars() {
		hanja = append(hanja, p.Hanja)
	}
	fmt.Fprintf(w, "🏛  Pillars:       %s\n", strings.Join(hanja, " "))

	fmt.Fprintln(w)
	fmt.Fprint(w, histogram.Pillars(b.Chart))
	fmt.Fprintln(w)
	fmt.Fprint(w, histogram.Elements(b.Chart))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "🧭 Survey type:   %s %s (%s)\n", b.Survey.Archetype.Name, b.Survey.Archetype.Korean, b.Survey.TypeKey)
	if op := b.Operating; op != nil {
		fmt.Fprintf(w, "⚙️  Operating:     %d%% level %d %s (bonus %+d, ceiling %d)\n",
			op.FinalRate, op.Level, op.LevelName, op.Bonus, op.Ceiling)
		fmt.Fprintf(w, "                  OS %s, threat %s, hardware %s, %s\n",
			op.OSMode, op.ThreatMode, op.HardwareType, op.Alignment)
		fmt.Fprintf(w, "📅 Re-survey by:  %s (%s, %s)\n",
			op.Validity.ValidUntil.Format("2006-01-02"), op.Validity.Urgency, op.Validity.Reason)
	}
	fmt.Fprintln(w)

	fmt.Fprint(w, histogram.Timeline(b.Luck))
	if b.DayMasterMismatch {
		fmt.Fprintln(w, "⚠️  Luck cycles were read from the uncorrected birth day.")
	}
	if b.Luck != nil && b.Luck.Annual != nil {
		fmt.Fprintf(w, "This year: %s (%d, age %d)\n", b.Luck.Annual.Hanja, b.Luck.Annual.Year, b.Luck.Annual.Age)
	}
	if b.LimitedAnalysis {
		fmt.Fprintln(w, "⚠️  Limited analysis: some sections could not be calculated.")
	}

	if bh := b.Behavior; bh != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "🧠 Behavior")
		fmt.Fprintln(w, rule)
		printLine(w, "Core drive", bh.CoreDrive)
		printLine(w, "Decisions", bh.DecisionStyle)
		printLine(w, "Environment", bh.EnvironmentFit)
		printLine(w, "Timing", bh.Timing)
		printLine(w, "Warning", bh.WarningSignal)
		for _, s := range bh.Strengths {
			printLine(w, "Strength", s)
		}
		for _, s := range bh.Vulnerabilities {
			printLine(w, "Vulnerable", s)
		}
		for _, s := range bh.WatchOuts {
			printLine(w, "Watch out", s)
		}
		for _, s := range bh.ElementNotes {
			printLine(w, "Element", s)
		}
		for _, g := range bh.Gaps {
			printLine(w, "Gap", fmt.Sprintf("[%s] %s", g.ID, g.Text))
		}
		if bh.ProfileMissing {
			fmt.Fprintln(w, "  (personality profile unavailable)")
		}
	}
}

func printLine(w io.Writer, label, text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(w, "  %-12s %s\n", label+":", text)
}
