package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newPlacesCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "places <query>",
		Short: "Search birthplace candidates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				limit = a.cfg.Geo.Limit
			}
			ctx, cancel := timeout(cmd)
			defer cancel()

			places := a.resolver.SearchPlaces(ctx, strings.Join(args, " "), limit)
			if len(places) == 0 {
				fmt.Fprintln(a.out, "No places found")
				return nil
			}
			for _, p := range places {
				fmt.Fprintf(a.out, "%-40s %9.4f %10.4f  %s\n", p.Label, p.Latitude, p.Longitude, p.Timezone)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results (default from config)")
	return cmd
}

func newTimezoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tz <lat> <lon>",
		Short: "Resolve the IANA timezone for coordinates",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid latitude %q: %w", args[0], err)
			}
			lon, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid longitude %q: %w", args[1], err)
			}

			zone := a.resolver.ResolveTimezone(lat, lon)
			fmt.Fprint(a.out, zone)
			if loc, err := time.LoadLocation(zone); err == nil {
				now := a.now().In(loc)
				name, offset := now.Zone()
				fmt.Fprintf(a.out, " (%s, UTC%+.1f, now %s)", name, float64(offset)/3600, now.Format("15:04"))
			}
			fmt.Fprintln(a.out)
			return nil
		},
	}
}
