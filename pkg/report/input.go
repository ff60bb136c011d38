package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/fourpillars/pkg/calendar"
	"github.com/codeGROOVE-dev/fourpillars/pkg/solartime"
	"github.com/codeGROOVE-dev/fourpillars/pkg/survey"
)

// Request is the wire form of an analysis request.
type Request struct {
	Lat      *float64 `json:"lat,omitempty" yaml:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty" yaml:"lon,omitempty"`
	Date     string   `json:"date" yaml:"date"`
	Time     string   `json:"time" yaml:"time"`
	Timezone string   `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	Gender   string   `json:"gender" yaml:"gender"`
	Answers  string   `json:"answers" yaml:"answers"`
}

// Input is a validated request.
type Input struct {
	SurveyDate time.Time
	Birth      solartime.Birth
	Survey     survey.Scores
	Gender     calendar.Gender
}

// ParseRequest validates r and scores its survey answers.
func ParseRequest(r Request) (Input, error) {
	var in Input
	date, err := solartime.ParseDate(r.Date)
	if err != nil {
		return in, err
	}
	clock, known, err := solartime.ParseClock(r.Time)
	if err != nil {
		return in, err
	}
	in.Birth = solartime.Birth{Date: date, Clock: clock, TimeKnown: known, Zone: strings.TrimSpace(r.Timezone)}

	switch {
	case r.Lat != nil && r.Lon != nil:
		coords := solartime.Coordinates{Lat: *r.Lat, Lon: *r.Lon}
		if err := coords.Validate(); err != nil {
			return in, err
		}
		in.Birth.Coordinates = &coords
	case r.Lat != nil || r.Lon != nil:
		return in, fmt.Errorf("lat and lon must be given together")
	}

	if in.Gender, err = calendar.ParseGender(strings.ToLower(strings.TrimSpace(r.Gender))); err != nil {
		return in, err
	}
	answers, err := survey.ParseAnswers(r.Answers)
	if err != nil {
		return in, err
	}
	if in.Survey, err = survey.Score(answers); err != nil {
		return in, err
	}
	return in, nil
}
