// Package survey scores the nine-question behavioral survey into three
// binary axes and an archetype.
package survey

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncomplete is returned for missing or out-of-range answers.
var ErrIncomplete = errors.New("survey incomplete")

// Questions is the number of answers expected.
const Questions = 9

// flagThreshold is the sub-score at which an axis flag turns on.
const flagThreshold = 2

// Answer choices. Threat questions use all three; the others use A and B.
const (
	Confront = 'A' // threat: confront, environment: stable, agency: initiate
	Express  = 'B' // threat: express, environment: shifting, agency: wait
	Avoid    = 'C' // threat only
)

// Answers holds one choice per question: Q1-Q3 threat, Q4-Q6 environment,
// Q7-Q9 agency.
type Answers [Questions]byte

// ParseAnswers reads a compact answer string such as "AACBBAABA". Case and
// separators (spaces, commas, dashes) are ignored.
func ParseAnswers(s string) (Answers, error) {
	var a Answers
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', ',', '-', '\t':
			return -1
		}
		return r
	}, strings.ToUpper(s))
	if len(clean) != Questions {
		return a, fmt.Errorf("%w: got %d answers, want %d", ErrIncomplete, len(clean), Questions)
	}
	copy(a[:], clean)
	return a, a.Validate()
}

// Validate checks every answer is a legal choice for its question.
func (a Answers) Validate() error {
	for i, c := range a {
		ok := c == Confront || c == Express || (c == Avoid && i < 3)
		if !ok {
			return fmt.Errorf("%w: question %d has answer %q", ErrIncomplete, i+1, c)
		}
	}
	return nil
}

// String returns the compact form.
func (a Answers) String() string { return string(a[:]) }

// Scores is the scored survey.
type Scores struct {
	TypeKey           string    `json:"type_key"`
	Archetype         Archetype `json:"archetype"`
	Answers           string    `json:"answers"`
	Threat            int       `json:"threat"`
	Environment       int       `json:"environment"`
	Agency            int       `json:"agency"`
	ThreatConfront    int       `json:"threat_confront"`
	ThreatAvoid       int       `json:"threat_avoid"`
	ThreatClarity     bool      `json:"threat_clarity"`
	EnvironmentStable bool      `json:"environment_stable"`
	AgencyActive      bool      `json:"agency_active"`
}

func count(answers []byte, choice byte) int {
	n := 0
	for _, c := range answers {
		if c == choice {
			n++
		}
	}
	return n
}

// Score computes sub-scores, flags, the type key and archetype.
func Score(a Answers) (Scores, error) {
	if err := a.Validate(); err != nil {
		return Scores{}, err
	}
	s := Scores{
		Answers:        a.String(),
		Threat:         count(a[0:3], Confront),
		Environment:    count(a[3:6], Confront),
		Agency:         count(a[6:9], Confront),
		ThreatConfront: count(a[0:3], Confront),
		ThreatAvoid:    count(a[0:3], Avoid),
	}
	s.ThreatClarity = s.Threat >= flagThreshold
	s.EnvironmentStable = s.Environment >= flagThreshold
	s.AgencyActive = s.Agency >= flagThreshold
	s.TypeKey = TypeKey(s.ThreatClarity, s.EnvironmentStable, s.AgencyActive)
	s.Archetype = archetypes[s.TypeKey]
	return s, nil
}

// FromFlags builds Scores directly from the three axis flags, for callers
// that collected them elsewhere. Sub-scores are set to the flag threshold.
func FromFlags(threatClarity, environmentStable, agencyActive bool) Scores {
	sub := func(b bool) int {
		if b {
			return flagThreshold
		}
		return 0
	}
	s := Scores{
		Threat:            sub(threatClarity),
		Environment:       sub(environmentStable),
		Agency:            sub(agencyActive),
		ThreatConfront:    sub(threatClarity),
		ThreatClarity:     threatClarity,
		EnvironmentStable: environmentStable,
		AgencyActive:      agencyActive,
	}
	s.TypeKey = TypeKey(threatClarity, environmentStable, agencyActive)
	s.Archetype = archetypes[s.TypeKey]
	return s
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// TypeKey formats the three flags as "T1-E0-A1".
func TypeKey(threat, env, agency bool) string {
	return fmt.Sprintf("T%d-E%d-A%d", bit(threat), bit(env), bit(agency))
}
