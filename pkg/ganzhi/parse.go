package ganzhi

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ParseStem accepts a stem as Hanja ("甲"), Korean ("갑") or romanization ("gap").
func ParseStem(s string) (Stem, error) {
	s = strings.TrimSpace(s)
	for i := range stemHanja {
		if s == stemHanja[i] || s == stemKorean[i] || strings.EqualFold(s, stemRoman[i]) {
			return Stem(i), nil
		}
	}
	return StemUnknown, fmt.Errorf("unknown stem %q", s)
}

// ParseBranch accepts a branch as Hanja ("子"), Korean ("자") or romanization ("ja").
func ParseBranch(s string) (Branch, error) {
	s = strings.TrimSpace(s)
	for i := range branchHanja {
		if s == branchHanja[i] || s == branchKorean[i] || strings.EqualFold(s, branchRoman[i]) {
			return Branch(i), nil
		}
	}
	return BranchUnknown, fmt.Errorf("unknown branch %q", s)
}

// ParsePillar parses a two-character pair such as "丙子" or "병자", or a
// romanized pair such as "byeong-ja".
func ParsePillar(s string) (Pillar, error) {
	s = strings.TrimSpace(s)
	if stem, branch, ok := strings.Cut(s, "-"); ok {
		return parseHalves(stem, branch)
	}
	if utf8.RuneCountInString(s) != 2 {
		return Pillar{Stem: StemUnknown, Branch: BranchUnknown}, fmt.Errorf("pillar %q: want two characters", s)
	}
	first, size := utf8.DecodeRuneInString(s)
	return parseHalves(string(first), s[size:])
}

func parseHalves(stem, branch string) (Pillar, error) {
	st, err := ParseStem(stem)
	if err != nil {
		return Pillar{Stem: StemUnknown, Branch: BranchUnknown}, err
	}
	br, err := ParseBranch(branch)
	if err != nil {
		return Pillar{Stem: StemUnknown, Branch: BranchUnknown}, err
	}
	return Pillar{Stem: st, Branch: br}, nil
}

// SexagenaryIndex returns the position of p in the 60-pair cycle (甲子 = 0),
// or -1 when the stem and branch polarities disagree.
func SexagenaryIndex(p Pillar) int {
	if !p.Valid() {
		return -1
	}
	for i := 0; i < 60; i++ {
		if Stem(i%10) == p.Stem && Branch(i%12) == p.Branch {
			return i
		}
	}
	return -1
}

// PillarAt returns the pair at position i of the 60-pair cycle.
func PillarAt(i int) Pillar {
	i = ((i % 60) + 60) % 60
	return Pillar{Stem: Stem(i % 10), Branch: Branch(i % 12)}
}
