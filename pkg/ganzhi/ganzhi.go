// Package ganzhi holds the fixed symbol tables of the sexagenary calendar:
// the ten heavenly stems, the twelve earthly branches, their elements and
// polarities, and the Ten God relation between two stems.
package ganzhi

import "fmt"

// Debug turns lookup-table misses into panics. Production code leaves it off
// and receives the Unknown sentinels instead.
var Debug = false

// Element is one of the five phases.
type Element int

// Elements in production-cycle order: each one produces the next.
const (
	Wood Element = iota
	Fire
	Earth
	Metal
	Water
	ElementUnknown Element = -1
)

// AllElements lists the five elements in production order.
var AllElements = [5]Element{Wood, Fire, Earth, Metal, Water}

var elementNames = [5]string{"wood", "fire", "earth", "metal", "water"}

var elementHanja = [5]string{"木", "火", "土", "金", "水"}

var elementKorean = [5]string{"목", "화", "토", "금", "수"}

// String returns the lowercase English element name.
func (e Element) String() string {
	if e < Wood || e > Water {
		return "unknown"
	}
	return elementNames[e]
}

// Hanja returns the element's Chinese character.
func (e Element) Hanja() string {
	if e < Wood || e > Water {
		return "?"
	}
	return elementHanja[e]
}

// Korean returns the element's Korean reading.
func (e Element) Korean() string {
	if e < Wood || e > Water {
		return "?"
	}
	return elementKorean[e]
}

// Produces returns the element this one generates.
func (e Element) Produces() Element {
	if e < Wood || e > Water {
		return ElementUnknown
	}
	return (e + 1) % 5
}

// Controls returns the element this one overcomes.
func (e Element) Controls() Element {
	if e < Wood || e > Water {
		return ElementUnknown
	}
	return (e + 2) % 5
}

// MarshalText encodes the element by name.
func (e Element) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// Polarity is yin or yang.
type Polarity int

// Polarities.
const (
	PolarityUnknown Polarity = -1
	Yang            Polarity = 0
	Yin             Polarity = 1
)

// String returns "yang", "yin", or "unknown".
func (p Polarity) String() string {
	switch p {
	case Yang:
		return "yang"
	case Yin:
		return "yin"
	default:
		return "unknown"
	}
}

// MarshalText encodes the polarity by name.
func (p Polarity) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Stem is one of the ten heavenly stems, 0 (Gap) through 9 (Gye).
type Stem int

// Stems.
const (
	Gap Stem = iota
	Eul
	Byeong
	Jeong
	Mu
	Gi
	Gyeong
	Sin
	Im
	Gye
	StemUnknown Stem = -1
)

var stemHanja = [10]string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}

var stemKorean = [10]string{"갑", "을", "병", "정", "무", "기", "경", "신", "임", "계"}

var stemRoman = [10]string{"gap", "eul", "byeong", "jeong", "mu", "gi", "gyeong", "sin", "im", "gye"}

// Valid reports whether s is one of the ten stems.
func (s Stem) Valid() bool { return s >= Gap && s <= Gye }

// Element returns the stem's element: two consecutive stems per element.
func (s Stem) Element() Element {
	if !s.Valid() {
		miss("stem element", int(s))
		return ElementUnknown
	}
	return Element(s / 2)
}

// Polarity returns yang for even stems, yin for odd ones.
func (s Stem) Polarity() Polarity {
	if !s.Valid() {
		miss("stem polarity", int(s))
		return PolarityUnknown
	}
	if s%2 == 0 {
		return Yang
	}
	return Yin
}

// Hanja returns the stem's Chinese character.
func (s Stem) Hanja() string {
	if !s.Valid() {
		return "?"
	}
	return stemHanja[s]
}

// Korean returns the stem's Korean reading.
func (s Stem) Korean() string {
	if !s.Valid() {
		return "?"
	}
	return stemKorean[s]
}

// String returns the romanized stem name.
func (s Stem) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return stemRoman[s]
}

// MarshalText encodes the stem by its Hanja.
func (s Stem) MarshalText() ([]byte, error) {
	return []byte(s.Hanja()), nil
}

// Branch is one of the twelve earthly branches, 0 (Rat, 子) through 11 (Pig, 亥).
type Branch int

// Branches.
const (
	Rat Branch = iota
	Ox
	Tiger
	Rabbit
	Dragon
	Snake
	Horse
	Goat
	Monkey
	Rooster
	Dog
	Pig
	BranchUnknown Branch = -1
)

var branchHanja = [12]string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}

var branchKorean = [12]string{"자", "축", "인", "묘", "진", "사", "오", "미", "신", "유", "술", "해"}

var branchRoman = [12]string{"ja", "chuk", "in", "myo", "jin", "sa", "o", "mi", "sin", "yu", "sul", "hae"}

var branchElement = [12]Element{Water, Earth, Wood, Wood, Earth, Fire, Fire, Earth, Metal, Metal, Earth, Water}

// mainQi is the principal hidden stem of each branch.
var mainQi = [12]Stem{Gye, Gi, Gap, Eul, Mu, Byeong, Jeong, Gi, Gyeong, Sin, Mu, Im}

// Valid reports whether b is one of the twelve branches.
func (b Branch) Valid() bool { return b >= Rat && b <= Pig }

// Element returns the branch's element.
func (b Branch) Element() Element {
	if !b.Valid() {
		miss("branch element", int(b))
		return ElementUnknown
	}
	return branchElement[b]
}

// Polarity returns yang for even branches, yin for odd ones.
func (b Branch) Polarity() Polarity {
	if !b.Valid() {
		miss("branch polarity", int(b))
		return PolarityUnknown
	}
	if b%2 == 0 {
		return Yang
	}
	return Yin
}

// MainStem returns the branch's main hidden stem (본기).
func (b Branch) MainStem() Stem {
	if !b.Valid() {
		miss("branch main stem", int(b))
		return StemUnknown
	}
	return mainQi[b]
}

// Hanja returns the branch's Chinese character.
func (b Branch) Hanja() string {
	if !b.Valid() {
		return "?"
	}
	return branchHanja[b]
}

// Korean returns the branch's Korean reading.
func (b Branch) Korean() string {
	if !b.Valid() {
		return "?"
	}
	return branchKorean[b]
}

// String returns the romanized branch name.
func (b Branch) String() string {
	if !b.Valid() {
		return "unknown"
	}
	return branchRoman[b]
}

// MarshalText encodes the branch by its Hanja.
func (b Branch) MarshalText() ([]byte, error) {
	return []byte(b.Hanja()), nil
}

// Pillar is a stem/branch pair.
type Pillar struct {
	Stem   Stem   `json:"stem"`
	Branch Branch `json:"branch"`
}

// Valid reports whether both halves of the pillar are known.
func (p Pillar) Valid() bool { return p.Stem.Valid() && p.Branch.Valid() }

// Hanja returns the two-character form, e.g. "丙子".
func (p Pillar) Hanja() string { return p.Stem.Hanja() + p.Branch.Hanja() }

// Korean returns the Korean reading, e.g. "병자".
func (p Pillar) Korean() string { return p.Stem.Korean() + p.Branch.Korean() }

// String returns the romanized pair, e.g. "byeong-ja".
func (p Pillar) String() string { return p.Stem.String() + "-" + p.Branch.String() }

func miss(table string, key int) {
	if Debug {
		panic(fmt.Sprintf("ganzhi: no %s entry for %d", table, key))
	}
}
