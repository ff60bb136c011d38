package ganzhi

// TenGod labels how a stem relates to the Day Master.
type TenGod string

// The ten relations, plus a sentinel for inputs outside the tables.
const (
	PeerSame          TenGod = "peer-same"          // 비견
	PeerRival         TenGod = "peer-rival"         // 겁재
	ExpressionNeutral TenGod = "expression-neutral" // 식신
	ExpressionRadical TenGod = "expression-radical" // 상관
	WealthIndirect    TenGod = "wealth-indirect"    // 편재
	WealthDirect      TenGod = "wealth-direct"      // 정재
	AuthorityRadical  TenGod = "authority-radical"  // 편관
	AuthorityDirect   TenGod = "authority-direct"   // 정관
	ResourceIndirect  TenGod = "resource-indirect"  // 편인
	ResourceDirect    TenGod = "resource-direct"    // 정인
	TenGodUnknown     TenGod = "unknown"
)

// AllTenGods lists the ten defined relations.
var AllTenGods = [10]TenGod{
	PeerSame, PeerRival,
	ExpressionNeutral, ExpressionRadical,
	WealthIndirect, WealthDirect,
	AuthorityRadical, AuthorityDirect,
	ResourceIndirect, ResourceDirect,
}

// relationTable is indexed by the production-cycle distance from the Day
// Master's element to the target's, then by polarity match (0 same, 1 different).
var relationTable = [5][2]TenGod{
	{PeerSame, PeerRival},
	{ExpressionNeutral, ExpressionRadical},
	{WealthIndirect, WealthDirect},
	{AuthorityRadical, AuthorityDirect},
	{ResourceIndirect, ResourceDirect},
}

var tenGodKorean = map[TenGod]string{
	PeerSame:          "비견",
	PeerRival:         "겁재",
	ExpressionNeutral: "식신",
	ExpressionRadical: "상관",
	WealthIndirect:    "편재",
	WealthDirect:      "정재",
	AuthorityRadical:  "편관",
	AuthorityDirect:   "정관",
	ResourceIndirect:  "편인",
	ResourceDirect:    "정인",
}

// Korean returns the traditional Korean name of the relation.
func (g TenGod) Korean() string {
	if k, ok := tenGodKorean[g]; ok {
		return k
	}
	return "?"
}

// Group returns the relation family: peer, expression, wealth, authority or resource.
func (g TenGod) Group() string {
	for i, pair := range relationTable {
		if pair[0] == g || pair[1] == g {
			return [5]string{"peer", "expression", "wealth", "authority", "resource"}[i]
		}
	}
	return "unknown"
}

// Relation returns the Ten God of target as seen from the Day Master self.
//
// The distance d runs along the production cycle: 0 shares the element,
// 1 is produced by self, 2 is controlled by self, 3 controls self and 4
// produces self.
func Relation(self, target Stem) TenGod {
	if !self.Valid() || !target.Valid() {
		miss("ten god", int(self)*10+int(target))
		return TenGodUnknown
	}
	d := (int(target.Element()) - int(self.Element()) + 5) % 5
	match := 0
	if self.Polarity() != target.Polarity() {
		match = 1
	}
	return relationTable[d][match]
}

// BranchRelation relates a branch to the Day Master through its main hidden stem.
func BranchRelation(self Stem, target Branch) TenGod {
	return Relation(self, target.MainStem())
}
