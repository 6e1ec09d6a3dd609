package saju

// ElementTally 四柱八字中各五行出现次数，下标为 Element
type ElementTally [elementCount]int

// Count 某一五行的个数
func (t ElementTally) Count(e Element) int { return t[e] }

// Total 总数，恒为 8
func (t ElementTally) Total() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// Tally 统计八个字的五行分布
func Tally(p FourPillars) ElementTally {
	var t ElementTally
	for _, pillar := range p.All() {
		t[pillar.Stem.Element()]++
		t[pillar.Branch.Element()]++
	}
	return t
}

// TenRelation 十神
type TenRelation int

const (
	ParallelPeer      TenRelation = iota // 比肩
	RivalPeer                            // 劫财
	OutputDirect                         // 食神
	OutputIndirect                       // 伤官
	WealthIndirect                       // 偏财
	WealthDirect                         // 正财
	AuthorityIndirect                    // 偏官
	AuthorityDirect                      // 正官
	SupportIndirect                      // 偏印
	SupportDirect                        // 正印
)

var (
	tenRelationLabels = [...]string{
		"parallel-peer", "rival-peer",
		"output-direct", "output-indirect",
		"wealth-indirect", "wealth-direct",
		"authority-indirect", "authority-direct",
		"support-indirect", "support-direct",
	}
	tenRelationHangul = [...]string{
		"비견", "겁재",
		"식신", "상관",
		"편재", "정재",
		"편관", "정관",
		"편인", "정인",
	}
)

func (r TenRelation) String() string { return tenRelationLabels[r] }

// Hangul 韩文名称
func (r TenRelation) Hangul() string { return tenRelationHangul[r] }

// MarshalText JSON 中以标签输出
func (r TenRelation) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// elementRelation 参照五行与目标五行的生克关系
type elementRelation int

const (
	relationNone       elementRelation = iota
	relationSame                       // 同我
	relationGenerate                   // 我生
	relationGenerated                  // 生我
	relationControl                    // 我克
	relationControlled                 // 克我
)

func relate(ref, target Element) elementRelation {
	switch {
	case ref == target:
		return relationSame
	case ref.Generates() == target:
		return relationGenerate
	case target.Generates() == ref:
		return relationGenerated
	case ref.Controls() == target:
		return relationControl
	case target.Controls() == ref:
		return relationControlled
	}
	return relationNone
}

// Classify 以 reference（日干）为参照判断 target 的十神
func Classify(reference, target Stem) TenRelation {
	samePolarity := reference.Polarity() == target.Polarity()
	pick := func(same, different TenRelation) TenRelation {
		if samePolarity {
			return same
		}
		return different
	}

	switch relate(reference.Element(), target.Element()) {
	case relationSame:
		return pick(ParallelPeer, RivalPeer)
	case relationGenerate:
		return pick(OutputDirect, OutputIndirect)
	case relationControl:
		return pick(WealthIndirect, WealthDirect)
	case relationControlled:
		return pick(AuthorityIndirect, AuthorityDirect)
	case relationGenerated:
		return pick(SupportIndirect, SupportDirect)
	}
	// 五行闭环下不可达
	return ParallelPeer
}

// Position 柱位
type Position string

const (
	PositionYear  Position = "year"
	PositionMonth Position = "month"
	PositionDay   Position = "day"
	PositionHour  Position = "hour"
)

// StemRelation 某一柱天干相对日干的十神。Self 为 true 时是日干本身（参照点）
type StemRelation struct {
	Position Position
	Stem     Stem
	Relation TenRelation
	Self     bool
}

// Relations 按年、月、日、时顺序给出四干相对日干的十神，日干本身标记为 Self
func Relations(p FourPillars) []StemRelation {
	targets := []struct {
		pos  Position
		stem Stem
	}{
		{PositionYear, p.Year.Stem},
		{PositionMonth, p.Month.Stem},
		{PositionDay, p.DayStem},
		{PositionHour, p.Hour.Stem},
	}
	out := make([]StemRelation, 0, len(targets))
	for _, t := range targets {
		out = append(out, StemRelation{
			Position: t.pos,
			Stem:     t.stem,
			Relation: Classify(p.DayStem, t.stem),
			Self:     t.pos == PositionDay,
		})
	}
	return out
}
