package saju

const (
	// LifeCycleLength 大运条数
	LifeCycleLength = 8
	// LifeCycleOnsetAge 起运年龄，固定值（未按节气距离推算）
	LifeCycleOnsetAge = 8
	// LifeCycleStep 每步大运年数
	LifeCycleStep = 10
)

// LifeCyclePillar 一步大运
type LifeCyclePillar struct {
	Pillar   Pillar
	StartAge int
}

// Forward 阳男阴女顺行，阴男阳女逆行
func Forward(yearStem Stem, g Gender) bool {
	yang := yearStem.Polarity() == Yang
	return (yang && g == Male) || (!yang && g == Female)
}

// Sequence 由年柱推出八步大运
func Sequence(year Pillar, g Gender) ([]LifeCyclePillar, error) {
	if err := g.Check(); err != nil {
		return nil, err
	}

	sign := -1
	if Forward(year.Stem, g) {
		sign = 1
	}

	out := make([]LifeCyclePillar, LifeCycleLength)
	for i := range out {
		out[i] = LifeCyclePillar{
			Pillar:   year.Next(sign * (i + 1)),
			StartAge: LifeCycleOnsetAge + i*LifeCycleStep,
		}
	}
	return out, nil
}
