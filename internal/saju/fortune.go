package saju

import "context"

// Fortune 一次完整计算的结果：四柱、五行、十神、大运
type Fortune struct {
	Solar     SolarDate
	Lunar     LunarDate
	Hour      int
	Gender    Gender
	Pillars   FourPillars
	Elements  ElementTally
	Relations []StemRelation
	LifeCycle []LifeCyclePillar
}

// ComputeFortune 校验输入后一次性算出全部结果；任何一步失败都不返回部分结果
func (c *Calculator) ComputeFortune(ctx context.Context, in BirthInput, g Gender) (*Fortune, error) {
	if err := g.Check(); err != nil {
		return nil, err
	}

	chart, err := c.Chart(ctx, in)
	if err != nil {
		return nil, err
	}

	cycle, err := Sequence(chart.Pillars.Year, g)
	if err != nil {
		return nil, err
	}

	return &Fortune{
		Solar:     chart.Solar,
		Lunar:     chart.Lunar,
		Hour:      in.Hour,
		Gender:    g,
		Pillars:   chart.Pillars,
		Elements:  Tally(chart.Pillars),
		Relations: Relations(chart.Pillars),
		LifeCycle: cycle,
	}, nil
}
