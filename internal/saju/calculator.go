package saju

import (
	"context"
	"fmt"
)

const (
	// 年柱纪元偏移。按农历年切换，不按立春，这是已知的近似。
	yearEpochOffset = 4
	// 日柱干的校准常数，保持原值
	dayStemOffset = 10
)

// dayEpoch 日柱基准日，定义为 干0/支0
var dayEpoch = MinSolarDate

// BirthInput 出生信息。Lunar 为 true 时 Year/Month/Day 按农历解释。
type BirthInput struct {
	Year      int
	Month     int
	Day       int
	Hour      int
	Lunar     bool
	LeapMonth bool
}

// FourPillars 四柱，DayStem 是日柱天干的冗余缓存，作为十神的参照
type FourPillars struct {
	Year    Pillar
	Month   Pillar
	Day     Pillar
	Hour    Pillar
	DayStem Stem
}

// All 按 年、月、日、时 顺序返回
func (f FourPillars) All() [4]Pillar {
	return [4]Pillar{f.Year, f.Month, f.Day, f.Hour}
}

// Chart 解析后的出生日期与四柱
type Chart struct {
	Solar   SolarDate
	Lunar   LunarDate
	Pillars FourPillars
}

// Calculator 四柱计算器，本身无状态，可并发使用
type Calculator struct {
	converter CalendarConverter
}

// NewCalculator 创建计算器
func NewCalculator(converter CalendarConverter) *Calculator {
	return &Calculator{converter: converter}
}

// Compute 计算四柱
func (c *Calculator) Compute(ctx context.Context, in BirthInput) (FourPillars, error) {
	chart, err := c.Chart(ctx, in)
	if err != nil {
		return FourPillars{}, err
	}
	return chart.Pillars, nil
}

// Chart 解析出生日期（公历与农历都给出）并计算四柱
func (c *Calculator) Chart(ctx context.Context, in BirthInput) (*Chart, error) {
	if in.Hour < 0 || in.Hour > 23 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHour, in.Hour)
	}

	solar, lunar, err := c.resolve(ctx, in)
	if err != nil {
		return nil, err
	}

	year := YearPillar(lunar.Year)
	day := DayPillar(solar)
	pillars := FourPillars{
		Year:    year,
		Month:   MonthPillar(year.Stem, lunar.Month),
		Day:     day,
		Hour:    HourPillar(day.Stem, in.Hour),
		DayStem: day.Stem,
	}
	return &Chart{Solar: solar, Lunar: lunar, Pillars: pillars}, nil
}

// resolve 得到同一天的公历和农历表示
func (c *Calculator) resolve(ctx context.Context, in BirthInput) (SolarDate, LunarDate, error) {
	if in.Lunar {
		lunar := LunarDate{Year: in.Year, Month: in.Month, Day: in.Day, Leap: in.LeapMonth}
		if err := lunar.CheckShape(); err != nil {
			return SolarDate{}, LunarDate{}, err
		}
		solar, err := c.converter.LunarToSolar(ctx, lunar)
		if err != nil {
			return SolarDate{}, LunarDate{}, err
		}
		if err := solar.Check(); err != nil {
			return SolarDate{}, LunarDate{}, err
		}
		return solar, lunar, nil
	}

	solar := SolarDate{Year: in.Year, Month: in.Month, Day: in.Day}
	if err := solar.Check(); err != nil {
		return SolarDate{}, LunarDate{}, err
	}
	lunar, err := c.converter.SolarToLunar(ctx, solar)
	if err != nil {
		return SolarDate{}, LunarDate{}, err
	}
	return solar, lunar, nil
}

// YearPillar 年柱：(农历年 - 4) 对 10/12 取模
func YearPillar(lunarYear int) Pillar {
	return NewPillar(lunarYear-yearEpochOffset, lunarYear-yearEpochOffset)
}

// MonthPillar 月柱：干 = 年干*2 + 月 + 1，支 = 月 + 1。闰月按本月计。
func MonthPillar(yearStem Stem, lunarMonth int) Pillar {
	return NewPillar(int(yearStem)*2+lunarMonth+1, lunarMonth+1)
}

// DayPillar 日柱：以 1900-01-01 为 干0/支0 的整日偏移
func DayPillar(d SolarDate) Pillar {
	offset := DaysSinceEpoch(d)
	return NewPillar(offset+dayStemOffset, offset)
}

// DaysSinceEpoch 距 1900-01-01 的整日数，之前的日期为负
func DaysSinceEpoch(d SolarDate) int {
	return int(d.Time().Sub(dayEpoch.Time()).Hours() / 24)
}

// HourPillar 时柱：23:00-01:00 为子时（支0），干 = 日干*2 + 时支
func HourPillar(dayStem Stem, hour int) Pillar {
	branch := NewBranch((hour + 1) / 2)
	return NewPillar(int(dayStem)*2+int(branch), int(branch))
}
