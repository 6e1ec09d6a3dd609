// Package lunar 提供 saju.CalendarConverter 的实现：内嵌历表与 KASI 远程接口。
package lunar

import (
	"context"
	"fmt"

	"gogwan-api/internal/saju"

	"github.com/6tail/lunar-go/calendar"
)

// Embedded 基于 lunar-go 内嵌历表的转换器，无 I/O
type Embedded struct{}

// NewEmbedded 创建内嵌转换器
func NewEmbedded() *Embedded {
	return &Embedded{}
}

// recoverInvalid lunar-go 遇到不存在的日期会 panic，统一转成 ErrInvalidDate
func recoverInvalid(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", saju.ErrInvalidDate, r)
	}
}

// SolarToLunar 公历转农历
func (e *Embedded) SolarToLunar(_ context.Context, d saju.SolarDate) (out saju.LunarDate, err error) {
	if err := d.Check(); err != nil {
		return saju.LunarDate{}, err
	}
	defer recoverInvalid(&err)

	return toLunarDate(calendar.NewSolarFromYmd(d.Year, d.Month, d.Day).GetLunar()), nil
}

// LunarToSolar 农历转公历。转换后再反查一次，不一致说明该农历日期不存在（如小月三十）。
func (e *Embedded) LunarToSolar(_ context.Context, d saju.LunarDate) (out saju.SolarDate, err error) {
	if err := d.CheckShape(); err != nil {
		return saju.SolarDate{}, err
	}
	// 农历年份比公历最多早一年
	if d.Year < saju.MinSolarDate.Year-1 || d.Year > saju.MaxSolarDate.Year {
		return saju.SolarDate{}, fmt.Errorf("%w: lunar %s out of range", saju.ErrInvalidDate, d)
	}
	defer recoverInvalid(&err)

	month := d.Month
	if d.Leap {
		month = -month
	}
	solar := calendar.NewLunarFromYmd(d.Year, month, d.Day).GetSolar()
	out = saju.SolarDate{Year: solar.GetYear(), Month: solar.GetMonth(), Day: solar.GetDay()}

	back := toLunarDate(calendar.NewSolarFromYmd(out.Year, out.Month, out.Day).GetLunar())
	if back != d {
		return saju.SolarDate{}, fmt.Errorf("%w: lunar %s does not exist", saju.ErrInvalidDate, d)
	}
	if err := out.Check(); err != nil {
		return saju.SolarDate{}, err
	}
	return out, nil
}

// toLunarDate lunar-go 用负数月份表示闰月
func toLunarDate(l *calendar.Lunar) saju.LunarDate {
	month := l.GetMonth()
	leap := month < 0
	if leap {
		month = -month
	}
	return saju.LunarDate{Year: l.GetYear(), Month: month, Day: l.GetDay(), Leap: leap}
}
