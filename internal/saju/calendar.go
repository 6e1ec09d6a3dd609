package saju

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidDate 日期非法、历法无法转换或超出支持范围
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidHour 时辰不在 [0,23]
	ErrInvalidHour = errors.New("invalid hour")
	// ErrInvalidGender 性别不是男/女
	ErrInvalidGender = errors.New("invalid gender")
)

// 支持的公历范围（含两端）
var (
	MinSolarDate = SolarDate{Year: 1900, Month: 1, Day: 1}
	MaxSolarDate = SolarDate{Year: 2100, Month: 12, Day: 31}
)

// SolarDate 公历日期
type SolarDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// LunarDate 农历日期，Leap 表示闰月
type LunarDate struct {
	Year  int  `json:"year"`
	Month int  `json:"month"`
	Day   int  `json:"day"`
	Leap  bool `json:"leap"`
}

// CalendarConverter 公历/农历互转。
// 实现可以是内嵌历表，也可以是远程服务；核心不做重试。
type CalendarConverter interface {
	SolarToLunar(ctx context.Context, d SolarDate) (LunarDate, error)
	LunarToSolar(ctx context.Context, d LunarDate) (SolarDate, error)
}

// ParseSolarDate 解析 YYYY-MM-DD
func ParseSolarDate(s string) (SolarDate, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return SolarDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return SolarDate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// ParseLunarDate 解析 YYYY-MM-DD 形式的农历日期，只校验形状
func ParseLunarDate(s string, leap bool) (LunarDate, error) {
	var d LunarDate
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return d, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	nums := [3]int{}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return d, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		nums[i] = n
	}
	d = LunarDate{Year: nums[0], Month: nums[1], Day: nums[2], Leap: leap}
	if err := d.CheckShape(); err != nil {
		return LunarDate{}, err
	}
	return d, nil
}

// Time 返回当日 UTC 零点
func (d SolarDate) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// Valid 是否为真实存在的公历日期
func (d SolarDate) Valid() bool {
	t := d.Time()
	return t.Year() == d.Year && int(t.Month()) == d.Month && t.Day() == d.Day
}

// Before 比较两个公历日期
func (d SolarDate) Before(o SolarDate) bool {
	return d.Time().Before(o.Time())
}

// InSupportedRange 是否落在 1900-01-01 ~ 2100-12-31
func (d SolarDate) InSupportedRange() bool {
	return !d.Before(MinSolarDate) && !MaxSolarDate.Before(d)
}

// Check 校验日期合法且在支持范围内
func (d SolarDate) Check() error {
	if !d.Valid() {
		return fmt.Errorf("%w: %s does not exist", ErrInvalidDate, d)
	}
	if !d.InSupportedRange() {
		return fmt.Errorf("%w: %s outside %s..%s", ErrInvalidDate, d, MinSolarDate, MaxSolarDate)
	}
	return nil
}

func (d SolarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// CheckShape 只做农历日期的形状校验（月 1-12、日 1-30），是否真实存在由转换器判断
func (d LunarDate) CheckShape() error {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 30 {
		return fmt.Errorf("%w: lunar %s", ErrInvalidDate, d)
	}
	return nil
}

func (d LunarDate) String() string {
	if d.Leap {
		return fmt.Sprintf("%04d-L%02d-%02d", d.Year, d.Month, d.Day)
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}
