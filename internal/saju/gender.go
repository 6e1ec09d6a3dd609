package saju

import (
	"fmt"
	"strings"
)

// Gender 性别。只有男/女参与大运顺逆计算，Unspecified 一律拒绝。
type Gender int

const (
	GenderUnspecified Gender = iota
	Male
	Female
)

// ParseGender 接受英文、缩写与韩文写法
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "man", "남", "남자", "남성":
		return Male, nil
	case "female", "f", "woman", "여", "여자", "여성":
		return Female, nil
	}
	return GenderUnspecified, fmt.Errorf("%w: %q", ErrInvalidGender, s)
}

// Check 校验是否为男/女
func (g Gender) Check() error {
	if g != Male && g != Female {
		return fmt.Errorf("%w: %d", ErrInvalidGender, int(g))
	}
	return nil
}

func (g Gender) String() string {
	switch g {
	case Male:
		return "male"
	case Female:
		return "female"
	}
	return "unspecified"
}

// Hangul 韩文写法
func (g Gender) Hangul() string {
	switch g {
	case Male:
		return "남성"
	case Female:
		return "여성"
	}
	return "미상"
}
