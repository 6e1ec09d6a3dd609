// Package saju 四柱（年柱、月柱、日柱、时柱）计算核心。
// 纯计算，无 I/O；历法转换通过 CalendarConverter 注入。
package saju

import "fmt"

const (
	stemCount    = 10
	branchCount  = 12
	elementCount = 5
)

// Element 五行
type Element int

const (
	Wood Element = iota
	Fire
	Earth
	Metal
	Water
)

// Polarity 阴阳
type Polarity int

const (
	Yang Polarity = iota
	Yin
)

// Stem 天干，取值 0-9
type Stem int

// Branch 地支，取值 0-11
type Branch int

// Pillar 一柱（天干+地支），不可变值
type Pillar struct {
	Stem   Stem
	Branch Branch
}

var (
	stemHanja    = [stemCount]string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}
	stemHangul   = [stemCount]string{"갑", "을", "병", "정", "무", "기", "경", "신", "임", "계"}
	branchHanja  = [branchCount]string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}
	branchHangul = [branchCount]string{"자", "축", "인", "묘", "진", "사", "오", "미", "신", "유", "술", "해"}

	stemElements = [stemCount]Element{Wood, Wood, Fire, Fire, Earth, Earth, Metal, Metal, Water, Water}
	// 子水 丑土 寅木 卯木 辰土 巳火 午火 未土 申金 酉金 戌土 亥水
	branchElements = [branchCount]Element{Water, Earth, Wood, Wood, Earth, Fire, Fire, Earth, Metal, Metal, Earth, Water}

	elementNames   = [elementCount]string{"wood", "fire", "earth", "metal", "water"}
	elementHangul  = [elementCount]string{"목", "화", "토", "금", "수"}
	elementHanja   = [elementCount]string{"木", "火", "土", "金", "水"}
	polarityNames  = [2]string{"yang", "yin"}
	polarityHangul = [2]string{"양", "음"}
)

// mod 取模，结果总在 [0, n) 内，负数同样适用
func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

// NewStem 把任意整数规约为天干
func NewStem(i int) Stem { return Stem(mod(i, stemCount)) }

// NewBranch 把任意整数规约为地支
func NewBranch(i int) Branch { return Branch(mod(i, branchCount)) }

// NewPillar 用两个任意整数构造一柱
func NewPillar(stem, branch int) Pillar {
	return Pillar{Stem: NewStem(stem), Branch: NewBranch(branch)}
}

func (s Stem) Element() Element   { return stemElements[s] }
func (s Stem) Polarity() Polarity { return Polarity(int(s) % 2) }
func (s Stem) String() string     { return stemHanja[s] }
func (s Stem) Hangul() string     { return stemHangul[s] }

func (b Branch) Element() Element   { return branchElements[b] }
func (b Branch) Polarity() Polarity { return Polarity(int(b) % 2) }
func (b Branch) String() string     { return branchHanja[b] }
func (b Branch) Hangul() string     { return branchHangul[b] }

func (e Element) String() string { return elementNames[e] }
func (e Element) Hangul() string { return elementHangul[e] }
func (e Element) Hanja() string  { return elementHanja[e] }

// Generates 相生：木→火→土→金→水→木
func (e Element) Generates() Element { return Element(mod(int(e)+1, elementCount)) }

// Controls 相克：木→土→水→火→金→木
func (e Element) Controls() Element { return Element(mod(int(e)+2, elementCount)) }

func (p Polarity) String() string { return polarityNames[p] }
func (p Polarity) Hangul() string { return polarityHangul[p] }

// String 返回汉字写法，如 "庚午"
func (p Pillar) String() string { return p.Stem.String() + p.Branch.String() }

// Hangul 返回韩文写法，如 "경오"
func (p Pillar) Hangul() string { return p.Stem.Hangul() + p.Branch.Hangul() }

// Next 沿六十甲子前进（steps 为负时后退）
func (p Pillar) Next(steps int) Pillar {
	return NewPillar(int(p.Stem)+steps, int(p.Branch)+steps)
}

// GoString 便于测试输出
func (p Pillar) GoString() string {
	return fmt.Sprintf("saju.Pillar{%d,%d %s}", p.Stem, p.Branch, p)
}

// Elements 列出全部五行，顺序即相生顺序
func Elements() []Element {
	return []Element{Wood, Fire, Earth, Metal, Water}
}
