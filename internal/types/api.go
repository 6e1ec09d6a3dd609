package types

import (
	"gogwan-api/internal/forum"
	"gogwan-api/internal/saju"
)

// 图片风格
const (
	StyleGhibli     = "ghibli"
	StyleWatercolor = "watercolor"
	StylePixel      = "pixel"
	StyleWebtoon    = "webtoon"
)

// IDPhotoRequest 证件照请求，Image 为 base64，可带 data URL 前缀
type IDPhotoRequest struct {
	Image           string `json:"image" validate:"required"`
	BackgroundColor string `json:"background_color,omitempty" validate:"omitempty,max=30"`
}

// GhibliRequest 吉卜力风格转换请求
type GhibliRequest struct {
	Image string `json:"image" validate:"required"`
}

// StyleTransferRequest 风格转换请求
type StyleTransferRequest struct {
	Image string `json:"image" validate:"required"`
	Style string `json:"style" validate:"required,oneof=ghibli watercolor pixel webtoon"`
}

// BannerRequest 横幅生成请求
type BannerRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	Subtitle    string `json:"subtitle,omitempty" validate:"omitempty,max=200"`
	Theme       string `json:"theme,omitempty" validate:"omitempty,max=100"`
	AspectRatio string `json:"aspect_ratio,omitempty" validate:"omitempty,oneof=16:9 1:1 9:16 4:3 3:4"`
}

// ImageResponse 图片类接口的统一响应
type ImageResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	ProcessedImage string `json:"processed_image"`
	MIMEType       string `json:"mime_type"`
}

// SajuRequest 四柱请求
type SajuRequest struct {
	BirthDate string `json:"birth_date" validate:"required"`
	BirthHour *int   `json:"birth_hour" validate:"required"`
	Gender    string `json:"gender" validate:"required"`
	Calendar  string `json:"calendar,omitempty" validate:"omitempty,oneof=solar lunar"`
	LeapMonth bool   `json:"leap_month,omitempty"`
	Interpret bool   `json:"interpret,omitempty"`
}

// StemView 天干
type StemView struct {
	Index    int    `json:"index"`
	Hanja    string `json:"hanja"`
	Hangul   string `json:"hangul"`
	Element  string `json:"element"`
	Polarity string `json:"polarity"`
}

// BranchView 地支
type BranchView struct {
	Index    int    `json:"index"`
	Hanja    string `json:"hanja"`
	Hangul   string `json:"hangul"`
	Element  string `json:"element"`
	Polarity string `json:"polarity"`
}

// PillarView 一柱
type PillarView struct {
	Hanja  string     `json:"hanja"`
	Hangul string     `json:"hangul"`
	Stem   StemView   `json:"stem"`
	Branch BranchView `json:"branch"`
}

// PillarsView 四柱
type PillarsView struct {
	Year  PillarView `json:"year"`
	Month PillarView `json:"month"`
	Day   PillarView `json:"day"`
	Hour  PillarView `json:"hour"`
}

// ElementCount 五行计数
type ElementCount struct {
	Element string `json:"element"`
	Hanja   string `json:"hanja"`
	Hangul  string `json:"hangul"`
	Count   int    `json:"count"`
}

// RelationView 十神
type RelationView struct {
	Position string `json:"position"`
	Stem     string `json:"stem"`
	Relation string `json:"relation"`
	Hangul   string `json:"hangul"`
	Self     bool   `json:"self"`
}

// LifeCycleView 大运
type LifeCycleView struct {
	StartAge int        `json:"start_age"`
	Pillar   PillarView `json:"pillar"`
}

// FortuneView 对外展示的四柱结果
type FortuneView struct {
	SolarDate    saju.SolarDate  `json:"solar_date"`
	LunarDate    saju.LunarDate  `json:"lunar_date"`
	BirthHour    int             `json:"birth_hour"`
	Gender       string          `json:"gender"`
	Pillars      PillarsView     `json:"pillars"`
	ElementTally []ElementCount  `json:"element_tally"`
	TenRelations []RelationView  `json:"ten_relations"`
	Forward      bool            `json:"forward"`
	LifeCycle    []LifeCycleView `json:"life_cycle"`
}

// SajuResponse 四柱响应
type SajuResponse struct {
	Success        bool         `json:"success"`
	Fortune        *FortuneView `json:"fortune"`
	Interpretation string       `json:"interpretation,omitempty"`
}

// CalendarResponse 历法转换响应
type CalendarResponse struct {
	Success bool           `json:"success"`
	Solar   saju.SolarDate `json:"solar"`
	Lunar   saju.LunarDate `json:"lunar"`
}

// PressReleaseRequest 新闻稿请求
type PressReleaseRequest struct {
	Prompt           string `json:"prompt" validate:"required"`
	ReferenceContent string `json:"reference_content,omitempty"`
}

// PressReleaseResponse 新闻稿响应
type PressReleaseResponse struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
}

// CreatePostRequest 发帖请求
type CreatePostRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Content  string `json:"content" validate:"required,max=20000"`
	Author   string `json:"author" validate:"required,max=50"`
	Category string `json:"category,omitempty" validate:"omitempty,oneof=정책 행사 발표 일반"`
}

// CreateCommentRequest 评论请求
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
	Author  string `json:"author" validate:"required,max=50"`
}

// PostResponse 单帖响应
type PostResponse struct {
	Success bool        `json:"success"`
	Post    *forum.Post `json:"post"`
}

// PostListResponse 帖子列表响应
type PostListResponse struct {
	Success bool `json:"success"`
	*forum.Page
}

// CommentResponse 单条评论响应
type CommentResponse struct {
	Success bool           `json:"success"`
	Comment *forum.Comment `json:"comment"`
}

// CommentListResponse 评论列表响应
type CommentListResponse struct {
	Success  bool            `json:"success"`
	Comments []forum.Comment `json:"comments"`
}

// ModelInfo 某个功能使用的模型
type ModelInfo struct {
	Feature  string `json:"feature"`
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
}

// ModelsResponse 模型列表响应
type ModelsResponse struct {
	Success bool        `json:"success"`
	Data    []ModelInfo `json:"data"`
}
