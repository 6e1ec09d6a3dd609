package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gogwan-api/internal/errors"
	"gogwan-api/internal/logger"
	"gogwan-api/internal/metrics"
	"gogwan-api/internal/saju"
	"gogwan-api/internal/types"
	"gogwan-api/internal/utils"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// TextGenerator 文本生成能力
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// FortuneService 四柱服务接口
type FortuneService interface {
	// Compute 计算四柱，可选生成解读
	Compute(ctx context.Context, req *types.SajuRequest) (*types.SajuResponse, error)
	// SolarToLunar 公历转农历
	SolarToLunar(ctx context.Context, date string) (*types.CalendarResponse, error)
	// LunarToSolar 农历转公历
	LunarToSolar(ctx context.Context, date string, leap bool) (*types.CalendarResponse, error)
}

type fortuneService struct {
	converter  saju.CalendarConverter
	calculator *saju.Calculator
	generator  TextGenerator
	provider   string
	cache      *utils.TextCache
}

// NewFortuneService 创建四柱服务；generator 为 nil 时不支持解读
func NewFortuneService(converter saju.CalendarConverter, generator TextGenerator, provider string, cache *utils.TextCache) FortuneService {
	return &fortuneService{
		converter:  converter,
		calculator: saju.NewCalculator(converter),
		generator:  generator,
		provider:   provider,
		cache:      cache,
	}
}

// Compute 计算四柱
func (s *fortuneService) Compute(ctx context.Context, req *types.SajuRequest) (*types.SajuResponse, error) {
	in, g, err := parseSajuRequest(req)
	if err != nil {
		return nil, errors.FromSaju(err)
	}

	fortune, err := s.calculator.ComputeFortune(ctx, in, g)
	metrics.FeatureUsage.WithLabelValues("saju", metrics.Result(err)).Inc()
	if err != nil {
		logger.Warn("四柱计算失败",
			zap.String("birth_date", req.BirthDate),
			zap.Bool("lunar", in.Lunar),
			zap.Error(err),
		)
		return nil, errors.FromSaju(err)
	}
	metrics.FortuneComputations.WithLabelValues(lo.Ternary(in.Lunar, "lunar", "solar")).Inc()

	logger.Debug("四柱计算完成",
		zap.String("solar", fortune.Solar.String()),
		zap.String("lunar", fortune.Lunar.String()),
		zap.Stringer("day_pillar", fortune.Pillars.Day),
	)

	resp := &types.SajuResponse{Success: true, Fortune: NewFortuneView(fortune)}
	if !req.Interpret {
		return resp, nil
	}

	text, err := s.interpret(ctx, fortune)
	if err != nil {
		return nil, err
	}
	resp.Interpretation = text
	return resp, nil
}

func parseSajuRequest(req *types.SajuRequest) (saju.BirthInput, saju.Gender, error) {
	var in saju.BirthInput
	if req.BirthHour == nil {
		return in, saju.GenderUnspecified, saju.ErrInvalidHour
	}

	g, err := saju.ParseGender(req.Gender)
	if err != nil {
		return in, saju.GenderUnspecified, err
	}

	in.Hour = *req.BirthHour
	if req.Calendar == "lunar" {
		d, err := saju.ParseLunarDate(req.BirthDate, req.LeapMonth)
		if err != nil {
			return in, g, err
		}
		in.Year, in.Month, in.Day = d.Year, d.Month, d.Day
		in.Lunar, in.LeapMonth = true, d.Leap
		return in, g, nil
	}

	d, err := saju.ParseSolarDate(req.BirthDate)
	if err != nil {
		return in, g, err
	}
	in.Year, in.Month, in.Day = d.Year, d.Month, d.Day
	return in, g, nil
}

func (s *fortuneService) interpret(ctx context.Context, f *saju.Fortune) (string, error) {
	if s.generator == nil {
		return "", errors.NewTextGenerationError(fmt.Errorf("no interpretation provider configured"))
	}

	prompt := FormatFortunePrompt(f)
	if text, ok := s.cache.Get(prompt); ok {
		metrics.InterpretationCache.WithLabelValues("hit").Inc()
		return text, nil
	}
	metrics.InterpretationCache.WithLabelValues("miss").Inc()

	start := time.Now()
	text, err := s.generator.GenerateText(ctx, prompt)
	metrics.GenerationLatency.WithLabelValues("text", s.provider).Observe(time.Since(start).Seconds())
	metrics.FeatureUsage.WithLabelValues("saju_interpretation", metrics.Result(err)).Inc()
	if err != nil {
		logger.Error("生成四柱解读失败", zap.String("provider", s.provider), zap.Error(err))
		return "", errors.NewTextGenerationError(err)
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.NewTextGenerationError(fmt.Errorf("empty interpretation"))
	}

	s.cache.Set(prompt, text)
	return text, nil
}

// SolarToLunar 公历转农历
func (s *fortuneService) SolarToLunar(ctx context.Context, date string) (*types.CalendarResponse, error) {
	d, err := saju.ParseSolarDate(date)
	if err != nil {
		return nil, errors.FromSaju(err)
	}
	l, err := s.converter.SolarToLunar(ctx, d)
	metrics.FeatureUsage.WithLabelValues("calendar_lunar", metrics.Result(err)).Inc()
	if err != nil {
		return nil, errors.FromSaju(err)
	}
	return &types.CalendarResponse{Success: true, Solar: d, Lunar: l}, nil
}

// LunarToSolar 农历转公历
func (s *fortuneService) LunarToSolar(ctx context.Context, date string, leap bool) (*types.CalendarResponse, error) {
	l, err := saju.ParseLunarDate(date, leap)
	if err != nil {
		return nil, errors.FromSaju(err)
	}
	d, err := s.converter.LunarToSolar(ctx, l)
	metrics.FeatureUsage.WithLabelValues("calendar_solar", metrics.Result(err)).Inc()
	if err != nil {
		return nil, errors.FromSaju(err)
	}
	return &types.CalendarResponse{Success: true, Solar: d, Lunar: l}, nil
}

// NewFortuneView 转换为对外结构
func NewFortuneView(f *saju.Fortune) *types.FortuneView {
	return &types.FortuneView{
		SolarDate: f.Solar,
		LunarDate: f.Lunar,
		BirthHour: f.Hour,
		Gender:    f.Gender.String(),
		Pillars: types.PillarsView{
			Year:  newPillarView(f.Pillars.Year),
			Month: newPillarView(f.Pillars.Month),
			Day:   newPillarView(f.Pillars.Day),
			Hour:  newPillarView(f.Pillars.Hour),
		},
		ElementTally: lo.Map(saju.Elements(), func(e saju.Element, _ int) types.ElementCount {
			return types.ElementCount{Element: e.String(), Hanja: e.Hanja(), Hangul: e.Hangul(), Count: f.Elements.Count(e)}
		}),
		TenRelations: lo.Map(f.Relations, func(r saju.StemRelation, _ int) types.RelationView {
			if r.Self {
				return types.RelationView{Position: string(r.Position), Stem: r.Stem.String(), Relation: "self", Hangul: "본인", Self: true}
			}
			return types.RelationView{
				Position: string(r.Position),
				Stem:     r.Stem.String(),
				Relation: r.Relation.String(),
				Hangul:   r.Relation.Hangul(),
			}
		}),
		Forward: saju.Forward(f.Pillars.Year.Stem, f.Gender),
		LifeCycle: lo.Map(f.LifeCycle, func(p saju.LifeCyclePillar, _ int) types.LifeCycleView {
			return types.LifeCycleView{StartAge: p.StartAge, Pillar: newPillarView(p.Pillar)}
		}),
	}
}

func newPillarView(p saju.Pillar) types.PillarView {
	return types.PillarView{
		Hanja:  p.String(),
		Hangul: p.Hangul(),
		Stem: types.StemView{
			Index:    int(p.Stem),
			Hanja:    p.Stem.String(),
			Hangul:   p.Stem.Hangul(),
			Element:  p.Stem.Element().String(),
			Polarity: p.Stem.Polarity().String(),
		},
		Branch: types.BranchView{
			Index:    int(p.Branch),
			Hanja:    p.Branch.String(),
			Hangul:   p.Branch.Hangul(),
			Element:  p.Branch.Element().String(),
			Polarity: p.Branch.Polarity().String(),
		},
	}
}

var positionHangul = map[saju.Position]string{
	saju.PositionYear:  "년간",
	saju.PositionMonth: "월간",
	saju.PositionDay:   "일간",
	saju.PositionHour:  "시간",
}

// FormatFortunePrompt 生成韩文解读提示词，同一命盘总是得到同一文本
func FormatFortunePrompt(f *saju.Fortune) string {
	var b strings.Builder

	b.WriteString("다음 사주 명식을 바탕으로 운세를 한국어로 풀이해 주세요.\n\n")
	fmt.Fprintf(&b, "생년월일: 양력 %s (음력 %s%s)\n", f.Solar, lunarLabel(f.Lunar), lo.Ternary(f.Lunar.Leap, ", 윤달", ""))
	fmt.Fprintf(&b, "출생 시각: %d시\n", f.Hour)
	fmt.Fprintf(&b, "성별: %s\n\n", f.Gender.Hangul())

	b.WriteString("[사주 팔자]\n")
	rows := []struct {
		label  string
		pillar saju.Pillar
	}{
		{"년주", f.Pillars.Year},
		{"월주", f.Pillars.Month},
		{"일주", f.Pillars.Day},
		{"시주", f.Pillars.Hour},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "%s: %s (%s)\n", r.label, r.pillar, r.pillar.Hangul())
	}

	b.WriteString("\n[오행 분포]\n")
	b.WriteString(strings.Join(lo.Map(saju.Elements(), func(e saju.Element, _ int) string {
		return fmt.Sprintf("%s(%s) %d", e.Hangul(), e.Hanja(), f.Elements.Count(e))
	}), ", "))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "[십신] 일간 %s(%s) 기준\n", f.Pillars.DayStem, f.Pillars.DayStem.Hangul())
	for _, r := range f.Relations {
		fmt.Fprintf(&b, "%s %s: %s\n", positionHangul[r.Position], r.Stem, lo.Ternary(r.Self, "본인", r.Relation.Hangul()))
	}

	fmt.Fprintf(&b, "\n[대운] %s\n", lo.Ternary(saju.Forward(f.Pillars.Year.Stem, f.Gender), "순행", "역행"))
	b.WriteString(strings.Join(lo.Map(f.LifeCycle, func(p saju.LifeCyclePillar, _ int) string {
		return fmt.Sprintf("%d세 %s(%s)", p.StartAge, p.Pillar, p.Pillar.Hangul())
	}), ", "))
	b.WriteString("\n\n")

	b.WriteString("성격, 재물운, 직업운, 건강, 대인관계, 대운 흐름 순서로 항목별 소제목을 붙여 설명하고, " +
		"마지막에 현실적인 조언을 세 문장 이내로 덧붙여 주세요. 단정적인 예언은 피해 주세요.")
	return b.String()
}

func lunarLabel(d saju.LunarDate) string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}
