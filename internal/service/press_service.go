package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gogwan-api/internal/errors"
	"gogwan-api/internal/logger"
	"gogwan-api/internal/metrics"
	"gogwan-api/internal/types"

	"go.uber.org/zap"
)

// PressService 新闻稿服务接口
type PressService interface {
	// Generate 生成政府机关新闻稿
	Generate(ctx context.Context, req *types.PressReleaseRequest) (*types.PressReleaseResponse, error)
}

type pressService struct {
	generator TextGenerator
}

// NewPressService 创建新闻稿服务
func NewPressService(generator TextGenerator) PressService {
	return &pressService{generator: generator}
}

const pressPreamble = "당신은 대한민국 정부기관의 전문 보도자료 작성자입니다.\n공식적이고 명확하며, 객관적인 톤으로 작성해주세요.\n\n"

const pressReferenceFormat = "다음은 참고할 기존 보도자료입니다:\n\n%s\n\n위 보도자료의 스타일과 구조를 참고하여 작성해주세요.\n\n"

const pressStructure = `

다음 구조로 대한민국 정부기관 공식 보도자료 형식에 맞춰 작성해주세요:

【제목】
간결하고 핵심을 담은 한 줄 제목

【부제】
제목을 보완하는 설명 (2줄 이내)

【본문】
본문은 자연스러운 문장으로 작성하되, 다음 구조를 따르세요:

□ 도입부
  ○ 정책/사업의 배경과 목적을 간단히 설명

□ 핵심 내용
  ○ 지원 대상, 금액, 기간, 방법 등 주요 정보 포함
  ○ 숫자나 통계는 구체적으로 표기

□ 향후 계획 및 기대효과
  ○ 기대효과와 향후 계획을 명시

작성 규칙:
- □와 ○ 기호만 사용하고, 그 뒤에 바로 내용을 작성하세요
- 각 문단은 자연스러운 문장으로 구성
- 공식적이고 전문적인 톤을 유지

보도자료는 반드시 한국어로 작성하며, 【제목】【부제】【본문】 구조를 명확히 지켜주세요.`

// BuildPressPrompt 拼接新闻稿提示词
func BuildPressPrompt(req *types.PressReleaseRequest) string {
	var b strings.Builder
	b.WriteString(pressPreamble)
	if strings.TrimSpace(req.ReferenceContent) != "" {
		fmt.Fprintf(&b, pressReferenceFormat, req.ReferenceContent)
	}
	b.WriteString("사용자 요청사항:\n")
	b.WriteString(req.Prompt)
	b.WriteString(pressStructure)
	return b.String()
}

// Generate 生成新闻稿
func (s *pressService) Generate(ctx context.Context, req *types.PressReleaseRequest) (*types.PressReleaseResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.NewInvalidInputError("요청사항은 비워둘 수 없습니다", nil)
	}

	logger.Info("处理新闻稿生成请求",
		zap.Int("prompt_len", len(req.Prompt)),
		zap.Bool("with_reference", req.ReferenceContent != ""),
	)

	start := time.Now()
	text, err := s.generator.GenerateText(ctx, BuildPressPrompt(req))
	metrics.GenerationLatency.WithLabelValues("text", "gemini").Observe(time.Since(start).Seconds())
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("empty response")
	}
	metrics.FeatureUsage.WithLabelValues("press_release", metrics.Result(err)).Inc()
	if err != nil {
		logger.Error("生成新闻稿失败", zap.Error(err))
		return nil, errors.NewTextGenerationError(err)
	}

	return &types.PressReleaseResponse{Success: true, Content: text}, nil
}
