package service

import (
	"gogwan-api/internal/config"
	"gogwan-api/internal/logger"
	"gogwan-api/internal/types"

	"go.uber.org/zap"
)

// ModelService 模型服务接口
type ModelService interface {
	// GetModels 当前使用的模型与提供方
	GetModels() *types.ModelsResponse
}

// modelService 模型服务实现
type modelService struct {
	cfg *config.Config
}

// NewModelService 创建模型服务实例
func NewModelService(cfg *config.Config) ModelService {
	return &modelService{cfg: cfg}
}

// GetModels 当前使用的模型与提供方，不含密钥
func (s *modelService) GetModels() *types.ModelsResponse {
	interp := s.cfg.Gemini.TextModel
	if s.cfg.Interpretation.Provider == config.ProviderOpenAI {
		interp = s.cfg.Interpretation.OpenAIModel
	}

	models := []types.ModelInfo{
		{Feature: "image", Provider: config.ProviderGemini, Model: s.cfg.Gemini.ImageModel},
		{Feature: "press_release", Provider: config.ProviderGemini, Model: s.cfg.Gemini.TextModel},
		{Feature: "saju_interpretation", Provider: s.cfg.Interpretation.Provider, Model: interp},
		{Feature: "calendar", Provider: s.cfg.Calendar.Provider},
	}

	logger.Debug("获取模型列表", zap.Int("model_count", len(models)))

	return &types.ModelsResponse{Success: true, Data: models}
}
