// Package gemini 封装 Google Gemini 的文本与图片生成调用
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gogwan-api/internal/config"
	"gogwan-api/internal/logger"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ErrNoImage 模型没有返回图片
var ErrNoImage = errors.New("gemini returned no image")

// ErrEmptyText 模型返回空文本
var ErrEmptyText = errors.New("gemini returned empty text")

// ImageRequest 图片生成请求；Image 为空时即文生图
type ImageRequest struct {
	Prompt      string
	Image       []byte
	MIMEType    string
	AspectRatio string
}

// Image 生成结果
type Image struct {
	Data     []byte
	MIMEType string
}

// Client Gemini 客户端
type Client struct {
	client     *genai.Client
	textModel  string
	imageModel string
}

// NewClient 创建 Gemini 客户端
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Gemini.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Gemini.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{
		client:     client,
		textModel:  cfg.Gemini.TextModel,
		imageModel: cfg.Gemini.ImageModel,
	}, nil
}

// GenerateText 文本生成
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	logger.Info("Gemini 文本生成",
		zap.String("model", c.textModel),
		zap.Int("prompt_len", len(prompt)),
	)

	resp, err := c.client.Models.GenerateContent(ctx, c.textModel, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate text: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

// GenerateImage 图片生成/编辑，只要图片模态
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (*Image, error) {
	logger.Info("Gemini 图片生成",
		zap.String("model", c.imageModel),
		zap.Int("input_bytes", len(req.Image)),
		zap.String("aspect_ratio", req.AspectRatio),
	)

	resp, err := c.client.Models.GenerateContent(ctx, c.imageModel, buildImageContents(req), buildImageConfig(req))
	if err != nil {
		return nil, fmt.Errorf("gemini generate image: %w", err)
	}
	return FirstImage(resp)
}

func buildImageContents(req ImageRequest) []*genai.Content {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if len(req.Image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.Image, req.MIMEType))
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

func buildImageConfig(req ImageRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	}
	if req.AspectRatio != "" {
		cfg.ImageConfig = &genai.ImageConfig{AspectRatio: req.AspectRatio}
	}
	return cfg
}

// FirstImage 取出第一个内联图片
func FirstImage(resp *genai.GenerateContentResponse) (*Image, error) {
	if resp == nil {
		return nil, ErrNoImage
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mime := part.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return &Image{Data: part.InlineData.Data, MIMEType: mime}, nil
		}
	}
	return nil, ErrNoImage
}
