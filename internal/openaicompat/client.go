// Package openaicompat 通过 OpenAI 兼容接口生成文本，作为四柱解读的备选提供方
package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gogwan-api/internal/config"
	"gogwan-api/internal/logger"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ErrEmptyCompletion 没有可用的回答
var ErrEmptyCompletion = errors.New("chat completion returned no content")

// Client OpenAI 兼容客户端
type Client struct {
	client       *openai.Client
	model        string
	systemPrompt string
}

// NewClient 创建客户端
func NewClient(cfg *config.Config, systemPrompt string) *Client {
	oc := openai.DefaultConfig(cfg.Interpretation.OpenAIAPIKey)
	if cfg.Interpretation.OpenAIBaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.Interpretation.OpenAIBaseURL, "/")
	}
	return &Client{
		client:       openai.NewClientWithConfig(oc),
		model:        cfg.Interpretation.OpenAIModel,
		systemPrompt: systemPrompt,
	}
}

// GenerateText 单轮对话
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if c.systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: c.systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	logger.Info("OpenAI 兼容接口完成",
		zap.String("model", resp.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
