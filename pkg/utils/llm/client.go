// Package llm 调用大模型为文件生成自然语言摘要
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrEmptyResponse 模型没有返回任何文本
var ErrEmptyResponse = errors.New("empty model response")

// Client 文本生成接口
type Client interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient 基于官方 genai SDK 的客户端
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient 创建 Gemini 客户端
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is empty")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}, nil)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// FakeClient 离线/测试用客户端，Reply 为 nil 时返回固定文本
type FakeClient struct {
	Reply func(prompt string) (string, error)
}

func (FakeClient) Name() string { return "FakeLLM" }

func (f FakeClient) Generate(_ context.Context, prompt string) (string, error) {
	if f.Reply == nil {
		return "Summary unavailable offline.", nil
	}
	return f.Reply(prompt)
}

var (
	_ Client = (*GeminiClient)(nil)
	_ Client = FakeClient{}
)
