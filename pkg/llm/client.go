// Package llm 提供基于 OpenAI 兼容接口的实体抽取客户端。
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"doc-annotator-go/internal/config"
	"doc-annotator-go/pkg/log"
)

// ErrUnparseable 表示模型返回的内容无法解析为候选实体列表。
var ErrUnparseable = errors.New("llm response is not a valid entity list")

// Candidate 是模型给出的一个候选实体。
type Candidate struct {
	Text        string `json:"text"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Request 描述一次抽取调用。Prompt 与 Model 为空时使用配置中的默认值。
type Request struct {
	Content string
	Prompt  string
	Model   string
}

// Extractor 从文档正文中抽取候选实体。
type Extractor interface {
	Extract(ctx context.Context, req Request) ([]Candidate, error)
}

// Client 使用 chat completions 接口完成实体抽取。
type Client struct {
	api     *openai.Client
	model   string
	prompt  string
	labels  []string
	gen     config.LLMGenerationConfig
	timeout time.Duration
}

var _ Extractor = (*Client)(nil)

// NewClient 根据配置创建一个新的抽取客户端，BaseURL 为空时使用 OpenAI 官方地址。
func NewClient(cfg config.LLMConfig) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		model:   cfg.ExtractionModel(),
		prompt:  cfg.Extraction.Prompt,
		labels:  cfg.Extraction.Labels,
		gen:     cfg.Generation,
		timeout: cfg.Extraction.Timeout,
	}
}

// Extract 调用模型并解析返回的候选实体。
// 模型返回内容无法解析时返回 ErrUnparseable，调用失败时返回包装后的原始错误。
func (c *Client) Extract(ctx context.Context, in Request) ([]Candidate, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	model := c.model
	if in.Model != "" {
		model = in.Model
	}
	prompt := in.Prompt
	if prompt == "" {
		prompt = c.systemPrompt()
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: in.Content},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}
	if c.gen.Temperature != 0 {
		req.Temperature = float32(c.gen.Temperature)
	}
	if c.gen.TopP != 0 {
		req.TopP = float32(c.gen.TopP)
	}
	if c.gen.MaxTokens != 0 {
		req.MaxTokens = c.gen.MaxTokens
	}

	log.Debugf("[LLM] 调用实体抽取, model=%s, 文本长度=%d", model, len([]rune(in.Content)))
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("llm chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty choices: %w", ErrUnparseable)
	}
	return ParseCandidates(resp.Choices[0].Message.Content)
}

func (c *Client) systemPrompt() string {
	if c.prompt != "" {
		return c.prompt
	}
	return BuildPrompt(c.labels)
}

// BuildPrompt 生成实体抽取的系统提示词，labels 每项形如 "标签名：说明"。
func BuildPrompt(labels []string) string {
	var sb strings.Builder
	sb.WriteString("你是一名业务分析文档的实体标注助手。请从用户给出的文档原文中抽取关键实体。\n\n")
	sb.WriteString("【可用标签】\n")
	for i, l := range labels {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, l)
	}
	sb.WriteString("\n【要求】\n")
	sb.WriteString("1. text 必须是原文中连续出现的片段，逐字照抄，不要改写、概括或补全。\n")
	sb.WriteString("2. label 只能使用上面列出的标签名。\n")
	sb.WriteString("3. description 用一句话说明该实体在文中的含义。\n")
	sb.WriteString("4. 只输出 JSON，不要输出任何解释。格式如下：\n")
	sb.WriteString(`{"entities":[{"text":"原文片段","label":"标签名","description":"说明"}]}`)
	return sb.String()
}

// ParseCandidates 从模型输出中截取第一个 '{' 到最后一个 '}' 之间的内容并解析。
func ParseCandidates(raw string) ([]Candidate, error) {
	body, ok := extractJSON(raw)
	if !ok {
		return nil, ErrUnparseable
	}
	var payload struct {
		Entities []Candidate `json:"entities"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrUnparseable)
	}
	return payload.Entities, nil
}

func extractJSON(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
