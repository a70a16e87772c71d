package generation

import (
	"context"

	"github.com/invopop/jsonschema"
)

// TextRequest 文本提供商的统一请求
type TextRequest struct {
	Prompt       string
	SystemPrompt string
	Model        string
	MaxTokens    int
	Temperature  float64

	// SchemaName/Schema 结构化阶段的输出约束，提供商可忽略；解析始终以提示词约定为准
	SchemaName string
	Schema     *jsonschema.Schema
}

// TextResponse 文本提供商的统一响应；TokensUsed 总是有值（缺失时按字符数估算）
type TextResponse struct {
	Text             string
	Model            string
	TokensUsed       int
	PromptTokens     int
	CompletionTokens int
}

// ImageRequest 图像提供商的统一请求；各提供商只读取自己支持的字段
type ImageRequest struct {
	Prompt   string
	Model    string
	Width    int
	Height   int
	Count    int
	Guidance float64
	Steps    int
	Size     string
	Style    string
	Quality  string
}

type ImageResponse struct {
	URLs          []string
	RevisedPrompt string
	Model         string
}

// TextProvider 文本生成后端。实现不做重试，失败统一返回 *ProviderError
type TextProvider interface {
	Name() string
	DefaultModel() string
	Generate(ctx context.Context, req TextRequest) (*TextResponse, error)
}

// ImageProvider 图像生成后端
type ImageProvider interface {
	Name() string
	DefaultModel() string
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error)
}

// ModelInfo 对外展示的模型信息
type ModelInfo struct {
	ID    string `json:"id"`
	Alias string `json:"alias,omitempty"`
	Kind  string `json:"kind"` // text / image
}

// ProviderInfo 对外展示的提供商信息
type ProviderInfo struct {
	ID                string      `json:"id"`
	Type              string      `json:"type"`
	Text              bool        `json:"text"`
	Image             bool        `json:"image"`
	DefaultTextModel  string      `json:"default_text_model,omitempty"`
	DefaultImageModel string      `json:"default_image_model,omitempty"`
	Models            []ModelInfo `json:"models,omitempty"`
}

// Providers 运行时按 ID 查找提供商
type Providers interface {
	Text(id string) (TextProvider, bool)
	Image(id string) (ImageProvider, bool)
	Describe() []ProviderInfo
}
