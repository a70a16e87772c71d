package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/replicate/replicate-go"

	"novel-studio-api/internal/application/generation"
	"novel-studio-api/internal/config"
	"novel-studio-api/pkg/logger"
)

const (
	defaultReplicateBaseURL    = "https://api.replicate.com/v1"
	defaultReplicateTextModel  = "llama3_70b"
	defaultReplicateImageModel = "flux_dev"
	defaultReplicateMaxTokens  = 2000
	defaultImageTimeout        = 300 * time.Second
	defaultPollInterval        = time.Second
)

// 内置别名表；配置中的 models 可覆盖或追加
var replicateAliases = map[string]string{
	"llama3_405b":  "meta/meta-llama-3.1-405b-instruct",
	"llama3_70b":   "meta/meta-llama-3.1-70b-instruct",
	"llama3_8b":    "meta/meta-llama-3.1-8b-instruct",
	"mixtral_8x7b": "mistralai/mixtral-8x7b-instruct-v0.1",
	"flux_pro":     "black-forest-labs/flux-pro",
	"flux_dev":     "black-forest-labs/flux-dev",
	"flux_schnell": "black-forest-labs/flux-schnell",
	"sdxl":         "stability-ai/sdxl:39ed52f2a78e934b3ba6e2a89f5b1c712de7dfea535525255b1aa35c5565e08b",
}

var replicateImageAliases = map[string]bool{
	"flux_pro": true, "flux_dev": true, "flux_schnell": true, "sdxl": true,
}

// Replicate predictions API 适配器，同时提供文本与图像能力
type Replicate struct {
	id           string
	client       *replicate.Client
	models       map[string]string
	textModel    string
	imageModel   string
	timeout      time.Duration
	imageTimeout time.Duration
	pollInterval time.Duration
}

// NewReplicate 创建适配器；SDK 自带的重试被关闭，失败直接交给调用方
func NewReplicate(id string, cfg config.ProviderConfig) (*Replicate, error) {
	client, err := replicate.NewClient(
		replicate.WithToken(cfg.APIKey),
		replicate.WithBaseURL(firstNonBlank(cfg.BaseURL, defaultReplicateBaseURL)),
		replicate.WithRetryPolicy(0, &replicate.ConstantBackoff{}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating replicate client: %w", err)
	}

	models := make(map[string]string, len(replicateAliases)+len(cfg.Models))
	for k, v := range replicateAliases {
		models[k] = v
	}
	for k, v := range cfg.Models {
		models[k] = v
	}

	r := &Replicate{
		id:           id,
		client:       client,
		models:       models,
		textModel:    firstNonBlank(cfg.Model, defaultReplicateTextModel),
		imageModel:   firstNonBlank(cfg.ImageModel, defaultReplicateImageModel),
		timeout:      cfg.Timeout,
		imageTimeout: cfg.ImageTimeout,
		pollInterval: cfg.PollInterval,
	}
	if r.timeout <= 0 {
		r.timeout = defaultTextTimeout
	}
	if r.imageTimeout <= 0 {
		r.imageTimeout = defaultImageTimeout
	}
	if r.pollInterval <= 0 {
		r.pollInterval = defaultPollInterval
	}
	return r, nil
}

// Text 文本能力视图
func (r *Replicate) Text() generation.TextProvider { return replicateText{r} }

// Image 图像能力视图
func (r *Replicate) Image() generation.ImageProvider { return replicateImage{r} }

// Models 列出可用别名
func (r *Replicate) Models() []generation.ModelInfo {
	aliases := make([]string, 0, len(r.models))
	for alias := range r.models {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	out := make([]generation.ModelInfo, 0, len(aliases))
	for _, alias := range aliases {
		kind := "text"
		if replicateImageAliases[alias] || alias == r.imageModel {
			kind = "image"
		}
		out = append(out, generation.ModelInfo{ID: r.models[alias], Alias: alias, Kind: kind})
	}
	return out
}

// resolve 别名 -> 模型标识；已是 owner/name[:version] 形式时原样使用
func (r *Replicate) resolve(m string) (string, error) {
	if id, ok := r.models[m]; ok {
		return id, nil
	}
	if strings.Contains(m, "/") {
		return m, nil
	}
	return "", fmt.Errorf("model %s not found", m)
}

type replicateText struct{ *Replicate }

func (p replicateText) Name() string         { return p.id }
func (p replicateText) DefaultModel() string { return p.textModel }

func (p replicateText) Generate(ctx context.Context, req generation.TextRequest) (*generation.TextResponse, error) {
	alias := firstNonBlank(req.Model, p.textModel)
	req.Model = alias
	modelID, err := p.resolve(alias)
	if err != nil {
		return nil, providerError(p.id, alias, err)
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultReplicateMaxTokens
	}
	prompt := req.Prompt
	if req.SystemPrompt != "" {
		prompt = req.SystemPrompt + "\n\n" + req.Prompt
	}
	input := replicate.PredictionInput{
		"prompt":             prompt,
		"max_new_tokens":     maxTokens,
		"temperature":        req.Temperature,
		"top_p":              0.9,
		"repetition_penalty": 1.1,
	}

	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	logger.Info(ctx, "generating text with replicate", "model", alias)
	ctx = startModelCallbacks(ctx, "Replicate", req, alias)
	pred, err := p.run(ctx, modelID, input)
	if err != nil {
		failModelCallbacks(ctx, err)
		return nil, providerError(p.id, alias, err)
	}

	text, err := pred.text()
	if err != nil {
		failModelCallbacks(ctx, err)
		return nil, providerError(p.id, alias, err)
	}

	u := tokenUsage{Prompt: pred.Metrics.InputTokenCount, Completion: pred.Metrics.OutputTokenCount}.fill(prompt, text)
	endModelCallbacks(ctx, req, alias, text, u)

	return &generation.TextResponse{
		Text:             text,
		Model:            alias,
		TokensUsed:       u.Total,
		PromptTokens:     u.Prompt,
		CompletionTokens: u.Completion,
	}, nil
}

type replicateImage struct{ *Replicate }

func (p replicateImage) Name() string         { return p.id }
func (p replicateImage) DefaultModel() string { return p.imageModel }

func (p replicateImage) GenerateImage(ctx context.Context, req generation.ImageRequest) (*generation.ImageResponse, error) {
	alias := firstNonBlank(req.Model, p.imageModel)
	modelID, err := p.resolve(alias)
	if err != nil {
		return nil, providerError(p.id, alias, err)
	}

	prompt := generation.EnhanceCoverPrompt(req.Prompt)
	input := replicate.PredictionInput{
		"prompt":              prompt,
		"width":               req.Width,
		"height":              req.Height,
		"num_outputs":         max(req.Count, 1),
		"guidance_scale":      req.Guidance,
		"num_inference_steps": req.Steps,
	}

	ctx, cancel := withTimeout(ctx, p.imageTimeout)
	defer cancel()

	logger.Info(ctx, "generating cover art with replicate", "model", alias)
	pred, err := p.run(ctx, modelID, input)
	if err != nil {
		return nil, providerError(p.id, alias, err)
	}
	urls, err := pred.urls()
	if err != nil {
		return nil, providerError(p.id, alias, err)
	}
	logger.Info(ctx, "cover art generation completed", "model", alias, "images", len(urls))

	return &generation.ImageResponse{URLs: urls, RevisedPrompt: prompt, Model: alias}, nil
}

// predictionView SDK 的输出是 any，形状因模型而异；统一转成本地视图再解析
type predictionView struct {
	ID      string          `json:"id"`
	Status  string          `json:"status"`
	Output  json.RawMessage `json:"output"`
	Error   any             `json:"error"`
	Metrics struct {
		InputTokenCount  int `json:"input_token_count"`
		OutputTokenCount int `json:"output_token_count"`
	} `json:"metrics"`
}

func viewOf(p *replicate.Prediction) (*predictionView, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding prediction: %w", err)
	}
	var v predictionView
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding prediction: %w", err)
	}
	return &v, nil
}

func (p *predictionView) terminal() bool {
	switch p.Status {
	case "succeeded", "failed", "canceled":
		return true
	default:
		return false
	}
}

// text 文本模型输出通常是字符串数组（逐 token），拼接即为全文
func (p *predictionView) text() (string, error) {
	parts, err := p.outputStrings()
	if err != nil {
		return "", err
	}
	return strings.Join(parts, ""), nil
}

func (p *predictionView) urls() ([]string, error) {
	parts, err := p.outputStrings()
	if err != nil {
		return nil, err
	}
	out := parts[:0]
	for _, s := range parts {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func (p *predictionView) outputStrings() ([]string, error) {
	if len(p.Output) == 0 || string(p.Output) == "null" {
		return nil, errors.New("prediction returned no output")
	}
	var many []string
	if err := json.Unmarshal(p.Output, &many); err == nil {
		return many, nil
	}
	var one string
	if err := json.Unmarshal(p.Output, &one); err != nil {
		return nil, fmt.Errorf("unexpected prediction output: %s", excerptBytes(p.Output))
	}
	return []string{one}, nil
}

// run 创建预测；未结束时按 pollInterval 轮询直到终态
func (r *Replicate) run(ctx context.Context, modelID string, input replicate.PredictionInput) (*predictionView, error) {
	pred, err := r.create(ctx, modelID, input)
	if err != nil {
		return nil, err
	}
	view, err := viewOf(pred)
	if err != nil {
		return nil, err
	}

	if !view.terminal() {
		if err := r.client.Wait(ctx, pred, replicate.WithPollingInterval(r.pollInterval)); err != nil {
			return nil, fmt.Errorf("waiting for prediction %s: %w", pred.ID, err)
		}
		if view, err = viewOf(pred); err != nil {
			return nil, err
		}
	}

	if view.Status != "succeeded" {
		return nil, fmt.Errorf("prediction %s %s: %v", view.ID, view.Status, view.Error)
	}
	return view, nil
}

// create 带版本号的模型按版本创建，官方模型按 owner/name 创建
func (r *Replicate) create(ctx context.Context, modelID string, input replicate.PredictionInput) (*replicate.Prediction, error) {
	if _, version, ok := strings.Cut(modelID, ":"); ok {
		return r.client.CreatePrediction(ctx, version, input, nil, false)
	}
	owner, name, ok := strings.Cut(modelID, "/")
	if !ok {
		return nil, fmt.Errorf("model %s is not owner/name", modelID)
	}
	return r.client.CreatePredictionWithModel(ctx, owner, name, input, nil, false)
}

func excerptBytes(b []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
