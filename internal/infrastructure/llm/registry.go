// Package llm 提供文本与图像模型提供商的适配器
package llm

import (
	"context"
	"fmt"
	"sort"

	"novel-studio-api/internal/application/generation"
	"novel-studio-api/internal/config"
	"novel-studio-api/pkg/logger"
)

// Registry 启动时按配置注册的提供商表，之后只读
type Registry struct {
	text  map[string]generation.TextProvider
	image map[string]generation.ImageProvider
	types map[string]string
	extra map[string][]generation.ModelInfo
}

func NewRegistry() *Registry {
	return &Registry{
		text:  make(map[string]generation.TextProvider),
		image: make(map[string]generation.ImageProvider),
		types: make(map[string]string),
		extra: make(map[string][]generation.ModelInfo),
	}
}

// NewRegistryFromConfig 按 llm.providers 构建全部适配器；disabled 的提供商跳过
func NewRegistryFromConfig(ctx context.Context, cfg *config.LLMConfig) (*Registry, error) {
	r := NewRegistry()
	factory := NewEinoFactory(cfg)

	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pc := cfg.Providers[name]
		if pc.Disabled {
			logger.Info(ctx, "llm provider disabled", "provider", name)
			continue
		}
		switch pc.Type {
		case config.ProviderTypeOpenAI:
			r.RegisterText(name, pc.Type, NewEinoTextProvider(name, pc.Model, pc.Timeout, factory))
			if pc.ImageModel != "" {
				r.RegisterImage(name, pc.Type, NewOpenAIImageProvider(name, pc))
			}
		case config.ProviderTypeGemini:
			r.RegisterText(name, pc.Type, NewGeminiProvider(name, pc))
		case config.ProviderTypeReplicate:
			rep, err := NewReplicate(name, pc)
			if err != nil {
				logger.Warn(ctx, "llm provider skipped", "provider", name, "error", err.Error())
				continue
			}
			r.RegisterText(name, pc.Type, rep.Text())
			r.RegisterImage(name, pc.Type, rep.Image())
			r.extra[name] = rep.Models()
		default:
			return nil, fmt.Errorf("provider %s: unsupported type %q", name, pc.Type)
		}
		logger.Info(ctx, "llm provider registered", "provider", name, "type", pc.Type)
	}
	return r, nil
}

func (r *Registry) RegisterText(id, typ string, p generation.TextProvider) {
	r.text[id] = p
	r.types[id] = typ
}

func (r *Registry) RegisterImage(id, typ string, p generation.ImageProvider) {
	r.image[id] = p
	r.types[id] = typ
}

func (r *Registry) Text(id string) (generation.TextProvider, bool) {
	p, ok := r.text[id]
	return p, ok
}

func (r *Registry) Image(id string) (generation.ImageProvider, bool) {
	p, ok := r.image[id]
	return p, ok
}

// Describe 按 ID 排序列出提供商及其模型
func (r *Registry) Describe() []generation.ProviderInfo {
	ids := make([]string, 0, len(r.types))
	for id := range r.types {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]generation.ProviderInfo, 0, len(ids))
	for _, id := range ids {
		info := generation.ProviderInfo{ID: id, Type: r.types[id]}
		if p, ok := r.text[id]; ok {
			info.Text = true
			info.DefaultTextModel = p.DefaultModel()
		}
		if p, ok := r.image[id]; ok {
			info.Image = true
			info.DefaultImageModel = p.DefaultModel()
		}
		if models, ok := r.extra[id]; ok {
			info.Models = models
		} else {
			if info.DefaultTextModel != "" {
				info.Models = append(info.Models, generation.ModelInfo{ID: info.DefaultTextModel, Kind: "text"})
			}
			if info.DefaultImageModel != "" {
				info.Models = append(info.Models, generation.ModelInfo{ID: info.DefaultImageModel, Kind: "image"})
			}
		}
		out = append(out, info)
	}
	return out
}
