// Package config 提供配置加载功能
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// 生成阶段名称（与 generation.Stage 保持一致）
var stageNames = []string{"planning", "drafting", "reviewing", "image", "raw"}

// Load 从 configs 目录加载配置
func Load() (*Config, error) {
	return LoadFrom("configs")
}

// LoadFrom 加载指定目录下的配置文件
// 按优先级加载：默认配置 -> 环境配置 -> 环境变量
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 加载默认配置
	if err := loadConfigFile(v, filepath.Join(dir, "config.yaml"), false); err != nil {
		return nil, err
	}

	// 2. 加载环境特定配置
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	envFile := filepath.Join(dir, fmt.Sprintf("config.%s.yaml", env))
	if err := loadConfigFile(v, envFile, true); err != nil {
		return nil, err
	}

	// 3. 绑定环境变量 (直接覆盖)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 设置默认值 (兜底)
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFile 读取文件，执行环境变量替换，并加载到 viper
func loadConfigFile(v *viper.Viper, path string, optional bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	reader := strings.NewReader(expandEnv(string(content)))
	if v.ConfigFileUsed() == "" {
		if err := v.ReadConfig(reader); err != nil {
			return fmt.Errorf("failed to read processed config %s: %w", path, err)
		}
		// 手动标记已加载文件，后续文件走 MergeConfig
		v.SetConfigFile(path)
	} else {
		if err := v.MergeConfig(reader); err != nil {
			return fmt.Errorf("failed to merge processed config %s: %w", path, err)
		}
	}

	return nil
}

// envPattern 匹配 ${VAR} 或 ${VAR:default}
// g1: 变量名, g2: 默认值部分（含冒号）, g3: 默认值内容
var envPattern = regexp.MustCompile(`\${(\w+)(:([^}]*))?}`)

// expandEnv 替换字符串中的 ${VAR:default} 占位符
func expandEnv(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		submatch := envPattern.FindStringSubmatch(match)
		key := submatch[1]
		hasDefault := submatch[2] != ""
		defVal := submatch[3]

		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		if hasDefault {
			return defVal
		}
		// 保留原样以便识别未定义的变量
		return match
	})
}

// MustLoad 加载配置，失败时 panic
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// normalize 补齐无法通过 viper 默认值表达的字段
func (c *Config) normalize() {
	for name, p := range c.LLM.Providers {
		if p.Type == "" {
			p.Type = name
		}
		c.LLM.Providers[name] = p
	}
	if c.Generation.Stages == nil {
		c.Generation.Stages = map[string]StageConfig{}
	}
	for _, stage := range stageNames {
		sc := c.Generation.Stages[stage]
		if sc.Provider == "" {
			if stage == "image" {
				sc.Provider = c.LLM.DefaultImageProvider
			} else {
				sc.Provider = c.LLM.DefaultTextProvider
			}
		}
		c.Generation.Stages[stage] = sc
	}
}

// Validate 校验跨字段约束
func (c *Config) Validate() error {
	if c.Generation.LongChapterTokenCeiling <= 0 {
		return fmt.Errorf("generation.long_chapter_token_ceiling must be positive")
	}
	for stage, sc := range c.Generation.Stages {
		if sc.Provider == "" {
			return fmt.Errorf("generation.stages.%s.provider is empty", stage)
		}
		p, ok := c.LLM.Providers[sc.Provider]
		if !ok {
			return fmt.Errorf("generation.stages.%s.provider %q not found in llm.providers", stage, sc.Provider)
		}
		if p.Disabled {
			return fmt.Errorf("generation.stages.%s.provider %q is disabled", stage, sc.Provider)
		}
		if t := sc.Temperature; t != nil && (*t < 0 || *t > 2) {
			return fmt.Errorf("generation.stages.%s.temperature out of range: %v", stage, *t)
		}
	}
	for name, p := range c.LLM.Providers {
		switch p.Type {
		case ProviderTypeOpenAI, ProviderTypeGemini, ProviderTypeReplicate:
		default:
			return fmt.Errorf("llm.providers.%s: unsupported type %q", name, p.Type)
		}
	}
	return nil
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	// 应用默认值
	v.SetDefault("app.name", "novel-studio-api")
	v.SetDefault("app.version", "v0.0.0")
	v.SetDefault("app.env", "development")

	// HTTP 服务器默认值（生成请求耗时较长，写超时放宽）
	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.http.read_timeout", "30s")
	v.SetDefault("server.http.write_timeout", "330s")
	v.SetDefault("server.http.idle_timeout", "120s")
	v.SetDefault("server.http.shutdown_timeout", "30s")

	// 数据库默认值
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.database", "novel_studio")
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.postgres.max_open_conns", 20)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", "30m")
	v.SetDefault("database.postgres.conn_max_idle_time", "5m")
	v.SetDefault("database.postgres.auto_migrate", true)
	v.SetDefault("database.postgres.log_level", "warn")

	// Redis 默认值
	v.SetDefault("cache.redis.host", "localhost")
	v.SetDefault("cache.redis.port", 6379)
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.pool_size", 20)
	v.SetDefault("cache.redis.min_idle_conns", 2)
	v.SetDefault("cache.redis.dial_timeout", "5s")
	v.SetDefault("cache.redis.read_timeout", "3s")
	v.SetDefault("cache.redis.write_timeout", "3s")
	v.SetDefault("cache.redis.genre_ttl", "10m")
	v.SetDefault("cache.redis.progress_ttl", "72h")

	// 提供商默认值
	v.SetDefault("llm.default_text_provider", "openai")
	v.SetDefault("llm.default_image_provider", "openai")

	// 生成阶段默认值
	v.SetDefault("generation.long_chapter_token_ceiling", 16000)
	v.SetDefault("generation.stages.planning.max_tokens", 4000)
	v.SetDefault("generation.stages.planning.temperature", 0.7)
	v.SetDefault("generation.stages.drafting.max_tokens", 8000)
	v.SetDefault("generation.stages.drafting.temperature", 0.7)
	v.SetDefault("generation.stages.reviewing.max_tokens", 4000)
	v.SetDefault("generation.stages.reviewing.temperature", 0.3)
	v.SetDefault("generation.stages.raw.max_tokens", 2000)
	v.SetDefault("generation.stages.raw.temperature", 0.7)
	v.SetDefault("generation.image.size", "1024x1024")
	v.SetDefault("generation.image.quality", "standard")
	v.SetDefault("generation.image.style", "natural")
	v.SetDefault("generation.image.width", 512)
	v.SetDefault("generation.image.height", 768)
	v.SetDefault("generation.image.count", 1)
	v.SetDefault("generation.image.guidance", 7.5)
	v.SetDefault("generation.image.steps", 20)
	v.SetDefault("generation.batch.continue_on_error", true)
	v.SetDefault("generation.batch.events.enabled", false)
	v.SetDefault("generation.batch.events.stream", "stream:novel:events")
	v.SetDefault("generation.batch.events.max_len", 10000)

	// 可观测性默认值
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.endpoint", "localhost:4317")
	v.SetDefault("observability.tracing.insecure", true)
	v.SetDefault("observability.tracing.sample_rate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")
}
