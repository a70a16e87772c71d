// Package config 提供配置加载和管理功能
package config

import (
	"time"
)

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Database      DatabaseConfig      `yaml:"database" mapstructure:"database"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Generation    GenerationConfig    `yaml:"generation" mapstructure:"generation"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Security      SecurityConfig      `yaml:"security" mapstructure:"security"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
type HTTPServerConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            int           `yaml:"port" mapstructure:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Postgres PostgresConfig `yaml:"postgres" mapstructure:"postgres"`
}

// PostgresConfig PostgreSQL 配置
type PostgresConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            int           `yaml:"port" mapstructure:"port"`
	User            string        `yaml:"user" mapstructure:"user"`
	Password        string        `yaml:"password" mapstructure:"password"`
	Database        string        `yaml:"database" mapstructure:"database"`
	SSLMode         string        `yaml:"ssl_mode" mapstructure:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `yaml:"auto_migrate" mapstructure:"auto_migrate"`
	LogLevel        string        `yaml:"log_level" mapstructure:"log_level"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	Password     string        `yaml:"password" mapstructure:"password"`
	DB           int           `yaml:"db" mapstructure:"db"`
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	// GenreTTL 题材目录缓存时长
	GenreTTL time.Duration `yaml:"genre_ttl" mapstructure:"genre_ttl"`
	// ProgressTTL 整本生成进度保留时长
	ProgressTTL time.Duration `yaml:"progress_ttl" mapstructure:"progress_ttl"`
}

// LLMConfig 模型提供商配置
type LLMConfig struct {
	DefaultTextProvider  string                    `yaml:"default_text_provider" mapstructure:"default_text_provider"`
	DefaultImageProvider string                    `yaml:"default_image_provider" mapstructure:"default_image_provider"`
	Providers            map[string]ProviderConfig `yaml:"providers" mapstructure:"providers"`
}

// 提供商类型
const (
	ProviderTypeOpenAI    = "openai"
	ProviderTypeGemini    = "gemini"
	ProviderTypeReplicate = "replicate"
)

// ProviderConfig 单个提供商配置
type ProviderConfig struct {
	// Type 适配器类型：openai / gemini / replicate；为空时取 map 的键名
	Type        string  `yaml:"type" mapstructure:"type"`
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Model       string  `yaml:"model" mapstructure:"model"`
	ImageModel  string  `yaml:"image_model" mapstructure:"image_model"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	// Models 短别名 -> 提供商侧模型标识
	Models       map[string]string `yaml:"models" mapstructure:"models"`
	Timeout      time.Duration     `yaml:"timeout" mapstructure:"timeout"`
	ImageTimeout time.Duration     `yaml:"image_timeout" mapstructure:"image_timeout"`
	PollInterval time.Duration     `yaml:"poll_interval" mapstructure:"poll_interval"`
	Disabled     bool              `yaml:"disabled" mapstructure:"disabled"`
}

// GenerationConfig 各生成阶段默认参数
type GenerationConfig struct {
	Stages                  map[string]StageConfig `yaml:"stages" mapstructure:"stages"`
	LongChapterTokenCeiling int                    `yaml:"long_chapter_token_ceiling" mapstructure:"long_chapter_token_ceiling"`
	Image                   ImageConfig            `yaml:"image" mapstructure:"image"`
	Batch                   BatchConfig            `yaml:"batch" mapstructure:"batch"`
	EchoPrompt              bool                   `yaml:"echo_prompt" mapstructure:"echo_prompt"`
}

// StageConfig 阶段默认参数
type StageConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	// 未配置时为 nil，显式的 0 会被保留
	Temperature *float64 `yaml:"temperature" mapstructure:"temperature"`
}

// ImageConfig 封面默认参数
type ImageConfig struct {
	Size     string  `yaml:"size" mapstructure:"size"`
	Quality  string  `yaml:"quality" mapstructure:"quality"`
	Style    string  `yaml:"style" mapstructure:"style"`
	Width    int     `yaml:"width" mapstructure:"width"`
	Height   int     `yaml:"height" mapstructure:"height"`
	Count    int     `yaml:"count" mapstructure:"count"`
	Guidance float64 `yaml:"guidance" mapstructure:"guidance"`
	Steps    int     `yaml:"steps" mapstructure:"steps"`
}

// BatchConfig 整本生成策略
type BatchConfig struct {
	ContinueOnError bool              `yaml:"continue_on_error" mapstructure:"continue_on_error"`
	LongChapters    bool              `yaml:"long_chapters" mapstructure:"long_chapters"`
	Events          BatchEventsConfig `yaml:"events" mapstructure:"events"`
}

// BatchEventsConfig 整本生成事件流（Redis Stream）
type BatchEventsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Stream  string `yaml:"stream" mapstructure:"stream"`
	MaxLen  int64  `yaml:"max_len" mapstructure:"max_len"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	CORS CORSConfig `yaml:"cors" mapstructure:"cors"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}
