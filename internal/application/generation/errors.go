package generation

import (
	"fmt"
	"unicode/utf8"
)

// ValidationError 请求不完整或与阶段不匹配；不会到达提供商
type ValidationError struct {
	Phase   Phase
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s request: %s: %s", e.Phase, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s request: %s", e.Phase, e.Message)
}

func invalid(phase Phase, field, msg string) *ValidationError {
	return &ValidationError{Phase: phase, Field: field, Message: msg}
}

// ProviderError 网络、鉴权、配额或提供商侧失败
type ProviderError struct {
	ProviderID string
	ModelID    string
	Cause      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s (model %s) failed: %v", e.ProviderID, e.ModelID, e.Cause)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// ParseErrorKind 解析失败类别
type ParseErrorKind string

const (
	ParseNoJSON    ParseErrorKind = "no_json"
	ParseMalformed ParseErrorKind = "malformed"
	ParseSchema    ParseErrorKind = "schema"
)

const excerptRunes = 200

// ParseError 模型输出中没有可解码的 JSON，或 JSON 缺少必需字段
type ParseError struct {
	Phase          Phase
	Kind           ParseErrorKind
	Field          string
	RawTextExcerpt string
	Cause          error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("failed to parse %s response (%s)", e.Phase, e.Kind)
	if e.Field != "" {
		msg += " at " + e.Field
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Cause }

func newParseError(phase Phase, kind ParseErrorKind, field, raw string, cause error) *ParseError {
	return &ParseError{Phase: phase, Kind: kind, Field: field, RawTextExcerpt: excerpt(raw), Cause: cause}
}

// excerpt 截取前 200 个字符
func excerpt(s string) string {
	if utf8.RuneCountInString(s) <= excerptRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:excerptRunes])
}

// GenerationError 携带阶段与失败耗时的统一外层错误
type GenerationError struct {
	Phase            Phase
	GenerationTimeMs int64
	Cause            error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("failed to generate %s after %dms: %v", e.Phase, e.GenerationTimeMs, e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Cause }
