package dto

import (
	"bytes"
	"encoding/json"
	"strings"

	"novel-studio-api/internal/application/generation"
)

// GenreRef 题材来源：目录中的 genre_id，或请求内联的完整题材规则
type GenreRef struct {
	GenreID string                   `json:"genre_id,omitempty"`
	Genre   *generation.GenreContext `json:"genre,omitempty"`
}

// Inline 请求是否直接携带了题材规则
func (g GenreRef) Inline() bool {
	return g.Genre != nil && strings.TrimSpace(g.Genre.Name) != ""
}

// TextOrJSON 接受字符串或任意 JSON 值；后者按原文保留
type TextOrJSON json.RawMessage

// UnmarshalJSON 保存原始字节
func (t *TextOrJSON) UnmarshalJSON(b []byte) error {
	*t = append((*t)[:0], b...)
	return nil
}

// String 字符串值去掉引号，其他 JSON 值返回原文
func (t TextOrJSON) String() string {
	raw := bytes.TrimSpace(t)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}
