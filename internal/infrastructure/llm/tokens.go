package llm

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const tokenEncodingModel = "gpt-4"

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken

	// countPromptTokens 可在测试中替换，避免首次加载编码表时访问网络
	countPromptTokens = CountTokens
)

// EstimateTokens 粗略估算：约 4 个字符一个 token
func EstimateTokens(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}

// CountTokens 使用 tiktoken 计数；编码表不可用（如离线）时退回估算
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	encOnce.Do(func() {
		e, err := tiktoken.EncodingForModel(tokenEncodingModel)
		if err == nil {
			enc = e
		}
	})
	if enc == nil {
		return EstimateTokens(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// tokenUsage 提供商返回的用量；全为 0 表示未上报
type tokenUsage struct {
	Prompt     int
	Completion int
	Total      int
}

// fill 补齐未上报的用量：总数按输出估算，提示词部分用 tiktoken 计数
func (u tokenUsage) fill(prompt, output string) tokenUsage {
	if u.Total <= 0 && u.Prompt+u.Completion > 0 {
		u.Total = u.Prompt + u.Completion
	}
	if u.Total <= 0 {
		u.Total = EstimateTokens(output)
		if u.Prompt <= 0 {
			u.Prompt = countPromptTokens(prompt)
		}
	}
	return u
}
