package generation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// 章节字数默认区间
var (
	DefaultChapterWords     = WordRange{Min: 1750, Max: 2250}
	DefaultLongChapterWords = WordRange{Min: 2000, Max: 4000}
)

const (
	// DefaultTargetWords 长章节未指定目标字数时使用
	DefaultTargetWords = 3000
	wordsPerChapter    = 2000
)

// BuildPrompt 校验请求并生成该阶段的完整提示词；校验失败时不产生任何提示词
func BuildPrompt(req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	switch p := req.Payload.(type) {
	case PremiseInput:
		return buildPremisePrompt(req.Genre, req.Customization, p), nil
	case OutlineInput:
		return buildOutlinePrompt(req.Genre, req.Customization, p), nil
	case CharactersInput:
		return buildCharactersPrompt(req.Genre, req.Customization, p), nil
	case ChapterInput:
		return buildChapterPrompt(req.Genre, req.Customization, p, false), nil
	case LongChapterInput:
		return buildChapterPrompt(req.Genre, req.Customization, p.ChapterInput, true), nil
	case ReviewInput:
		return buildReviewPrompt(req.Genre, p), nil
	case CoverInput:
		return p.Prompt, nil
	case RawTextInput:
		return p.Prompt, nil
	default:
		return "", invalid(req.Phase, "payload", fmt.Sprintf("unsupported payload type %T", req.Payload))
	}
}

// EnhanceCoverPrompt 为图像模型补充封面设计提示
func EnhanceCoverPrompt(prompt string) string {
	return strings.TrimSpace(prompt) + ", " + strings.Join(coverEnhancements, ", ")
}

var coverEnhancements = []string{
	"professional book cover design",
	"high quality",
	"detailed artwork",
	"commercial book cover style",
	"typography space at top and bottom",
}

// TargetChapters 根据全书字数估算章节数
func TargetChapters(wordCountTarget int) int {
	if wordCountTarget <= 0 {
		wordCountTarget = DefaultWordCountTarget
	}
	return (wordCountTarget + wordsPerChapter - 1) / wordsPerChapter
}

// chapterRange 覆盖值优先，否则使用默认区间
func chapterRange(c Customization, long bool) WordRange {
	if c.ChapterWordCount != nil {
		return *c.ChapterWordCount
	}
	if long {
		return DefaultLongChapterWords
	}
	return DefaultChapterWords
}

func (r WordRange) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// prettyJSON 与前端 JSON.stringify(v, null, 2) 输出一致的缩进格式
func prettyJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "{}"
	}
	return strings.TrimRight(buf.String(), "\n")
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

// section 写入一个以空行分隔的段落
func section(b *strings.Builder, text string) {
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	b.WriteString(text)
}

func bulletList(items []string) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, "- "+it)
	}
	return strings.Join(lines, "\n")
}

func numberedList(items []string) string {
	lines := make([]string, 0, len(items))
	for i, it := range items {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, it))
	}
	return strings.Join(lines, "\n")
}
