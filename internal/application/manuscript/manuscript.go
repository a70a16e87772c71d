// Package manuscript 提供整本稿件导出与章节修订比对
package manuscript

import (
	"bytes"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/aryann/difflib"
	"github.com/yuin/goldmark"

	"novel-studio-api/internal/domain/entity"
)

// Format 导出格式
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

// ParseFormat 解析导出格式，空串视为 markdown
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", "markdown", FormatMarkdown:
		return FormatMarkdown, nil
	case FormatHTML:
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType 对应的 HTTP Content-Type
func (f Format) ContentType() string {
	if f == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}

// Export 按格式渲染整本稿件
func Export(f Format, novel *entity.Novel, chapters []*entity.Chapter) (string, error) {
	if f == FormatHTML {
		return RenderHTML(novel, chapters)
	}
	return RenderMarkdown(novel, chapters), nil
}

// RenderMarkdown 把小说和有正文的章节按章节号拼成 markdown 稿件
func RenderMarkdown(novel *entity.Novel, chapters []*entity.Chapter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", novel.Title)
	if p := strings.TrimSpace(novel.Premise); p != "" {
		fmt.Fprintf(&b, "> %s\n\n", strings.ReplaceAll(p, "\n", "\n> "))
	}

	sorted := make([]*entity.Chapter, 0, len(chapters))
	for _, ch := range chapters {
		if strings.TrimSpace(ch.Content) != "" {
			sorted = append(sorted, ch)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	for _, ch := range sorted {
		if ch.Title != "" {
			fmt.Fprintf(&b, "## Chapter %d: %s\n\n", ch.Number, ch.Title)
		} else {
			fmt.Fprintf(&b, "## Chapter %d\n\n", ch.Number)
		}
		b.WriteString(strings.TrimSpace(ch.Content))
		b.WriteString("\n\n")
	}
	return b.String()
}

// RenderHTML 通过 goldmark 把 markdown 稿件转换为完整 HTML 文档
func RenderHTML(novel *entity.Novel, chapters []*entity.Chapter) (string, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(RenderMarkdown(novel, chapters)), &body); err != nil {
		return "", fmt.Errorf("failed to render manuscript: %w", err)
	}

	var doc strings.Builder
	doc.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&doc, "<title>%s</title>\n", html.EscapeString(novel.Title))
	doc.WriteString("</head>\n<body>\n")
	doc.Write(body.Bytes())
	doc.WriteString("</body>\n</html>\n")
	return doc.String(), nil
}

// RevisionDiff 词级差异统计
type RevisionDiff struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
}

// Changed 是否有任何增删
func (d RevisionDiff) Changed() bool {
	return d.Added > 0 || d.Removed > 0
}

// DiffRevision 按空白切词比较两版正文
func DiffRevision(oldText, newText string) RevisionDiff {
	var d RevisionDiff
	for _, r := range difflib.Diff(strings.Fields(oldText), strings.Fields(newText)) {
		switch r.Delta {
		case difflib.Common:
			d.Unchanged++
		case difflib.LeftOnly:
			d.Removed++
		case difflib.RightOnly:
			d.Added++
		}
	}
	return d
}

// RecordRevision 替换章节正文，有变化时写入修订记录
func RecordRevision(ch *entity.Chapter, source, newText string) RevisionDiff {
	d := DiffRevision(ch.Content, newText)
	ch.SetContent(newText)
	if d.Changed() {
		ch.AddRevision(source, d.Added, d.Removed, d.Unchanged)
	}
	return d
}
