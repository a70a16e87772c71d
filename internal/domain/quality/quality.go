// Package quality 提供与模型无关的文本统计与质量评分。
// 分析接口与章节保存钩子都调用 Analyze，保证两处结果一致。
package quality

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// EmDash 破折号（全文最多允许一个）
	EmDash = '—'
	// EnDash 连接号
	EnDash = '–'

	wordsPerMinute   = 200
	emDashAllowance  = 1
	emDashPenalty    = 20
	minRepetitionLen = 3
)

var (
	sentenceSplit  = regexp.MustCompile(`[.!?]+`)
	paragraphSplit = regexp.MustCompile(`\n\s*\n`)
)

// Statistics 文本统计结果
type Statistics struct {
	WordCount                int  `json:"word_count"`
	CharacterCount           int  `json:"character_count"`
	SentenceCount            int  `json:"sentence_count"`
	ParagraphCount           int  `json:"paragraph_count"`
	LexicalDiversity         int  `json:"lexical_diversity"`
	EmDashCount              int  `json:"em_dash_count"`
	EnDashCount              int  `json:"en_dash_count"`
	PunctuationCompliant     bool `json:"punctuation_compliant"`
	AvgWordsPerSentence      int  `json:"avg_words_per_sentence"`
	AvgSentencesPerParagraph int  `json:"avg_sentences_per_paragraph"`
	ReadingTimeMinutes       int  `json:"reading_time_minutes"`
}

// Score 质量评分，取值 0-100
type Score struct {
	RepetitionScore            int `json:"repetition_score"`
	DiversityScore             int `json:"diversity_score"`
	PunctuationComplianceScore int `json:"punctuation_compliance_score"`
}

// Report 一次分析的完整输出
type Report struct {
	Statistics Statistics `json:"statistics"`
	Score      Score      `json:"score"`
}

// Analyze 计算统计与评分
func Analyze(text string) Report {
	words := normalizedWords(text)
	stats := computeStatistics(text, words)
	return Report{
		Statistics: stats,
		Score: Score{
			RepetitionScore:            repetitionScore(words),
			DiversityScore:             stats.LexicalDiversity,
			PunctuationComplianceScore: ComplianceScore(stats.EmDashCount),
		},
	}
}

// Compute 只计算统计
func Compute(text string) Statistics {
	return computeStatistics(text, normalizedWords(text))
}

// RepetitionScore 长度大于 2 的词的去重比例，越高越不重复；没有这样的词时为 0
func RepetitionScore(text string) int {
	return repetitionScore(normalizedWords(text))
}

// ComplianceScore 破折号合规分：不超过一个为 100，之后每多一个扣 20，最低 0
func ComplianceScore(emDashes int) int {
	if emDashes <= emDashAllowance {
		return 100
	}
	return max(0, 100-(emDashes-emDashAllowance)*emDashPenalty)
}

func computeStatistics(text string, words []string) Statistics {
	wordCount := len(words)
	sentences := countNonBlank(sentenceSplit.Split(text, -1))
	paragraphs := countNonBlank(paragraphSplit.Split(text, -1))
	emDashes := strings.Count(text, string(EmDash))

	return Statistics{
		WordCount:                wordCount,
		CharacterCount:           utf8.RuneCountInString(text),
		SentenceCount:            sentences,
		ParagraphCount:           paragraphs,
		LexicalDiversity:         uniqueRatio(words),
		EmDashCount:              emDashes,
		EnDashCount:              strings.Count(text, string(EnDash)),
		PunctuationCompliant:     emDashes <= emDashAllowance,
		AvgWordsPerSentence:      roundDiv(wordCount, sentences),
		AvgSentencesPerParagraph: roundDiv(sentences, paragraphs),
		ReadingTimeMinutes:       int(math.Ceil(float64(wordCount) / wordsPerMinute)),
	}
}

// normalizedWords 按空白切分并折叠大小写，标点随词保留。
// 先转大写再转小写：ı 与 i 这类大写相同的字母会落到同一形式
func normalizedWords(text string) []string {
	fields := strings.Fields(text)
	for i, f := range fields {
		fields[i] = strings.ToLower(strings.ToUpper(f))
	}
	return fields
}

func repetitionScore(words []string) int {
	long := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) >= minRepetitionLen {
			long = append(long, w)
		}
	}
	return uniqueRatio(long)
}

func uniqueRatio(words []string) int {
	if len(words) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	return int(math.Round(100 * float64(len(seen)) / float64(len(words))))
}

func countNonBlank(parts []string) int {
	n := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}

func roundDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return int(math.Round(float64(a) / float64(b)))
}
