package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var reviewScoreKeys = []string{
	"repetition", "punctuation", "naturalLanguage", "characterConsistency",
	"plotAdherence", "genreCompliance", "overall",
}

// Parse 将模型输出转换为阶段结果。
// 结构化阶段截取第一个 "{" 到最后一个 "}" 之间的内容做严格解码，再校验必需字段；
// 任何失败都返回 *ParseError，不做部分恢复。正文类阶段原样返回。
func Parse(phase Phase, raw string) (Content, error) {
	switch phase {
	case PhaseChapter, PhaseLongChapter:
		return &ChapterDraft{Text: raw}, nil
	case PhaseRawText:
		return &RawText{Text: raw}, nil
	case PhasePremise, PhaseOutline, PhaseCharacters, PhaseReview:
	default:
		return nil, invalid(phase, "phase", "phase has no text response to parse")
	}

	obj, err := extractJSONObject(phase, raw)
	if err != nil {
		return nil, err
	}

	switch phase {
	case PhasePremise:
		return decodeAndCheck(phase, raw, obj, &PremiseSet{Raw: obj}, func(out *PremiseSet) error {
			return validatePremises(raw, out)
		})
	case PhaseOutline:
		return decodeAndCheck(phase, raw, obj, &Outline{Raw: obj}, func(out *Outline) error {
			return validateOutline(raw, out)
		})
	case PhaseCharacters:
		return decodeAndCheck(phase, raw, obj, &CharacterRoster{Raw: obj}, func(out *CharacterRoster) error {
			return validateCharacters(raw, out)
		})
	default:
		return decodeAndCheck(phase, raw, obj, &Review{Raw: obj}, func(*Review) error {
			return validateReview(raw, obj)
		})
	}
}

func decodeAndCheck[T Content](phase Phase, raw string, obj json.RawMessage, out T, check func(T) error) (Content, error) {
	if err := decodeInto(phase, raw, obj, out); err != nil {
		return nil, err
	}
	if err := check(out); err != nil {
		return nil, err
	}
	return out, nil
}

// extractJSONObject 截取并严格解码 JSON 对象：必须恰好一个值，之后不能有其它数据
func extractJSONObject(phase Phase, raw string) (json.RawMessage, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return nil, newParseError(phase, ParseNoJSON, "", raw, errors.New("no JSON object found in response"))
	}

	dec := json.NewDecoder(strings.NewReader(raw[start : end+1]))
	var obj json.RawMessage
	if err := dec.Decode(&obj); err != nil {
		return nil, newParseError(phase, ParseMalformed, "", raw, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, newParseError(phase, ParseMalformed, "", raw, errors.New("unexpected data after JSON object"))
	}
	return obj, nil
}

func decodeInto(phase Phase, raw string, obj json.RawMessage, out any) error {
	if err := json.Unmarshal(obj, out); err != nil {
		field := ""
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			field = te.Field
		}
		return newParseError(phase, ParseSchema, field, raw, err)
	}
	return nil
}

func schemaError(phase Phase, raw, field, msg string) error {
	return newParseError(phase, ParseSchema, field, raw, errors.New(msg))
}

func validatePremises(raw string, out *PremiseSet) error {
	if len(out.Premises) == 0 {
		return schemaError(PhasePremise, raw, "premises", "must be a non-empty array")
	}
	for i, p := range out.Premises {
		if blank(p.Title) {
			return schemaError(PhasePremise, raw, fmt.Sprintf("premises[%d].title", i), "is required")
		}
	}
	return nil
}

func validateOutline(raw string, out *Outline) error {
	acts := map[string]*Act{
		"threeActStructure.act1": out.ThreeActStructure.Act1,
		"threeActStructure.act2": out.ThreeActStructure.Act2,
		"threeActStructure.act3": out.ThreeActStructure.Act3,
	}
	for _, field := range []string{"threeActStructure.act1", "threeActStructure.act2", "threeActStructure.act3"} {
		if acts[field] == nil {
			return schemaError(PhaseOutline, raw, field, "is required")
		}
	}
	if len(out.Chapters()) == 0 {
		return schemaError(PhaseOutline, raw, "threeActStructure", "must contain at least one chapter")
	}
	return nil
}

func validateCharacters(raw string, out *CharacterRoster) error {
	if len(out.Characters) == 0 {
		return schemaError(PhaseCharacters, raw, "characters", "must be a non-empty array")
	}
	for i, c := range out.Characters {
		if blank(c.Name) {
			return schemaError(PhaseCharacters, raw, fmt.Sprintf("characters[%d].name", i), "is required")
		}
	}
	return nil
}

// validateReview 分数为数字类型，零值无法区分缺失，因此按原始键检查
func validateReview(raw string, obj json.RawMessage) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(obj, &top); err != nil {
		return newParseError(PhaseReview, ParseSchema, "", raw, err)
	}
	scoresRaw, ok := top["scores"]
	if !ok || string(scoresRaw) == "null" {
		return schemaError(PhaseReview, raw, "scores", "is required")
	}
	var scores map[string]json.RawMessage
	if err := json.Unmarshal(scoresRaw, &scores); err != nil {
		return newParseError(PhaseReview, ParseSchema, "scores", raw, err)
	}
	for _, key := range reviewScoreKeys {
		if v, ok := scores[key]; !ok || string(v) == "null" {
			return schemaError(PhaseReview, raw, "scores."+key, "is required")
		}
	}
	return nil
}

// FormatExample 返回提示词中要求模型遵循的 JSON 示例
func FormatExample(phase Phase) (string, bool) {
	switch phase {
	case PhasePremise:
		return premiseFormat, true
	case PhaseOutline:
		return outlineFormat, true
	case PhaseCharacters:
		return charactersFormat, true
	case PhaseReview:
		return reviewFormat, true
	default:
		return "", false
	}
}
