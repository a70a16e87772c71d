// Package generation 实现小说生成的核心流水线：
// 组装提示词 -> 按提供商 ID 分派调用 -> 解析模型输出 -> 附加耗时与用量元数据。
package generation

import "fmt"

// Phase 生成阶段，决定提示词模板、默认参数与结果结构
type Phase string

const (
	PhasePremise     Phase = "premise"
	PhaseOutline     Phase = "outline"
	PhaseCharacters  Phase = "characters"
	PhaseChapter     Phase = "chapter"
	PhaseLongChapter Phase = "long-chapter"
	PhaseReview      Phase = "review"
	PhaseCoverImage  Phase = "cover-image"
	PhaseRawText     Phase = "raw-text"
)

// Phases 全部阶段，按流水线顺序
var Phases = []Phase{
	PhasePremise, PhaseOutline, PhaseCharacters, PhaseChapter,
	PhaseLongChapter, PhaseReview, PhaseCoverImage, PhaseRawText,
}

// Stage 默认参数的归属分组
type Stage string

const (
	StagePlanning  Stage = "planning"
	StageDrafting  Stage = "drafting"
	StageReviewing Stage = "reviewing"
	StageImage     Stage = "image"
	StageRaw       Stage = "raw"
)

// Stage 返回阶段所属的参数分组
func (p Phase) Stage() Stage {
	switch p {
	case PhasePremise, PhaseOutline, PhaseCharacters:
		return StagePlanning
	case PhaseChapter, PhaseLongChapter:
		return StageDrafting
	case PhaseReview:
		return StageReviewing
	case PhaseCoverImage:
		return StageImage
	default:
		return StageRaw
	}
}

// StructuredOutput 该阶段是否要求模型返回 JSON
func (p Phase) StructuredOutput() bool {
	switch p {
	case PhasePremise, PhaseOutline, PhaseCharacters, PhaseReview:
		return true
	default:
		return false
	}
}

// IsText 是否走文本提供商
func (p Phase) IsText() bool {
	return p != PhaseCoverImage
}

func (p Phase) Valid() bool {
	for _, v := range Phases {
		if p == v {
			return true
		}
	}
	return false
}

// ParsePhase 解析阶段名称
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown generation phase %q", s)
	}
	return p, nil
}

// ParseStage 解析参数分组名称
func ParseStage(s string) (Stage, error) {
	switch st := Stage(s); st {
	case StagePlanning, StageDrafting, StageReviewing, StageImage, StageRaw:
		return st, nil
	default:
		return "", fmt.Errorf("unknown generation stage %q", s)
	}
}
