package generation

import (
	"github.com/invopop/jsonschema"
)

func reflectSchema[T any]() *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return r.Reflect(v)
}

var resultSchemas = map[Phase]*jsonschema.Schema{
	PhasePremise:     reflectSchema[PremiseSet](),
	PhaseOutline:     reflectSchema[Outline](),
	PhaseCharacters:  reflectSchema[CharacterRoster](),
	PhaseChapter:     reflectSchema[ChapterDraft](),
	PhaseLongChapter: reflectSchema[ChapterDraft](),
	PhaseReview:      reflectSchema[Review](),
	PhaseCoverImage:  reflectSchema[CoverImage](),
	PhaseRawText:     reflectSchema[RawText](),
}

// ResultSchema 返回阶段结果内容的 JSON Schema
func ResultSchema(phase Phase) (*jsonschema.Schema, bool) {
	s, ok := resultSchemas[phase]
	return s, ok
}
