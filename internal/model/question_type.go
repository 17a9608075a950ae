package model

// QuestionType is the closed set of question type tags.
type QuestionType string

const (
	QuestionTypeMCQ         QuestionType = "mcq"
	QuestionTypeTrueFalse   QuestionType = "true-false"
	QuestionTypeFillBlanks  QuestionType = "fill-in-blanks"
	QuestionTypeShortAnswer QuestionType = "short-answer"
	QuestionTypeLongAnswer  QuestionType = "long-answer"
	QuestionTypeParagraph   QuestionType = "paragraph"
	QuestionTypeConditional QuestionType = "conditional"
)

// QuestionTypes lists every type in display order.
var QuestionTypes = []QuestionType{
	QuestionTypeMCQ,
	QuestionTypeTrueFalse,
	QuestionTypeFillBlanks,
	QuestionTypeShortAnswer,
	QuestionTypeLongAnswer,
	QuestionTypeParagraph,
	QuestionTypeConditional,
}

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// HasOptions reports whether questions of this type carry choice options.
func (t QuestionType) HasOptions() bool {
	return t == QuestionTypeMCQ || t == QuestionTypeTrueFalse
}

// Label returns the human-readable name used when the API does not supply one.
func (t QuestionType) Label() string {
	switch t {
	case QuestionTypeMCQ:
		return "Multiple Choice"
	case QuestionTypeTrueFalse:
		return "True / False"
	case QuestionTypeFillBlanks:
		return "Fill in the Blanks"
	case QuestionTypeShortAnswer:
		return "Short Answer"
	case QuestionTypeLongAnswer:
		return "Long Answer"
	case QuestionTypeParagraph:
		return "Paragraph"
	case QuestionTypeConditional:
		return "Conditional (OR)"
	}
	return string(t)
}

// QuestionTypeInfo is one entry of GET /question-types.
type QuestionTypeInfo struct {
	ID   ID           `json:"id"`
	Name string       `json:"name"`
	Slug QuestionType `json:"slug"`
}
