// Package form holds the editing-form shape of a question as a tagged union:
// one variant per question type, each carrying only the fields that type uses.
package form

import (
	"errors"
	"fmt"

	"github.com/stemsi/exstem-paper/internal/model"
)

// ErrUnknownType is returned for a question type outside the closed set.
var ErrUnknownType = errors.New("unknown question type")

// Form is implemented by every question form variant.
type Form interface {
	Type() model.QuestionType
	Text() string
	isForm()
}

// Choice is one option of a choice question as edited.
type Choice struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// SubQuestion is one child of a descriptive, paragraph or conditional question.
type SubQuestion struct {
	QuestionText string `json:"question_text"`
	Marks        int    `json:"marks"`
}

// MCQ is a multiple-choice question.
type MCQ struct {
	QuestionText string
	Choices      []Choice
	Marks        int
}

// TrueFalse is a two-choice True/False question.
type TrueFalse struct {
	QuestionText string
	Choices      []Choice
	Marks        int
}

// FillBlank is a fill-in-the-blanks question with a single expected answer.
type FillBlank struct {
	QuestionText  string
	CorrectAnswer string
	Marks         int
}

// Descriptive is a short- or long-answer question. Marks sit on the parent
// when there are no sub-questions and on the children otherwise.
type Descriptive struct {
	Kind         model.QuestionType
	QuestionText string
	Marks        int
	SubQuestions []SubQuestion
}

// Paragraph is a shared passage followed by sub-questions.
type Paragraph struct {
	QuestionText  string
	ParagraphText string
	Marks         int
	SubQuestions  []SubQuestion
}

// Conditional holds alternatives of which the candidate answers any one.
type Conditional struct {
	QuestionText string
	Marks        int
	SubQuestions []SubQuestion
}

func (*MCQ) Type() model.QuestionType           { return model.QuestionTypeMCQ }
func (*TrueFalse) Type() model.QuestionType     { return model.QuestionTypeTrueFalse }
func (*FillBlank) Type() model.QuestionType     { return model.QuestionTypeFillBlanks }
func (f *Descriptive) Type() model.QuestionType { return f.Kind }
func (*Paragraph) Type() model.QuestionType     { return model.QuestionTypeParagraph }
func (*Conditional) Type() model.QuestionType   { return model.QuestionTypeConditional }

func (f *MCQ) Text() string         { return f.QuestionText }
func (f *TrueFalse) Text() string   { return f.QuestionText }
func (f *FillBlank) Text() string   { return f.QuestionText }
func (f *Descriptive) Text() string { return f.QuestionText }
func (f *Paragraph) Text() string   { return f.QuestionText }
func (f *Conditional) Text() string { return f.QuestionText }

func (*MCQ) isForm()         {}
func (*TrueFalse) isForm()   {}
func (*FillBlank) isForm()   {}
func (*Descriptive) isForm() {}
func (*Paragraph) isForm()   {}
func (*Conditional) isForm() {}

// CorrectIndex returns the index of the first correct choice, or -1.
func (f *MCQ) CorrectIndex() int { return correctIndex(f.Choices) }

// CorrectIndex returns the index of the first correct choice, or -1.
func (f *TrueFalse) CorrectIndex() int { return correctIndex(f.Choices) }

func correctIndex(choices []Choice) int {
	for i, c := range choices {
		if c.IsCorrect {
			return i
		}
	}
	return -1
}

// TrueFalseChoices returns the fixed True/False option pair with nothing marked correct.
func TrueFalseChoices() []Choice {
	return []Choice{{Text: "True"}, {Text: "False"}}
}

// New returns a form of type t seeded with type-appropriate defaults.
func New(t model.QuestionType) (Form, error) {
	switch t {
	case model.QuestionTypeMCQ:
		return &MCQ{Choices: []Choice{{}, {}}}, nil
	case model.QuestionTypeTrueFalse:
		return &TrueFalse{Choices: TrueFalseChoices()}, nil
	case model.QuestionTypeFillBlanks:
		return &FillBlank{}, nil
	case model.QuestionTypeShortAnswer, model.QuestionTypeLongAnswer:
		return &Descriptive{Kind: t}, nil
	case model.QuestionTypeParagraph:
		return &Paragraph{SubQuestions: []SubQuestion{{}}}, nil
	case model.QuestionTypeConditional:
		return &Conditional{SubQuestions: []SubQuestion{{}, {}}}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

// Switch converts f to type t. The question text carries over; type-specific
// fields reset to the defaults of t, except between short and long answer,
// which share a shape.
func Switch(f Form, t model.QuestionType) (Form, error) {
	if f != nil && f.Type() == t {
		return f, nil
	}
	if d, ok := f.(*Descriptive); ok && (t == model.QuestionTypeShortAnswer || t == model.QuestionTypeLongAnswer) {
		out := *d
		out.Kind = t
		out.SubQuestions = append([]SubQuestion(nil), d.SubQuestions...)
		return &out, nil
	}

	next, err := New(t)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return next, nil
	}
	text := f.Text()
	switch n := next.(type) {
	case *MCQ:
		n.QuestionText = text
	case *TrueFalse:
		n.QuestionText = text
	case *FillBlank:
		n.QuestionText = text
	case *Descriptive:
		n.QuestionText = text
	case *Paragraph:
		n.QuestionText = text
	case *Conditional:
		n.QuestionText = text
	}
	return next, nil
}
