package form

import (
	"encoding/json"
	"fmt"

	"github.com/stemsi/exstem-paper/internal/model"
)

// wireForm is the flat JSON shape clients use to submit a form. Only the
// fields meaningful to question_type are read.
type wireForm struct {
	QuestionType  model.QuestionType `json:"question_type"`
	QuestionText  string             `json:"question_text"`
	ParagraphText string             `json:"paragraph_text,omitempty"`
	Choices       []Choice           `json:"choices,omitempty"`
	CorrectIndex  *int               `json:"correct_index,omitempty"`
	CorrectAnswer string             `json:"correct_answer,omitempty"`
	Marks         int                `json:"marks"`
	SubQuestions  []SubQuestion      `json:"sub_questions,omitempty"`
}

// Decode parses a flat JSON form into its typed variant. When correct_index
// is set it marks that choice correct in addition to any is_correct flags.
func Decode(data []byte) (Form, error) {
	var w wireForm
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode form: %w", err)
	}
	return w.toForm()
}

func (w wireForm) toForm() (Form, error) {
	choices := append([]Choice(nil), w.Choices...)
	if w.CorrectIndex != nil && *w.CorrectIndex >= 0 && *w.CorrectIndex < len(choices) {
		choices[*w.CorrectIndex].IsCorrect = true
	}

	switch w.QuestionType {
	case model.QuestionTypeMCQ:
		return &MCQ{QuestionText: w.QuestionText, Choices: choices, Marks: w.Marks}, nil
	case model.QuestionTypeTrueFalse:
		if len(choices) == 0 {
			choices = TrueFalseChoices()
		}
		return &TrueFalse{QuestionText: w.QuestionText, Choices: choices, Marks: w.Marks}, nil
	case model.QuestionTypeFillBlanks:
		return &FillBlank{QuestionText: w.QuestionText, CorrectAnswer: w.CorrectAnswer, Marks: w.Marks}, nil
	case model.QuestionTypeShortAnswer, model.QuestionTypeLongAnswer:
		return &Descriptive{Kind: w.QuestionType, QuestionText: w.QuestionText, Marks: w.Marks, SubQuestions: w.SubQuestions}, nil
	case model.QuestionTypeParagraph:
		return &Paragraph{QuestionText: w.QuestionText, ParagraphText: w.ParagraphText, Marks: w.Marks, SubQuestions: w.SubQuestions}, nil
	case model.QuestionTypeConditional:
		return &Conditional{QuestionText: w.QuestionText, Marks: w.Marks, SubQuestions: w.SubQuestions}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, w.QuestionType)
}

// Encode renders f in the flat JSON shape accepted by Decode.
func Encode(f Form) ([]byte, error) {
	w := wireForm{QuestionType: f.Type(), QuestionText: f.Text()}
	switch v := f.(type) {
	case *MCQ:
		w.Choices, w.Marks = v.Choices, v.Marks
	case *TrueFalse:
		w.Choices, w.Marks = v.Choices, v.Marks
	case *FillBlank:
		w.CorrectAnswer, w.Marks = v.CorrectAnswer, v.Marks
	case *Descriptive:
		w.Marks, w.SubQuestions = v.Marks, v.SubQuestions
	case *Paragraph:
		w.ParagraphText, w.Marks, w.SubQuestions = v.ParagraphText, v.Marks, v.SubQuestions
	case *Conditional:
		w.Marks, w.SubQuestions = v.Marks, v.SubQuestions
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, f)
	}
	return json.Marshal(w)
}
