// Package validator validates request payloads and question forms. Both paths
// report failures as a map of field key to message.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stemsi/exstem-paper/internal/form"
)

// Field keys reported by Validate.
const (
	FieldQuestionText   = "question_text"
	FieldParagraphText  = "paragraph_text"
	FieldChoices        = "choices"
	FieldChoicesCorrect = "choices_correct"
	FieldCorrectAnswer  = "correct_answer"
	FieldMarks          = "marks"
	FieldSubQuestions   = "sub_questions"
)

// FieldErrors maps field keys to messages. It is returned as an error when
// a form fails validation.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + fe[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks f against the rules of its question type. An empty map means valid.
func Validate(f form.Form) FieldErrors {
	errs := FieldErrors{}
	switch v := f.(type) {
	case *form.MCQ:
		requireText(errs, FieldQuestionText, v.QuestionText, "Question text is required.")
		if len(v.Choices) < 2 {
			errs[FieldChoices] = "At least two choices are required."
		} else {
			checkChoiceText(errs, v.Choices)
		}
		checkOneCorrect(errs, v.Choices)
		requirePositive(errs, FieldMarks, v.Marks)

	case *form.TrueFalse:
		requireText(errs, FieldQuestionText, v.QuestionText, "Question text is required.")
		if !isTrueFalsePair(v.Choices) {
			errs[FieldChoices] = "Exactly two choices, True and False, are required."
		}
		checkOneCorrect(errs, v.Choices)
		requirePositive(errs, FieldMarks, v.Marks)

	case *form.FillBlank:
		requireText(errs, FieldQuestionText, v.QuestionText, "Question text is required.")
		requireText(errs, FieldCorrectAnswer, v.CorrectAnswer, "Correct answer is required.")
		requirePositive(errs, FieldMarks, v.Marks)

	case *form.Descriptive:
		requireText(errs, FieldQuestionText, v.QuestionText, "Question text is required.")
		if len(v.SubQuestions) == 0 {
			requirePositive(errs, FieldMarks, v.Marks)
		} else {
			checkSubQuestions(errs, v.SubQuestions)
		}

	case *form.Paragraph:
		requireText(errs, FieldParagraphText, v.ParagraphText, "Paragraph text is required.")
		if len(v.SubQuestions) < 1 {
			errs[FieldSubQuestions] = "At least one sub-question is required."
		}
		checkSubQuestions(errs, v.SubQuestions)

	case *form.Conditional:
		if len(v.SubQuestions) < 2 {
			errs[FieldSubQuestions] = "At least two alternative questions are required."
		}
		checkSubQuestions(errs, v.SubQuestions)

	default:
		errs["question_type"] = fmt.Sprintf("Unsupported question type %T.", f)
	}
	return errs
}

func requireText(errs FieldErrors, key, value, msg string) {
	if strings.TrimSpace(value) == "" {
		errs[key] = msg
	}
}

func requirePositive(errs FieldErrors, key string, marks int) {
	if marks <= 0 {
		errs[key] = "Marks must be greater than 0."
	}
}

func checkChoiceText(errs FieldErrors, choices []form.Choice) {
	for _, c := range choices {
		if strings.TrimSpace(c.Text) == "" {
			errs[FieldChoices] = "Every choice needs text."
			return
		}
	}
}

// checkOneCorrect counts flags rather than trusting a single-select UI; a
// replayed bulk update can carry several.
func checkOneCorrect(errs FieldErrors, choices []form.Choice) {
	n := 0
	for _, c := range choices {
		if c.IsCorrect {
			n++
		}
	}
	if n != 1 {
		errs[FieldChoicesCorrect] = "Exactly one choice must be marked correct."
	}
}

func isTrueFalsePair(choices []form.Choice) bool {
	if len(choices) != 2 {
		return false
	}
	a := strings.ToLower(strings.TrimSpace(choices[0].Text))
	b := strings.ToLower(strings.TrimSpace(choices[1].Text))
	return (a == "true" && b == "false") || (a == "false" && b == "true")
}

func checkSubQuestions(errs FieldErrors, subs []form.SubQuestion) {
	for i, sq := range subs {
		prefix := fmt.Sprintf("%s[%d].", FieldSubQuestions, i)
		requireText(errs, prefix+FieldQuestionText, sq.QuestionText, "Sub-question text is required.")
		requirePositive(errs, prefix+FieldMarks, sq.Marks)
	}
}
