// Package mapper converts between question forms, remote API payloads and
// tree entities.
package mapper

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stemsi/exstem-paper/internal/form"
	"github.com/stemsi/exstem-paper/internal/model"
)

// ToPayload shapes f into the request body for its question type. order is
// the question's 1-based position in its group. Option and sub-question order
// come from array position. Parent marks are forced to 0 whenever children
// carry the marks.
func ToPayload(f form.Form, order int) model.QuestionPayload {
	p := model.QuestionPayload{
		Order:        order,
		Options:      []model.OptionPayload{},
		SubQuestions: []model.SubQuestionPayload{},
	}

	switch v := f.(type) {
	case *form.MCQ:
		p.QuestionText = ptr(v.QuestionText)
		p.Options = options(v.Choices)
		p.Marks = v.Marks
	case *form.TrueFalse:
		p.QuestionText = ptr(v.QuestionText)
		p.Options = options(v.Choices)
		p.Marks = v.Marks
	case *form.FillBlank:
		p.QuestionText = ptr(v.QuestionText)
		p.CorrectAnswer = ptr(strings.TrimSpace(v.CorrectAnswer))
		p.Marks = v.Marks
	case *form.Descriptive:
		p.QuestionText = ptr(v.QuestionText)
		if len(v.SubQuestions) > 0 {
			p.SubQuestions = subQuestions(v.SubQuestions)
		} else {
			p.Marks = v.Marks
		}
	case *form.Paragraph:
		p.QuestionText = optional(v.QuestionText)
		p.ParagraphText = ptr(v.ParagraphText)
		p.SubQuestions = subQuestions(v.SubQuestions)
	case *form.Conditional:
		p.QuestionText = optional(v.QuestionText)
		p.SubQuestions = subQuestions(v.SubQuestions)
	}
	return p
}

// MarksOverridden reports whether ToPayload discards a non-zero parent marks
// value the user entered.
func MarksOverridden(f form.Form) bool {
	switch v := f.(type) {
	case *form.Descriptive:
		return v.Marks != 0 && len(v.SubQuestions) > 0
	case *form.Paragraph:
		return v.Marks != 0
	case *form.Conditional:
		return v.Marks != 0
	}
	return false
}

// FromEntity converts a stored question into the editing form for type t.
// Options and sub-questions are ordered by their order fields.
func FromEntity(q model.Question, t model.QuestionType) (form.Form, error) {
	switch t {
	case model.QuestionTypeMCQ:
		return &form.MCQ{QuestionText: q.QuestionText, Choices: choices(q.Options), Marks: q.Marks}, nil
	case model.QuestionTypeTrueFalse:
		c := choices(q.Options)
		if len(c) == 0 {
			c = form.TrueFalseChoices()
		}
		return &form.TrueFalse{QuestionText: q.QuestionText, Choices: c, Marks: q.Marks}, nil
	case model.QuestionTypeFillBlanks:
		return &form.FillBlank{QuestionText: q.QuestionText, CorrectAnswer: deref(q.CorrectAnswer), Marks: q.Marks}, nil
	case model.QuestionTypeShortAnswer, model.QuestionTypeLongAnswer:
		return &form.Descriptive{Kind: t, QuestionText: q.QuestionText, Marks: q.Marks, SubQuestions: formSubs(q.SubQuestions)}, nil
	case model.QuestionTypeParagraph:
		return &form.Paragraph{QuestionText: q.QuestionText, ParagraphText: deref(q.ParagraphText), Marks: q.Marks, SubQuestions: formSubs(q.SubQuestions)}, nil
	case model.QuestionTypeConditional:
		return &form.Conditional{QuestionText: q.QuestionText, Marks: q.Marks, SubQuestions: formSubs(q.SubQuestions)}, nil
	}
	return nil, fmt.Errorf("%w: %q", form.ErrUnknownType, t)
}

// QuestionFromPayload builds the tree entity for a payload the remote API accepted.
func QuestionFromPayload(id model.ID, p model.QuestionPayload) model.Question {
	q := model.Question{
		ID:            id,
		QuestionText:  deref(p.QuestionText),
		ParagraphText: p.ParagraphText,
		CorrectAnswer: p.CorrectAnswer,
		Marks:         p.Marks,
		Order:         p.Order,
	}
	for _, o := range p.Options {
		q.Options = append(q.Options, model.Option{
			ID:         model.NewLocalID(),
			OptionText: o.OptionText,
			IsCorrect:  o.IsCorrect,
			Order:      o.Order,
		})
	}
	for _, sq := range p.SubQuestions {
		q.SubQuestions = append(q.SubQuestions, model.Question{
			ID:           model.NewLocalID(),
			QuestionText: sq.QuestionText,
			Marks:        sq.Marks,
			SubOrder:     sq.SubOrder,
			Order:        sq.SubOrder,
		})
	}
	return q
}

// SectionPayload shapes a section for the remote API.
func SectionPayload(s model.Section) model.SectionPayload {
	return model.SectionPayload{Title: strings.TrimSpace(s.Title), Instructions: s.Instructions, Order: s.Order}
}

// GroupPayload shapes a group for the remote API. logic is only sent for
// conditional groups and paragraph_text only for paragraph groups.
func GroupPayload(g model.QuestionGroup) model.GroupPayload {
	p := model.GroupPayload{
		QuestionTypeID: g.QuestionTypeID,
		Instructions:   g.Instructions,
		NumberingStyle: g.NumberingStyle,
		Order:          g.Order,
	}
	if g.QuestionType == model.QuestionTypeConditional {
		p.Logic = ptr(model.LogicOR)
	}
	if g.QuestionType == model.QuestionTypeParagraph {
		p.ParagraphText = optional(g.ParagraphText)
	}
	return p
}

// SectionOrders lists every section, group and question ID with its
// positional order.
func SectionOrders(sections []model.Section) []model.SectionOrder {
	out := make([]model.SectionOrder, len(sections))
	for i, s := range sections {
		groups := make([]model.GroupOrder, len(s.Groups))
		for gi, g := range s.Groups {
			qs := make([]model.QuestionOrder, len(g.Questions))
			for qi, q := range g.Questions {
				qs[qi] = model.QuestionOrder{ID: q.ID, Order: qi + 1}
			}
			groups[gi] = model.GroupOrder{ID: g.ID, Order: gi + 1, Questions: qs}
		}
		out[i] = model.SectionOrder{ID: s.ID, Order: i + 1, Groups: groups}
	}
	return out
}

// PaperPayload shapes paper metadata for the remote API.
func PaperPayload(p model.Paper) model.PaperPayload {
	return model.PaperPayload{
		Title:           strings.TrimSpace(p.Title),
		Subject:         p.Subject,
		ClassName:       p.ClassName,
		DurationMinutes: p.DurationMinutes,
	}
}

func options(in []form.Choice) []model.OptionPayload {
	out := make([]model.OptionPayload, len(in))
	for i, c := range in {
		out[i] = model.OptionPayload{OptionText: strings.TrimSpace(c.Text), IsCorrect: c.IsCorrect, Order: i + 1}
	}
	return out
}

func subQuestions(in []form.SubQuestion) []model.SubQuestionPayload {
	out := make([]model.SubQuestionPayload, len(in))
	for i, sq := range in {
		out[i] = model.SubQuestionPayload{QuestionText: sq.QuestionText, Marks: sq.Marks, SubOrder: i + 1}
	}
	return out
}

func choices(in []model.Option) []form.Choice {
	sorted := append([]model.Option(nil), in...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	out := make([]form.Choice, len(sorted))
	for i, o := range sorted {
		out[i] = form.Choice{Text: o.OptionText, IsCorrect: o.IsCorrect}
	}
	return out
}

func formSubs(in []model.Question) []form.SubQuestion {
	if len(in) == 0 {
		return nil
	}
	sorted := append([]model.Question(nil), in...)
	sort.SliceStable(sorted, func(i, j int) bool { return subKey(sorted[i]) < subKey(sorted[j]) })
	out := make([]form.SubQuestion, len(sorted))
	for i, sq := range sorted {
		out[i] = form.SubQuestion{QuestionText: sq.QuestionText, Marks: sq.Marks}
	}
	return out
}

func subKey(q model.Question) int {
	if q.SubOrder != 0 {
		return q.SubOrder
	}
	return q.Order
}

func ptr(s string) *string { return &s }

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
