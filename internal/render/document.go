// Package render turns a paper tree into a structured document and writes it
// as HTML, PDF or a marks spreadsheet.
package render

import (
	"strings"

	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/numbering"
)

// ORMarker separates alternatives of a conditional question.
const ORMarker = "OR"

// Document is the print-ready view of a paper.
type Document struct {
	Title           string
	Subject         string
	ClassName       string
	DurationMinutes int
	TotalMarks      int
	Sections        []Section
}

// Section is a rendered section.
type Section struct {
	Title        string
	Instructions string
	Marks        int
	Groups       []Group
}

// Group is a rendered question group.
type Group struct {
	Type         model.QuestionType
	Instructions string
	Passage      string
	Items        []Item
}

// Item is one numbered question.
type Item struct {
	Number  int
	Label   string
	Text    string
	Passage string
	Marks   int
	Options []Option
	Subs    []SubItem
	// Alternatives is set for conditional questions; an ORMarker goes
	// between consecutive Subs.
	Alternatives bool
	AnswerLines  int
}

// Option is a lettered choice. Letters are always A, B, C regardless of the
// group's numbering style.
type Option struct {
	Label string
	Text  string
}

// SubItem is a sub-question or an alternative.
type SubItem struct {
	Label string
	Text  string
	Marks int
	// OR is set on every alternative after the first.
	OR bool
}

// StartNumbers returns, for each section and group, the running number of the
// group's first question. It is derived from array lengths on every call.
func StartNumbers(p model.Paper) [][]int {
	out := make([][]int, len(p.Sections))
	next := 1
	for si, s := range p.Sections {
		out[si] = make([]int, len(s.Groups))
		for gi, g := range s.Groups {
			out[si][gi] = next
			next += len(g.Questions)
		}
	}
	return out
}

// QuestionNumber returns the running number of the question at the given position.
func QuestionNumber(p model.Paper, si, gi, qi int) int {
	return StartNumbers(p)[si][gi] + qi
}

// Build lays out p for display.
func Build(p model.Paper) Document {
	starts := StartNumbers(p)
	doc := Document{
		Title:           p.Title,
		Subject:         p.Subject,
		ClassName:       p.ClassName,
		DurationMinutes: p.DurationMinutes,
	}

	for si, s := range p.Sections {
		rs := Section{Title: s.Title, Instructions: s.Instructions}
		for gi, g := range s.Groups {
			rg := Group{Type: g.QuestionType, Instructions: g.Instructions}
			if g.QuestionType == model.QuestionTypeParagraph {
				rg.Passage = g.ParagraphText
			}
			for qi, q := range g.Questions {
				item := buildItem(g, q, starts[si][gi]+qi)
				rs.Marks += item.Marks
				rg.Items = append(rg.Items, item)
			}
			rs.Groups = append(rs.Groups, rg)
		}
		doc.TotalMarks += rs.Marks
		doc.Sections = append(doc.Sections, rs)
	}
	if p.TotalMarks > 0 {
		doc.TotalMarks = p.TotalMarks
	}
	return doc
}

func buildItem(g model.QuestionGroup, q model.Question, number int) Item {
	item := Item{
		Number: number,
		Label:  numbering.Format(number, g.NumberingStyle),
		Text:   q.QuestionText,
		Marks:  q.TotalMarks(g.QuestionType),
	}

	if g.QuestionType.HasOptions() {
		for i, o := range q.Options {
			item.Options = append(item.Options, Option{Label: numbering.Alphabetic(i + 1), Text: o.OptionText})
		}
	}
	switch g.QuestionType {
	case model.QuestionTypeShortAnswer:
		item.AnswerLines = 3
	case model.QuestionTypeLongAnswer:
		item.AnswerLines = 8
	case model.QuestionTypeParagraph:
		if q.ParagraphText != nil && *q.ParagraphText != "" {
			item.Passage = *q.ParagraphText
		}
	case model.QuestionTypeConditional:
		item.Alternatives = true
	}

	for i, sq := range q.SubQuestions {
		item.Subs = append(item.Subs, SubItem{
			Label: SubLabel(i+1, g.NumberingStyle),
			Text:  sq.QuestionText,
			Marks: sq.Marks,
			OR:    item.Alternatives && i > 0,
		})
	}
	return item
}

// SubLabel renders a sub-question index in the group's style, e.g. "(ii)".
func SubLabel(n int, style numbering.Style) string {
	label := numbering.Format(n, style)
	if style != numbering.StyleNumeric {
		label = strings.ToLower(label)
	}
	return "(" + label + ")"
}

// Outline is a compact numbering summary pushed to preview subscribers.
type Outline struct {
	Title      string           `json:"title"`
	TotalMarks int              `json:"total_marks"`
	Questions  int              `json:"questions"`
	Sections   []OutlineSection `json:"sections"`
}

// OutlineSection lists the labels of one section's questions.
type OutlineSection struct {
	Title  string   `json:"title"`
	Marks  int      `json:"marks"`
	Labels []string `json:"labels"`
}

// BuildOutline summarises doc.
func BuildOutline(doc Document) Outline {
	o := Outline{Title: doc.Title, TotalMarks: doc.TotalMarks, Sections: []OutlineSection{}}
	for _, s := range doc.Sections {
		sec := OutlineSection{Title: s.Title, Marks: s.Marks, Labels: []string{}}
		for _, g := range s.Groups {
			for _, it := range g.Items {
				sec.Labels = append(sec.Labels, it.Label)
				o.Questions++
			}
		}
		o.Sections = append(o.Sections, sec)
	}
	return o
}
