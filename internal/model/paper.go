package model

import "github.com/stemsi/exstem-paper/internal/numbering"

// LogicOR marks a conditional group whose questions are alternatives.
const LogicOR = "OR"

// Paper is the root of the authoring tree.
type Paper struct {
	ID              ID        `json:"id"`
	Title           string    `json:"title"`
	Subject         string    `json:"subject,omitempty"`
	ClassName       string    `json:"class_name,omitempty"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	TotalMarks      int       `json:"total_marks,omitempty"`
	Sections        []Section `json:"sections"`
}

// Section is a top-level grouping in a paper, e.g. "Section A".
type Section struct {
	ID           ID              `json:"id"`
	Title        string          `json:"title"`
	Instructions string          `json:"instructions,omitempty"`
	Order        int             `json:"order"`
	Groups       []QuestionGroup `json:"groups"`
}

// QuestionGroup clusters questions of one type sharing instructions and numbering.
type QuestionGroup struct {
	ID             ID              `json:"id"`
	QuestionTypeID ID              `json:"question_type_id,omitempty"`
	QuestionType   QuestionType    `json:"question_type"`
	Instructions   string          `json:"instructions,omitempty"`
	NumberingStyle numbering.Style `json:"numbering_style"`
	Logic          string          `json:"logic,omitempty"`
	ParagraphText  string          `json:"paragraph_text,omitempty"`
	Order          int             `json:"order"`
	Questions      []Question      `json:"questions"`
}

// Question is a single question. Which fields are meaningful depends on the
// owning group's question type.
type Question struct {
	ID            ID         `json:"id"`
	QuestionText  string     `json:"question_text,omitempty"`
	ParagraphText *string    `json:"paragraph_text,omitempty"`
	CorrectAnswer *string    `json:"correct_answer,omitempty"`
	Marks         int        `json:"marks"`
	Order         int        `json:"order"`
	SubOrder      int        `json:"sub_order,omitempty"`
	Options       []Option   `json:"options,omitempty"`
	SubQuestions  []Question `json:"sub_questions,omitempty"`
}

// Option is a choice belonging to exactly one question.
type Option struct {
	ID         ID     `json:"id"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct"`
	Order      int    `json:"order"`
}

// Template is a reusable paper skeleton.
type Template struct {
	ID          ID        `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Sections    []Section `json:"sections"`
}

// QuestionCount returns the number of questions across every group.
func (p *Paper) QuestionCount() int {
	n := 0
	for _, s := range p.Sections {
		for _, g := range s.Groups {
			n += len(g.Questions)
		}
	}
	return n
}

// TotalMarks returns the total marks a question contributes. For conditional
// groups only one alternative is answered, so the first alternative counts.
func (q *Question) TotalMarks(t QuestionType) int {
	if len(q.SubQuestions) == 0 {
		return q.Marks
	}
	if t == QuestionTypeConditional {
		return q.SubQuestions[0].Marks
	}
	total := 0
	for _, sq := range q.SubQuestions {
		total += sq.Marks
	}
	return total
}

// Clone returns a deep copy of the paper.
func (p Paper) Clone() Paper {
	out := p
	out.Sections = cloneSections(p.Sections)
	return out
}

// Clone returns a deep copy of the template.
func (t Template) Clone() Template {
	out := t
	out.Sections = cloneSections(t.Sections)
	return out
}

func cloneSections(in []Section) []Section {
	if in == nil {
		return nil
	}
	out := make([]Section, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	out := s
	if s.Groups != nil {
		out.Groups = make([]QuestionGroup, len(s.Groups))
		for i, g := range s.Groups {
			out.Groups[i] = g.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the group.
func (g QuestionGroup) Clone() QuestionGroup {
	out := g
	out.Questions = cloneQuestions(g.Questions)
	return out
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	out := q
	if q.ParagraphText != nil {
		v := *q.ParagraphText
		out.ParagraphText = &v
	}
	if q.CorrectAnswer != nil {
		v := *q.CorrectAnswer
		out.CorrectAnswer = &v
	}
	if q.Options != nil {
		out.Options = append([]Option(nil), q.Options...)
	}
	out.SubQuestions = cloneQuestions(q.SubQuestions)
	return out
}

func cloneQuestions(in []Question) []Question {
	if in == nil {
		return nil
	}
	out := make([]Question, len(in))
	for i, q := range in {
		out[i] = q.Clone()
	}
	return out
}
