package paper

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stemsi/exstem-paper/internal/model"
)

// ErrUnknownAction is returned by DecodeAction for an unrecognised type.
var ErrUnknownAction = errors.New("unknown action")

// Action is a discrete change to the tree.
type Action interface {
	Kind() string
	apply(p *model.Paper) error
}

// AddSection appends a section.
type AddSection struct {
	Section model.Section `json:"section"`
}

// UpdateSection edits a section's title and instructions.
type UpdateSection struct {
	SectionID    model.ID `json:"section_id"`
	Title        string   `json:"title"`
	Instructions string   `json:"instructions"`
}

// DeleteSection removes a section and everything under it.
type DeleteSection struct {
	SectionID model.ID `json:"section_id"`
}

// MoveSection moves a section from one position to another (drag and drop).
type MoveSection struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// ShiftSection swaps a section with its neighbour.
type ShiftSection struct {
	Index     int       `json:"index"`
	Direction Direction `json:"direction"`
}

// AddGroup appends a group to a section.
type AddGroup struct {
	SectionID model.ID            `json:"section_id"`
	Group     model.QuestionGroup `json:"group"`
}

// UpdateGroup edits a group's presentation. QuestionType, when set, must
// match the existing type.
type UpdateGroup struct {
	GroupID model.ID            `json:"group_id"`
	Group   model.QuestionGroup `json:"group"`
}

// DeleteGroup removes a group and its questions.
type DeleteGroup struct {
	GroupID model.ID `json:"group_id"`
}

// MoveGroup moves a group within its section.
type MoveGroup struct {
	SectionID model.ID `json:"section_id"`
	From      int      `json:"from"`
	To        int      `json:"to"`
}

// ShiftGroup swaps a group with its neighbour in the same section.
type ShiftGroup struct {
	SectionID model.ID  `json:"section_id"`
	Index     int       `json:"index"`
	Direction Direction `json:"direction"`
}

// AddQuestion appends a question to a group.
type AddQuestion struct {
	GroupID  model.ID       `json:"group_id"`
	Question model.Question `json:"question"`
}

// UpdateQuestion replaces a question, keeping its position.
type UpdateQuestion struct {
	Question model.Question `json:"question"`
}

// DeleteQuestion removes a question.
type DeleteQuestion struct {
	QuestionID model.ID `json:"question_id"`
}

// MoveQuestion moves a question within its group.
type MoveQuestion struct {
	GroupID model.ID `json:"group_id"`
	From    int      `json:"from"`
	To      int      `json:"to"`
}

// ShiftQuestion swaps a question with its neighbour in the same group.
type ShiftQuestion struct {
	GroupID   model.ID  `json:"group_id"`
	Index     int       `json:"index"`
	Direction Direction `json:"direction"`
}

func (AddSection) Kind() string     { return "add_section" }
func (UpdateSection) Kind() string  { return "update_section" }
func (DeleteSection) Kind() string  { return "delete_section" }
func (MoveSection) Kind() string    { return "move_section" }
func (ShiftSection) Kind() string   { return "shift_section" }
func (AddGroup) Kind() string       { return "add_group" }
func (UpdateGroup) Kind() string    { return "update_group" }
func (DeleteGroup) Kind() string    { return "delete_group" }
func (MoveGroup) Kind() string      { return "move_group" }
func (ShiftGroup) Kind() string     { return "shift_group" }
func (AddQuestion) Kind() string    { return "add_question" }
func (UpdateQuestion) Kind() string { return "update_question" }
func (DeleteQuestion) Kind() string { return "delete_question" }
func (MoveQuestion) Kind() string   { return "move_question" }
func (ShiftQuestion) Kind() string  { return "shift_question" }

// IsReorder reports whether a only changes the position of existing
// entities. Only reorders may be applied to a draft without the remote API.
func IsReorder(a Action) bool {
	switch a.(type) {
	case MoveSection, *MoveSection, ShiftSection, *ShiftSection,
		MoveGroup, *MoveGroup, ShiftGroup, *ShiftGroup,
		MoveQuestion, *MoveQuestion, ShiftQuestion, *ShiftQuestion:
		return true
	}
	return false
}

func (a AddSection) apply(p *model.Paper) error {
	if err := requireTitle(a.Section.Title); err != nil {
		return err
	}
	s := a.Section.Clone()
	if s.ID == "" {
		s.ID = model.NewLocalID()
	}
	if s.Groups == nil {
		s.Groups = []model.QuestionGroup{}
	}
	for gi := range s.Groups {
		normalizeGroup(&s.Groups[gi])
	}
	s.Order = len(p.Sections) + 1
	p.Sections = append(p.Sections, s)
	return nil
}

func (a UpdateSection) apply(p *model.Paper) error {
	if err := requireTitle(a.Title); err != nil {
		return err
	}
	si, err := findSection(p, a.SectionID)
	if err != nil {
		return err
	}
	p.Sections[si].Title = a.Title
	p.Sections[si].Instructions = a.Instructions
	return nil
}

func (a DeleteSection) apply(p *model.Paper) error {
	si, err := findSection(p, a.SectionID)
	if err != nil {
		return err
	}
	p.Sections = append(p.Sections[:si], p.Sections[si+1:]...)
	return nil
}

func (a MoveSection) apply(p *model.Paper) error {
	s, err := move(p.Sections, a.From, a.To)
	p.Sections = s
	return err
}

func (a ShiftSection) apply(p *model.Paper) error {
	s, err := shift(p.Sections, a.Index, a.Direction)
	p.Sections = s
	return err
}

func (a AddGroup) apply(p *model.Paper) error {
	si, err := findSection(p, a.SectionID)
	if err != nil {
		return err
	}
	if !a.Group.QuestionType.Valid() {
		return fmt.Errorf("invalid question type %q", a.Group.QuestionType)
	}
	g := a.Group.Clone()
	if g.ID == "" {
		g.ID = model.NewLocalID()
	}
	normalizeGroup(&g)
	s := &p.Sections[si]
	g.Order = len(s.Groups) + 1
	s.Groups = append(s.Groups, g)
	return nil
}

func (a UpdateGroup) apply(p *model.Paper) error {
	si, gi, err := findGroup(p, a.GroupID)
	if err != nil {
		return err
	}
	g := &p.Sections[si].Groups[gi]
	if a.Group.QuestionType != "" && a.Group.QuestionType != g.QuestionType {
		return ErrTypeChange
	}
	g.Instructions = a.Group.Instructions
	g.NumberingStyle = a.Group.NumberingStyle
	g.ParagraphText = a.Group.ParagraphText
	normalizeGroup(g)
	return nil
}

func (a DeleteGroup) apply(p *model.Paper) error {
	si, gi, err := findGroup(p, a.GroupID)
	if err != nil {
		return err
	}
	s := &p.Sections[si]
	s.Groups = append(s.Groups[:gi], s.Groups[gi+1:]...)
	return nil
}

func (a MoveGroup) apply(p *model.Paper) error {
	si, err := findSection(p, a.SectionID)
	if err != nil {
		return err
	}
	g, err := move(p.Sections[si].Groups, a.From, a.To)
	p.Sections[si].Groups = g
	return err
}

func (a ShiftGroup) apply(p *model.Paper) error {
	si, err := findSection(p, a.SectionID)
	if err != nil {
		return err
	}
	g, err := shift(p.Sections[si].Groups, a.Index, a.Direction)
	p.Sections[si].Groups = g
	return err
}

func (a AddQuestion) apply(p *model.Paper) error {
	si, gi, err := findGroup(p, a.GroupID)
	if err != nil {
		return err
	}
	q := a.Question.Clone()
	if q.ID == "" {
		q.ID = model.NewLocalID()
	}
	g := &p.Sections[si].Groups[gi]
	q.Order = len(g.Questions) + 1
	g.Questions = append(g.Questions, q)
	return nil
}

func (a UpdateQuestion) apply(p *model.Paper) error {
	si, gi, qi, err := findQuestion(p, a.Question.ID)
	if err != nil {
		return err
	}
	q := a.Question.Clone()
	q.Order = p.Sections[si].Groups[gi].Questions[qi].Order
	p.Sections[si].Groups[gi].Questions[qi] = q
	return nil
}

func (a DeleteQuestion) apply(p *model.Paper) error {
	si, gi, qi, err := findQuestion(p, a.QuestionID)
	if err != nil {
		return err
	}
	g := &p.Sections[si].Groups[gi]
	g.Questions = append(g.Questions[:qi], g.Questions[qi+1:]...)
	return nil
}

func (a MoveQuestion) apply(p *model.Paper) error {
	si, gi, err := findGroup(p, a.GroupID)
	if err != nil {
		return err
	}
	g := &p.Sections[si].Groups[gi]
	q, err := move(g.Questions, a.From, a.To)
	g.Questions = q
	return err
}

func (a ShiftQuestion) apply(p *model.Paper) error {
	si, gi, err := findGroup(p, a.GroupID)
	if err != nil {
		return err
	}
	g := &p.Sections[si].Groups[gi]
	q, err := shift(g.Questions, a.Index, a.Direction)
	g.Questions = q
	return err
}

// DecodeAction parses {"type": "<kind>", ...fields} into an Action.
func DecodeAction(data []byte) (Action, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}

	var a Action
	switch env.Type {
	case "add_section":
		a = &AddSection{}
	case "update_section":
		a = &UpdateSection{}
	case "delete_section":
		a = &DeleteSection{}
	case "move_section":
		a = &MoveSection{}
	case "shift_section":
		a = &ShiftSection{}
	case "add_group":
		a = &AddGroup{}
	case "update_group":
		a = &UpdateGroup{}
	case "delete_group":
		a = &DeleteGroup{}
	case "move_group":
		a = &MoveGroup{}
	case "shift_group":
		a = &ShiftGroup{}
	case "add_question":
		a = &AddQuestion{}
	case "update_question":
		a = &UpdateQuestion{}
	case "delete_question":
		a = &DeleteQuestion{}
	case "move_question":
		a = &MoveQuestion{}
	case "shift_question":
		a = &ShiftQuestion{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
	}
	if err := json.Unmarshal(data, a); err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return a, nil
}
