// Package paper owns the in-memory authoring tree of a paper. All changes go
// through Apply so they can be undone and replayed.
package paper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/numbering"
)

// Domain errors.
var (
	ErrSectionNotFound  = errors.New("section not found")
	ErrGroupNotFound    = errors.New("question group not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrTypeChange       = errors.New("question type is fixed once a group is created; delete and recreate the group")
	ErrEmptyTitle       = errors.New("section title is required")
)

// errUnchanged marks an action that left the paper as it was.
var errUnchanged = errors.New("unchanged")

// MaxHistory bounds the undo stack.
const MaxHistory = 50

// State is the serialisable form of a Tree, used for draft storage.
type State struct {
	Paper   model.Paper   `json:"paper"`
	History []model.Paper `json:"history,omitempty"`
}

// Tree wraps a paper and its undo history.
type Tree struct {
	paper   model.Paper
	history []model.Paper
}

// New returns a tree over a copy of p with missing numbering styles filled in.
func New(p model.Paper) *Tree {
	p = p.Clone()
	Normalize(&p)
	return &Tree{paper: p}
}

// FromState rebuilds a tree from stored state.
func FromState(s State) *Tree {
	t := New(s.Paper)
	t.history = s.History
	return t
}

// State returns a copy of the tree suitable for storage.
func (t *Tree) State() State {
	hist := make([]model.Paper, len(t.history))
	copy(hist, t.history)
	return State{Paper: t.paper.Clone(), History: hist}
}

// Paper returns a deep copy of the current paper.
func (t *Tree) Paper() model.Paper {
	return t.paper.Clone()
}

// Apply runs a on the tree and records the previous paper for Undo. The tree
// is unchanged when a returns an error, and an action that changes nothing
// leaves no history entry.
func (t *Tree) Apply(a Action) error {
	next := t.paper.Clone()
	if err := a.apply(&next); err != nil {
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return fmt.Errorf("%s: %w", a.Kind(), err)
	}
	t.history = append(t.history, t.paper)
	if len(t.history) > MaxHistory {
		t.history = t.history[len(t.history)-MaxHistory:]
	}
	t.paper = next
	return nil
}

// Undo restores the paper as it was before the last applied action.
// It reports false when there is nothing to undo.
func (t *Tree) Undo() bool {
	if len(t.history) == 0 {
		return false
	}
	last := len(t.history) - 1
	t.paper = t.history[last]
	t.history = t.history[:last]
	return true
}

// CanUndo reports whether Undo would change the tree.
func (t *Tree) CanUndo() bool { return len(t.history) > 0 }

// Sync applies a change the remote API has already accepted. Earlier history
// entries predate that change, so they are dropped.
func (t *Tree) Sync(a Action) error {
	next := t.paper.Clone()
	if err := a.apply(&next); err != nil && !errors.Is(err, errUnchanged) {
		return fmt.Errorf("%s: %w", a.Kind(), err)
	}
	t.paper = next
	t.history = nil
	return nil
}

// ClearHistory forgets every undo step, marking the current paper as the
// saved baseline.
func (t *Tree) ClearHistory() { t.history = nil }

// Renumber stamps order fields from array position. Array position is the
// source of truth for display order; order fields only mirror it.
func (t *Tree) Renumber() {
	renumber(&t.paper)
}

func renumber(p *model.Paper) {
	for si := range p.Sections {
		s := &p.Sections[si]
		s.Order = si + 1
		for gi := range s.Groups {
			g := &s.Groups[gi]
			g.Order = gi + 1
			for qi := range g.Questions {
				q := &g.Questions[qi]
				q.Order = qi + 1
				for oi := range q.Options {
					q.Options[oi].Order = oi + 1
				}
				for sqi := range q.SubQuestions {
					q.SubQuestions[sqi].SubOrder = sqi + 1
					q.SubQuestions[sqi].Order = sqi + 1
				}
			}
		}
	}
}

// Normalize fills defaults the tree relies on: numbering style and the OR
// logic marker of conditional groups.
func Normalize(p *model.Paper) {
	for si := range p.Sections {
		for gi := range p.Sections[si].Groups {
			normalizeGroup(&p.Sections[si].Groups[gi])
		}
	}
}

func normalizeGroup(g *model.QuestionGroup) {
	g.NumberingStyle = numbering.ParseStyle(string(g.NumberingStyle))
	if g.QuestionType == model.QuestionTypeConditional {
		g.Logic = model.LogicOR
	} else {
		g.Logic = ""
	}
	if g.Questions == nil {
		g.Questions = []model.Question{}
	}
}

// Find helpers return positions into p.

func findSection(p *model.Paper, id model.ID) (int, error) {
	for i, s := range p.Sections {
		if s.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
}

func findGroup(p *model.Paper, id model.ID) (si, gi int, err error) {
	for si, s := range p.Sections {
		for gi, g := range s.Groups {
			if g.ID == id {
				return si, gi, nil
			}
		}
	}
	return -1, -1, fmt.Errorf("%w: %s", ErrGroupNotFound, id)
}

func findQuestion(p *model.Paper, id model.ID) (si, gi, qi int, err error) {
	for si, s := range p.Sections {
		for gi, g := range s.Groups {
			for qi, q := range g.Questions {
				if q.ID == id {
					return si, gi, qi, nil
				}
			}
		}
	}
	return -1, -1, -1, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
}

// Group returns a copy of the group with the given ID.
func (t *Tree) Group(id model.ID) (model.QuestionGroup, error) {
	si, gi, err := findGroup(&t.paper, id)
	if err != nil {
		return model.QuestionGroup{}, err
	}
	return t.paper.Sections[si].Groups[gi].Clone(), nil
}

// Section returns a copy of the section with the given ID.
func (t *Tree) Section(id model.ID) (model.Section, error) {
	si, err := findSection(&t.paper, id)
	if err != nil {
		return model.Section{}, err
	}
	return t.paper.Sections[si].Clone(), nil
}

// QuestionWithGroup returns a copy of the question and the group that owns it.
func (t *Tree) QuestionWithGroup(id model.ID) (model.Question, model.QuestionGroup, error) {
	si, gi, qi, err := findQuestion(&t.paper, id)
	if err != nil {
		return model.Question{}, model.QuestionGroup{}, err
	}
	g := t.paper.Sections[si].Groups[gi]
	return g.Questions[qi].Clone(), g.Clone(), nil
}

// Direction is used by the adjacent-swap actions.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// move removes the element at from and inserts it at to.
func move[T any](s []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(s) || to < 0 || to >= len(s) {
		return s, fmt.Errorf("%w: move %d→%d in %d items", ErrIndexOutOfRange, from, to, len(s))
	}
	if from == to {
		return s, errUnchanged
	}
	item := s[from]
	s = append(s[:from], s[from+1:]...)
	s = append(s[:to], append([]T{item}, s[to:]...)...)
	return s, nil
}

// shift swaps the element at i with its neighbour. Moving the first element
// up or the last element down is a no-op.
func shift[T any](s []T, i int, dir Direction) ([]T, error) {
	if i < 0 || i >= len(s) {
		return s, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(s))
	}
	j := i - 1
	switch dir {
	case Up:
	case Down:
		j = i + 1
	default:
		return s, fmt.Errorf("unknown direction %q", dir)
	}
	if j < 0 || j >= len(s) {
		return s, errUnchanged
	}
	s[i], s[j] = s[j], s[i]
	return s, nil
}

func requireTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	return nil
}
