package service

import (
	"context"

	"github.com/stemsi/exstem-paper/internal/editor"
	"github.com/stemsi/exstem-paper/internal/form"
	"github.com/stemsi/exstem-paper/internal/mapper"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/paper"
)

// QuestionResult is a saved question plus whether the parent marks the user
// entered were replaced with 0.
type QuestionResult struct {
	Question        model.Question `json:"question"`
	MarksOverridden bool           `json:"marks_overridden"`
}

// Checked is the outcome of validating a form without saving it.
type Checked struct {
	Payload         model.QuestionPayload `json:"payload"`
	MarksOverridden bool                  `json:"marks_overridden"`
}

// ValidateForm runs the question rules on f and returns the payload it would
// send. Field problems come back as *ValidationError.
func ValidateForm(f form.Form) (Checked, error) {
	ed := editor.New()
	if err := ed.OpenCreate(f.Type()); err != nil {
		return Checked{}, err
	}
	sub, err := submit(ed, f, 1)
	if err != nil {
		return Checked{}, err
	}
	return Checked{Payload: sub.Payload, MarksOverridden: sub.MarksOverridden}, nil
}

// CreateQuestion validates f against the group's type, creates the question
// on the API and appends it to the group.
func (s *PaperService) CreateQuestion(ctx context.Context, paperID, groupID model.ID, f form.Form) (QuestionResult, error) {
	tree, err := s.tree(ctx, paperID)
	if err != nil {
		return QuestionResult{}, err
	}
	g, err := tree.Group(groupID)
	if err != nil {
		return QuestionResult{}, err
	}
	if err := requireRemote(groupID); err != nil {
		return QuestionResult{}, err
	}

	ed := editor.New()
	if err := ed.OpenCreate(g.QuestionType); err != nil {
		return QuestionResult{}, err
	}
	sub, err := submit(ed, f, len(g.Questions)+1)
	if err != nil {
		return QuestionResult{}, err
	}

	created, err := s.api.CreateQuestion(ctx, groupID, sub.Payload)
	if err != nil {
		return QuestionResult{}, err
	}
	q := merge(created, sub.Payload)

	if err := s.commit(ctx, paperID, tree, paper.AddQuestion{GroupID: groupID, Question: q}); err != nil {
		return QuestionResult{}, err
	}
	saved, _, err := tree.QuestionWithGroup(q.ID)
	return QuestionResult{Question: saved, MarksOverridden: sub.MarksOverridden}, err
}

// UpdateQuestion replaces a question, keeping its position. f must have the
// group's question type.
func (s *PaperService) UpdateQuestion(ctx context.Context, paperID, questionID model.ID, f form.Form) (QuestionResult, error) {
	tree, err := s.tree(ctx, paperID)
	if err != nil {
		return QuestionResult{}, err
	}
	current, g, err := tree.QuestionWithGroup(questionID)
	if err != nil {
		return QuestionResult{}, err
	}
	if err := requireRemote(questionID); err != nil {
		return QuestionResult{}, err
	}

	ed := editor.New()
	if err := ed.OpenEdit(current, g.QuestionType); err != nil {
		return QuestionResult{}, err
	}
	sub, err := submit(ed, f, current.Order)
	if err != nil {
		return QuestionResult{}, err
	}

	updated, err := s.api.UpdateQuestion(ctx, questionID, sub.Payload)
	if err != nil {
		return QuestionResult{}, err
	}
	q := merge(updated, sub.Payload)
	q.ID = questionID

	if err := s.commit(ctx, paperID, tree, paper.UpdateQuestion{Question: q}); err != nil {
		return QuestionResult{}, err
	}
	saved, _, err := tree.QuestionWithGroup(questionID)
	return QuestionResult{Question: saved, MarksOverridden: sub.MarksOverridden}, err
}

// DeleteQuestion removes a question. A local question is only removed from
// the draft.
func (s *PaperService) DeleteQuestion(ctx context.Context, paperID, questionID model.ID) error {
	tree, err := s.tree(ctx, paperID)
	if err != nil {
		return err
	}
	if _, _, err := tree.QuestionWithGroup(questionID); err != nil {
		return err
	}
	if !questionID.IsLocal() {
		if err := s.api.DeleteQuestion(ctx, questionID); err != nil {
			return err
		}
	}
	return s.commit(ctx, paperID, tree, paper.DeleteQuestion{QuestionID: questionID})
}

func submit(ed *editor.Editor, f form.Form, order int) (editor.Submission, error) {
	if err := ed.Update(f); err != nil {
		return editor.Submission{}, err
	}
	sub, err := ed.Submit(order)
	if err != nil {
		return editor.Submission{}, asValidation(err)
	}
	return sub, nil
}

// merge builds the tree entity from the payload the API accepted, keeping IDs
// the API assigned.
func merge(saved model.Question, sent model.QuestionPayload) model.Question {
	id := saved.ID
	if id == "" {
		id = model.NewLocalID()
	}
	q := mapper.QuestionFromPayload(id, sent)
	if len(saved.Options) == len(q.Options) {
		for i := range q.Options {
			if saved.Options[i].ID != "" {
				q.Options[i].ID = saved.Options[i].ID
			}
		}
	}
	if len(saved.SubQuestions) == len(q.SubQuestions) {
		for i := range q.SubQuestions {
			if saved.SubQuestions[i].ID != "" {
				q.SubQuestions[i].ID = saved.SubQuestions[i].ID
			}
		}
	}
	return q
}
