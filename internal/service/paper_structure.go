package service

import (
	"context"
	"strings"

	"github.com/stemsi/exstem-paper/internal/mapper"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/numbering"
	"github.com/stemsi/exstem-paper/internal/paper"
)

// CreateSection adds a section at the end of the paper.
func (s *PaperService) CreateSection(ctx context.Context, paperID model.ID, req model.CreateSectionRequest) (model.Section, error) {
	tree, err := s.tree(ctx, paperID)
	if err != nil {
		return model.Section{}, err
	}

	sec := model.Section{
		Title:        strings.TrimSpace(req.Title),
		Instructions: req.Instructions,
		Order:        len(tree.Paper().Sections) + 1,
		Groups:       []model.QuestionGroup{},
	}
	if sec.Title == "" {
		return model.Section{}, paper.ErrEmptyTitle
	}
	created, err := s.api.CreateSection(ctx, paperID, mapper.SectionPayload(sec))
	if err != nil {
		return model.Section{}, err
	}
	sec.ID = created.ID
	if sec.ID == "" {
		sec.ID = model.NewLocalID()
	}

	if err := s.commit(ctx, paperID, tree, paper.AddSection{Section: sec}); err != nil {
		return model.Section{}, err
	}
	return tree.Section(sec.ID)
}

// UpdateSection edits a section's title and instructions.
func (s *PaperService) UpdateSection(ctx context.Context, paperID, sectionID model.ID, req model.UpdateSectionRequest) (model.Section, error) {
	tree, err := s.tree(ctx, paperID)
	if err != nil {
		return model.Section{}, err
	}
	sec, err := tree.Section(sectionID)
	if err != nil {
		return model.Section{}, err
	}
	if err := requireRemote(sectionID); err != nil {
		return model.Section{}, err
	}

	sec.Title = strings.TrimSpace(req.Title)
	sec.Instructions = req.Instructions
	if sec.Title == "" {
		return model.Section{}, paper.ErrEmptyTitle
	}
	if _, err := s.api.UpdateSection(ctx, sectionID, mapper.SectionPayload(sec)); err != nil {
		return model.Section{}, err
	}

	action := paper.UpdateSection{SectionID: sectionID, Title: sec.Title, Instructions: sec.Instructions}
	if err := s.commit(ctx, paperID, tree, action); err != nil {
		return model.Section{}, err
	}
	return tree.Section(sectionID)
}

// DeleteSection removes a section and everything below it. A local section
// is only removed from the draft.
func (s *PaperService) DeleteSection(ctx context.Context, paperID, sectionID model.ID) error {
	tree, err := s.tree(ctx, paperID)
	if err != nil {
		return err
	}
	if _, err := tree.Section(sectionID); err != nil {
		return err
	}
	if !sectionID.IsLocal() {
		if err := s.api.DeleteSection(ctx, sectionID); err != nil {
			return err
		}
	}
	return s.commit(ctx, paperID, tree, paper.DeleteSection{SectionID: sectionID})
}

// CreateGroup adds a question group at the end of a section. The question
// type is fixed from here on.
func (s *PaperService) CreateGroup(ctx context.Context, paperID, sectionID model.ID, req model.CreateGroupRequest) (model.QuestionGroup, error) {
	tree, err := s.tree(ctx, paperID)
	if err != nil {
		return model.QuestionGroup{}, err
	}
	sec, err := tree.Section(sectionID)
	if err != nil {
		return model.QuestionGroup{}, err
	}
	if err := requireRemote(sectionID); err != nil {
		return model.QuestionGroup{}, err
	}

	qt := model.QuestionType(req.QuestionType)
	typeID, err := s.types.Resolve(ctx, qt)
	if err != nil {
		return model.QuestionGroup{}, err
	}

	g := model.QuestionGroup{
		QuestionTypeID: typeID,
		QuestionType:   qt,
		Instructions:   req.Instructions,
		NumberingStyle: numbering.ParseStyle(req.NumberingStyle),
		Order:          len(sec.Groups) + 1,
		Questions:      []model.Question{},
	}
	if qt == model.QuestionTypeParagraph {
		g.ParagraphText = req.ParagraphText
	}
	if qt == model.QuestionTypeConditional {
		g.Logic = model.LogicOR
	}

	created, err := s.api.CreateGroup(ctx, sectionID, mapper.GroupPayload(g))
	if err != nil {
		return model.QuestionGroup{}, err
	}
	g.ID = created.ID
	if g.ID == "" {
		g.ID = model.NewLocalID()
	}

	if err := s.commit(ctx, paperID, tree, paper.AddGroup{SectionID: sectionID, Group: g}); err != nil {
		return model.QuestionGroup{}, err
	}
	return tree.Group(g.ID)
}

// UpdateGroup edits a group's instructions, numbering style and passage.
// Sending a different question type fails with paper.ErrTypeChange before
// anything reaches the API.
func (s *PaperService) UpdateGroup(ctx context.Context, paperID, groupID model.ID, req model.UpdateGroupRequest) (model.QuestionGroup, error) {
	tree, err := s.tree(ctx, paperID)
	if err != nil {
		return model.QuestionGroup{}, err
	}
	g, err := tree.Group(groupID)
	if err != nil {
		return model.QuestionGroup{}, err
	}
	if req.QuestionType != "" && model.QuestionType(req.QuestionType) != g.QuestionType {
		return model.QuestionGroup{}, paper.ErrTypeChange
	}
	if err := requireRemote(groupID); err != nil {
		return model.QuestionGroup{}, err
	}

	g.Instructions = req.Instructions
	if req.NumberingStyle != "" {
		g.NumberingStyle = numbering.ParseStyle(req.NumberingStyle)
	}
	if g.QuestionType == model.QuestionTypeParagraph {
		g.ParagraphText = req.ParagraphText
	}
	if g.QuestionTypeID == "" {
		if g.QuestionTypeID, err = s.types.Resolve(ctx, g.QuestionType); err != nil {
			return model.QuestionGroup{}, err
		}
	}

	if _, err := s.api.UpdateGroup(ctx, groupID, mapper.GroupPayload(g)); err != nil {
		return model.QuestionGroup{}, err
	}
	if err := s.commit(ctx, paperID, tree, paper.UpdateGroup{GroupID: groupID, Group: g}); err != nil {
		return model.QuestionGroup{}, err
	}
	return tree.Group(groupID)
}

// DeleteGroup removes a group and its questions. A local group is only
// removed from the draft.
func (s *PaperService) DeleteGroup(ctx context.Context, paperID, groupID model.ID) error {
	tree, err := s.tree(ctx, paperID)
	if err != nil {
		return err
	}
	if _, err := tree.Group(groupID); err != nil {
		return err
	}
	if !groupID.IsLocal() {
		if err := s.api.DeleteGroup(ctx, groupID); err != nil {
			return err
		}
	}
	return s.commit(ctx, paperID, tree, paper.DeleteGroup{GroupID: groupID})
}
