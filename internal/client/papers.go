package client

import (
	"context"
	"net/http"

	"github.com/stemsi/exstem-paper/internal/model"
)

func idParam(id model.ID) map[string]string {
	return map[string]string{"id": id.String()}
}

// GetPaper fetches a paper with its full tree.
// GET /papers/{id}
func (c *Client) GetPaper(ctx context.Context, id model.ID) (model.Paper, error) {
	var p model.Paper
	err := c.do(ctx, http.MethodGet, "/papers/{id}", idParam(id), nil, &p)
	return p, err
}

// CreatePaper creates an empty paper.
// POST /papers
func (c *Client) CreatePaper(ctx context.Context, body model.PaperPayload) (model.Paper, error) {
	var p model.Paper
	err := c.do(ctx, http.MethodPost, "/papers", nil, body, &p)
	return p, err
}

// DeletePaper removes a paper and its tree.
// DELETE /papers/{id}
func (c *Client) DeletePaper(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodDelete, "/papers/{id}", idParam(id), nil, nil)
}

// SaveSectionOrder saves the full ordered tree of a paper: sections with
// their groups and questions.
// PUT /papers/{id}/sections
func (c *Client) SaveSectionOrder(ctx context.Context, paperID model.ID, sections []model.SectionOrder) error {
	body := model.SectionOrderPayload{Sections: sections}
	return c.do(ctx, http.MethodPut, "/papers/{id}/sections", idParam(paperID), body, nil)
}

// CreateSection adds a section to a paper.
// POST /papers/{id}/sections
func (c *Client) CreateSection(ctx context.Context, paperID model.ID, body model.SectionPayload) (model.Section, error) {
	var s model.Section
	err := c.do(ctx, http.MethodPost, "/papers/{id}/sections", idParam(paperID), body, &s)
	return s, err
}

// UpdateSection edits a section.
// PUT /sections/{id}
func (c *Client) UpdateSection(ctx context.Context, id model.ID, body model.SectionPayload) (model.Section, error) {
	var s model.Section
	err := c.do(ctx, http.MethodPut, "/sections/{id}", idParam(id), body, &s)
	return s, err
}

// DeleteSection removes a section.
// DELETE /sections/{id}
func (c *Client) DeleteSection(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodDelete, "/sections/{id}", idParam(id), nil, nil)
}

// CreateGroup adds a question group to a section.
// POST /sections/{id}/groups
func (c *Client) CreateGroup(ctx context.Context, sectionID model.ID, body model.GroupPayload) (model.QuestionGroup, error) {
	var g model.QuestionGroup
	err := c.do(ctx, http.MethodPost, "/sections/{id}/groups", idParam(sectionID), body, &g)
	return g, err
}

// UpdateGroup edits a question group.
// PUT /groups/{id}
func (c *Client) UpdateGroup(ctx context.Context, id model.ID, body model.GroupPayload) (model.QuestionGroup, error) {
	var g model.QuestionGroup
	err := c.do(ctx, http.MethodPut, "/groups/{id}", idParam(id), body, &g)
	return g, err
}

// DeleteGroup removes a question group.
// DELETE /groups/{id}
func (c *Client) DeleteGroup(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodDelete, "/groups/{id}", idParam(id), nil, nil)
}

// CreateQuestion adds a question to a group.
// POST /groups/{id}/questions
func (c *Client) CreateQuestion(ctx context.Context, groupID model.ID, body model.QuestionPayload) (model.Question, error) {
	var q model.Question
	err := c.do(ctx, http.MethodPost, "/groups/{id}/questions", idParam(groupID), body, &q)
	return q, err
}

// UpdateQuestion replaces a question.
// PUT /questions/{id}
func (c *Client) UpdateQuestion(ctx context.Context, id model.ID, body model.QuestionPayload) (model.Question, error) {
	var q model.Question
	err := c.do(ctx, http.MethodPut, "/questions/{id}", idParam(id), body, &q)
	return q, err
}

// DeleteQuestion removes a question.
// DELETE /questions/{id}
func (c *Client) DeleteQuestion(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodDelete, "/questions/{id}", idParam(id), nil, nil)
}

// QuestionTypes lists the question types known to the API.
// GET /question-types
func (c *Client) QuestionTypes(ctx context.Context) ([]model.QuestionTypeInfo, error) {
	var out []model.QuestionTypeInfo
	err := c.do(ctx, http.MethodGet, "/question-types", nil, nil, &out)
	return out, err
}
