package client

import (
	"context"
	"net/http"

	"github.com/stemsi/exstem-paper/internal/model"
)

// Templates lists paper templates.
// GET /templates
func (c *Client) Templates(ctx context.Context) ([]model.Template, error) {
	var out []model.Template
	err := c.do(ctx, http.MethodGet, "/templates", nil, nil, &out)
	return out, err
}

// Template fetches one template.
// GET /templates/{id}
func (c *Client) Template(ctx context.Context, id model.ID) (model.Template, error) {
	var t model.Template
	err := c.do(ctx, http.MethodGet, "/templates/{id}", idParam(id), nil, &t)
	return t, err
}

// CreateTemplate stores a new template.
// POST /templates
func (c *Client) CreateTemplate(ctx context.Context, t model.Template) (model.Template, error) {
	var out model.Template
	err := c.do(ctx, http.MethodPost, "/templates", nil, t, &out)
	return out, err
}

// UpdateTemplate replaces a template.
// PUT /templates/{id}
func (c *Client) UpdateTemplate(ctx context.Context, id model.ID, t model.Template) (model.Template, error) {
	var out model.Template
	err := c.do(ctx, http.MethodPut, "/templates/{id}", idParam(id), t, &out)
	return out, err
}

// DeleteTemplate removes a template.
// DELETE /templates/{id}
func (c *Client) DeleteTemplate(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodDelete, "/templates/{id}", idParam(id), nil, nil)
}

// ListResource decodes the collection res into out.
// GET /{resource}
func (c *Client) ListResource(ctx context.Context, res model.Resource, out any) error {
	return c.do(ctx, http.MethodGet, "/"+string(res), nil, nil, out)
}

// CreateResource posts body to the collection res and decodes the result into out.
// POST /{resource}
func (c *Client) CreateResource(ctx context.Context, res model.Resource, body, out any) error {
	return c.do(ctx, http.MethodPost, "/"+string(res), nil, body, out)
}

// UpdateResource replaces one entity of res.
// PUT /{resource}/{id}
func (c *Client) UpdateResource(ctx context.Context, res model.Resource, id model.ID, body, out any) error {
	return c.do(ctx, http.MethodPut, "/"+string(res)+"/{id}", idParam(id), body, out)
}

// DeleteResource removes one entity of res.
// DELETE /{resource}/{id}
func (c *Client) DeleteResource(ctx context.Context, res model.Resource, id model.ID) error {
	return c.do(ctx, http.MethodDelete, "/"+string(res)+"/{id}", idParam(id), nil, nil)
}
