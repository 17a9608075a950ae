package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-paper/internal/logger"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/response"
	"github.com/stemsi/exstem-paper/internal/service"
	"github.com/stemsi/exstem-paper/internal/validator"
)

// TemplateHandler handles paper templates.
type TemplateHandler struct {
	templateService *service.TemplateService
	log             zerolog.Logger
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateService *service.TemplateService, log zerolog.Logger) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
		log:             logger.Component(log, "template_handler"),
	}
}

// TemplateRequest is the payload for creating or updating a template.
type TemplateRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=255"`
	Description string          `json:"description" binding:"max=2000"`
	Sections    []model.Section `json:"sections"`
}

func (r TemplateRequest) template() model.Template {
	sections := r.Sections
	if sections == nil {
		sections = []model.Section{}
	}
	return model.Template{Name: r.Name, Description: r.Description, Sections: sections}
}

// ListTemplates godoc
// GET /api/v1/templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	templates, err := h.templateService.List(c.Request.Context())
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"templates": templates})
}

// GetTemplate godoc
// GET /api/v1/templates/:id
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	t, err := h.templateService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"template": t})
}

// CreateTemplate godoc
// POST /api/v1/templates
// Stores a reusable skeleton of sections and groups.
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req TemplateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	t, err := h.templateService.Create(c.Request.Context(), req.template())
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"template": t})
}

// UpdateTemplate godoc
// PUT /api/v1/templates/:id
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req TemplateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	t, err := h.templateService.Update(c.Request.Context(), id, req.template())
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"template": t})
}

// DeleteTemplate godoc
// DELETE /api/v1/templates/:id
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.templateService.Delete(c.Request.Context(), id); err != nil {
		fail(c, h.log, err)
		return
	}
	response.NoContent(c)
}

// InstantiateTemplate godoc
// POST /api/v1/templates/:id/instantiate
// Creates a local draft from the template. The returned paper ID is a local
// one; nothing exists on the API until the paper is created there.
func (h *TemplateHandler) InstantiateTemplate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.InstantiateTemplateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	p, err := h.templateService.Instantiate(c.Request.Context(), id, req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"paper": p})
}
