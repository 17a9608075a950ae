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

// SectionHandler handles sections and question groups of a paper. Every
// change goes to the API first and is applied to the draft on success.
type SectionHandler struct {
	paperService *service.PaperService
	log          zerolog.Logger
}

// NewSectionHandler creates a new SectionHandler.
func NewSectionHandler(paperService *service.PaperService, log zerolog.Logger) *SectionHandler {
	return &SectionHandler{
		paperService: paperService,
		log:          logger.Component(log, "section_handler"),
	}
}

// ─── Sections ──────────────────────────────────────────────────────────

// CreateSection godoc
// POST /api/v1/papers/:id/sections
// Appends a section to the paper.
func (h *SectionHandler) CreateSection(c *gin.Context) {
	paperID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.CreateSectionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sec, err := h.paperService.CreateSection(c.Request.Context(), paperID, req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"section": sec})
}

// UpdateSection godoc
// PUT /api/v1/papers/:id/sections/:section_id
func (h *SectionHandler) UpdateSection(c *gin.Context) {
	paperID, ok := paramID(c, "id")
	if !ok {
		return
	}
	sectionID, ok := paramID(c, "section_id")
	if !ok {
		return
	}
	var req model.UpdateSectionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sec, err := h.paperService.UpdateSection(c.Request.Context(), paperID, sectionID, req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"section": sec})
}

// DeleteSection godoc
// DELETE /api/v1/papers/:id/sections/:section_id
// Removes the section with all of its groups and questions.
func (h *SectionHandler) DeleteSection(c *gin.Context) {
	paperID, ok := paramID(c, "id")
	if !ok {
		return
	}
	sectionID, ok := paramID(c, "section_id")
	if !ok {
		return
	}

	if err := h.paperService.DeleteSection(c.Request.Context(), paperID, sectionID); err != nil {
		fail(c, h.log, err)
		return
	}
	response.NoContent(c)
}

// ─── Groups ────────────────────────────────────────────────────────────

// CreateGroup godoc
// POST /api/v1/papers/:id/sections/:section_id/groups
// Appends a question group. Its question type cannot change afterwards.
func (h *SectionHandler) CreateGroup(c *gin.Context) {
	paperID, ok := paramID(c, "id")
	if !ok {
		return
	}
	sectionID, ok := paramID(c, "section_id")
	if !ok {
		return
	}
	var req model.CreateGroupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	g, err := h.paperService.CreateGroup(c.Request.Context(), paperID, sectionID, req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"group": g})
}

// UpdateGroup godoc
// PUT /api/v1/papers/:id/groups/:group_id
// Edits instructions, numbering style and passage. A different
// question_type is rejected with 409.
func (h *SectionHandler) UpdateGroup(c *gin.Context) {
	paperID, ok := paramID(c, "id")
	if !ok {
		return
	}
	groupID, ok := paramID(c, "group_id")
	if !ok {
		return
	}
	var req model.UpdateGroupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	g, err := h.paperService.UpdateGroup(c.Request.Context(), paperID, groupID, req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"group": g})
}

// DeleteGroup godoc
// DELETE /api/v1/papers/:id/groups/:group_id
func (h *SectionHandler) DeleteGroup(c *gin.Context) {
	paperID, ok := paramID(c, "id")
	if !ok {
		return
	}
	groupID, ok := paramID(c, "group_id")
	if !ok {
		return
	}

	if err := h.paperService.DeleteGroup(c.Request.Context(), paperID, groupID); err != nil {
		fail(c, h.log, err)
		return
	}
	response.NoContent(c)
}
