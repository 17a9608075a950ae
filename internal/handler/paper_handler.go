package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-paper/internal/logger"
	"github.com/stemsi/exstem-paper/internal/paper"
	"github.com/stemsi/exstem-paper/internal/response"
	"github.com/stemsi/exstem-paper/internal/service"
)

// maxImportBytes caps the size of an uploaded paper export.
const maxImportBytes = 4 << 20

// PaperHandler serves draft lifecycle, reducer actions, export/import and rendering.
type PaperHandler struct {
	paperService *service.PaperService
	log          zerolog.Logger
}

// NewPaperHandler creates a new PaperHandler.
func NewPaperHandler(paperService *service.PaperService, log zerolog.Logger) *PaperHandler {
	return &PaperHandler{
		paperService: paperService,
		log:          logger.Component(log, "paper_handler"),
	}
}

// LoadPaper godoc
// GET /api/v1/papers/:id
// Fetches the paper from the API and replaces the draft with it.
func (h *PaperHandler) LoadPaper(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	p, err := h.paperService.Load(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"paper": p})
}

// GetDraft godoc
// GET /api/v1/papers/:id/draft
func (h *PaperHandler) GetDraft(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	p, err := h.paperService.Draft(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"paper": p})
}

// DiscardDraft godoc
// DELETE /api/v1/papers/:id/draft
// Drops local changes. The paper on the API is untouched.
func (h *PaperHandler) DiscardDraft(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.paperService.Discard(c.Request.Context(), id); err != nil {
		fail(c, h.log, err)
		return
	}
	response.NoContent(c)
}

// DispatchAction godoc
// POST /api/v1/papers/:id/actions
// Applies a reducer action, e.g. {"type":"shift_section","index":0,"direction":"down"},
// to the draft. Nothing is sent to the API until the paper is saved.
func (h *PaperHandler) DispatchAction(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	action, err := paper.DecodeAction(raw)
	if err != nil {
		if errors.Is(err, paper.ErrUnknownAction) {
			response.Fail(c, http.StatusBadRequest, response.ErrUnknownAction)
			return
		}
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	p, err := h.paperService.Dispatch(c.Request.Context(), id, action)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"paper": p})
}

// Undo godoc
// POST /api/v1/papers/:id/undo
func (h *PaperHandler) Undo(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	p, err := h.paperService.Undo(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"paper": p})
}

// SavePaper godoc
// POST /api/v1/papers/:id/save
// Stamps order from position and sends the section order to the API.
func (h *PaperHandler) SavePaper(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	p, err := h.paperService.Save(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"paper": p})
}

// ExportPaper godoc
// GET /api/v1/papers/:id/export
// Downloads the draft as a JSON file.
func (h *PaperHandler) ExportPaper(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.paperService.Export(c.Request.Context(), id, &buf); err != nil {
		fail(c, h.log, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="paper-%s.json"`, id))
	c.Data(http.StatusOK, "application/json; charset=utf-8", buf.Bytes())
}

// ImportPaper godoc
// POST /api/v1/papers/:id/import
// Replaces the draft with an uploaded export. The API is not called.
func (h *PaperHandler) ImportPaper(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	p, err := h.paperService.Import(c.Request.Context(), id, body)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"paper": p})
}

// RenderPaper godoc
// GET /api/v1/papers/:id/render?format=html|pdf|xlsx
// Renders the draft. The output is buffered so that a render error still
// produces a JSON error response.
func (h *PaperHandler) RenderPaper(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	format, err := service.ParseFormat(c.Query("format"))
	if err != nil {
		fail(c, h.log, err)
		return
	}

	var buf bytes.Buffer
	if err := h.paperService.Render(c.Request.Context(), id, format, &buf); err != nil {
		fail(c, h.log, err)
		return
	}

	if format != service.FormatHTML {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="paper-%s.%s"`, id, format))
	}
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// GetOutline godoc
// GET /api/v1/papers/:id/outline
// Returns question labels and marks per section.
func (h *PaperHandler) GetOutline(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	outline, err := h.paperService.Outline(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"outline": outline})
}
