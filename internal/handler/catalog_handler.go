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

// CatalogHandler forwards class, subject and study material CRUD to the API.
// Each method returns a handler bound to one resource.
type CatalogHandler struct {
	catalogService *service.CatalogService
	log            zerolog.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		log:            logger.Component(log, "catalog_handler"),
	}
}

// request returns an empty, bindable request for res.
func request(res model.Resource) any {
	switch res {
	case model.ResourceClasses:
		return &model.ClassRequest{}
	case model.ResourceSubjects:
		return &model.SubjectRequest{}
	case model.ResourceStudyMaterials:
		return &model.StudyMaterialRequest{}
	}
	return nil
}

// List godoc
// GET /api/v1/{classes|subjects|study-materials}
func (h *CatalogHandler) List(res model.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := h.catalogService.List(c.Request.Context(), res)
		if err != nil {
			fail(c, h.log, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"items": items})
	}
}

// Create godoc
// POST /api/v1/{classes|subjects|study-materials}
func (h *CatalogHandler) Create(res model.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := request(res)
		if req == nil {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		if fields := validator.Bind(c, req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}

		item, err := h.catalogService.Create(c.Request.Context(), res, req)
		if err != nil {
			fail(c, h.log, err)
			return
		}
		response.Success(c, http.StatusCreated, gin.H{"item": item})
	}
}

// Update godoc
// PUT /api/v1/{classes|subjects|study-materials}/:id
func (h *CatalogHandler) Update(res model.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		req := request(res)
		if req == nil {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		if fields := validator.Bind(c, req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}

		item, err := h.catalogService.Update(c.Request.Context(), res, id, req)
		if err != nil {
			fail(c, h.log, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"item": item})
	}
}

// Delete godoc
// DELETE /api/v1/{classes|subjects|study-materials}/:id
func (h *CatalogHandler) Delete(res model.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		if err := h.catalogService.Delete(c.Request.Context(), res, id); err != nil {
			fail(c, h.log, err)
			return
		}
		response.NoContent(c)
	}
}
