package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-paper/internal/form"
	"github.com/stemsi/exstem-paper/internal/logger"
	"github.com/stemsi/exstem-paper/internal/response"
	"github.com/stemsi/exstem-paper/internal/service"
)

// QuestionHandler handles question CRUD, form validation and the question
// type catalogue.
type QuestionHandler struct {
	paperService *service.PaperService
	typeService  *service.QuestionTypeService
	log          zerolog.Logger
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(paperService *service.PaperService, typeService *service.QuestionTypeService, log zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		paperService: paperService,
		typeService:  typeService,
		log:          logger.Component(log, "question_handler"),
	}
}

// ListQuestionTypes godoc
// GET /api/v1/question-types
func (h *QuestionHandler) ListQuestionTypes(c *gin.Context) {
	types, err := h.typeService.List(c.Request.Context())
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question_types": types})
}

// ValidateQuestion godoc
// POST /api/v1/questions/validate
// Checks a form without saving it and returns the payload it would send.
func (h *QuestionHandler) ValidateQuestion(c *gin.Context) {
	f, ok := bindForm(c)
	if !ok {
		return
	}

	checked, err := service.ValidateForm(f)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payload": checked.Payload, "marks_overridden": checked.MarksOverridden})
}

// CreateQuestion godoc
// POST /api/v1/papers/:id/groups/:group_id/questions
// Validates the form against the group's type and creates the question.
// marks_overridden reports that parent marks were replaced with 0 because
// sub-questions carry them.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	paperID, ok := paramID(c, "id")
	if !ok {
		return
	}
	groupID, ok := paramID(c, "group_id")
	if !ok {
		return
	}
	f, ok := bindForm(c)
	if !ok {
		return
	}

	res, err := h.paperService.CreateQuestion(c.Request.Context(), paperID, groupID, f)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question": res.Question, "marks_overridden": res.MarksOverridden})
}

// UpdateQuestion godoc
// PUT /api/v1/papers/:id/questions/:question_id
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	paperID, ok := paramID(c, "id")
	if !ok {
		return
	}
	questionID, ok := paramID(c, "question_id")
	if !ok {
		return
	}
	f, ok := bindForm(c)
	if !ok {
		return
	}

	res, err := h.paperService.UpdateQuestion(c.Request.Context(), paperID, questionID, f)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": res.Question, "marks_overridden": res.MarksOverridden})
}

// DeleteQuestion godoc
// DELETE /api/v1/papers/:id/questions/:question_id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	paperID, ok := paramID(c, "id")
	if !ok {
		return
	}
	questionID, ok := paramID(c, "question_id")
	if !ok {
		return
	}

	if err := h.paperService.DeleteQuestion(c.Request.Context(), paperID, questionID); err != nil {
		fail(c, h.log, err)
		return
	}
	response.NoContent(c)
}

// bindForm decodes the request body into a typed form.
func bindForm(c *gin.Context) (form.Form, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return nil, false
	}
	f, err := form.Decode(raw)
	if err != nil {
		if errors.Is(err, form.ErrUnknownType) {
			response.Fail(c, http.StatusBadRequest, response.ErrUnknownType)
		} else {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		}
		return nil, false
	}
	return f, true
}
