package handler

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-paper/internal/client"
	"github.com/stemsi/exstem-paper/internal/editor"
	"github.com/stemsi/exstem-paper/internal/form"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/paper"
	"github.com/stemsi/exstem-paper/internal/render"
	"github.com/stemsi/exstem-paper/internal/repository"
	"github.com/stemsi/exstem-paper/internal/response"
	"github.com/stemsi/exstem-paper/internal/service"
	"github.com/stemsi/exstem-paper/internal/validator"
)

const maxIDLength = 64

// fail maps a service error onto the response envelope. Unknown errors are
// logged and reported as INTERNAL_ERROR.
func fail(c *gin.Context, log zerolog.Logger, err error) {
	var (
		verr   *service.ValidationError
		fields validator.FieldErrors
		apiErr *client.APIError
	)

	switch {
	case errors.As(err, &verr):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, verr.Fields)
	case errors.As(err, &fields):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
	case errors.Is(err, paper.ErrEmptyTitle):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"title": "Section title is required."})

	case errors.Is(err, client.ErrSessionExpired):
		response.Fail(c, http.StatusUnauthorized, response.ErrSessionExpired)
	case errors.As(err, &apiErr):
		log.Warn().
			Str("method", apiErr.Method).
			Str("path", apiErr.Path).
			Int("status", apiErr.Status).
			Msg("API rejected request")
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrUpstream, apiErr.Message)
	case errors.Is(err, client.ErrUnavailable):
		log.Warn().Err(err).Msg("API unreachable")
		if timedOut(err) {
			response.FailWithMessage(c, http.StatusGatewayTimeout, response.ErrUpstream, "The exam API did not answer in time.")
			return
		}
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrUpstream, "The exam API could not be reached.")

	case errors.Is(err, repository.ErrDraftNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrDraftNotFound)
	case errors.Is(err, paper.ErrSectionNotFound),
		errors.Is(err, paper.ErrGroupNotFound),
		errors.Is(err, paper.ErrQuestionNotFound),
		errors.Is(err, service.ErrUnknownResource):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)

	case errors.Is(err, paper.ErrTypeChange):
		response.Fail(c, http.StatusConflict, response.ErrTypeChange)
	case errors.Is(err, editor.ErrTypeMismatch):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrInvalidPayload, "The question type does not match its group.")
	case errors.Is(err, form.ErrUnknownType):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownType)
	case errors.Is(err, paper.ErrUnknownAction):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownAction)
	case errors.Is(err, paper.ErrIndexOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrIndexOutOfRange)
	case errors.Is(err, paper.ErrMalformedImport):
		response.Fail(c, http.StatusBadRequest, response.ErrMalformedImport)
	case errors.Is(err, service.ErrUnknownFormat):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownFormat)
	case errors.Is(err, service.ErrActionNotAllowed):
		response.Fail(c, http.StatusBadRequest, response.ErrActionNotAllowed)
	case errors.Is(err, service.ErrNothingToUndo):
		response.Fail(c, http.StatusConflict, response.ErrNothingToUndo)
	case errors.Is(err, service.ErrLocalEntity):
		response.Fail(c, http.StatusConflict, response.ErrDraftNotSynced)
	case errors.Is(err, service.ErrTemplateIncomplete):
		log.Warn().Err(err).Msg("Template instantiation rolled back")
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrUpstream, "The paper could not be created from the template.")
	case errors.Is(err, render.ErrNoFont):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrPDFUnavailable)

	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func timedOut(err error) bool {
	var netErr net.Error
	return errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout())
}

// paramID reads a path ID, answering 400 when it is unusable.
func paramID(c *gin.Context, name string) (model.ID, bool) {
	id := c.Param(name)
	if id == "" || len(id) > maxIDLength {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return "", false
	}
	return model.ID(id), true
}
