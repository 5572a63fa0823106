// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/footycollect/footycollect-api/internal/fkapi"
	"github.com/footycollect/footycollect-api/internal/i18n"
	"github.com/footycollect/footycollect-api/internal/services"
	"github.com/footycollect/footycollect-api/internal/utils"
)

type errorMapping struct {
	target error
	status int
	code   string
	key    string
}

// Checked in order, so specific errors come before the kind they wrap.
var errorMappings = []errorMapping{
	{services.ErrPhotoLimit, http.StatusBadRequest, "PHOTO_LIMIT", i18n.KeyPhotoLimit},
	{services.ErrUnsupportedImage, http.StatusUnsupportedMediaType, "UNSUPPORTED_IMAGE", i18n.KeyPhotoUnsupported},
	{services.ErrImageTooLarge, http.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE", i18n.KeyPhotoTooLarge},
	{services.ErrValidationFailed, http.StatusBadRequest, "VALIDATION_ERROR", i18n.KeyValidationFailed},

	{services.ErrForbiddenOperation, http.StatusForbidden, "FORBIDDEN", i18n.KeyOperationNotAllowed},

	{services.ErrItemNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyItemNotFound},
	{services.ErrPhotoNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyPhotoNotFound},
	{services.ErrColorNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyColorNotFound},
	{services.ErrSizeNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeySizeNotFound},
	{services.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyUserNotFound},
	{services.ErrNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyResourceNotFound},

	{services.ErrColorExists, http.StatusConflict, "CONFLICT", i18n.KeyColorExists},
	{services.ErrSizeExists, http.StatusConflict, "CONFLICT", i18n.KeySizeExists},
	{services.ErrColorInUse, http.StatusConflict, "CONFLICT", i18n.KeyColorInUse},
	{services.ErrSizeInUse, http.StatusConflict, "CONFLICT", i18n.KeySizeInUse},
	{services.ErrPhotoNotOnItem, http.StatusConflict, "CONFLICT", i18n.KeyPhotoNotOnItem},
	{services.ErrConflict, http.StatusConflict, "CONFLICT", i18n.KeyConflict},

	{fkapi.ErrUnavailable, http.StatusServiceUnavailable, "EXTERNAL_UNAVAILABLE", i18n.KeyExternalUnavailable},
}

// respondError writes the envelope for err. Unknown errors are logged and
// reported as 500 without their message.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", i18n.T(lang, i18n.KeyValidationFailed), verr.Fields)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			utils.ErrorResponse(c, m.status, m.code, i18n.T(lang, m.key), nil)
			return
		}
	}

	_ = c.Error(err)
	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("Unhandled service error")
	utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyInternalError))
}

// paramID parses a UUID path parameter, writing a 400 when it is malformed.
func paramID(c *gin.Context, name, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalidID, resource), nil)
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated user set by AuthRequired.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthRequired))
	}
	return userID, ok
}

// bindJSON decodes the body, writing a 400 on malformed input.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	return true
}

// parseIDs parses a comma separated list of UUIDs. Empty entries are skipped.
func parseIDs(values []string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// idList is parseIDs answering 400 when an entry is malformed.
func idList(c *gin.Context, resource string, values []string) ([]uuid.UUID, bool) {
	ids, err := parseIDs(values)
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalidID, resource), err.Error())
		return nil, false
	}
	return ids, true
}
