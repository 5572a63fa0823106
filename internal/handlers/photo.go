// internal/handlers/photo.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/footycollect/footycollect-api/internal/i18n"
	"github.com/footycollect/footycollect-api/internal/services"
	"github.com/footycollect/footycollect-api/internal/utils"
)

type PhotoHandler struct {
	photos services.PhotoService
}

func NewPhotoHandler(photos services.PhotoService) *PhotoHandler {
	return &PhotoHandler{photos: photos}
}

type photoIDsRequest struct {
	PhotoIDs []uuid.UUID `json:"photo_ids" validate:"required,min=1"`
}

func (h *PhotoHandler) bindPhotoIDs(c *gin.Context) ([]uuid.UUID, bool) {
	var req photoIDsRequest
	if !bindJSON(c, &req) {
		return nil, false
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return nil, false
	}
	return req.PhotoIDs, true
}

// upload reads the single photo of the request, answering 400 when it is absent.
func (h *PhotoHandler) upload(c *gin.Context) (services.PhotoUpload, func(), bool) {
	upload, closeAll, err := singleUpload(c)
	if err != nil {
		lang := utils.GetLangFromContext(c)
		if errors.Is(err, errNoFiles) {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyPhotoMissingFile), nil)
		} else {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "form"), err.Error())
		}
		return services.PhotoUpload{}, nil, false
	}
	return upload, closeAll, true
}

// GET /items/:id/photos
func (h *PhotoHandler) GetItemPhotos(c *gin.Context) {
	itemID, ok := paramID(c, "id", "item")
	if !ok {
		return
	}
	photos, err := h.photos.GetPhotosForItem(c.Request.Context(), utils.GetViewerFromContext(c), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"photos": photos})
}

// GET /items/:id/photos/main
func (h *PhotoHandler) GetMainPhoto(c *gin.Context) {
	itemID, ok := paramID(c, "id", "item")
	if !ok {
		return
	}
	photo, err := h.photos.GetMainPhoto(c.Request.Context(), utils.GetViewerFromContext(c), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"photo": photo})
}

// POST /items/:id/photos (multipart: photos=<file>, caption=<text>)
func (h *PhotoHandler) UploadItemPhoto(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := paramID(c, "id", "item")
	if !ok {
		return
	}
	upload, closeAll, ok := h.upload(c)
	if !ok {
		return
	}
	defer closeAll()

	photo, err := h.photos.CreatePhoto(c.Request.Context(), userID, itemID, upload)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyPhotoUploaded),
		"photo":   photo,
	})
}

// POST /photos (multipart: photos=<file>)
func (h *PhotoHandler) UploadPhoto(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	upload, closeAll, ok := h.upload(c)
	if !ok {
		return
	}
	defer closeAll()

	photo, err := h.photos.UploadUnattachedPhoto(c.Request.Context(), userID, upload)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyPhotoUploaded),
		"photo":   photo,
	})
}

// POST /items/:id/photos/attach
func (h *PhotoHandler) AttachPhotos(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := paramID(c, "id", "item")
	if !ok {
		return
	}
	ids, ok := h.bindPhotoIDs(c)
	if !ok {
		return
	}
	photos, err := h.photos.AttachPhotos(c.Request.Context(), userID, itemID, ids)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"photos": photos})
}

// PUT /items/:id/photos/order
func (h *PhotoHandler) ReorderPhotos(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := paramID(c, "id", "item")
	if !ok {
		return
	}
	ids, ok := h.bindPhotoIDs(c)
	if !ok {
		return
	}
	photos, err := h.photos.ReorderPhotos(c.Request.Context(), userID, itemID, ids)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyPhotosOrdered),
		"photos":  photos,
	})
}

// PUT /items/:id/photos/:photoId/main
func (h *PhotoHandler) SetMainPhoto(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := paramID(c, "id", "item")
	if !ok {
		return
	}
	photoID, ok := paramID(c, "photoId", "photo")
	if !ok {
		return
	}
	photo, err := h.photos.SetMainPhoto(c.Request.Context(), userID, itemID, photoID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"photo": photo})
}

// PUT /photos/:id
func (h *PhotoHandler) UpdatePhoto(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	photoID, ok := paramID(c, "id", "photo")
	if !ok {
		return
	}
	var req services.UpdatePhotoRequest
	if !bindJSON(c, &req) {
		return
	}
	photo, err := h.photos.UpdatePhoto(c.Request.Context(), userID, photoID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"photo": photo})
}

// DELETE /photos/:id
func (h *PhotoHandler) DeletePhoto(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	photoID, ok := paramID(c, "id", "photo")
	if !ok {
		return
	}
	if err := h.photos.DeletePhoto(c.Request.Context(), userID, photoID); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyPhotoDeleted)})
}

// GET /me/analytics/photos
func (h *PhotoHandler) GetPhotoAnalytics(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	analytics, err := h.photos.GetPhotoAnalytics(c.Request.Context(), &userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"analytics": analytics})
}
