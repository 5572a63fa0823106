// internal/handlers/kit.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/footycollect/footycollect-api/internal/i18n"
	"github.com/footycollect/footycollect-api/internal/services"
	"github.com/footycollect/footycollect-api/internal/utils"
)

type KitHandler struct {
	kits services.ItemFKAPIService
}

func NewKitHandler(kits services.ItemFKAPIService) *KitHandler {
	return &KitHandler{kits: kits}
}

type createFromKitRequest struct {
	KitID    int                        `json:"kit_id" validate:"required,min=1"`
	PhotoIDs []uuid.UUID                `json:"photo_ids,omitempty"`
	Item     services.CreateItemRequest `json:"item" validate:"-"`
}

const minKeywordLength = 2

// keyword returns the search keyword, answering 400 when it is too short.
func keyword(c *gin.Context) (string, bool) {
	kw := strings.TrimSpace(c.Query("keyword"))
	if len(kw) < minKeywordLength {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyKitSearchTooShort), nil)
		return "", false
	}
	return kw, true
}

// GET /kits/search?keyword=
func (h *KitHandler) SearchKits(c *gin.Context) {
	kw, ok := keyword(c)
	if !ok {
		return
	}
	kits, err := h.kits.SearchKits(c.Request.Context(), kw)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"kits": kits})
}

// GET /kits/clubs?keyword=
func (h *KitHandler) SearchClubs(c *gin.Context) {
	kw, ok := keyword(c)
	if !ok {
		return
	}
	clubs, err := h.kits.SearchClubs(c.Request.Context(), kw)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"clubs": clubs})
}

// GET /kits/:kitId
func (h *KitHandler) GetKit(c *gin.Context) {
	kitID, err := strconv.Atoi(c.Param("kitId"))
	if err != nil || kitID < 1 {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalidID, "kit"), nil)
		return
	}
	kit, err := h.kits.GetKit(c.Request.Context(), kitID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"kit": kit})
}

// POST /kits/items
func (h *KitHandler) CreateItemFromKit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req createFromKitRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	item, err := h.kits.ProcessItemCreation(c.Request.Context(), userID, &req.Item, req.KitID, req.PhotoIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyItemCreated),
		"item":    item,
	})
}
