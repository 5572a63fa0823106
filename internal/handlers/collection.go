// internal/handlers/collection.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/footycollect/footycollect-api/internal/i18n"
	"github.com/footycollect/footycollect-api/internal/services"
	"github.com/footycollect/footycollect-api/internal/utils"
)

type CollectionHandler struct {
	collection services.CollectionService
}

func NewCollectionHandler(collection services.CollectionService) *CollectionHandler {
	return &CollectionHandler{collection: collection}
}

// GET /collection/search
func (h *CollectionHandler) Search(c *gin.Context) {
	params, ok := searchParams(c)
	if !ok {
		return
	}
	result, err := h.collection.SearchCollection(c.Request.Context(), utils.GetViewerFromContext(c), c.Query("q"), params)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, result)
}

// GET /collection/statistics
func (h *CollectionHandler) GetStatistics(c *gin.Context) {
	stats, err := h.collection.GetCollectionStatistics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"statistics": stats})
}

// GET /collection/form-data
func (h *CollectionHandler) GetFormData(c *gin.Context) {
	data, err := h.collection.GetFormData(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, data)
}

// POST /collection/initialize
func (h *CollectionHandler) Initialize(c *gin.Context) {
	result, err := h.collection.InitializeCollectionData(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyCollectionInitialized),
		"result":  result,
	})
}

// GET /me/dashboard
func (h *CollectionHandler) GetDashboard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	data, err := h.collection.GetCollectionDashboardData(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, data)
}

// GET /me/analytics/collection
func (h *CollectionHandler) GetAnalytics(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	analytics, err := h.collection.GetCollectionAnalytics(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"analytics": analytics})
}

// GET /me/summary
func (h *CollectionHandler) GetSummary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	summary, err := h.collection.GetUserCollectionSummary(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"summary": summary})
}
