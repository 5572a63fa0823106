// internal/handlers/catalog.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/footycollect/footycollect-api/internal/i18n"
	"github.com/footycollect/footycollect-api/internal/models"
	"github.com/footycollect/footycollect-api/internal/services"
	"github.com/footycollect/footycollect-api/internal/utils"
)

const defaultPopularLimit = 10

func popularLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPopularLimit)))
	if err != nil || limit < 1 {
		return defaultPopularLimit
	}
	return limit
}

type ColorHandler struct {
	colors services.ColorService
}

func NewColorHandler(colors services.ColorService) *ColorHandler {
	return &ColorHandler{colors: colors}
}

// GET /colors?q=
func (h *ColorHandler) GetColors(c *gin.Context) {
	var (
		colors []models.Color
		err    error
	)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		colors, err = h.colors.SearchColors(c.Request.Context(), q)
	} else {
		colors, err = h.colors.GetAllColors(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"colors": colors})
}

// GET /colors/:id
func (h *ColorHandler) GetColor(c *gin.Context) {
	id, ok := paramID(c, "id", "color")
	if !ok {
		return
	}
	color, err := h.colors.GetColor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"color": color})
}

// GET /colors/popular
func (h *ColorHandler) GetPopularColors(c *gin.Context) {
	usage, err := h.colors.GetPopularColors(c.Request.Context(), popularLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"colors": usage})
}

// GET /colors/statistics
func (h *ColorHandler) GetColorStatistics(c *gin.Context) {
	stats, err := h.colors.GetColorStatistics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	usage, err := h.colors.GetColorUsageAnalytics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"statistics": stats, "usage": usage})
}

// POST /colors
func (h *ColorHandler) CreateColor(c *gin.Context) {
	var req services.CreateColorRequest
	if !bindJSON(c, &req) {
		return
	}
	color, err := h.colors.CreateCustomColor(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyColorCreated),
		"color":   color,
	})
}

// PUT /colors/:id
func (h *ColorHandler) UpdateColor(c *gin.Context) {
	id, ok := paramID(c, "id", "color")
	if !ok {
		return
	}
	var req services.UpdateColorRequest
	if !bindJSON(c, &req) {
		return
	}
	color, err := h.colors.UpdateColor(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"color": color})
}

// DELETE /colors/:id
func (h *ColorHandler) DeleteColor(c *gin.Context) {
	id, ok := paramID(c, "id", "color")
	if !ok {
		return
	}
	if err := h.colors.DeleteColor(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

type SizeHandler struct {
	sizes services.SizeService
}

func NewSizeHandler(sizes services.SizeService) *SizeHandler {
	return &SizeHandler{sizes: sizes}
}

// GET /sizes?q=&category=&item_type=
func (h *SizeHandler) GetSizes(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		sizes []models.Size
		err   error
	)
	switch {
	case c.Query("q") != "":
		sizes, err = h.sizes.SearchSizes(ctx, c.Query("q"))
	case c.Query("category") != "":
		sizes, err = h.sizes.GetSizesByCategory(ctx, models.SizeCategory(strings.ToLower(c.Query("category"))))
	case c.Query("item_type") != "":
		sizes, err = h.sizes.GetSizesForItemType(ctx, models.ItemType(strings.ToLower(c.Query("item_type"))))
	default:
		sizes, err = h.sizes.GetAllSizes(ctx)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"sizes": sizes})
}

// GET /sizes/:id
func (h *SizeHandler) GetSize(c *gin.Context) {
	id, ok := paramID(c, "id", "size")
	if !ok {
		return
	}
	size, err := h.sizes.GetSize(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"size": size})
}

// GET /sizes/popular
func (h *SizeHandler) GetPopularSizes(c *gin.Context) {
	usage, err := h.sizes.GetPopularSizes(c.Request.Context(), popularLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"sizes": usage})
}

// GET /sizes/statistics
func (h *SizeHandler) GetSizeStatistics(c *gin.Context) {
	ctx := c.Request.Context()
	stats, err := h.sizes.GetSizeStatistics(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	usage, err := h.sizes.GetSizeUsageAnalytics(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	distribution, err := h.sizes.GetSizeDistributionByCategory(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"statistics":   stats,
		"usage":        usage,
		"distribution": distribution,
	})
}

// POST /sizes
func (h *SizeHandler) CreateSize(c *gin.Context) {
	var req services.CreateSizeRequest
	if !bindJSON(c, &req) {
		return
	}
	size, err := h.sizes.CreateCustomSize(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeySizeCreated),
		"size":    size,
	})
}

// PUT /sizes/:id
func (h *SizeHandler) UpdateSize(c *gin.Context) {
	id, ok := paramID(c, "id", "size")
	if !ok {
		return
	}
	var req services.UpdateSizeRequest
	if !bindJSON(c, &req) {
		return
	}
	size, err := h.sizes.UpdateSize(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"size": size})
}

// DELETE /sizes/:id
func (h *SizeHandler) DeleteSize(c *gin.Context) {
	id, ok := paramID(c, "id", "size")
	if !ok {
		return
	}
	if err := h.sizes.DeleteSize(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.NoContentResponse(c)
}
