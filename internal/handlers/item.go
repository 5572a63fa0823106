// internal/handlers/item.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/footycollect/footycollect-api/internal/i18n"
	"github.com/footycollect/footycollect-api/internal/models"
	"github.com/footycollect/footycollect-api/internal/services"
	"github.com/footycollect/footycollect-api/internal/utils"
)

type ItemHandler struct {
	items      services.ItemService
	collection services.CollectionService
}

func NewItemHandler(items services.ItemService, collection services.CollectionService) *ItemHandler {
	return &ItemHandler{items: items, collection: collection}
}

// idQuery binds one repeatable, comma separated UUID query parameter.
type idQuery struct {
	name     string
	resource string
	dest     *[]uuid.UUID
}

// bindIDQueries fills every dest, answering 400 on the first malformed id.
func bindIDQueries(c *gin.Context, queries ...idQuery) bool {
	for _, q := range queries {
		ids, ok := idList(c, q.resource, c.QueryArray(q.name))
		if !ok {
			return false
		}
		*q.dest = ids
	}
	return true
}

// searchParams reads the listing filters shared by item and collection search.
func searchParams(c *gin.Context) (services.ItemSearchParams, bool) {
	params := services.ItemSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
		ItemType:         models.ItemType(strings.ToLower(c.Query("item_type"))),
		BrandName:        c.Query("brand"),
		ClubName:         c.Query("club"),
	}
	ok := bindIDQueries(c,
		idQuery{"brand_id", "brand", &params.BrandIDs},
		idQuery{"club_id", "club", &params.ClubIDs},
		idQuery{"season_id", "season", &params.SeasonIDs},
		idQuery{"color_id", "color", &params.ColorIDs},
		idQuery{"size_id", "size", &params.SizeIDs},
	)
	return params, ok
}

// feedParams reads the public feed filters and ordering.
func feedParams(c *gin.Context) (services.FeedParams, bool) {
	params := services.FeedParams{
		PaginationParams: utils.GetPaginationParams(c),
		Query:            c.Query("q"),
		Country:          c.Query("country"),
		Season:           c.Query("season"),
		Category:         c.Query("category"),
		Sort:             services.FeedSort(strings.ToLower(c.DefaultQuery("sort", string(services.FeedSortNewest)))),
	}
	switch strings.ToLower(c.Query("has_nameset")) {
	case "1", "true", "on", "yes":
		params.HasNameset = true
	}
	if raw := c.Query("seed"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "seed"), err.Error())
			return params, false
		}
		params.Seed = seed
	}
	ok := bindIDQueries(c,
		idQuery{"club_id", "club", &params.ClubIDs},
		idQuery{"brand_id", "brand", &params.BrandIDs},
		idQuery{"competition_id", "competition", &params.CompetitionIDs},
		idQuery{"kit_type_id", "kit type", &params.KitTypeIDs},
		idQuery{"main_color_id", "color", &params.MainColorIDs},
		idQuery{"secondary_color_id", "color", &params.SecondaryColorIDs},
	)
	return params, ok
}

// GET /items
func (h *ItemHandler) GetItems(c *gin.Context) {
	params, ok := searchParams(c)
	if !ok {
		return
	}
	items, total, err := h.items.SearchItems(c.Request.Context(), utils.GetViewerFromContext(c), c.Query("q"), params)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(items, total, params.PaginationParams))
}

// GET /items/public
func (h *ItemHandler) GetPublicItems(c *gin.Context) {
	params, ok := feedParams(c)
	if !ok {
		return
	}
	items, total, err := h.items.GetPublicItems(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(items, total, params.PaginationParams))
}

// GET /items/:id
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, ok := paramID(c, "id", "item")
	if !ok {
		return
	}
	item, err := h.items.GetItem(c.Request.Context(), utils.GetViewerFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"item": item})
}

// POST /items
func (h *ItemHandler) CreateItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.CreateItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.items.CreateItem(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyItemCreated),
		"item":    item,
	})
}

// POST /items/with-photos (multipart: data=<json>, photos=<files>)
func (h *ItemHandler) CreateItemWithPhotos(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.CreateItemRequest
	uploads, closeAll, ok := multipartRequest(c, &req)
	if !ok {
		return
	}
	defer closeAll()

	item, err := h.collection.CreateItemWithPhotos(c.Request.Context(), userID, &req, uploads)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyItemCreated),
		"item":    item,
	})
}

// PUT /items/:id
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "item")
	if !ok {
		return
	}
	var req services.UpdateItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.items.UpdateItem(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyItemUpdated),
		"item":    item,
	})
}

// PUT /items/:id/with-photos (multipart: data=<json>, photos=<files>, remove_photo_ids=<ids>)
func (h *ItemHandler) UpdateItemWithPhotos(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "item")
	if !ok {
		return
	}
	var req services.UpdateItemRequest
	uploads, closeAll, ok := multipartRequest(c, &req)
	if !ok {
		return
	}
	defer closeAll()

	remove, ok := idList(c, "photo", c.PostFormArray("remove_photo_ids"))
	if !ok {
		return
	}
	item, err := h.collection.UpdateItemWithPhotos(c.Request.Context(), userID, id, &req, uploads, remove)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyItemUpdated),
		"item":    item,
	})
}

// POST /items/:id/publish
func (h *ItemHandler) PublishItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "item")
	if !ok {
		return
	}
	item, err := h.items.PublishItem(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyItemPublished),
		"item":    item,
	})
}

// DELETE /items/:id
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "item")
	if !ok {
		return
	}
	if err := h.items.DeleteItem(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyItemDeleted)})
}

// GET /me/items
func (h *ItemHandler) GetMyItems(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemType := models.ItemType(strings.ToLower(c.Query("item_type")))
	if itemType != "" && !itemType.Valid() {
		respondError(c, services.ErrValidationFailed)
		return
	}
	items, err := h.items.GetUserItems(c.Request.Context(), userID, itemType)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"items": items, "total": len(items)})
}

// GET /me/items/recent
func (h *ItemHandler) GetRecentItems(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	items, err := h.items.GetRecentItems(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"items": items})
}

// GET /me/analytics/items
func (h *ItemHandler) GetItemAnalytics(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	analytics, err := h.items.GetItemAnalytics(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"analytics": analytics})
}

// GET /me/items/count
func (h *ItemHandler) GetMyItemCounts(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	counts, err := h.items.GetUserItemCountByType(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	utils.SuccessResponse(c, gin.H{"by_type": counts, "total": total})
}
