// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/footycollect/footycollect-api/internal/services"
	"github.com/footycollect/footycollect-api/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
	items       services.ItemService
}

func NewUserHandler(userService *services.UserService, items services.ItemService) *UserHandler {
	return &UserHandler{
		userService: userService,
		items:       items,
	}
}

// GET /me
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	total, err := h.items.CountItems(c.Request.Context(), &userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"user": user, "item_count": total})
}
