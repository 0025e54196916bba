package users

import (
	"net/http"
	"time"

	"inventory-app/database"
	"inventory-app/internal/app/http/middleware"
	domain "inventory-app/internal/domain/users"
	subscriptionsvc "inventory-app/internal/service/subscription"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	subs *subscriptionsvc.Service
}

func NewHandler(subs *subscriptionsvc.Service) *Handler {
	return &Handler{subs: subs}
}

// Me returns the caller's profile together with the derived subscription
// state.
func (h *Handler) Me(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)

	var user domain.User
	if err := database.DB.Where("id = ?", p.UserID).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	now := time.Now()
	sub, err := h.subs.CurrentSubscription(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	out := gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,

		"has_active_subscription": false,
	}
	if sub != nil {
		out["has_active_subscription"] = sub.EffectivelyActive(now)
		out["subscription_status"] = sub.Status
		out["subscription_end"] = sub.EndDate
	}

	c.JSON(http.StatusOK, out)
}
