package admin

import (
	"net/http"
	"time"

	"inventory-app/database"
	"inventory-app/internal/domain/users"
	subscriptionsvc "inventory-app/internal/service/subscription"
	"inventory-app/logging"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	subs *subscriptionsvc.Service
}

func NewHandler(subs *subscriptionsvc.Service) *Handler {
	return &Handler{subs: subs}
}

type adminUser struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) ListUsers(c *gin.Context) {
	var list []users.User
	if err := database.DB.Order("id").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	out := make([]adminUser, 0, len(list))
	for _, u := range list {
		out = append(out, adminUser{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// PromoteUser grants the admin role to an existing user.
func (h *Handler) PromoteUser(c *gin.Context) {
	res := database.DB.Model(&users.User{}).
		Where("id = ?", c.Param("id")).
		Update("role", users.RoleAdmin)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to promote user"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	logging.Logger.WithField("user_id", c.Param("id")).Info("User promoted to admin")
	c.JSON(http.StatusOK, gin.H{"message": "User promoted to admin"})
}

func (h *Handler) SubscriptionStats(c *gin.Context) {
	stats, err := h.subs.Stats(time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RunExpireSweep transitions every stale-active subscription to expired.
// Invoked by an external scheduler; safe to run repeatedly.
func (h *Handler) RunExpireSweep(c *gin.Context) {
	count, err := h.subs.SweepExpired(time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sweep failed"})
		return
	}

	logging.Logger.WithFields(logrus.Fields{"expired": count}).Info("Expiry sweep completed")
	c.JSON(http.StatusOK, gin.H{"expired": count})
}

// RunSendReminders emails subscribers whose window closes within the
// reminder window. Reminders re-send on every run while in the window.
func (h *Handler) RunSendReminders(c *gin.Context) {
	count, err := h.subs.SendReminders(time.Now(), subscriptionsvc.ReminderWindow)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reminder job failed"})
		return
	}

	logging.Logger.WithFields(logrus.Fields{"reminded": count}).Info("Reminder job completed")
	c.JSON(http.StatusOK, gin.H{"reminded": count})
}
