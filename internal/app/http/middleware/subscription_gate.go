package middleware

import (
	"errors"
	"net/http"
	"time"

	"inventory-app/internal/domain/access"
	"inventory-app/internal/domain/subscriptions"
	"inventory-app/internal/domain/users"
	"inventory-app/logging"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SubscriptionGate blocks non-exempt, non-admin traffic unless the
// principal holds an effectively active subscription. It runs before the
// target handler and short-circuits with a redirect to the status page, so
// no handler side effects occur for a denied request.
func SubscriptionGate(repo *subscriptions.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		path := c.Request.URL.Path
		now := time.Now()

		var sub *subscriptions.Subscription
		if p.Authenticated && p.Role != users.RoleAdmin && !access.ExemptPath(path) {
			found, err := repo.FindCurrentByUser(p.UserID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Subscription check failed"})
				return
			}
			sub = found
		}

		if access.Decide(p, path, sub, now) == access.RedirectToStatus {
			logging.Logger.WithFields(logrus.Fields{
				"user_id": p.UserID,
				"path":    path,
			}).Info("Request gated: no active subscription")
			c.Redirect(http.StatusSeeOther, access.StatusPath)
			c.Abort()
			return
		}

		c.Next()
	}
}
