package http

import (
	adminapi "inventory-app/internal/api/admin"
	authapi "inventory-app/internal/api/auth"
	categoriesapi "inventory-app/internal/api/categories"
	dashboardapi "inventory-app/internal/api/dashboard"
	productsapi "inventory-app/internal/api/products"
	subscriptionapi "inventory-app/internal/api/subscription"
	usersapi "inventory-app/internal/api/users"
	"inventory-app/internal/app/http/middleware"
	"inventory-app/internal/domain/subscriptions"
	"inventory-app/internal/domain/users"
	subscriptionsvc "inventory-app/internal/service/subscription"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, svc *subscriptionsvc.Service, subRepo *subscriptions.Repository) {
	subH := subscriptionapi.NewHandler(svc)
	adminH := adminapi.NewHandler(svc)
	usersH := usersapi.NewHandler(svc)

	// Identity first, then the paywall gate: the gate sees every request
	// and short-circuits before any gated handler runs.
	r.Use(middleware.Identify())
	r.Use(middleware.SubscriptionGate(subRepo))

	// Gateway callback: server-to-server, no auth, no sanitizer.
	r.POST("/subscription/callback", subH.Callback)

	// Return-from-gateway landing page. The gateway sends the user's browser
	// here with a cross-site redirect that carries no bearer token, so it
	// cannot sit behind RequireAuth; the handler never needs the principal.
	r.GET("/subscription/success", subH.Success)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeInput())
	public.POST("/register", authapi.Register)
	public.POST("/login", authapi.Login)

	// Authenticated, exempt from the gate: a locked-out user must still be
	// able to see their status and pay.
	auth := r.Group("/")
	auth.Use(middleware.RequireAuth())
	auth.GET("/me", usersH.Me)
	auth.GET("/subscription/status", subH.Status)
	auth.POST("/subscription/pay", subH.Pay)

	// Gated application surface.
	app := r.Group("/")
	app.Use(middleware.RequireAuth(), middleware.SanitizeInput())
	app.GET("/dashboard", dashboardapi.Overview)

	app.GET("/products", productsapi.ListProducts)
	app.POST("/products", productsapi.CreateProduct)
	app.GET("/products/:id", productsapi.GetProduct)
	app.PUT("/products/:id", productsapi.UpdateProduct)
	app.DELETE("/products/:id", productsapi.DeleteProduct)

	app.GET("/categories", categoriesapi.ListCategories)
	app.POST("/categories", categoriesapi.CreateCategory)
	app.DELETE("/categories/:id", categoriesapi.DeleteCategory)

	// Admin routes, including the scheduled-job endpoints an external cron
	// hits.
	admin := r.Group("/admin")
	admin.Use(middleware.RequireRole(users.RoleAdmin))
	admin.GET("/users", adminH.ListUsers)
	admin.POST("/users/:id/promote", adminH.PromoteUser)
	admin.GET("/subscriptions/stats", adminH.SubscriptionStats)
	admin.POST("/jobs/expire-subscriptions", adminH.RunExpireSweep)
	admin.POST("/jobs/send-reminders", adminH.RunSendReminders)
}
