package main

import (
	"os"
	"time"

	"inventory-app/config"
	"inventory-app/database"
	routes "inventory-app/internal/app/http"
	"inventory-app/internal/domain/subscriptions"
	"inventory-app/internal/domain/users"
	"inventory-app/internal/infra/lengopay"
	"inventory-app/internal/notify"
	subscriptionsvc "inventory-app/internal/service/subscription"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	database.InitDB()

	subRepo := subscriptions.NewRepository(database.DB)
	userDir := users.NewDirectory(database.DB)
	gateway := lengopay.NewClient(config.LENGOPAY_API_KEY, config.LENGOPAY_MERCHANT_ID, config.LENGOPAY_BASE_URL)
	mailer := notify.NewMailer(config.SMTP_HOST, config.SMTP_PORT, config.SMTP_FROM, config.SMTP_PASSWORD)

	svc := subscriptionsvc.New(
		subRepo,
		userDir,
		gateway,
		mailer,
		config.SUBSCRIPTION_AMOUNT,
		config.SUBSCRIPTION_CURRENCY,
		config.APP_URL,
	)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{os.Getenv("CORS_ORIGIN")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, svc, subRepo)

	r.Run(":" + config.PORT)
}
