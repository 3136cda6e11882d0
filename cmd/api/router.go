package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	authDelivery "github.com/vraj-isotiya/topcitylight/internal/auth/delivery"
	mailDelivery "github.com/vraj-isotiya/topcitylight/internal/mail/delivery"
	mailUsecase "github.com/vraj-isotiya/topcitylight/internal/mail/usecase"
	"github.com/vraj-isotiya/topcitylight/pkg/config"
)

func SetupRoutes(r *gin.Engine, mailUc mailUsecase.MailUsecase, syncUc mailUsecase.SyncUsecase, cfg *config.Config) {
	mailHandler := mailDelivery.NewMailHandler(mailUc, syncUc)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Mail routes (protected)
		mail := api.Group("/mail")
		mail.Use(authDelivery.AuthMiddleware(cfg.JWTSecret))
		{
			mail.POST("/send", mailHandler.SendEmail)
			mail.POST("/reply", mailHandler.ReplyToEmail)
			mail.POST("/sync", mailDelivery.SyncRateLimiter(10*time.Second, 1), mailHandler.SyncReplies)

			mail.GET("", mailHandler.ListThreads)
			mail.GET("/thread/:customerId", mailHandler.GetCustomerThreads)
			mail.GET("/stats", mailHandler.GetStats)

			mail.POST("/settings", mailHandler.CreateProviderSetting)
			mail.GET("/settings", mailHandler.ListProviderSettings)
		}
	}
}
