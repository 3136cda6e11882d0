package api

import (
	"github.com/gin-gonic/gin"

	mailUsecasePkg "github.com/vraj-isotiya/topcitylight/internal/mail/usecase"
	"github.com/vraj-isotiya/topcitylight/pkg/config"
)

type Handler struct {
	mailUsecase mailUsecasePkg.MailUsecase
	syncUsecase mailUsecasePkg.SyncUsecase
	config      *config.Config
}

func NewHandler(mailUc mailUsecasePkg.MailUsecase, syncUc mailUsecasePkg.SyncUsecase, cfg *config.Config) *Handler {
	return &Handler{
		mailUsecase: mailUc,
		syncUsecase: syncUc,
		config:      cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.mailUsecase, h.syncUsecase, h.config)

	return r.Run(addr)
}
