package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	custrepo "github.com/vraj-isotiya/topcitylight/internal/customer/repository"
	maildomain "github.com/vraj-isotiya/topcitylight/internal/mail/domain"
	maildto "github.com/vraj-isotiya/topcitylight/internal/mail/dto"
	"github.com/vraj-isotiya/topcitylight/internal/mail/usecase"
	"github.com/vraj-isotiya/topcitylight/pkg/mailer"
)

type MailHandler struct {
	mailUsecase usecase.MailUsecase
	syncUsecase usecase.SyncUsecase
}

func NewMailHandler(mailUsecase usecase.MailUsecase, syncUsecase usecase.SyncUsecase) *MailHandler {
	return &MailHandler{
		mailUsecase: mailUsecase,
		syncUsecase: syncUsecase,
	}
}

func (h *MailHandler) SendEmail(c *gin.Context) {
	var req maildto.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	thread, err := h.mailUsecase.SendEmail(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, thread)
}

func (h *MailHandler) ReplyToEmail(c *gin.Context) {
	var req maildto.ReplyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.mailUsecase.ReplyToEmail(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// SyncReplies triggers one inbound sync pass. Failures come back with a
// normalized code alongside the message so the client can react to
// AUTH_FAILED differently from TIMEOUT.
func (h *MailHandler) SyncReplies(c *gin.Context) {
	summary, err := h.syncUsecase.SyncReplies(c.Request.Context())
	if err != nil {
		var syncErr *maildomain.SyncError
		if errors.As(err, &syncErr) {
			status := http.StatusBadGateway
			if syncErr.Code == maildomain.SyncNoActiveProvider {
				status = http.StatusBadRequest
			}
			c.JSON(status, maildto.SyncErrorResponse{Code: string(syncErr.Code), Message: syncErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *MailHandler) GetCustomerThreads(c *gin.Context) {
	customerID := c.Param("customerId")

	threads, err := h.mailUsecase.GetThreadsForCustomer(customerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"threads": threads})
}

func (h *MailHandler) ListThreads(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 10)

	resp, err := h.mailUsecase.ListThreads(c.Query("customer_id"), page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MailHandler) GetStats(c *gin.Context) {
	stats, err := h.mailUsecase.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *MailHandler) CreateProviderSetting(c *gin.Context) {
	var req maildto.CreateProviderSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	setting, err := h.mailUsecase.CreateProviderSetting(&req, c.GetString("userID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, setting)
}

func (h *MailHandler) ListProviderSettings(c *gin.Context) {
	settings, err := h.mailUsecase.ListProviderSettings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *MailHandler) respondError(c *gin.Context, err error) {
	var sendErr *mailer.SendError
	switch {
	case errors.Is(err, custrepo.ErrCustomerNotFound), errors.Is(err, maildomain.ErrThreadNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrNoActiveProvider), errors.Is(err, usecase.ErrUnknownProviderType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &sendErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
