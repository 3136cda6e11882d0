package dto

import (
	maildomain "github.com/vraj-isotiya/topcitylight/internal/mail/domain"
)

// SendEmailRequest starts a new email thread with a customer.
type SendEmailRequest struct {
	SenderID   string `json:"sender_id"`
	CustomerID string `json:"customer_id" binding:"required"`
	Subject    string `json:"subject" binding:"required"`
	Body       string `json:"body" binding:"required"`
}

// ReplyEmailRequest sends a follow-up within an existing thread.
type ReplyEmailRequest struct {
	ThreadID  string `json:"thread_id" binding:"required"`
	ReplyBody string `json:"reply_body" binding:"required"`
}

// CreateProviderSettingRequest configures the outbound/inbound mail provider.
type CreateProviderSettingRequest struct {
	ProviderType string `json:"provider_type" binding:"required"`

	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"smtp_password"`

	IMAPHost     string `json:"imap_host"`
	IMAPPort     int    `json:"imap_port"`
	IMAPUsername string `json:"imap_username"`
	IMAPPassword string `json:"imap_password"`

	APIKey    string `json:"api_key"`
	FromEmail string `json:"from_email" binding:"required,email"`
	FromName  string `json:"from_name"`
	IsActive  *bool  `json:"is_active"`
}

// PagedThreadsResponse is the paged thread listing envelope.
type PagedThreadsResponse struct {
	Threads []*maildomain.EmailThread `json:"threads"`
	Total   int64                     `json:"total"`
	Page    int                       `json:"page"`
	Limit   int                       `json:"limit"`
}

// ErrorResponse is the common error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SyncErrorResponse carries the normalized sync failure to the client.
type SyncErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
