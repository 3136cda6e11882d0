package usecase

import (
	"context"
	"errors"
	"time"

	maildomain "github.com/vraj-isotiya/topcitylight/internal/mail/domain"
	"github.com/vraj-isotiya/topcitylight/internal/mail/dto"
	"github.com/vraj-isotiya/topcitylight/pkg/mailer"
)

var (
	// ErrNoActiveProvider is returned when no mail provider setting is active.
	ErrNoActiveProvider = errors.New("no active email provider configured")

	// ErrUnknownProviderType rejects provider settings outside the supported
	// set (gmail, sendgrid, mailchimp, private).
	ErrUnknownProviderType = errors.New("unknown provider type")
)

// MailUsecase implements outbound mail and thread queries.
type MailUsecase interface {
	SendEmail(ctx context.Context, req *dto.SendEmailRequest) (*maildomain.EmailThread, error)
	ReplyToEmail(ctx context.Context, req *dto.ReplyEmailRequest) (*maildomain.EmailReply, error)
	GetThreadsForCustomer(customerID string) ([]*maildomain.EmailThread, error)
	ListThreads(customerID string, page, limit int) (*dto.PagedThreadsResponse, error)
	GetStats() (*maildomain.EmailStats, error)
	CreateProviderSetting(req *dto.CreateProviderSettingRequest, updatedBy string) (*maildomain.EmailProviderSetting, error)
	ListProviderSettings() ([]*maildomain.EmailProviderSetting, error)
}

// SyncUsecase runs one inbound sync pass over the active mailbox.
type SyncUsecase interface {
	SyncReplies(ctx context.Context) (*maildomain.SyncSummary, error)
}

// DispatcherFactory builds the outbound transport for a provider setting.
// Indirection point so tests can substitute a fake dispatcher.
type DispatcherFactory func(setting *maildomain.EmailProviderSetting, connectTimeout time.Duration) (mailer.Dispatcher, error)

// MessageFetcher pulls inbound messages above the UID watermark.
type MessageFetcher interface {
	FetchNewMessages(ctx context.Context, setting *maildomain.EmailProviderSetting, lastUID uint32) ([]maildomain.InboundMessage, error)
}

// BodyCleaner strips quoted history and markup from an inbound body.
type BodyCleaner func(raw string) string
