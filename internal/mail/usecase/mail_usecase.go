package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	custrepo "github.com/vraj-isotiya/topcitylight/internal/customer/repository"
	maildomain "github.com/vraj-isotiya/topcitylight/internal/mail/domain"
	"github.com/vraj-isotiya/topcitylight/internal/mail/dto"
	mailrepo "github.com/vraj-isotiya/topcitylight/internal/mail/repository"
	"github.com/vraj-isotiya/topcitylight/pkg/cleaner"
	"github.com/vraj-isotiya/topcitylight/pkg/mailer"
)

type mailUsecase struct {
	threadRepo   mailrepo.ThreadRepository
	settingRepo  mailrepo.ProviderSettingRepository
	customerRepo custrepo.CustomerRepository
	userRepo     custrepo.UserRepository

	newDispatcher  DispatcherFactory
	connectTimeout time.Duration
}

// NewMailUsecase creates a new instance of mailUsecase
func NewMailUsecase(
	threadRepo mailrepo.ThreadRepository,
	settingRepo mailrepo.ProviderSettingRepository,
	customerRepo custrepo.CustomerRepository,
	userRepo custrepo.UserRepository,
	newDispatcher DispatcherFactory,
	connectTimeout time.Duration,
) MailUsecase {
	return &mailUsecase{
		threadRepo:     threadRepo,
		settingRepo:    settingRepo,
		customerRepo:   customerRepo,
		userRepo:       userRepo,
		newDispatcher:  newDispatcher,
		connectTimeout: connectTimeout,
	}
}

// SendEmail dispatches a new email to the customer and records the thread.
// The thread row is only written after the provider accepts the message, so a
// failed send leaves no trace.
func (u *mailUsecase) SendEmail(ctx context.Context, req *dto.SendEmailRequest) (*maildomain.EmailThread, error) {
	customer, err := u.customerRepo.FindByID(req.CustomerID)
	if err != nil {
		return nil, err
	}

	setting, err := u.activeSetting()
	if err != nil {
		return nil, err
	}
	dispatcher, err := u.newDispatcher(setting, u.connectTimeout)
	if err != nil {
		return nil, err
	}

	sentBy := req.SenderID
	if req.SenderID != "" {
		user, err := u.userRepo.FindByID(req.SenderID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up sender: %w", err)
		}
		if user != nil {
			sentBy = user.FullName
		}
	}

	body := cleaner.SanitizeHTML(req.Body)
	messageID, err := dispatcher.Send(ctx, outbound(customer.Email, customer.Name, req.Subject, body, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	thread := &maildomain.EmailThread{
		CustomerID: customer.ID,
		Subject:    req.Subject,
		Body:       body,
		SentBy:     sentBy,
		MessageID:  messageID,
		Status:     maildomain.ThreadStatusSent,
	}
	if err := u.threadRepo.CreateThread(thread); err != nil {
		return nil, fmt.Errorf("failed to save thread: %w", err)
	}

	log.Printf("[Mail] Sent email to %s (thread %s, message %s)", customer.Email, thread.ID, messageID)
	return thread, nil
}

// ReplyToEmail sends a follow-up inside an existing thread. The outgoing
// message carries In-Reply-To pointing at the thread's original Message-ID;
// the stored reply marks the thread replied like any other reply.
func (u *mailUsecase) ReplyToEmail(ctx context.Context, req *dto.ReplyEmailRequest) (*maildomain.EmailReply, error) {
	thread, err := u.threadRepo.GetThreadByID(req.ThreadID)
	if err != nil {
		return nil, err
	}
	customer, err := u.customerRepo.FindByID(thread.CustomerID)
	if err != nil {
		return nil, err
	}

	setting, err := u.activeSetting()
	if err != nil {
		return nil, err
	}
	dispatcher, err := u.newDispatcher(setting, u.connectTimeout)
	if err != nil {
		return nil, err
	}

	body := cleaner.SanitizeHTML(req.ReplyBody)
	messageID, err := dispatcher.Send(ctx, outbound(
		customer.Email, customer.Name, replySubject(thread.Subject), body, thread.MessageID))
	if err != nil {
		return nil, fmt.Errorf("failed to send reply: %w", err)
	}

	reply := &maildomain.EmailReply{
		ThreadID:    thread.ID,
		CustomerID:  thread.CustomerID,
		ReplyBody:   body,
		SenderEmail: setting.FromEmail,
		MessageID:   messageID,
		InReplyTo:   thread.MessageID,
	}
	saved, err := u.threadRepo.AppendReply(reply)
	if err != nil {
		return nil, fmt.Errorf("failed to save reply: %w", err)
	}

	log.Printf("[Mail] Sent reply in thread %s (message %s)", thread.ID, messageID)
	return saved, nil
}

func (u *mailUsecase) GetThreadsForCustomer(customerID string) ([]*maildomain.EmailThread, error) {
	if _, err := u.customerRepo.FindByID(customerID); err != nil {
		return nil, err
	}
	return u.threadRepo.ListThreadsForCustomer(customerID)
}

func (u *mailUsecase) ListThreads(customerID string, page, limit int) (*dto.PagedThreadsResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	threads, total, err := u.threadRepo.ListThreadsPaged(customerID, page, limit)
	if err != nil {
		return nil, err
	}
	return &dto.PagedThreadsResponse{
		Threads: threads,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

func (u *mailUsecase) GetStats() (*maildomain.EmailStats, error) {
	return u.threadRepo.GetStats()
}

func (u *mailUsecase) CreateProviderSetting(req *dto.CreateProviderSettingRequest, updatedBy string) (*maildomain.EmailProviderSetting, error) {
	providerType := maildomain.ProviderType(strings.ToLower(strings.TrimSpace(req.ProviderType)))
	if !providerType.Known() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProviderType, req.ProviderType)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	setting := &maildomain.EmailProviderSetting{
		ProviderType: providerType,
		SMTPHost:     req.SMTPHost,
		SMTPPort:     req.SMTPPort,
		SMTPUsername: req.SMTPUsername,
		SMTPPassword: req.SMTPPassword,
		IMAPHost:     req.IMAPHost,
		IMAPPort:     req.IMAPPort,
		IMAPUsername: req.IMAPUsername,
		IMAPPassword: req.IMAPPassword,
		APIKey:       req.APIKey,
		FromEmail:    req.FromEmail,
		FromName:     req.FromName,
		IsActive:     isActive,
		UpdatedBy:    updatedBy,
	}
	if err := u.settingRepo.Create(setting); err != nil {
		return nil, fmt.Errorf("failed to save provider setting: %w", err)
	}

	log.Printf("[Mail] Saved provider setting %s (%s)", setting.ID, setting.ProviderType)
	return setting, nil
}

func (u *mailUsecase) ListProviderSettings() ([]*maildomain.EmailProviderSetting, error) {
	return u.settingRepo.List()
}

func (u *mailUsecase) activeSetting() (*maildomain.EmailProviderSetting, error) {
	setting, err := u.settingRepo.GetActive()
	if err != nil {
		return nil, fmt.Errorf("failed to load provider setting: %w", err)
	}
	if setting == nil {
		return nil, ErrNoActiveProvider
	}
	return setting, nil
}

func outbound(to, toName, subject, body, inReplyTo string) mailer.OutboundMessage {
	return mailer.OutboundMessage{
		To:        to,
		ToName:    toName,
		Subject:   subject,
		Body:      body,
		InReplyTo: inReplyTo,
	}
}

// replySubject prefixes Re: unless the subject already carries it.
func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(subject)), "re:") {
		return subject
	}
	return "Re: " + subject
}
