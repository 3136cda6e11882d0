// Package mailer sends outbound email through the configured provider. Gmail
// and private mail servers are reached over SMTP, SendGrid and Mailchimp
// through their transactional HTTP APIs. Every successful send returns the
// RFC 5322 Message-ID the message went out with, so replies can be matched
// back to it later.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/vraj-isotiya/topcitylight/internal/mail/domain"
)

// ErrUnsupportedProvider is returned when a stored setting carries a provider
// type outside the supported set.
var ErrUnsupportedProvider = errors.New("unsupported email provider")

// SendError reports that the outbound provider did not accept a message.
// Callers can distinguish it from persistence failures; no thread or reply
// record exists for a message that failed to dispatch.
type SendError struct {
	Provider domain.ProviderType
	Err      error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s dispatch failed: %v", e.Provider, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// OutboundMessage is one email to deliver. InReplyTo, when set, threads the
// message under an earlier Message-ID.
type OutboundMessage struct {
	To        string
	ToName    string
	Subject   string
	Body      string
	InReplyTo string
}

// Dispatcher delivers outbound messages for one provider setting.
type Dispatcher interface {
	// Send delivers msg and returns the Message-ID assigned to it. The
	// returned ID includes the surrounding angle brackets.
	Send(ctx context.Context, msg OutboundMessage) (string, error)
}

// NewDispatcher picks the transport matching the setting's provider type.
func NewDispatcher(setting *domain.EmailProviderSetting, connectTimeout time.Duration) (Dispatcher, error) {
	switch setting.ProviderType {
	case domain.ProviderGmail, domain.ProviderPrivate:
		return NewSMTPDispatcher(setting, connectTimeout), nil
	case domain.ProviderSendGrid, domain.ProviderMailchimp:
		return NewAPIDispatcher(setting, connectTimeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, setting.ProviderType)
	}
}

// generateMessageID builds a globally unique Message-ID under the sender's
// domain, in the form <timestamp.pid.random@domain>.
func generateMessageID(fromEmail string) string {
	domainPart := "localhost"
	if idx := strings.LastIndex(fromEmail, "@"); idx >= 0 && idx < len(fromEmail)-1 {
		domainPart = fromEmail[idx+1:]
	}
	return fmt.Sprintf("<%d.%d.%d@%s>", time.Now().UnixNano(), os.Getpid(), rand.Int63(), domainPart)
}

func formatAddress(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
