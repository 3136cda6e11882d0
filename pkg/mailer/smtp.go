package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/vraj-isotiya/topcitylight/internal/mail/domain"
)

// SMTPDispatcher relays mail through the setting's SMTP server using
// STARTTLS and PLAIN auth. Used for gmail and private providers.
type SMTPDispatcher struct {
	setting        *domain.EmailProviderSetting
	connectTimeout time.Duration
}

func NewSMTPDispatcher(setting *domain.EmailProviderSetting, connectTimeout time.Duration) *SMTPDispatcher {
	return &SMTPDispatcher{setting: setting, connectTimeout: connectTimeout}
}

func (d *SMTPDispatcher) Send(ctx context.Context, msg OutboundMessage) (string, error) {
	messageID, err := d.send(ctx, msg)
	if err != nil {
		return "", &SendError{Provider: d.setting.ProviderType, Err: err}
	}
	return messageID, nil
}

func (d *SMTPDispatcher) send(ctx context.Context, msg OutboundMessage) (string, error) {
	addr := fmt.Sprintf("%s:%d", d.setting.SMTPHost, d.setting.SMTPPort)

	dialer := net.Dialer{Timeout: d.connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to connect to SMTP server %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, d.setting.SMTPHost)
	if err != nil {
		conn.Close()
		return "", fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if err := client.Hello("localhost"); err != nil {
		return "", fmt.Errorf("SMTP hello failed: %w", err)
	}

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{ServerName: d.setting.SMTPHost}
		if err := client.StartTLS(tlsConfig); err != nil {
			return "", fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	auth := smtp.PlainAuth("", d.setting.SMTPUsername, d.setting.SMTPPassword, d.setting.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return "", fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err := client.Mail(d.setting.FromEmail); err != nil {
		return "", fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return "", fmt.Errorf("failed to set recipient: %w", err)
	}

	messageID := generateMessageID(d.setting.FromEmail)

	writer, err := client.Data()
	if err != nil {
		return "", fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := writer.Write(buildMIMEMessage(d.setting, msg, messageID)); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to write message body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finish message: %w", err)
	}

	if err := client.Quit(); err != nil {
		return "", fmt.Errorf("failed to close SMTP session: %w", err)
	}
	return messageID, nil
}

// buildMIMEMessage assembles the raw RFC 5322 message, threading headers
// included when replying to an earlier message.
func buildMIMEMessage(setting *domain.EmailProviderSetting, msg OutboundMessage, messageID string) []byte {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("From: %s\r\n", formatAddress(setting.FromName, setting.FromEmail)))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", formatAddress(msg.ToName, msg.To)))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	sb.WriteString(fmt.Sprintf("Message-ID: %s\r\n", messageID))
	if msg.InReplyTo != "" {
		sb.WriteString(fmt.Sprintf("In-Reply-To: %s\r\n", msg.InReplyTo))
		sb.WriteString(fmt.Sprintf("References: %s\r\n", msg.InReplyTo))
	}
	sb.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(msg.Body)
	sb.WriteString("\r\n")

	return []byte(sb.String())
}
