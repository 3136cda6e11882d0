package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vraj-isotiya/topcitylight/internal/mail/domain"
)

const (
	sendGridEndpoint  = "https://api.sendgrid.com/v3/mail/send"
	mailchimpEndpoint = "https://mandrillapp.com/api/1.0/messages/send"
)

// APIDispatcher delivers mail through a transactional HTTP API (SendGrid or
// Mailchimp Transactional). The Message-ID is generated client side and
// injected as a custom header so inbound replies can reference it.
type APIDispatcher struct {
	setting  *domain.EmailProviderSetting
	client   *http.Client
	endpoint string
}

func NewAPIDispatcher(setting *domain.EmailProviderSetting, connectTimeout time.Duration) *APIDispatcher {
	endpoint := sendGridEndpoint
	if setting.ProviderType == domain.ProviderMailchimp {
		endpoint = mailchimpEndpoint
	}
	return &APIDispatcher{
		setting:  setting,
		client:   &http.Client{Timeout: connectTimeout},
		endpoint: endpoint,
	}
}

func (d *APIDispatcher) Send(ctx context.Context, msg OutboundMessage) (string, error) {
	messageID, err := d.send(ctx, msg)
	if err != nil {
		return "", &SendError{Provider: d.setting.ProviderType, Err: err}
	}
	return messageID, nil
}

func (d *APIDispatcher) send(ctx context.Context, msg OutboundMessage) (string, error) {
	messageID := generateMessageID(d.setting.FromEmail)

	var payload any
	if d.setting.ProviderType == domain.ProviderMailchimp {
		payload = d.mailchimpPayload(msg, messageID)
	} else {
		payload = d.sendGridPayload(msg, messageID)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.setting.ProviderType == domain.ProviderSendGrid {
		req.Header.Set("Authorization", "Bearer "+d.setting.APIKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach %s API: %w", d.setting.ProviderType, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%s API returned %d: %s", d.setting.ProviderType, resp.StatusCode, string(detail))
	}
	return messageID, nil
}

func (d *APIDispatcher) sendGridPayload(msg OutboundMessage, messageID string) map[string]any {
	headers := map[string]string{"Message-ID": messageID}
	if msg.InReplyTo != "" {
		headers["In-Reply-To"] = msg.InReplyTo
		headers["References"] = msg.InReplyTo
	}
	return map[string]any{
		"personalizations": []map[string]any{
			{"to": []map[string]string{{"email": msg.To, "name": msg.ToName}}},
		},
		"from":    map[string]string{"email": d.setting.FromEmail, "name": d.setting.FromName},
		"subject": msg.Subject,
		"content": []map[string]string{{"type": "text/html", "value": msg.Body}},
		"headers": headers,
	}
}

func (d *APIDispatcher) mailchimpPayload(msg OutboundMessage, messageID string) map[string]any {
	headers := map[string]string{"Message-ID": messageID}
	if msg.InReplyTo != "" {
		headers["In-Reply-To"] = msg.InReplyTo
		headers["References"] = msg.InReplyTo
	}
	return map[string]any{
		"key": d.setting.APIKey,
		"message": map[string]any{
			"html":       msg.Body,
			"subject":    msg.Subject,
			"from_email": d.setting.FromEmail,
			"from_name":  d.setting.FromName,
			"to": []map[string]string{
				{"email": msg.To, "name": msg.ToName, "type": "to"},
			},
			"headers": headers,
		},
	}
}
